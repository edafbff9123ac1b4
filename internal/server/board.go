package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/export"
	"github.com/wit-platform/witpanel/pkg/grid"
	"github.com/wit-platform/witpanel/pkg/layout"
)

// board serves one layout store.
type board[P layout.Attributes] struct {
	store  *layout.Store[P]
	title  string
	logger *log.Logger
}

func newBoard[P layout.Attributes](store *layout.Store[P], title string, logger *log.Logger) *board[P] {
	return &board[P]{store: store, title: title, logger: logger}
}

func (b *board[P]) routes(r chi.Router) {
	r.Get("/", b.list)
	r.Post("/", b.add)
	r.Get("/grid", b.getGrid)
	r.Put("/grid", b.putGrid)
	r.Get("/snapshot.svg", b.snapshotSVG)
	r.Get("/snapshot.txt", b.snapshotText)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", b.get)
		r.Patch("/", b.patch)
		r.Delete("/", b.remove)
		r.Put("/position", b.move)
		r.Put("/size", b.resize)
	})
}

func (b *board[P]) fail(w http.ResponseWriter, err error) {
	writeError(w, b.logger, err)
}

func (b *board[P]) list(w http.ResponseWriter, r *http.Request) {
	params, err := queryParams(r)
	if err != nil {
		b.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, layout.Query(b.store.Entities(), params, b.store.Config()))
}

func queryParams(r *http.Request) (layout.Params, error) {
	q := r.URL.Query()
	sort, err := layout.ParseSortKey(q.Get("sort"))
	if err != nil {
		return layout.Params{}, err
	}
	p := layout.Params{Status: q.Get("status"), Priority: q.Get("priority"), Sort: sort}
	if p.Page, err = intParam(q.Get("page")); err != nil {
		return layout.Params{}, err
	}
	if p.PageSize, err = intParam(q.Get("page_size")); err != nil {
		return layout.Params{}, err
	}
	return p, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "expected a non-negative integer, got %q", s)
	}
	return n, nil
}

// add decodes the payload fields and an optional "size" from one object.
func (b *board[P]) add(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		b.fail(w, err)
		return
	}
	var payload P
	if err := json.Unmarshal(body, &payload); err != nil {
		b.fail(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body"))
		return
	}
	var extra struct {
		Size grid.Size `json:"size"`
	}
	if err := json.Unmarshal(body, &extra); err != nil {
		b.fail(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid size"))
		return
	}

	e, err := b.store.Add(r.Context(), payload, extra.Size)
	if err != nil {
		b.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (b *board[P]) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, ok := b.store.Get(id)
	if !ok {
		b.fail(w, errors.New(errors.ErrCodeNotFound, "no entity %q", id))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// patch merges the body's fields into the existing payload.
func (b *board[P]) patch(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		b.fail(w, err)
		return
	}
	e, err := b.store.Update(r.Context(), chi.URLParam(r, "id"), func(p *P) error {
		if err := json.Unmarshal(body, p); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
		}
		return nil
	})
	if err != nil {
		b.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (b *board[P]) remove(w http.ResponseWriter, r *http.Request) {
	if err := b.store.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		b.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *board[P]) move(w http.ResponseWriter, r *http.Request) {
	var to grid.Cell
	if err := decodeJSON(r, &to); err != nil {
		b.fail(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := b.store.Move(r.Context(), id, to); err != nil {
		b.fail(w, err)
		return
	}
	b.get(w, r)
}

// resize accepts a size, which keeps the current corner, or a full
// rectangle with x and y.
func (b *board[P]) resize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cur, ok := b.store.Rect(id)
	if !ok {
		b.fail(w, errors.New(errors.ErrCodeNotFound, "no entity %q", id))
		return
	}
	var req struct {
		X      *int `json:"x"`
		Y      *int `json:"y"`
		Width  int  `json:"width"`
		Height int  `json:"height"`
	}
	if err := decodeJSON(r, &req); err != nil {
		b.fail(w, err)
		return
	}
	next := grid.Rect{X: cur.X, Y: cur.Y, Width: req.Width, Height: req.Height}
	if req.X != nil {
		next.X = *req.X
	}
	if req.Y != nil {
		next.Y = *req.Y
	}
	if err := b.store.Resize(r.Context(), id, next); err != nil {
		b.fail(w, err)
		return
	}
	b.get(w, r)
}

func (b *board[P]) getGrid(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, b.store.Config())
}

func (b *board[P]) putGrid(w http.ResponseWriter, r *http.Request) {
	var cfg grid.Config
	if err := decodeJSON(r, &cfg); err != nil {
		b.fail(w, err)
		return
	}
	if err := b.store.SetConfig(r.Context(), cfg); err != nil {
		b.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b.store.Config())
}

func (b *board[P]) snapshotSVG(w http.ResponseWriter, r *http.Request) {
	dot := export.ToDOT(b.title, b.store.Config(), export.Tiles(b.store.Entities()))
	svg, err := export.RenderSVG(r.Context(), dot)
	if err != nil {
		b.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (b *board[P]) snapshotText(w http.ResponseWriter, r *http.Request) {
	text := export.Text(b.store.Config(), export.Tiles(b.store.Entities()), export.TextOptions{Plain: true})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}
