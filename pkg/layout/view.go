package layout

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/grid"
)

// Attributes exposes the payload fields views filter and sort on.
type Attributes interface {
	// Label is the display name.
	Label() string
	// StatusName and StatusRank describe the health status. Lower ranks
	// are more severe.
	StatusName() string
	StatusRank() int
	// PriorityName and PriorityRank describe urgency. Lower ranks are more
	// urgent. Payloads without a priority return "" and 0.
	PriorityName() string
	PriorityRank() int
	// Added is when the entity was created.
	Added() time.Time
	// Due is the deadline, if any.
	Due() (time.Time, bool)
}

// SortKey orders a view.
type SortKey string

const (
	SortNone     SortKey = ""
	SortName     SortKey = "name"
	SortStatus   SortKey = "status"
	SortPriority SortKey = "priority"
	SortAdded    SortKey = "added"
	SortDeadline SortKey = "deadline"
)

// SortKeys lists the accepted sort keys.
var SortKeys = []SortKey{SortName, SortStatus, SortPriority, SortAdded, SortDeadline}

// ParseSortKey validates a sort key. The empty string keeps insertion order.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if k == SortNone || slices.Contains(SortKeys, k) {
		return k, nil
	}
	return SortNone, errors.New(errors.ErrCodeInvalidInput, "unknown sort key %q (want name, status, priority, added or deadline)", s)
}

// Params selects a view. Zero values mean no filter, insertion order,
// first page, and one page per board (cols×rows).
type Params struct {
	Status   string
	Priority string
	Sort     SortKey
	Page     int
	PageSize int
}

// Page is one page of a view.
type Page[P any] struct {
	Items    []Entity[P] `json:"items"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Pages    int         `json:"pages"`
	Total    int         `json:"total"`
}

func (p Page[P]) String() string {
	return fmt.Sprintf("page %d/%d (%d total)", p.Page, p.Pages, p.Total)
}

// Query filters, sorts and paginates entities without modifying them.
// Out-of-range pages are clamped to the nearest valid page.
func Query[P Attributes](entities []Entity[P], q Params, cfg grid.Config) Page[P] {
	items := make([]Entity[P], 0, len(entities))
	for _, e := range entities {
		if q.Status != "" && !strings.EqualFold(e.Payload.StatusName(), q.Status) {
			continue
		}
		if q.Priority != "" && !strings.EqualFold(e.Payload.PriorityName(), q.Priority) {
			continue
		}
		items = append(items, e)
	}

	if cmpFn := comparator[P](q.Sort); cmpFn != nil {
		slices.SortStableFunc(items, cmpFn)
	}

	size := q.PageSize
	if size <= 0 {
		size = max(cfg.Cells(), 1)
	}
	total := len(items)
	pages := max((total+size-1)/size, 1)
	page := min(max(q.Page, 1), pages)

	start := min((page-1)*size, total)
	end := min(start+size, total)
	return Page[P]{
		Items:    items[start:end],
		Page:     page,
		PageSize: size,
		Pages:    pages,
		Total:    total,
	}
}

func comparator[P Attributes](key SortKey) func(a, b Entity[P]) int {
	switch key {
	case SortName:
		return func(a, b Entity[P]) int {
			return cmp.Or(
				cmp.Compare(strings.ToLower(a.Payload.Label()), strings.ToLower(b.Payload.Label())),
				cmp.Compare(a.Payload.Label(), b.Payload.Label()),
			)
		}
	case SortStatus:
		return func(a, b Entity[P]) int {
			return cmp.Compare(a.Payload.StatusRank(), b.Payload.StatusRank())
		}
	case SortPriority:
		return func(a, b Entity[P]) int {
			return cmp.Compare(a.Payload.PriorityRank(), b.Payload.PriorityRank())
		}
	case SortAdded:
		// Newest first.
		return func(a, b Entity[P]) int {
			return b.Payload.Added().Compare(a.Payload.Added())
		}
	case SortDeadline:
		// Soonest first, entities without a deadline last.
		return func(a, b Entity[P]) int {
			da, okA := a.Payload.Due()
			db, okB := b.Payload.Due()
			switch {
			case okA && okB:
				return da.Compare(db)
			case okA:
				return -1
			case okB:
				return 1
			}
			return 0
		}
	}
	return nil
}
