package layout_test

import (
	"testing"
	"time"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/grid"
	"github.com/wit-platform/witpanel/pkg/layout"
	"github.com/wit-platform/witpanel/pkg/workshop"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func projects() []layout.Entity[workshop.Project] {
	due := func(d int) *time.Time { t := day(d); return &t }
	mk := func(id, name string, st workshop.Status, pr workshop.Priority, added int, deadline *time.Time) layout.Entity[workshop.Project] {
		return layout.Entity[workshop.Project]{
			ID:   id,
			Size: grid.Unit,
			Payload: workshop.Project{
				Name: name, Status: st, Priority: pr, AddedAt: day(added), Deadline: deadline,
			},
		}
	}
	return []layout.Entity[workshop.Project]{
		mk("p1", "drone frame", workshop.StatusGreen, workshop.PriorityLow, 1, due(20)),
		mk("p2", "Bench vise", workshop.StatusRed, workshop.PriorityHigh, 3, nil),
		mk("p3", "CNC fixture", workshop.StatusYellow, workshop.PriorityMedium, 2, due(10)),
		mk("p4", "amp case", workshop.StatusRed, workshop.PriorityLow, 4, due(15)),
	}
}

func ids[P any](es []layout.Entity[P]) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func TestQuerySort(t *testing.T) {
	tests := []struct {
		sort layout.SortKey
		want []string
	}{
		{layout.SortNone, []string{"p1", "p2", "p3", "p4"}},
		{layout.SortName, []string{"p4", "p2", "p3", "p1"}},
		{layout.SortStatus, []string{"p2", "p4", "p3", "p1"}},
		{layout.SortPriority, []string{"p2", "p3", "p1", "p4"}},
		{layout.SortAdded, []string{"p4", "p2", "p3", "p1"}},
		{layout.SortDeadline, []string{"p3", "p4", "p1", "p2"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			page := layout.Query(projects(), layout.Params{Sort: tt.sort}, grid.DefaultConfig)
			got := ids(page.Items)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestQueryDoesNotMutate(t *testing.T) {
	in := projects()
	layout.Query(in, layout.Params{Sort: layout.SortName}, grid.DefaultConfig)
	if got := ids(in); got[0] != "p1" || got[3] != "p4" {
		t.Errorf("input reordered: %v", got)
	}
}

func TestQueryFilter(t *testing.T) {
	page := layout.Query(projects(), layout.Params{Status: "RED"}, grid.DefaultConfig)
	if got := ids(page.Items); len(got) != 2 || got[0] != "p2" || got[1] != "p4" {
		t.Errorf("status filter = %v", got)
	}
	page = layout.Query(projects(), layout.Params{Status: "red", Priority: "low"}, grid.DefaultConfig)
	if got := ids(page.Items); len(got) != 1 || got[0] != "p4" {
		t.Errorf("status+priority filter = %v", got)
	}
	if page.Total != 1 {
		t.Errorf("Total = %d, want 1", page.Total)
	}
}

func TestQueryPaginate(t *testing.T) {
	cfg := grid.Config{Cols: 1, Rows: 3}
	tests := []struct {
		name     string
		params   layout.Params
		wantIDs  []string
		wantPage int
		pages    int
	}{
		{"default size is cols x rows", layout.Params{}, []string{"p1", "p2", "p3"}, 1, 2},
		{"second page", layout.Params{Page: 2}, []string{"p4"}, 2, 2},
		{"past the end clamps", layout.Params{Page: 9}, []string{"p4"}, 2, 2},
		{"explicit size", layout.Params{Page: 2, PageSize: 2}, []string{"p3", "p4"}, 2, 2},
		{"one page", layout.Params{PageSize: 10}, []string{"p1", "p2", "p3", "p4"}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := layout.Query(projects(), tt.params, cfg)
			got := ids(page.Items)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("items = %v, want %v", got, tt.wantIDs)
			}
			for i := range got {
				if got[i] != tt.wantIDs[i] {
					t.Fatalf("items = %v, want %v", got, tt.wantIDs)
				}
			}
			if page.Page != tt.wantPage || page.Pages != tt.pages {
				t.Errorf("page %d/%d, want %d/%d", page.Page, page.Pages, tt.wantPage, tt.pages)
			}
		})
	}
}

func TestQueryEmpty(t *testing.T) {
	page := layout.Query[workshop.Machine](nil, layout.Params{Page: 3}, grid.DefaultConfig)
	if page.Page != 1 || page.Pages != 1 || len(page.Items) != 0 {
		t.Errorf("empty query = %+v", page)
	}
}

func TestParseSortKey(t *testing.T) {
	if k, err := layout.ParseSortKey(" Deadline "); err != nil || k != layout.SortDeadline {
		t.Errorf("ParseSortKey = %q, %v", k, err)
	}
	if k, err := layout.ParseSortKey(""); err != nil || k != layout.SortNone {
		t.Errorf("ParseSortKey(\"\") = %q, %v", k, err)
	}
	if _, err := layout.ParseSortKey("size"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ParseSortKey(size) = %v", err)
	}
}
