package grid

import "testing"

func TestPixelToCell(t *testing.T) {
	tests := []struct {
		name     string
		px       float64
		cellSize float64
		gap      float64
		want     int
	}{
		{"zero", 0, 100, 10, 0},
		{"exact pitch", 220, 100, 10, 2},
		{"just below midpoint", 54, 100, 10, 0},
		{"past midpoint", 56, 100, 10, 1},
		{"one cell width without gap", 100, 100, 10, 1},
		{"negative", -110, 100, 10, -1},
		{"negative past midpoint", -60, 100, 10, -1},
		{"half rounds up", 55, 100, 10, 1},
		{"negative half rounds up", -55, 100, 10, 0},
		{"negative one and a half", -165, 100, 10, -1},
		{"zero pitch", 50, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PixelToCell(tt.px, tt.cellSize, tt.gap); got != tt.want {
				t.Errorf("PixelToCell(%v, %v, %v) = %d, want %d", tt.px, tt.cellSize, tt.gap, got, tt.want)
			}
		})
	}
}

func TestRectsOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"identical", Rect{0, 0, 1, 1}, Rect{0, 0, 1, 1}, true},
		{"adjacent horizontally", Rect{0, 0, 1, 1}, Rect{1, 0, 1, 1}, false},
		{"adjacent vertically", Rect{0, 0, 2, 1}, Rect{0, 1, 2, 1}, false},
		{"partial", Rect{0, 0, 2, 2}, Rect{1, 1, 2, 2}, true},
		{"contained", Rect{0, 0, 3, 3}, Rect{1, 1, 1, 1}, true},
		{"disjoint", Rect{0, 0, 1, 1}, Rect{2, 2, 1, 1}, false},
		{"cross shape", Rect{1, 0, 1, 3}, Rect{0, 1, 3, 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RectsOverlap(tt.a, tt.b); got != tt.want {
				t.Errorf("RectsOverlap(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := RectsOverlap(tt.b, tt.a); got != tt.want {
				t.Errorf("RectsOverlap is not symmetric for %v, %v", tt.a, tt.b)
			}
		})
	}
}

func TestIsOccupied(t *testing.T) {
	placed := []Bare{
		{ID: "a", Rect: Rect{0, 0, 1, 1}},
		{ID: "b", Rect: Rect{1, 1, 2, 1}},
	}

	if !IsOccupied(Rect{0, 0, 1, 1}, placed, "") {
		t.Error("cell under a should be occupied")
	}
	if IsOccupied(Rect{0, 0, 1, 1}, placed, "a") {
		t.Error("excluding a should free its own cell")
	}
	if !IsOccupied(Rect{0, 0, 2, 2}, placed, "a") {
		t.Error("2x2 at origin overlaps b")
	}
	if IsOccupied(Rect{2, 0, 1, 1}, placed, "") {
		t.Error("(2,0) should be free")
	}
}

func TestFindFreeSlot(t *testing.T) {
	cfg := Config{Cols: 3, Rows: 3}

	t.Run("row-major order", func(t *testing.T) {
		var placed []Bare
		want := []Cell{{0, 0}, {1, 0}, {2, 0}, {0, 1}}
		for i, w := range want {
			c, ok := FindFreeSlot(Unit, placed, cfg)
			if !ok {
				t.Fatalf("slot %d: grid reported full", i)
			}
			if c != w {
				t.Fatalf("slot %d = %v, want %v", i, c, w)
			}
			placed = append(placed, Bare{ID: string(rune('a' + i)), Rect: RectOf(c, Unit)})
		}
	})

	t.Run("full", func(t *testing.T) {
		one := Config{Cols: 1, Rows: 1}
		placed := []Bare{{ID: "a", Rect: Rect{0, 0, 1, 1}}}
		if _, ok := FindFreeSlot(Unit, placed, one); ok {
			t.Error("1x1 grid with one entity should be full")
		}
	})

	t.Run("larger size skips gaps too small", func(t *testing.T) {
		placed := []Bare{{ID: "a", Rect: Rect{1, 0, 1, 1}}}
		c, ok := FindFreeSlot(Size{2, 1}, placed, cfg)
		if !ok || c != (Cell{0, 1}) {
			t.Errorf("FindFreeSlot(2x1) = %v, %v; want (0,1)", c, ok)
		}
	})

	t.Run("size larger than board", func(t *testing.T) {
		if _, ok := FindFreeSlot(Size{4, 1}, []Bare(nil), cfg); ok {
			t.Error("4x1 cannot fit a 3-column board")
		}
	})

	t.Run("invalid size", func(t *testing.T) {
		if _, ok := FindFreeSlot(Size{0, 1}, []Bare(nil), cfg); ok {
			t.Error("zero width must not be placed")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{1, 1}, false},
		{Config{8, 8}, false},
		{Config{0, 3}, true},
		{Config{3, 9}, true},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.cfg, err, tt.wantErr)
		}
	}
}

func TestConfigContainsAndClamp(t *testing.T) {
	cfg := Config{Cols: 3, Rows: 2}
	if !cfg.Contains(Rect{1, 0, 2, 2}) {
		t.Error("rect touching the far edges should be contained")
	}
	if cfg.Contains(Rect{2, 0, 2, 1}) {
		t.Error("rect crossing the right edge should not be contained")
	}
	if cfg.Contains(Rect{-1, 0, 1, 1}) {
		t.Error("negative x should not be contained")
	}

	got := cfg.ClampCell(Cell{5, -2}, Size{2, 1})
	if got != (Cell{1, 0}) {
		t.Errorf("ClampCell = %v, want (1,0)", got)
	}
}
