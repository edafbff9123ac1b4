package layout_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/grid"
	"github.com/wit-platform/witpanel/pkg/layout"
	"github.com/wit-platform/witpanel/pkg/workshop"
)

func TestEntityFlatRecord(t *testing.T) {
	e := layout.Entity[workshop.Machine]{
		ID:       "m1",
		Position: grid.Cell{X: 2, Y: 1},
		Size:     grid.Size{Width: 1, Height: 2},
		Payload:  workshop.Machine{Name: "Lathe", Status: workshop.StatusYellow},
	}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"id", "position", "size", "name", "status"} {
		if _, ok := fields[k]; !ok {
			t.Errorf("record %s missing %q", data, k)
		}
	}
	if pos := fields["position"].(map[string]any); pos["x"] != 2.0 || pos["y"] != 1.0 {
		t.Errorf("position = %v", pos)
	}
}

func TestEntityKeepsUnknownDomainFields(t *testing.T) {
	in := []byte(`{"id":"p","position":{"x":0,"y":0},"size":{"width":1,"height":1},"name":"Drone","team":["ana","li"],"deadline":"2024-03-01T00:00:00Z"}`)
	var e layout.Entity[workshop.Project]
	if err := json.Unmarshal(in, &e); err != nil {
		t.Fatal(err)
	}
	if e.Payload.Name != "Drone" || len(e.Payload.Team) != 2 || e.Payload.Deadline == nil {
		t.Errorf("payload = %+v", e.Payload)
	}
	if !e.Payload.Deadline.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("deadline = %v", e.Payload.Deadline)
	}
}

func TestUnmarshalEmpty(t *testing.T) {
	got, err := layout.Unmarshal[workshop.Machine](nil)
	if err != nil || got != nil {
		t.Errorf("Unmarshal(nil) = %v, %v", got, err)
	}
	data, _ := layout.Marshal[workshop.Machine](nil)
	if string(data) != "[]" {
		t.Errorf("Marshal(nil) = %s, want []", data)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machines.json")
	want := []layout.Entity[workshop.Machine]{
		{ID: "a", Size: grid.Unit, Payload: workshop.Machine{Name: "a", Status: workshop.StatusGreen}},
		{ID: "b", Position: grid.Cell{X: 1}, Size: grid.Size{Width: 2, Height: 1}, Payload: workshop.Machine{Name: "b"}},
	}
	if err := layout.WriteFile(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := layout.ReadFile[workshop.Machine](path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadFile = %+v, want %+v", got, want)
	}

	os.WriteFile(path, []byte("nope"), 0o644)
	if _, err := layout.ReadFile[workshop.Machine](path); !errors.Is(err, errors.ErrCodePersistenceParse) {
		t.Errorf("ReadFile(corrupt) = %v, want PERSISTENCE_PARSE", err)
	}
}
