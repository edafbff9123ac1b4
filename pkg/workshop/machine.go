package workshop

import (
	"maps"
	"time"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/layout"
)

// Machine is a piece of workshop equipment.
type Machine struct {
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
	Status Status `json:"status"`
	// Metrics holds the latest readings, e.g. "nozzle_temp".
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Notes   string             `json:"notes,omitempty"`
	// Target is the relay plugin or device id used for status and commands.
	Target  string    `json:"target,omitempty"`
	AddedAt time.Time `json:"dateAdded"`
}

func (m Machine) Label() string { return m.Name }
func (m Machine) StatusName() string { return string(m.Status) }
func (m Machine) StatusRank() int { return m.Status.Rank() }
func (m Machine) PriorityName() string { return "" }
func (m Machine) PriorityRank() int { return 0 }
func (m Machine) Added() time.Time { return m.AddedAt }
func (m Machine) Due() (time.Time, bool) { return time.Time{}, false }

var (
	_ layout.Attributes      = Machine{}
	_ layout.Validator       = Machine{}
	_ layout.Stamper         = (*Machine)(nil)
	_ layout.Cloner[Machine] = Machine{}
)

// Clone returns a copy that does not share Metrics.
func (m Machine) Clone() Machine {
	m.Metrics = maps.Clone(m.Metrics)
	return m
}

// Stamp fills the creation time and a green status when unset.
func (m *Machine) Stamp(now time.Time) {
	if m.AddedAt.IsZero() {
		m.AddedAt = now.UTC()
	}
	if m.Status == "" {
		m.Status = StatusGreen
	}
}

// Validate checks the name and status.
func (m Machine) Validate() error {
	if err := errors.ValidateName(m.Name); err != nil {
		return err
	}
	if m.Status != "" {
		if _, err := ParseStatus(string(m.Status)); err != nil {
			return err
		}
	}
	return nil
}
