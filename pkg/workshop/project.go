package workshop

import (
	"slices"
	"time"

	"github.com/wit-platform/witpanel/pkg/errors"
	"github.com/wit-platform/witpanel/pkg/layout"
)

// Project is a piece of work tracked on the projects board.
type Project struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Team        []string   `json:"team,omitempty"`
	AddedAt     time.Time  `json:"dateAdded"`
}

func (p Project) Label() string { return p.Name }
func (p Project) StatusName() string { return string(p.Status) }
func (p Project) StatusRank() int { return p.Status.Rank() }
func (p Project) PriorityName() string { return string(p.Priority) }
func (p Project) PriorityRank() int { return p.Priority.Rank() }
func (p Project) Added() time.Time { return p.AddedAt }

func (p Project) Due() (time.Time, bool) {
	if p.Deadline == nil {
		return time.Time{}, false
	}
	return *p.Deadline, true
}

var (
	_ layout.Attributes      = Project{}
	_ layout.Validator       = Project{}
	_ layout.Stamper         = (*Project)(nil)
	_ layout.Cloner[Project] = Project{}
)

// Clone returns a copy that shares neither Team nor Deadline.
func (p Project) Clone() Project {
	p.Team = slices.Clone(p.Team)
	if p.Deadline != nil {
		d := *p.Deadline
		p.Deadline = &d
	}
	return p
}

// Stamp fills the creation time, a green status and medium priority when
// unset.
func (p *Project) Stamp(now time.Time) {
	if p.AddedAt.IsZero() {
		p.AddedAt = now.UTC()
	}
	if p.Status == "" {
		p.Status = StatusGreen
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
}

// Validate checks the name, status and priority.
func (p Project) Validate() error {
	if err := errors.ValidateName(p.Name); err != nil {
		return err
	}
	if p.Status != "" {
		if _, err := ParseStatus(string(p.Status)); err != nil {
			return err
		}
	}
	if p.Priority != "" {
		if _, err := ParsePriority(string(p.Priority)); err != nil {
			return err
		}
	}
	return nil
}
