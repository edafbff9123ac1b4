// Package workshop defines the payloads placed on W.I.T. boards: machines
// on the machines board and projects on the projects board.
package workshop

import (
	"strings"

	"github.com/wit-platform/witpanel/pkg/errors"
)

// Status is a traffic-light health indicator.
type Status string

const (
	StatusRed    Status = "red"
	StatusYellow Status = "yellow"
	StatusGreen  Status = "green"
)

// Statuses lists statuses from most to least severe.
var Statuses = []Status{StatusRed, StatusYellow, StatusGreen}

// Rank orders statuses by severity: red < yellow < green. Unknown values
// sort after green.
func (s Status) Rank() int {
	switch s {
	case StatusRed:
		return 0
	case StatusYellow:
		return 1
	case StatusGreen:
		return 2
	}
	return 3
}

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusRed, StatusYellow, StatusGreen:
		return st, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown status %q (want red, yellow or green)", s)
}

// Priority is a project's urgency.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists priorities from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank orders priorities: high < medium < low. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// ParsePriority accepts a priority name in any case.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown priority %q (want high, medium or low)", s)
}

// Kind names a board.
type Kind string

const (
	KindMachines Kind = "machines"
	KindProjects Kind = "projects"
)

// Kinds lists every board.
var Kinds = []Kind{KindMachines, KindProjects}

// StorageKey returns the persistence key of the board.
func (k Kind) StorageKey() string {
	return "wit-" + string(k)
}

// ParseKind accepts a board name, singular or plural.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "machines", "machine":
		return KindMachines, nil
	case "projects", "project":
		return KindProjects, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown board %q (want machines or projects)", s)
}

// StatusFromReport maps a relay or REST status word onto the traffic
// light. Unknown words report false.
func StatusFromReport(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "green", "online", "ready", "idle", "ok", "connected":
		return StatusGreen, true
	case "yellow", "busy", "printing", "running", "warning", "paused":
		return StatusYellow, true
	case "red", "offline", "error", "fault", "disconnected", "stopped":
		return StatusRed, true
	}
	return "", false
}
