package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeGridFull, "no free %s slot", "1x1")

	if err.Code != ErrCodeGridFull {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeGridFull)
	}

	if err.Message != "no free 1x1 slot" {
		t.Errorf("Message = %v, want %v", err.Message, "no free 1x1 slot")
	}

	expected := "GRID_FULL: no free 1x1 slot"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "dial relay")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "NETWORK_ERROR: dial relay: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidPlacement, "overlap"),
			code:     ErrCodeInvalidPlacement,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidPlacement, "overlap"),
			code:     ErrCodeGridFull,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeGridFull, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeGridFull,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      errorsJoin(New(ErrCodeNotFound, "missing")),
			code:     ErrCodeNotFound,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func errorsJoin(err error) error {
	return errors.Join(errors.New("context"), err)
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodePersistenceParse, "bad json"), ErrCodePersistenceParse},
		{"plain error", errors.New("plain"), ""},
		{"command error", fmt.Errorf("relay: %w", &CommandError{Target: "prusa", Command: "home"}), ErrCodeCommandFailed},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeGridFull, "grid is full"), "grid is full"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	t.Run("with message", func(t *testing.T) {
		err := &CommandError{Target: "docker", Command: "list", Message: "daemon offline"}
		expected := "command docker/list failed: daemon offline"
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("without message", func(t *testing.T) {
		err := &CommandError{Target: "docker", Command: "list"}
		if err.Error() != "command docker/list failed" {
			t.Errorf("Error() = %v", err.Error())
		}
	})

	t.Run("code method", func(t *testing.T) {
		err := &CommandError{}
		if err.Code() != ErrCodeCommandFailed {
			t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeCommandFailed)
		}
	})
}
