package errors

import (
	"strings"
	"testing"
)

func TestValidateEntityID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "2f1c7b8e-54a2-4bd4-9d0e-2b3f5c6a7d8e", false},
		{"short", "m1", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"space", "m 1", true},
		{"slash", "m/1", true},
		{"backslash", "m\\1", true},
		{"control char", "m\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntityID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntityID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateStorageKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "wit-machines", false},
		{"with colon", "user:42:wit-projects", false},

		{"empty", "", true},
		{"too long", strings.Repeat("k", 300), true},
		{"traversal", "..", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStorageKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStorageKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Prusa MK4", false},
		{"blank", "   ", true},
		{"too long", strings.Repeat("n", 201), true},
		{"control", "bad\x07name", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		schemes []string
		wantErr bool
	}{
		{"http default", "http://localhost:8000", nil, false},
		{"https default", "https://wit.local", nil, false},
		{"ws rejected by default", "ws://localhost:8765", nil, true},
		{"ws allowed", "ws://localhost:8765", []string{"ws", "wss"}, false},
		{"empty", "", nil, true},
		{"ftp", "ftp://example.com", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input, tt.schemes...)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
