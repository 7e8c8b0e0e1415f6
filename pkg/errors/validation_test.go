package errors

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "car", false},
		{"valid with dash", "sports-car", false},
		{"valid uuid", "0b6c3c2e-8a0e-4f7b-9c53-8f5e1d4a1b2c", false},
		{"valid with colon", "fact:isA:1", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"space", "sports car", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"plain", "Sports Car", false},
		{"unicode", "Fahrzeug – Ü", false},
		{"tab", "a\tb", false},

		{"newline", "a\nb", true},
		{"bell", "a\x07b", true},
		{"too long", strings.Repeat("x", 2000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
