package errors

import (
	"strings"
	"testing"
)

func TestValidateTreePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"root", "project", false},
		{"nested", "project/src/index.ts", false},
		{"dotfile", "project/.env", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"absolute", "/project", true},
		{"traversal", "project/../etc", true},
		{"backslash", "project\\src", true},
		{"null byte", "pro\x00ject", true},
		{"newline", "pro\nject", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTreePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTreePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	if err := ValidateQuery(""); err != nil {
		t.Errorf("empty query should be valid: %v", err)
	}
	if err := ValidateQuery("index"); err != nil {
		t.Errorf("plain query should be valid: %v", err)
	}
	if err := ValidateQuery(strings.Repeat("q", 300)); err == nil {
		t.Error("long query should fail")
	}
	if err := ValidateQuery("a\tb"); err == nil {
		t.Error("control characters should fail")
	}
}
