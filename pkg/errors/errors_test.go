package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeAnalysis, cause, "build graph")

	if err.Code != ErrCodeAnalysis {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeAnalysis)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeNoEdges, "test"), ErrCodeNoEdges, true},
		{"non-matching code", New(ErrCodeNoEdges, "test"), ErrCodeStale, false},
		{"wrapped error", Wrap(ErrCodeAnalysis, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeAnalysis, true},
		{"fmt wrapped", fmt.Errorf("export: %w", New(ErrCodeNoEdges, "x")), ErrCodeNoEdges, true},
		{"non-Error type", errors.New("plain error"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeStale, "x")); got != ErrCodeStale {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeStale)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeNoEdges, "nothing to export")); got != "nothing to export" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestIsNoOp(t *testing.T) {
	if !IsNoOp(New(ErrCodeNoSelection, "no files")) {
		t.Error("NO_SELECTION should be a no-op")
	}
	if IsNoOp(New(ErrCodeNoEdges, "x")) {
		t.Error("NO_EDGES should not be a no-op")
	}
}
