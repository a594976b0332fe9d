package apperr

import (
	"errors"
	"testing"
)

func TestKinds(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name    string
		err     error
		kind    error
		message string
	}{
		{"validation", Validation("name is required"), ErrValidation, "name is required"},
		{"not found", NotFound("client %s not found", "abc"), ErrNotFound, "client abc not found"},
		{"conflict", Conflict("client is referenced"), ErrConflict, "client is referenced"},
		{"storage", Storage("could not load clients", cause), ErrStorage, "could not load clients"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
			if got := Message(tt.err); got != tt.message {
				t.Errorf("Message() = %q, want %q", got, tt.message)
			}
		})
	}
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage("could not load clients", cause)

	if !errors.Is(err, cause) {
		t.Errorf("storage error should unwrap to its cause")
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("storage error must not match ErrNotFound")
	}
	if got := err.Error(); got != "could not load clients: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestMessagePlainError(t *testing.T) {
	if got := Message(errors.New("boom")); got != "boom" {
		t.Errorf("Message() = %q, want boom", got)
	}
}
