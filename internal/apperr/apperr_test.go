package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	if got := StatusOf(ErrVoteType); got != http.StatusBadRequest {
		t.Errorf("StatusOf(ErrVoteType) = %d, want 400", got)
	}
	if got := StatusOf(ErrQuestionNotFound); got != http.StatusNotFound {
		t.Errorf("StatusOf(ErrQuestionNotFound) = %d, want 404", got)
	}
	if got := StatusOf(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("StatusOf(plain error) = %d, want 500", got)
	}

	// Wrapped errors keep their code and status
	wrapped := fmt.Errorf("casting vote: %w", ErrUserNotFound)
	if got := StatusOf(wrapped); got != http.StatusNotFound {
		t.Errorf("StatusOf(wrapped) = %d, want 404", got)
	}
}

func TestPayload(t *testing.T) {
	p := Payload(ErrVoteType)
	if p["code"] != 100006 {
		t.Errorf("Payload(ErrVoteType)[code] = %v, want 100006", p["code"])
	}

	p = Payload(errors.New("boom"))
	if _, ok := p["code"]; ok {
		t.Errorf("plain errors must not carry a code, got %v", p)
	}
}
