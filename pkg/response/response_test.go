package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIs(t *testing.T) {
	notFound := NewError(http.StatusNotFound, "session not found")

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "same value", err: notFound, target: notFound, want: true},
		{name: "equal code and message", err: NewError(http.StatusNotFound, "session not found"), target: notFound, want: true},
		{name: "wrapped", err: fmt.Errorf("load: %w", notFound), target: notFound, want: true},
		{name: "different code", err: NewError(http.StatusGone, "session not found"), target: notFound, want: false},
		{name: "different message", err: NewError(http.StatusNotFound, "capture not found"), target: notFound, want: false},
		{name: "plain error", err: errors.New("session not found"), target: notFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorAs(t *testing.T) {
	err := fmt.Errorf("submit: %w", NewError(http.StatusConflict, "capture already submitted"))

	var respErr *Error
	if !errors.As(err, &respErr) {
		t.Fatal("expected errors.As to find *Error")
	}
	if respErr.Code != http.StatusConflict {
		t.Errorf("Code = %d, want %d", respErr.Code, http.StatusConflict)
	}
}
