package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "dangling matches", err: Dangling("student", "s9"), target: ErrDanglingReference, want: true},
		{name: "dangling is not invalid", err: Dangling("student", "s9"), target: ErrInvalidInput},
		{name: "wrapped not found", err: fmt.Errorf("load: %w", NotFound("batches", "b1")), target: ErrNotFound, want: true},
		{name: "unavailable keeps cause", err: Unavailable("list students", errBoom), target: errBoom, want: true},
		{name: "foreign error", err: errBoom, target: ErrStoreUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

var errBoom = errors.New("boom")

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindOutOfRangeDate, KindOf(fmt.Errorf("toggle: %w", OutOfRange("2025-04-01", "March 2025"))))
	assert.Equal(t, Kind(""), KindOf(errBoom))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, `teacher "t2" does not exist`, Dangling("teacher", "t2").Error())
	assert.Equal(t, "upsert attendance failed: boom", Unavailable("upsert attendance", errBoom).Error())
	assert.Equal(t, "name is required", Invalid("name is required").Error())
}
