package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	errClubFull := Conflict("club is full")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "direct", err: NotFound("club not found"), want: KindNotFound},
		{name: "wrapped", err: fmt.Errorf("join club: %w", errClubFull), want: KindConflict},
		{name: "plain error", err: errors.New("connection reset"), want: KindInternal},
		{name: "nil", err: nil, want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestSentinelIdentity(t *testing.T) {
	errA := Forbidden("not the lead")
	errB := Forbidden("not the lead")

	wrapped := fmt.Errorf("decide: %w", errA)

	assert.ErrorIs(t, wrapped, errA)
	assert.NotErrorIs(t, wrapped, errB)
	assert.Equal(t, "not the lead", MessageOf(wrapped))
	assert.Equal(t, "FORBIDDEN", KindOf(wrapped).String())
}
