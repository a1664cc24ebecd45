package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsContextDone(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		canceled bool
		done     bool
	}{
		{"nil error", nil, false, false},
		{"direct canceled", context.Canceled, true, true},
		{"wrapped canceled", fmt.Errorf("get object: %w", context.Canceled), true, true},
		{"string canceled", errors.New("read tcp: context canceled"), true, true},
		{"deadline", context.DeadlineExceeded, false, true},
		{"other", errors.New("no such key"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.canceled, IsContextCanceled(tt.err))
			assert.Equal(t, tt.done, IsContextDone(tt.err))
		})
	}
}
