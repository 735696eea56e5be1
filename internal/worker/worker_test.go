package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIdlePoll(t *testing.T) {
	assert.True(t, isIdlePoll(context.DeadlineExceeded))
	assert.True(t, isIdlePoll(fmt.Errorf("fetching message: %w", context.DeadlineExceeded)),
		"a wrapped deadline must still count as an idle poll")

	assert.False(t, isIdlePoll(context.Canceled))
	assert.False(t, isIdlePoll(errors.New("broker unreachable")))
	assert.False(t, isIdlePoll(nil))
}
