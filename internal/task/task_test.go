package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRequestDefaults(t *testing.T) {
	req := NewRequest("find the capital of France")

	assert.NotEmpty(t, req.RequestID)
	assert.Equal(t, "find the capital of France", req.Description)
	assert.Equal(t, PriorityMedium, req.Priority)
	assert.False(t, req.CreatedAt.IsZero())
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusCompleted))
	assert.True(t, IsTerminal(StatusFailed))
	assert.True(t, IsTerminal(StatusCancelled))

	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusPlanning))
	assert.False(t, IsTerminal(StatusExecuting))
}

func TestCalculateDuration(t *testing.T) {
	r := NewResult("req-1")
	assert.Zero(t, r.CalculateDuration())

	start := time.Now()
	end := start.Add(1500 * time.Millisecond)
	r.StartedAt = &start
	assert.Zero(t, r.CalculateDuration())

	r.CompletedAt = &end
	assert.InDelta(t, 1.5, r.CalculateDuration(), 0.001)
}
