package launcher

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"climatestudio/internal/models"
)

func TestEventLogBounded(t *testing.T) {
	l := NewEventLog(3)
	for i := 0; i < 5; i++ {
		l.Add(models.Event{Message: fmt.Sprintf("event %d", i)})
	}

	got := l.Last(10)
	assert.Len(t, got, 3)
	assert.Equal(t, "event 2", got[0].Message)
	assert.Equal(t, "event 4", got[2].Message)
}

func TestEventLogLast(t *testing.T) {
	l := NewEventLog(10)
	for i := 0; i < 4; i++ {
		l.Add(models.Event{Message: fmt.Sprintf("event %d", i)})
	}

	assert.Empty(t, l.Last(0))
	assert.Empty(t, l.Last(-1))

	got := l.Last(2)
	assert.Len(t, got, 2)
	assert.Equal(t, "event 2", got[0].Message)
	assert.Equal(t, "event 3", got[1].Message)
}

func TestEventLogEmpty(t *testing.T) {
	l := NewEventLog(10)
	assert.Empty(t, l.Last(5))
}
