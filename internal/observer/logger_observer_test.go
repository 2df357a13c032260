package observer

import (
	"context"
	"errors"
	"testing"

	"github.com/nyxwell/transmute/internal/logging"
	"github.com/nyxwell/transmute/pkg/transmute"
	"github.com/stretchr/testify/assert"
)

func TestLoggerObserverOnEventDoesNotErrorOnSuccess(t *testing.T) {
	obs := NewLoggerObserver(logging.NewNop())
	err := obs.OnEvent(context.Background(), transmute.Event{
		Type: transmute.EventTransmuteSucceeded, ExecutionID: "exec-1", SrcCat: "a", DstCat: "b",
	})
	assert.NoError(t, err)
}

func TestLoggerObserverOnEventDoesNotErrorOnFailure(t *testing.T) {
	obs := NewLoggerObserver(logging.NewNop())
	err := obs.OnEvent(context.Background(), transmute.Event{
		Type: transmute.EventEdgeFailed, ExecutionID: "exec-1", EdgeName: "AtoB", Attempt: 2,
		Err: errors.New("boom"),
	})
	assert.NoError(t, err)
}

func TestLoggerObserverOnEventNilLoggerIsNoop(t *testing.T) {
	obs := &LoggerObserver{}
	err := obs.OnEvent(context.Background(), transmute.Event{Type: transmute.EventPlanFound})
	assert.NoError(t, err)
}

func TestLoggerObserverNameAndFilter(t *testing.T) {
	filter := EventFilterFunc(func(e transmute.Event) bool { return true })
	obs := NewLoggerObserver(logging.NewNop(), WithLoggerObserverFilter(filter))
	assert.Equal(t, "logger", obs.Name())
	assert.NotNil(t, obs.Filter())
}
