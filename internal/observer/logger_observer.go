package observer

import (
	"context"

	"github.com/nyxwell/transmute/internal/logging"
	"github.com/nyxwell/transmute/pkg/transmute"
)

// LoggerObserver writes every event it receives to a structured logger.
type LoggerObserver struct {
	name   string
	logger *logging.Logger
	filter EventFilter
}

// LoggerObserverOption configures a LoggerObserver.
type LoggerObserverOption func(*LoggerObserver)

// WithLoggerObserverFilter restricts which events reach the log.
func WithLoggerObserverFilter(filter EventFilter) LoggerObserverOption {
	return func(o *LoggerObserver) { o.filter = filter }
}

// NewLoggerObserver builds a LoggerObserver writing through l.
func NewLoggerObserver(l *logging.Logger, opts ...LoggerObserverOption) *LoggerObserver {
	obs := &LoggerObserver{name: "logger", logger: l}
	for _, opt := range opts {
		opt(obs)
	}
	return obs
}

func (o *LoggerObserver) Name() string       { return "logger" }
func (o *LoggerObserver) Filter() EventFilter { return o.filter }

func (o *LoggerObserver) OnEvent(ctx context.Context, event transmute.Event) error {
	if o.logger == nil {
		return nil
	}

	fields := []any{
		"event_type", string(event.Type),
		"execution_id", event.ExecutionID,
		"src_cat", event.SrcCat,
		"dst_cat", event.DstCat,
	}
	if event.EdgeName != "" {
		fields = append(fields, "edge", event.EdgeName, "attempt", event.Attempt)
	}
	if event.Err != nil {
		fields = append(fields, "error", event.Err.Error())
		o.logger.WarnContext(ctx, "transmute event", fields...)
		return nil
	}
	o.logger.InfoContext(ctx, "transmute event", fields...)
	return nil
}
