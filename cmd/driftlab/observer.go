package main

import (
	"github.com/zeusync/driftlab/internal/core/events/bus"
	"github.com/zeusync/driftlab/internal/core/observability/log"
)

var _ bus.EventBusObserver = (*busLogger)(nil)

// busLogger reports failed and unheard deliveries on the world bus.
type busLogger struct {
	logger log.Log
}

func (o *busLogger) OnPublish(string, string, bus.Event) {}

func (o *busLogger) OnDelivered(topic, eventType string, handlers int, err error, durationMicros int64) {
	switch {
	case err != nil:
		o.logger.Warn("event delivery failed",
			log.String("topic", topic),
			log.String("type", eventType),
			log.Int("handlers", handlers),
			log.Error(err),
		)
	case handlers == 0:
		o.logger.Debug("event had no subscribers", log.String("topic", topic), log.String("type", eventType))
	default:
		o.logger.Debug("event delivered",
			log.String("type", eventType),
			log.Int("handlers", handlers),
			log.Int64("micros", durationMicros),
		)
	}
}

func metricFields(m bus.EventBusMetrics) []log.Field {
	return []log.Field{
		log.Uint64("events_published", m.Published),
		log.Uint64("handler_calls", m.DeliveredHandlers),
		log.Uint64("delivery_errors", m.Errors),
	}
}
