package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"edu-network/internal/events"
	"edu-network/internal/metrics"
)

// relationshipPublisher sends relationship events to Kafka on a background goroutine.
type relationshipPublisher struct {
	producer MessageProducer
	topic    string
	timeout  time.Duration
}

// NewRelationshipPublisher returns an events.Publisher backed by producer. Each Publish call
// returns immediately; delivery failures are logged and counted, never returned.
func NewRelationshipPublisher(producer MessageProducer, topic string, timeout time.Duration) events.Publisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &relationshipPublisher{producer: producer, topic: topic, timeout: timeout}
}

func (p *relationshipPublisher) Publish(_ context.Context, evs ...events.RelationshipEvent) {
	if len(evs) == 0 {
		return
	}
	// Detached from the request context, which is canceled as soon as the response is written.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		for _, e := range evs {
			p.send(ctx, e)
		}
	}()
}

func (p *relationshipPublisher) send(ctx context.Context, e events.RelationshipEvent) {
	payload, err := e.Encode()
	if err != nil {
		zap.L().Error("failed to encode relationship event", zap.String("type", string(e.Type)), zap.Error(err))
		metrics.EventsPublished.WithLabelValues(string(e.Type), "error").Inc()
		return
	}
	if err := p.producer.SendMessage(ctx, p.topic, e.Key(), payload); err != nil {
		zap.L().Warn("failed to publish relationship event",
			zap.String("topic", p.topic),
			zap.String("type", string(e.Type)),
			zap.Uint("actor", e.ActorID),
			zap.Uint("target", e.TargetID),
			zap.Error(err))
		metrics.EventsPublished.WithLabelValues(string(e.Type), "error").Inc()
		return
	}
	metrics.EventsPublished.WithLabelValues(string(e.Type), "ok").Inc()
}
