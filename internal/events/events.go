// Package events carries relationship side effects (new requests, new connections, new
// followers) out of the request path. Publishing happens after the database commit and never
// fails the operation that produced the event.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies what happened.
type Type string

const (
	ConnectionRequestSent Type = "connection_request.sent"
	ConnectionEstablished Type = "connection.established"
	FollowCreated         Type = "follow.created"
)

// RelationshipEvent is the wire format on the relationship events topic.
// TargetID is the user who should be told about it.
type RelationshipEvent struct {
	Type        Type      `json:"type"`
	ActorID     uint      `json:"actorId"`
	TargetID    uint      `json:"targetId"`
	ReferenceID uint      `json:"referenceId,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Key partitions events by the user being notified, so one user's events stay ordered.
func (e RelationshipEvent) Key() []byte {
	return []byte(fmt.Sprintf("%d", e.TargetID))
}

func (e RelationshipEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses a payload produced by Encode.
func Decode(payload []byte) (RelationshipEvent, error) {
	var e RelationshipEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return e, err
	}
	if e.Type == "" || e.TargetID == 0 {
		return e, fmt.Errorf("relationship event missing type or target: %s", string(payload))
	}
	return e, nil
}

// Publisher hands events to whatever transport is configured.
type Publisher interface {
	// Publish must not block the caller on the transport.
	Publish(ctx context.Context, events ...RelationshipEvent)
}

// NopPublisher drops every event. Used when Kafka is disabled or unreachable.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...RelationshipEvent) {}

// HandlerFunc consumes one event.
type HandlerFunc func(ctx context.Context, e RelationshipEvent) error

// LocalPublisher delivers events to an in-process handler on a background goroutine.
// It is used instead of Kafka when a single instance should still produce notifications.
type LocalPublisher struct {
	Handle  HandlerFunc
	Timeout time.Duration
	OnError func(e RelationshipEvent, err error)
}

func (p *LocalPublisher) Publish(_ context.Context, evs ...RelationshipEvent) {
	if len(evs) == 0 || p.Handle == nil {
		return
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		for _, e := range evs {
			if err := p.Handle(ctx, e); err != nil && p.OnError != nil {
				p.OnError(e, err)
			}
		}
	}()
}

// Recorder keeps published events in memory. Tests use it to observe side effects.
type Recorder struct {
	ch chan RelationshipEvent
}

func NewRecorder(size int) *Recorder {
	return &Recorder{ch: make(chan RelationshipEvent, size)}
}

func (r *Recorder) Publish(_ context.Context, evs ...RelationshipEvent) {
	for _, e := range evs {
		select {
		case r.ch <- e:
		default:
		}
	}
}

// Drain returns everything recorded so far.
func (r *Recorder) Drain() []RelationshipEvent {
	var out []RelationshipEvent
	for {
		select {
		case e := <-r.ch:
			out = append(out, e)
		default:
			return out
		}
	}
}
