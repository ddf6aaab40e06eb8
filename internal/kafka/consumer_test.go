package kafka

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

// fakeClient serves queued messages; Seek puts the message at that offset back at the head
// of the queue, and an empty queue cancels the loop.
type fakeClient struct {
	queue   []*kafka.Message
	byOff   map[kafka.Offset]*kafka.Message
	commits []kafka.Offset
	seeks   []kafka.Offset
	cancel  context.CancelFunc
}

func newFakeClient(cancel context.CancelFunc, offsets ...kafka.Offset) *fakeClient {
	topic := "relationship-events"
	f := &fakeClient{byOff: map[kafka.Offset]*kafka.Message{}, cancel: cancel}
	for _, off := range offsets {
		m := &kafka.Message{TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 0, Offset: off}}
		f.queue = append(f.queue, m)
		f.byOff[off] = m
	}
	return f
}

func (f *fakeClient) Poll(int) kafka.Event {
	if len(f.queue) == 0 {
		f.cancel()
		return nil
	}
	m := f.queue[0]
	f.queue = f.queue[1:]
	return m
}

func (f *fakeClient) CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error) {
	f.commits = append(f.commits, m.TopicPartition.Offset)
	return []kafka.TopicPartition{m.TopicPartition}, nil
}

func (f *fakeClient) Seek(tp kafka.TopicPartition, _ int) error {
	f.seeks = append(f.seeks, tp.Offset)
	f.queue = append([]*kafka.Message{f.byOff[tp.Offset]}, f.queue...)
	return nil
}

func (f *fakeClient) Assign([]kafka.TopicPartition) error { return nil }
func (f *fakeClient) Unassign() error                     { return nil }

func TestPollLoopRedeliversFailedMessage(t *testing.T) {
	testCases := []struct {
		name        string
		failures    map[kafka.Offset]int
		wantHandled []kafka.Offset
		wantCommits []kafka.Offset
		wantSeeks   []kafka.Offset
	}{
		{
			name:        "all succeed",
			wantHandled: []kafka.Offset{5, 6},
			wantCommits: []kafka.Offset{5, 6},
		},
		{
			name:        "first fails once",
			failures:    map[kafka.Offset]int{5: 1},
			wantHandled: []kafka.Offset{5, 5, 6},
			wantCommits: []kafka.Offset{5, 6},
			wantSeeks:   []kafka.Offset{5},
		},
		{
			name:        "second fails twice",
			failures:    map[kafka.Offset]int{6: 2},
			wantHandled: []kafka.Offset{5, 6, 6, 6},
			wantCommits: []kafka.Offset{5, 6},
			wantSeeks:   []kafka.Offset{6, 6},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			client := newFakeClient(cancel, 5, 6)

			var handled []kafka.Offset
			handler := func(_ context.Context, m *kafka.Message) error {
				off := m.TopicPartition.Offset
				handled = append(handled, off)
				if tc.failures[off] > 0 {
					tc.failures[off]--
					return errors.New("store unavailable")
				}
				return nil
			}

			if err := pollLoop(ctx, client, handler, 0, zap.NewNop()); err != nil {
				t.Fatalf("pollLoop: %v", err)
			}
			if !reflect.DeepEqual(handled, tc.wantHandled) {
				t.Errorf("handled = %v, want %v", handled, tc.wantHandled)
			}
			if !reflect.DeepEqual(client.commits, tc.wantCommits) {
				t.Errorf("commits = %v, want %v", client.commits, tc.wantCommits)
			}
			if !reflect.DeepEqual(client.seeks, tc.wantSeeks) {
				t.Errorf("seeks = %v, want %v", client.seeks, tc.wantSeeks)
			}
		})
	}
}

func TestPollLoopDoesNotCommitAfterCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := newFakeClient(cancel, 5)

	handler := func(context.Context, *kafka.Message) error {
		cancel()
		return errors.New("store unavailable")
	}
	if err := pollLoop(ctx, client, handler, 0, zap.NewNop()); err != nil {
		t.Fatalf("pollLoop: %v", err)
	}
	if len(client.commits) != 0 || len(client.seeks) != 0 {
		t.Errorf("commits = %v seeks = %v, want none", client.commits, client.seeks)
	}
}
