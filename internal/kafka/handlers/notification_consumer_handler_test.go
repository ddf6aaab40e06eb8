package kafkahandlers

import (
	"context"
	"errors"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"edu-network/internal/events"
	"edu-network/internal/models"
)

type fakeNotifications struct {
	got []events.RelationshipEvent
	err error
}

func (f *fakeNotifications) HandleRelationshipEvent(_ context.Context, e events.RelationshipEvent) error {
	f.got = append(f.got, e)
	return f.err
}

func (f *fakeNotifications) List(context.Context, uint, bool) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeNotifications) MarkRead(context.Context, uint, uint) (*models.Notification, error) {
	return nil, nil
}

func TestHandleRelationshipEventMessage(t *testing.T) {
	valid, err := events.RelationshipEvent{Type: events.FollowCreated, ActorID: 1, TargetID: 2}.Encode()
	if err != nil {
		t.Fatal(err)
	}
	topic := "relationship-events"
	storeErr := errors.New("db down")

	testCases := []struct {
		name       string
		payload    []byte
		serviceErr error
		wantErr    error
		wantCalls  int
	}{
		{"valid", valid, nil, nil, 1},
		{"undecodable is skipped", []byte("{not json"), nil, nil, 0},
		{"missing target is skipped", []byte(`{"type":"follow.created"}`), nil, nil, 0},
		{"service failure is returned", valid, storeErr, storeErr, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeNotifications{err: tc.serviceErr}
			logic := NewNotificationConsumerLogic(fake)
			msg := &kafka.Message{
				TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 0},
				Key:            []byte("2"),
				Value:          tc.payload,
			}
			if err := logic.HandleRelationshipEvent(context.Background(), msg); !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if len(fake.got) != tc.wantCalls {
				t.Errorf("service calls = %d, want %d", len(fake.got), tc.wantCalls)
			}
		})
	}
}
