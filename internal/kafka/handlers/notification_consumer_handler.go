package kafkahandlers

import (
	"context"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"edu-network/internal/events"
	"edu-network/internal/services"
)

// NotificationConsumerLogic feeds relationship events from Kafka into the NotificationService.
type NotificationConsumerLogic struct {
	notifications services.NotificationService
}

// NewNotificationConsumerLogic creates a new instance of NotificationConsumerLogic.
func NewNotificationConsumerLogic(ns services.NotificationService) *NotificationConsumerLogic {
	if ns == nil {
		zap.L().Panic("NotificationService cannot be nil")
	}
	return &NotificationConsumerLogic{notifications: ns}
}

// HandleRelationshipEvent is the MessageHandler passed to the Kafka consumer.
// Payloads that cannot be decoded are skipped so they do not block the partition.
func (h *NotificationConsumerLogic) HandleRelationshipEvent(ctx context.Context, msg *kafka.Message) error {
	fields := []zap.Field{zap.ByteString("key", msg.Key)}
	if msg.TopicPartition.Topic != nil {
		fields = append(fields,
			zap.String("topic", *msg.TopicPartition.Topic),
			zap.Int32("partition", msg.TopicPartition.Partition),
			zap.Any("offset", msg.TopicPartition.Offset))
	}

	event, err := events.Decode(msg.Value)
	if err != nil {
		zap.L().Warn("skipping undecodable relationship event", append(fields, zap.Error(err))...)
		return nil
	}

	if err := h.notifications.HandleRelationshipEvent(ctx, event); err != nil {
		zap.L().Error("failed to handle relationship event", append(fields, zap.Error(err))...)
		return err
	}
	return nil
}
