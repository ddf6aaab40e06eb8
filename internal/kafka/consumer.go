package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"

	"edu-network/internal/config"
)

// MessageHandler processes one consumed message. Returning nil commits its offset; returning
// an error seeks the partition back to the message so the next poll delivers it again.
type MessageHandler func(ctx context.Context, msg *kafka.Message) error

// defaultRetryBackoff is the pause before a failed message is polled again.
const defaultRetryBackoff = time.Second

// pollingClient is the part of *kafka.Consumer the poll loop drives.
type pollingClient interface {
	Poll(timeoutMs int) kafka.Event
	CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
	Seek(partition kafka.TopicPartition, ignoredTimeoutMs int) error
	Assign(partitions []kafka.TopicPartition) error
	Unassign() error
}

// MessageConsumer defines the interface for a Kafka message consumer.
type MessageConsumer interface {
	Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error
	Close()
}

// confluentKafkaConsumer is an implementation of MessageConsumer using confluent-kafka-go.
type confluentKafkaConsumer struct {
	consumer     *kafka.Consumer
	cfg          config.KafkaConfig
	groupID      string
	retryBackoff time.Duration
}

// NewConfluentKafkaConsumer creates a consumer; the underlying client is created by Consume
// once the group id is known.
func NewConfluentKafkaConsumer(cfg config.KafkaConfig) (MessageConsumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka consumer: no brokers configured")
	}
	return &confluentKafkaConsumer{cfg: cfg, retryBackoff: defaultRetryBackoff}, nil
}

// Consume starts consuming messages from the specified topics and group.
// This method will block until the context is canceled or a fatal error occurs.
func (c *confluentKafkaConsumer) Consume(ctx context.Context, topics []string, groupID string, handler MessageHandler) error {
	if len(topics) == 0 {
		return fmt.Errorf("kafka consumer: no topics specified")
	}
	c.groupID = groupID

	configMap := &kafka.ConfigMap{
		"bootstrap.servers":  strings.Join(c.cfg.Brokers, ","),
		"group.id":           c.groupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": "false", // committed manually after the handler succeeds
		"security.protocol":  c.cfg.Protocol,
	}
	if c.cfg.ClientID != "" {
		_ = configMap.SetKey("client.id", c.cfg.ClientID)
	}

	consumer, err := kafka.NewConsumer(configMap)
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer for group %s: %w", groupID, err)
	}
	c.consumer = consumer

	if err := c.consumer.SubscribeTopics(topics, nil); err != nil {
		_ = c.consumer.Close()
		c.consumer = nil
		return fmt.Errorf("failed to subscribe to topics %v for group %s: %w", topics, groupID, err)
	}

	log := zap.L().With(zap.String("group", groupID))
	log.Info("Kafka consumer started", zap.Strings("topics", topics))
	return pollLoop(ctx, c.consumer, handler, c.retryBackoff, log)
}

// pollLoop polls until ctx is canceled or the client reports a fatal error. A message is
// committed only after handler succeeds, so a failed offset is never committed past.
func pollLoop(ctx context.Context, client pollingClient, handler MessageHandler, backoff time.Duration, log *zap.Logger) error {
	for {
		select {
		case <-ctx.Done():
			log.Info("Context canceled for consumer group, shutting down")
			return nil
		default:
		}

		ev := client.Poll(1000)
		if ev == nil {
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			fields := []zap.Field{zap.String("topic", *e.TopicPartition.Topic), zap.Any("offset", e.TopicPartition.Offset)}
			if err := handler(ctx, e); err != nil {
				log.Error("Error processing Kafka message, will retry", append(fields, zap.Error(err))...)
				if !sleepCtx(ctx, backoff) {
					continue
				}
				// 回退到失败的 offset，下一次 Poll 重新投递该消息
				if err := client.Seek(e.TopicPartition, 0); err != nil {
					log.Error("Failed to seek back to failed message", append(fields, zap.Error(err))...)
				}
				continue
			}
			if _, err := client.CommitMessage(e); err != nil {
				log.Error("Failed to commit offset", append(fields, zap.Error(err))...)
			}
		case kafka.Error:
			log.Warn("Kafka consumer error", zap.Error(e), zap.Bool("fatal", e.IsFatal()), zap.Bool("retriable", e.IsRetriable()))
			if e.IsFatal() {
				return e
			}
		case kafka.AssignedPartitions:
			log.Info("Partitions assigned", zap.Any("partitions", e.Partitions))
			_ = client.Assign(e.Partitions)
		case kafka.RevokedPartitions:
			log.Info("Partitions revoked", zap.Any("partitions", e.Partitions))
			_ = client.Unassign()
		}
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Close closes the Kafka consumer.
func (c *confluentKafkaConsumer) Close() {
	if c.consumer == nil {
		return
	}
	if err := c.consumer.Close(); err != nil {
		zap.L().Error("Error closing Kafka consumer", zap.String("group", c.groupID), zap.Error(err))
	} else {
		zap.L().Info("Kafka consumer closed", zap.String("group", c.groupID))
	}
	c.consumer = nil
}
