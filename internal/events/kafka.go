package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const eventTypeHeader = "event_type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return &KafkaPublisher{writer: w}
}

// Publish writes one message per event, keyed by recipient so a user's
// notifications stay ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", e.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.RecipientID.Hex()),
			Value: value,
			Headers: []kafka.Header{
				{Key: eventTypeHeader, Value: []byte(e.Type)},
			},
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

const (
	readBackoff    = time.Second
	maxReadBackoff = 30 * time.Second
)

// Consumer reads events from the topic and passes them to a handler.
type Consumer struct {
	reader  messageReader
	handler Handler
	log     *zap.Logger
	// backoff is the first wait after a failed read; it doubles up to
	// maxBackoff and resets once a read succeeds.
	backoff    time.Duration
	maxBackoff time.Duration
}

func NewConsumer(handler Handler, log *zap.Logger, topic, groupID string, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, handler: handler, log: log, backoff: readBackoff, maxBackoff: maxReadBackoff}
}

// Run consumes until ctx is done.
func (c *Consumer) Run(ctx context.Context) {
	wait := c.backoff
	for ctx.Err() == nil {
		if err := c.processMessage(ctx); err == nil {
			wait = c.backoff
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		wait = min(wait*2, c.maxBackoff)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Warn("error closing kafka reader", zap.Error(err))
	}
}

// processMessage reads and handles one message. It returns the read error
// when the broker could not be read, and nil otherwise.
func (c *Consumer) processMessage(ctx context.Context) error {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		c.log.Error("error reading message", zap.Error(err))
		return err
	}
	c.handleMessage(ctx, m)
	return nil
}

// handleMessage decodes and dispatches one message. Malformed messages are
// logged and dropped so they do not block the partition.
func (c *Consumer) handleMessage(ctx context.Context, m kafka.Message) {
	var event Event
	if err := json.Unmarshal(m.Value, &event); err != nil {
		c.log.Warn("error parsing message", zap.Error(err), zap.Int64("offset", m.Offset))
		return
	}
	if event.RecipientID.IsZero() || event.Type == "" {
		c.log.Warn("skipping event without recipient or type",
			zap.String("event_id", event.ID), zap.Int64("offset", m.Offset))
		return
	}

	if err := c.handler.HandleEvent(ctx, event); err != nil {
		c.log.Error("failed to handle event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}
