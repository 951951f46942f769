package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	UserRegistered    = "user.registered"
	UserSuspended     = "user.suspended"
	UserReactivated   = "user.reactivated"
	CategoryDeleted   = "category.deleted"
	JobOfferStatusSet = "job_offer.status_changed"
)

type Event struct {
	ID   string                 `json:"id"`
	Type string                 `json:"type"`
	At   time.Time              `json:"at"`
	Data map[string]interface{} `json:"data"`
}

// Publisher emits marketplace lifecycle events. A nil Publisher (or one built
// without brokers) is a no-op, and publish failures never fail the request
// that triggered them.
type Publisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewPublisher(brokers []string, topic string, log *zap.Logger) *Publisher {
	if len(brokers) == 0 {
		return &Publisher{log: log}
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &Publisher{writer: w, log: log}
}

func (p *Publisher) Publish(ctx context.Context, eventType, key string, data map[string]interface{}) {
	if p == nil || p.writer == nil {
		return
	}
	ev := Event{
		ID:   uuid.NewString(),
		Type: eventType,
		At:   time.Now().UTC(),
		Data: data,
	}
	b, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("marshal event", zap.String("type", eventType), zap.Error(err))
		return
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: b,
		Time:  ev.At,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("publish event", zap.String("type", eventType), zap.Error(err))
	}
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
