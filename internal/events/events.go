package events

import (
	"context"
	"encoding/json"
	"time"

	"equipment-backend/internal/logging"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	OrderCreated = "order.created"
	OrderUpdated = "order.updated"
	OrderDeleted = "order.deleted"
)

// OrderEvent: commit sonrası yayınlanan sipariş olayı
type OrderEvent struct {
	Type       string         `json:"type"`
	OrderID    uuid.UUID      `json:"order_id"`
	ActorID    uuid.UUID      `json:"actor_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Materials  []MaterialLine `json:"materials,omitempty"`
}

type MaterialLine struct {
	EquipmentID uuid.UUID `json:"equipment_id"`
	Quantity    int       `json:"quantity"`
}

type Publisher interface {
	PublishOrder(ctx context.Context, ev OrderEvent) error
	Close() error
}

// Noop: Kafka tanımlı değilse kullanılır
type Noop struct{}

func (Noop) PublishOrder(context.Context, OrderEvent) error { return nil }
func (Noop) Close() error                                   { return nil }

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}}
}

// PublishOrder: aynı siparişin olayları aynı partition'a düşsün diye key order_id
func (p *KafkaPublisher) PublishOrder(ctx context.Context, ev OrderEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OrderID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// PublishSafe: yayın hatası isteği bozmaz, sadece loglanır
func PublishSafe(ctx context.Context, p Publisher, ev OrderEvent) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := p.PublishOrder(ctx, ev); err != nil {
		logging.LogError("events", "PublishSafe", ev.Type, ev.OrderID, err)
	}
}
