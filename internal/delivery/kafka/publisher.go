package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"dough-store/internal/notify"
)

// Publisher hands order notices to the mail worker through a topic.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &Publisher{writer: w}
}

// Notify implements notify.Notifier.
func (p *Publisher) Notify(ctx context.Context, n notify.OrderNotice) error {
	msg, err := encodeNotice(n)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for order %d: %w", n.Kind, n.OrderID, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func encodeNotice(n notify.OrderNotice) (kafka.Message, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal notice: %w", err)
	}
	return kafka.Message{
		// same order, same partition
		Key:     []byte(fmt.Sprintf("order-%d", n.OrderID)),
		Value:   payload,
		Headers: []kafka.Header{{Key: "x-notice-kind", Value: []byte(n.Kind)}},
	}, nil
}
