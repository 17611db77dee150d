package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends completion events to a RabbitMQ topic exchange. Without a
// URI it is disabled and every Emit is a no-op.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	enabled  bool
}

func NewPublisher(uri, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = "quiz.events"
	}
	if uri == "" {
		log.Println("RabbitMQ not configured, completion events will not be published")
		return &Publisher{exchange: exchange}, nil
	}

	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	log.Printf("event publisher ready on exchange %s", exchange)
	return &Publisher{conn: conn, channel: ch, exchange: exchange, enabled: true}, nil
}

func (p *Publisher) Enabled() bool { return p.enabled }

// RoutingKey maps an event type such as SubmissionRecorded to quiz.submission_recorded.
func RoutingKey(typ string) string {
	var b strings.Builder
	b.WriteString("quiz.")
	for i, r := range typ {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (p *Publisher) Emit(ctx context.Context, typ, key string, payload any) error {
	if !p.enabled {
		return nil
	}
	body, err := json.Marshal(map[string]any{
		"type":    typ,
		"key":     key,
		"payload": payload,
	})
	if err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx, p.exchange, RoutingKey(typ), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
