package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/model"
)

// ExchangePublisher pushes completed question/answer rounds onto a durable
// queue for the persist worker.
type ExchangePublisher struct {
	conn      *amqp.Connection
	queueName string

	mu sync.Mutex
	ch *amqp.Channel
}

func NewExchangePublisher(conn *amqp.Connection, queueName string) *ExchangePublisher {
	return &ExchangePublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ExchangePublisher) Publish(ctx context.Context, exchange model.Exchange) error {
	payload, err := json.Marshal(exchange)
	if err != nil {
		return fmt.Errorf("marshal exchange payload failed: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		// Drop the channel so the next publish reopens it.
		_ = ch.Close()
		p.ch = nil
		return fmt.Errorf("publish exchange failed: %w", err)
	}
	return nil
}

func (p *ExchangePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	return err
}

// channel must be called with p.mu held.
func (p *ExchangePublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	if _, err := DeclareQueue(ch, p.queueName); err != nil {
		_ = ch.Close()
		return nil, err
	}
	p.ch = ch
	return ch, nil
}
