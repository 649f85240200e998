package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/model"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/platform/rabbitmq"
)

type ExchangeWriter interface {
	Create(exchange *model.Exchange) error
}

// ExchangePersistWorker drains the exchange queue into the audit table.
type ExchangePersistWorker struct {
	conn      *amqp.Connection
	repo      ExchangeWriter
	queueName string
	log       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewExchangePersistWorker(conn *amqp.Connection, repo ExchangeWriter, queueName string, log *zap.Logger) *ExchangePersistWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExchangePersistWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		log:       log.Named("exchange_worker"),
	}
}

func (w *ExchangePersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(d.Body); err != nil {
					w.log.Error("persist exchange failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.log.Info("worker started", zap.String("queue", w.queueName))
	return nil
}

func (w *ExchangePersistWorker) handle(body []byte) error {
	var exchange model.Exchange
	if err := json.Unmarshal(body, &exchange); err != nil {
		return fmt.Errorf("decode exchange failed: %w", err)
	}
	// IDs are assigned by the table, never by the publisher.
	exchange.ID = 0
	return w.repo.Create(&exchange)
}

func (w *ExchangePersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
