// Package queue contains the background consumer that listens to the
// rental.events queue and appends one line per event to a log file.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ConsumerConfig tells the consumer where to connect and where to write.
type ConsumerConfig struct {
	URL     string
	LogDir  string // defaults to "logs"
	LogFile string // defaults to "rentals.log"
}

func (c ConsumerConfig) path() string {
	dir, file := c.LogDir, c.LogFile
	if dir == "" {
		dir = "logs"
	}
	if file == "" {
		file = "rentals.log"
	}
	return filepath.Join(dir, file)
}

// StartRentalConsumer connects to RabbitMQ, declares the rental.events
// queue (durable), and consumes messages until ctx is cancelled.  Broker
// failures are retried with exponential backoff capped at 30s.  A message
// that cannot be decoded or written is rejected without requeue so the
// loop keeps going.
func StartRentalConsumer(ctx context.Context, cfg ConsumerConfig, log *zap.Logger) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(cfg.URL)
		if err != nil {
			log.Warn("rental-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, cfg, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("rental-consumer: consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, cfg ConsumerConfig, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("rental-consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(RentalQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(RentalQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(cfg.path(), d.Body); err != nil {
				log.Error("rental-consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one RentalEvent and appends it to the file at
// path, creating parent directories as needed.
func HandleMessage(path string, body []byte) error {
	var ev RentalEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.RentalID == 0 {
		return errors.New("event missing type or rental_id")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatEvent(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatEvent renders ev as a single newline-terminated log line.
func FormatEvent(ev RentalEvent) string {
	return fmt.Sprintf("[%s] %s | rental_id=%d | movie_id=%d | customer=%q | movie=%q | fee=%s | status=%s | event_id=%s\n",
		ev.OccurredAt, ev.Type, ev.RentalID, ev.MovieID, ev.CustomerName, ev.MovieTitle,
		ev.RentalFee.StringFixed(2), ev.Status, ev.EventID)
}
