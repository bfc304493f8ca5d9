package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"dough-store/internal/notify"
)

var ErrDecode = errors.New("decode notice")

type Config struct {
	Brokers     []string
	GroupID     string
	Topic       string
	DLQ         string
	MaxRetries  int
	BaseBackoff time.Duration
}

// Consumer reads order notices and delivers them, parking messages that keep
// failing on the dead letter topic.
type Consumer struct {
	reader  *kafka.Reader
	dlq     *kafka.Writer
	handler notify.Notifier
	cfg     Config
}

func NewConsumer(cfg Config, handler notify.Notifier) *Consumer {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 200 * time.Millisecond
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          cfg.Topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        100 * time.Millisecond,
		CommitInterval: 0,
	})

	c := &Consumer{reader: r, handler: handler, cfg: cfg}
	if cfg.DLQ != "" {
		c.dlq = &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.DLQ,
			RequiredAcks:           kafka.RequireAll,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		}
	}
	return c
}

func (c *Consumer) Subscribe(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			logrus.WithError(err).Warn("kafka fetch error")
			select {
			case <-time.After(300 * time.Millisecond):
				continue
			case <-ctx.Done():
				return nil
			}
		}

		log := logrus.WithFields(logrus.Fields{
			"topic":     m.Topic,
			"partition": m.Partition,
			"offset":    m.Offset,
			"key":       string(m.Key),
		})
		log.Debug("notice fetched")

		attempts, last := c.deliver(ctx, m.Value)
		if last == nil {
			if err := c.reader.CommitMessages(ctx, m); err != nil {
				log.WithError(err).Error("commit failed")
			}
			continue
		}
		if ctx.Err() != nil {
			return nil
		}

		if !c.park(ctx, log, m, attempts, last) {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.WithError(err).Error("commit after DLQ failed")
		}
	}
}

// park moves a failed notice to the dead letter topic, or drops it when none
// is configured. It reports false when the message should stay uncommitted.
func (c *Consumer) park(ctx context.Context, log *logrus.Entry, m kafka.Message, attempts int, cause error) bool {
	if c.dlq == nil {
		log.WithError(cause).Warn("DLQ disabled, drop notice")
		return true
	}
	if err := c.dlq.WriteMessages(ctx, dlqMessage(m, cause, attempts, c.cfg)); err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Error("write to DLQ failed")
			time.Sleep(500 * time.Millisecond)
		}
		return false
	}
	log.WithError(cause).WithField("attempts", attempts).Warn("notice parked on DLQ")
	return true
}

// deliver decodes one message and hands it to the handler, retrying
// transient failures with exponential backoff. It reports the attempts made.
func (c *Consumer) deliver(ctx context.Context, value []byte) (int, error) {
	var n notify.OrderNotice
	if err := json.Unmarshal(value, &n); err != nil {
		return 1, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	attempts := 0
	op := func() error {
		attempts++
		err := c.handler.Notify(ctx, n)
		if err != nil && isNonRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	err := backoff.Retry(op, backoff.WithContext(c.newBackOff(), ctx))
	return attempts, err
}

func (c *Consumer) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.BaseBackoff
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(c.cfg.MaxRetries))
}

func dlqMessage(m kafka.Message, cause error, attempts int, cfg Config) kafka.Message {
	headers := make([]kafka.Header, 0, len(m.Headers)+5)
	headers = append(headers, m.Headers...)
	headers = append(headers,
		kafka.Header{Key: "x-dlq-reason", Value: []byte(trimErr(cause))},
		kafka.Header{Key: "x-dlq-attempts", Value: []byte(strconv.Itoa(attempts))},
		kafka.Header{Key: "x-dlq-ts", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		kafka.Header{Key: "x-dlq-source-topic", Value: []byte(cfg.Topic)},
		kafka.Header{Key: "x-dlq-group", Value: []byte(cfg.GroupID)},
	)
	return kafka.Message{Key: m.Key, Value: m.Value, Headers: headers}
}

func (c *Consumer) Close() error {
	var first error
	if c.reader != nil {
		if err := c.reader.Close(); err != nil {
			first = err
		}
	}
	if c.dlq != nil {
		if err := c.dlq.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func trimErr(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	if len(s) > 1000 {
		return s[:1000]
	}
	return s
}

func isNonRetryable(err error) bool {
	return errors.Is(err, ErrDecode) || errors.Is(err, notify.ErrNotConfigured)
}
