package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"

	kafkago "github.com/segmentio/kafka-go"

	"book_orders/internal/config"
	domain "book_orders/internal/domain/order"
	"book_orders/internal/infrastructure/encoding/avro"
	"book_orders/pkg/logger"
)

// OrderEventHandler receives decoded order-created events.
type OrderEventHandler interface {
	HandleOrderCreated(ctx context.Context, ev domain.OrderCreated) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

type OrderEventConsumer struct {
	reader  messageReader
	codec   *avro.OrderEventCodec
	handler OrderEventHandler
	logger  logger.Logger
}

func NewOrderEventConsumer(cfg config.KafkaConfig, codec *avro.OrderEventCodec, handler OrderEventHandler, log logger.Logger) *OrderEventConsumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.ConsumerGroup,
		Topic:    cfg.EventsTopic,
		MinBytes: 1e3,
		MaxBytes: 1e6,
	})

	return &OrderEventConsumer{
		reader:  reader,
		codec:   codec,
		handler: handler,
		logger:  log,
	}
}

// Start reads until ctx is cancelled or the reader fails. Undecodable or
// rejected events are logged and skipped. Any other handler error stops the loop.
func (c *OrderEventConsumer) Start(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		if err := c.handleMessage(ctx, msg); err != nil {
			return err
		}
	}
}

func (c *OrderEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ev, err := c.codec.Decode(msg.Value)
	if err != nil {
		c.logger.WithContext(ctx).Error("Skipping undecodable message",
			logger.String("topic", msg.Topic),
			logger.Int("partition", msg.Partition),
			logger.Int64("offset", msg.Offset),
			logger.Error(err),
		)
		return nil
	}

	if err := c.handler.HandleOrderCreated(ctx, ev); err != nil {
		if domainErr, ok := domain.AsError(err); ok {
			c.logger.WithContext(ctx).Warn("Rejected order event",
				logger.String("order_id", ev.OrderID),
				logger.String("code", domainErr.Code()),
				logger.Int64("offset", msg.Offset),
			)
			return nil
		}
		return fmt.Errorf("handle order %s: %w", ev.OrderID, err)
	}
	return nil
}

func (c *OrderEventConsumer) Close() error {
	return c.reader.Close()
}
