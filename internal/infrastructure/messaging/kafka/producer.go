package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"book_orders/internal/config"
	domain "book_orders/internal/domain/order"
	"book_orders/internal/infrastructure/encoding/avro"
	"book_orders/pkg/logger"
)

const eventTypeOrderCreated = "order.created"

// OrderEventProducer publishes Avro encoded order-created events.
type OrderEventProducer struct {
	client *kgo.Client
	topic  string
	codec  *avro.OrderEventCodec
	logger logger.Logger
	now    func() time.Time

	// mu lets in-flight publishes finish before Close tears the client down.
	mu     sync.RWMutex
	closed bool
}

func NewOrderEventProducer(cfg config.KafkaConfig, codec *avro.OrderEventCodec, log logger.Logger) (*OrderEventProducer, error) {
	log.Info("Connecting Kafka producer",
		logger.Any("brokers", cfg.Brokers),
		logger.String("topic", cfg.EventsTopic),
	)

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.EventsTopic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &OrderEventProducer{
		client: client,
		topic:  cfg.EventsTopic,
		codec:  codec,
		logger: log,
		now:    time.Now,
	}, nil
}

// PublishOrderCreated sends one event keyed by order id, so all events of an
// order land on the same partition.
func (p *OrderEventProducer) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	ev := domain.NewOrderCreated(o, uuid.NewString(), p.now())

	payload, err := p.codec.Encode(ev)
	if err != nil {
		return fmt.Errorf("encode order created event: %w", err)
	}

	return p.publish(ctx, []byte(ev.OrderID), payload, ev.OccurredAt)
}

func (p *OrderEventProducer) publish(ctx context.Context, key, payload []byte, at time.Time) error {
	if len(payload) == 0 {
		return fmt.Errorf("payload is empty")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed || p.client == nil {
		return fmt.Errorf("kafka producer is closed")
	}

	rec := &kgo.Record{
		Topic:     p.topic,
		Key:       key,
		Value:     payload,
		Timestamp: at,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(eventTypeOrderCreated)},
		},
	}

	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		p.logger.WithContext(ctx).Error("Failed to publish to Kafka",
			logger.String("topic", p.topic),
			logger.Int("payload_size", len(payload)),
			logger.Error(err),
		)
		return fmt.Errorf("publish to kafka topic %s: %w", p.topic, err)
	}

	p.logger.WithContext(ctx).Debug("Published order event",
		logger.String("topic", p.topic),
		logger.String("key", string(key)),
	)
	return nil
}

func (p *OrderEventProducer) Close(ctx context.Context) error {
	p.logger.Info("Closing Kafka producer", logger.String("topic", p.topic))

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.client == nil {
		return nil
	}

	err := p.client.Flush(ctx)
	p.client.Close()
	if err != nil {
		return fmt.Errorf("flush kafka producer: %w", err)
	}
	return nil
}
