package orderevents

import (
	"context"
	"sync"

	domain "book_orders/internal/domain/order"
	"book_orders/pkg/logger"
)

// Stats is a snapshot of what the service has seen so far.
type Stats struct {
	Accepted int
	Rejected int
	// Revenue sums total prices per currency.
	Revenue map[string]float64
}

// Service audits order-created events read back from the event stream.
type Service struct {
	log logger.Logger

	mu       sync.Mutex
	accepted int
	rejected int
	revenue  map[string]float64
	seen     map[string]struct{}
}

func NewService(log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		log:     log,
		revenue: make(map[string]float64),
		seen:    make(map[string]struct{}),
	}
}

// HandleOrderCreated validates and records one event. Redelivered events
// (same event id) are acknowledged without being counted twice.
func (s *Service) HandleOrderCreated(ctx context.Context, ev domain.OrderCreated) error {
	log := s.log.WithContext(ctx).WithFields(
		logger.String("event_id", ev.EventID),
		logger.String("order_id", ev.OrderID),
	)

	if err := ev.Validate(); err != nil {
		s.mu.Lock()
		s.rejected++
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if _, dup := s.seen[ev.EventID]; dup {
		s.mu.Unlock()
		log.Debug("duplicate order event ignored")
		return nil
	}
	s.seen[ev.EventID] = struct{}{}
	s.accepted++
	s.revenue[ev.Currency] += ev.TotalPrice
	s.mu.Unlock()

	log.Info("order created event",
		logger.String("book_id", ev.BookID),
		logger.Int("quantity", ev.Quantity),
		logger.Float64("total_price", ev.TotalPrice),
		logger.String("currency", ev.Currency),
		logger.Duration("lag", ev.OccurredAt.Sub(ev.CreatedAt)),
	)
	return nil
}

func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	revenue := make(map[string]float64, len(s.revenue))
	for k, v := range s.revenue {
		revenue[k] = v
	}
	return Stats{Accepted: s.accepted, Rejected: s.rejected, Revenue: revenue}
}
