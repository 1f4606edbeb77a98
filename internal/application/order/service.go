package order

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	domain "book_orders/internal/domain/order"
	"book_orders/internal/domain/repository"
	"book_orders/pkg/logger"
)

// BookFetcher looks a book up in the external catalog.
type BookFetcher interface {
	FetchBook(ctx context.Context, bookID string) (domain.BookSnapshot, error)
}

// EventPublisher announces orders that have been persisted.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o *domain.Order) error
}

type Service struct {
	repo      repository.OrderRepository
	books     BookFetcher
	publisher EventPublisher
	log       logger.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

// WithPublisher enables order-created events.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(repo repository.OrderRepository, books BookFetcher, log logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Service{
		repo:  repo,
		books: books,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrderCommand is the create request. A nil Quantity means the caller
// sent nothing numeric.
type CreateOrderCommand struct {
	BookID   string
	Quantity *float64
}

// CreateOrder validates cmd, checks the catalog and persists a PENDING order.
// Local validation always runs before the catalog is called.
func (s *Service) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	bookID, err := domain.ValidateBookID(cmd.BookID)
	if err != nil {
		return nil, err
	}
	quantity, err := validateQuantity(cmd.Quantity)
	if err != nil {
		return nil, err
	}

	book, err := s.books.FetchBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if book.Stock < quantity {
		return nil, domain.InsufficientStock(book.Stock, quantity)
	}

	o, err := domain.New(domain.NewParams{
		ID:         s.newID(),
		BookID:     bookID,
		Quantity:   quantity,
		TotalPrice: book.Price * float64(quantity),
		Currency:   book.Currency,
		CreatedAt:  s.now(),
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.Save(ctx, o)
	if err != nil {
		return nil, err
	}

	log := s.log.WithContext(ctx)
	log.Info("order created",
		logger.String("order_id", saved.ID()),
		logger.String("book_id", saved.BookID()),
		logger.Int("quantity", saved.Quantity()),
		logger.Float64("total_price", saved.TotalPrice()),
		logger.String("currency", saved.Currency()),
	)

	if s.publisher != nil {
		// The order is already stored; a lost event must not turn into a failed request.
		if err := s.publisher.PublishOrderCreated(ctx, saved); err != nil {
			log.Warn("publish order created event failed",
				logger.String("order_id", saved.ID()),
				logger.Error(err),
			)
		}
	}

	return saved, nil
}

// ListOrders returns every stored order, or OrdersNotFound when there are none.
func (s *Service) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.OrdersNotFound()
	}
	return orders, nil
}

func validateQuantity(q *float64) (int, error) {
	if q == nil || math.IsNaN(*q) || math.IsInf(*q, 0) {
		return 0, domain.InvalidOrderData("quantity", "Quantity must be a number")
	}
	v := *q
	if v <= 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, domain.InvalidQuantity(v)
	}
	return int(v), nil
}
