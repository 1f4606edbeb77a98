package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "book_orders/internal/domain/order"
)

// MockOrderRepository is a mock of repository.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Save(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	args := m.Called(ctx, o)
	switch v := args.Get(0).(type) {
	case nil:
		return nil, args.Error(1)
	case func(context.Context, *domain.Order) *domain.Order:
		return v(ctx, o), args.Error(1)
	default:
		return v.(*domain.Order), args.Error(1)
	}
}

func (m *MockOrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

// MockBookFetcher is a mock of BookFetcher.
type MockBookFetcher struct {
	mock.Mock
}

func (m *MockBookFetcher) FetchBook(ctx context.Context, bookID string) (domain.BookSnapshot, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(domain.BookSnapshot), args.Error(1)
}

// MockEventPublisher is a mock of EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

const (
	bookID  = "11111111-1111-1111-1111-111111111111"
	orderID = "9b2e4c1a-7d3f-4e8b-a1c2-3d4e5f6a7b8c"
)

var fixedNow = time.Date(2025, 5, 4, 12, 0, 0, 0, time.UTC)

func qty(v float64) *float64 { return &v }

func newTestService(repo *MockOrderRepository, books *MockBookFetcher, opts ...Option) *Service {
	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return orderID }),
	}, opts...)
	return NewService(repo, books, nil, opts...)
}

func TestService_CreateOrder_Success(t *testing.T) {
	// Arrange
	repo := new(MockOrderRepository)
	books := new(MockBookFetcher)
	service := newTestService(repo, books)
	ctx := context.Background()

	books.On("FetchBook", ctx, bookID).
		Return(domain.BookSnapshot{ID: bookID, Price: 10, Stock: 5, Currency: "USD"}, nil).Once()

	var saved *domain.Order
	repo.On("Save", ctx, mock.AnythingOfType("*order.Order")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Order) }).
		Return(func(_ context.Context, o *domain.Order) *domain.Order { return o }, nil).Once()

	// Act
	got, err := service.CreateOrder(ctx, CreateOrderCommand{BookID: bookID, Quantity: qty(2)})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Same(t, saved, got)
	assert.Equal(t, orderID, got.ID())
	assert.Equal(t, bookID, got.BookID())
	assert.Equal(t, 2, got.Quantity())
	assert.Equal(t, float64(20), got.TotalPrice())
	assert.Equal(t, "USD", got.Currency())
	assert.Equal(t, domain.StatusPending, got.Status())
	assert.Equal(t, fixedNow, got.CreatedAt())
	repo.AssertExpectations(t)
	books.AssertExpectations(t)
}

func TestService_CreateOrder_TrimsBookID(t *testing.T) {
	repo := new(MockOrderRepository)
	books := new(MockBookFetcher)
	service := newTestService(repo, books)
	ctx := context.Background()

	books.On("FetchBook", ctx, bookID).
		Return(domain.BookSnapshot{Price: 3.5, Stock: 10, Currency: "EUR"}, nil)
	repo.On("Save", ctx, mock.Anything).
		Return(func(_ context.Context, o *domain.Order) *domain.Order { return o }, nil)

	got, err := service.CreateOrder(ctx, CreateOrderCommand{BookID: "  " + bookID + " ", Quantity: qty(4)})

	require.NoError(t, err)
	assert.Equal(t, bookID, got.BookID())
	assert.Equal(t, float64(14), got.TotalPrice())
}

func TestService_CreateOrder_ReturnsRepositoryMaterialization(t *testing.T) {
	repo := new(MockOrderRepository)
	books := new(MockBookFetcher)
	service := newTestService(repo, books)
	ctx := context.Background()

	stored, err := domain.Restore(domain.RestoreParams{
		ID: orderID, BookID: bookID, Quantity: 1, TotalPrice: 9.99,
		Status: domain.StatusPending, Currency: "USD", CreatedAt: fixedNow,
	})
	require.NoError(t, err)

	books.On("FetchBook", ctx, bookID).Return(domain.BookSnapshot{Price: 9.99, Stock: 1, Currency: "USD"}, nil)
	repo.On("Save", ctx, mock.Anything).Return(stored, nil)

	got, err := service.CreateOrder(ctx, CreateOrderCommand{BookID: bookID, Quantity: qty(1)})

	require.NoError(t, err)
	assert.Same(t, stored, got)
}

func TestService_CreateOrder_InvalidLocalInputSkipsCatalog(t *testing.T) {
	tests := []struct {
		name     string
		bookID   string
		quantity *float64
		want     error
	}{
		{name: "malformed book id", bookID: "not-a-uuid", quantity: qty(1), want: domain.ErrInvalidBookData},
		{name: "empty book id", bookID: "", quantity: qty(1), want: domain.ErrInvalidBookData},
		{name: "malformed id wins over bad quantity", bookID: "nope", quantity: nil, want: domain.ErrInvalidBookData},
		{name: "missing quantity", bookID: bookID, quantity: nil, want: domain.ErrInvalidOrderData},
		{name: "zero quantity", bookID: bookID, quantity: qty(0), want: domain.ErrInvalidQuantity},
		{name: "negative quantity", bookID: bookID, quantity: qty(-4), want: domain.ErrInvalidQuantity},
		{name: "fractional quantity", bookID: bookID, quantity: qty(1.5), want: domain.ErrInvalidQuantity},
		{name: "huge quantity", bookID: bookID, quantity: qty(1e12), want: domain.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			repo := new(MockOrderRepository)
			books := new(MockBookFetcher)
			service := newTestService(repo, books)

			// Act
			got, err := service.CreateOrder(context.Background(), CreateOrderCommand{BookID: tt.bookID, Quantity: tt.quantity})

			// Assert
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.want)
			books.AssertNotCalled(t, "FetchBook", mock.Anything, mock.Anything)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestService_CreateOrder_InvalidBookIDReportsField(t *testing.T) {
	service := newTestService(new(MockOrderRepository), new(MockBookFetcher))

	_, err := service.CreateOrder(context.Background(), CreateOrderCommand{BookID: "not-a-uuid", Quantity: qty(1)})

	domainErr, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "id", domainErr.Field)
}

func TestService_CreateOrder_InvalidQuantityCarriesValue(t *testing.T) {
	service := newTestService(new(MockOrderRepository), new(MockBookFetcher))

	_, err := service.CreateOrder(context.Background(), CreateOrderCommand{BookID: bookID, Quantity: qty(-2)})

	domainErr, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, float64(-2), domainErr.Quantity)
}

func TestService_CreateOrder_InsufficientStock(t *testing.T) {
	// Arrange
	repo := new(MockOrderRepository)
	books := new(MockBookFetcher)
	service := newTestService(repo, books)
	ctx := context.Background()

	books.On("FetchBook", ctx, bookID).
		Return(domain.BookSnapshot{Price: 10, Stock: 1, Currency: "USD"}, nil)

	// Act
	got, err := service.CreateOrder(ctx, CreateOrderCommand{BookID: bookID, Quantity: qty(2)})

	// Assert
	assert.Nil(t, got)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	domainErr, _ := domain.AsError(err)
	assert.Equal(t, 1, domainErr.Available)
	assert.Equal(t, 2, domainErr.Requested)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_CreateOrder_ExactStockSucceeds(t *testing.T) {
	repo := new(MockOrderRepository)
	books := new(MockBookFetcher)
	service := newTestService(repo, books)
	ctx := context.Background()

	books.On("FetchBook", ctx, bookID).Return(domain.BookSnapshot{Price: 0, Stock: 3, Currency: "USD"}, nil)
	repo.On("Save", ctx, mock.Anything).
		Return(func(_ context.Context, o *domain.Order) *domain.Order { return o }, nil)

	got, err := service.CreateOrder(ctx, CreateOrderCommand{BookID: bookID, Quantity: qty(3)})

	require.NoError(t, err)
	assert.Equal(t, float64(0), got.TotalPrice())
}

func TestService_CreateOrder_CatalogErrorsPropagate(t *testing.T) {
	unclassified := errors.New("call books service: connection reset")

	tests := []struct {
		name string
		err  error
	}{
		{name: "book not found", err: domain.BookNotFound(bookID)},
		{name: "service unavailable", err: domain.BooksServiceUnavailable()},
		{name: "service timeout", err: domain.BooksServiceTimeout()},
		{name: "unclassified", err: unclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockOrderRepository)
			books := new(MockBookFetcher)
			service := newTestService(repo, books)
			ctx := context.Background()

			books.On("FetchBook", ctx, bookID).Return(domain.BookSnapshot{}, tt.err).Once()

			got, err := service.CreateOrder(ctx, CreateOrderCommand{BookID: bookID, Quantity: qty(1)})

			assert.Nil(t, got)
			assert.Same(t, tt.err, err)
			books.AssertNumberOfCalls(t, "FetchBook", 1)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestService_CreateOrder_SaveError(t *testing.T) {
	repo := new(MockOrderRepository)
	books := new(MockBookFetcher)
	service := newTestService(repo, books)
	ctx := context.Background()

	books.On("FetchBook", ctx, bookID).Return(domain.BookSnapshot{Price: 1, Stock: 1, Currency: "USD"}, nil)
	repo.On("Save", ctx, mock.Anything).Return(nil, domain.InvalidQuantity(1))

	got, err := service.CreateOrder(ctx, CreateOrderCommand{BookID: bookID, Quantity: qty(1)})

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestService_CreateOrder_PublishesEvent(t *testing.T) {
	repo := new(MockOrderRepository)
	books := new(MockBookFetcher)
	publisher := new(MockEventPublisher)
	service := newTestService(repo, books, WithPublisher(publisher))
	ctx := context.Background()

	books.On("FetchBook", ctx, bookID).Return(domain.BookSnapshot{Price: 2, Stock: 9, Currency: "USD"}, nil)
	repo.On("Save", ctx, mock.Anything).
		Return(func(_ context.Context, o *domain.Order) *domain.Order { return o }, nil)
	publisher.On("PublishOrderCreated", ctx, mock.MatchedBy(func(o *domain.Order) bool {
		return o.ID() == orderID && o.Quantity() == 3
	})).Return(nil).Once()

	_, err := service.CreateOrder(ctx, CreateOrderCommand{BookID: bookID, Quantity: qty(3)})

	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestService_CreateOrder_PublishFailureKeepsOrder(t *testing.T) {
	repo := new(MockOrderRepository)
	books := new(MockBookFetcher)
	publisher := new(MockEventPublisher)
	service := newTestService(repo, books, WithPublisher(publisher))
	ctx := context.Background()

	books.On("FetchBook", ctx, bookID).Return(domain.BookSnapshot{Price: 2, Stock: 9, Currency: "USD"}, nil)
	repo.On("Save", ctx, mock.Anything).
		Return(func(_ context.Context, o *domain.Order) *domain.Order { return o }, nil)
	publisher.On("PublishOrderCreated", ctx, mock.Anything).Return(errors.New("broker down"))

	got, err := service.CreateOrder(ctx, CreateOrderCommand{BookID: bookID, Quantity: qty(1)})

	require.NoError(t, err)
	assert.Equal(t, orderID, got.ID())
}

func TestService_CreateOrder_NoEventOnFailure(t *testing.T) {
	repo := new(MockOrderRepository)
	books := new(MockBookFetcher)
	publisher := new(MockEventPublisher)
	service := newTestService(repo, books, WithPublisher(publisher))
	ctx := context.Background()

	books.On("FetchBook", ctx, bookID).Return(domain.BookSnapshot{Price: 2, Stock: 0, Currency: "USD"}, nil)

	_, err := service.CreateOrder(ctx, CreateOrderCommand{BookID: bookID, Quantity: qty(1)})

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	publisher.AssertNotCalled(t, "PublishOrderCreated", mock.Anything, mock.Anything)
}

func TestService_ListOrders(t *testing.T) {
	// Arrange
	repo := new(MockOrderRepository)
	service := newTestService(repo, new(MockBookFetcher))
	ctx := context.Background()

	first, err := domain.Restore(domain.RestoreParams{ID: "a", BookID: bookID, Quantity: 1, TotalPrice: 5, Status: domain.StatusPending, Currency: "USD", CreatedAt: fixedNow})
	require.NoError(t, err)
	second, err := domain.Restore(domain.RestoreParams{ID: "b", BookID: bookID, Quantity: 2, TotalPrice: 10, Status: domain.StatusPending, Currency: "USD", CreatedAt: fixedNow})
	require.NoError(t, err)
	stored := []*domain.Order{first, second}

	repo.On("FindAll", ctx).Return(stored, nil).Once()

	// Act
	got, err := service.ListOrders(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, stored, got)
	repo.AssertExpectations(t)
}

func TestService_ListOrders_Empty(t *testing.T) {
	tests := []struct {
		name   string
		orders []*domain.Order
		err    error
	}{
		{name: "empty slice", orders: []*domain.Order{}},
		{name: "nil slice", orders: nil},
		{name: "store reports none", err: domain.OrdersNotFound()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockOrderRepository)
			service := newTestService(repo, new(MockBookFetcher))
			ctx := context.Background()

			if tt.orders == nil {
				repo.On("FindAll", ctx).Return(nil, tt.err)
			} else {
				repo.On("FindAll", ctx).Return(tt.orders, tt.err)
			}

			got, err := service.ListOrders(ctx)

			assert.Nil(t, got)
			assert.ErrorIs(t, err, domain.ErrOrdersNotFound)
		})
	}
}

func TestService_ListOrders_UnclassifiedError(t *testing.T) {
	repo := new(MockOrderRepository)
	service := newTestService(repo, new(MockBookFetcher))
	ctx := context.Background()
	boom := errors.New("query orders: connection refused")

	repo.On("FindAll", ctx).Return(nil, boom)

	_, err := service.ListOrders(ctx)

	assert.Same(t, boom, err)
}
