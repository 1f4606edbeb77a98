package memory

import (
	"context"
	"fmt"
	"sync"

	domain "book_orders/internal/domain/order"
)

// OrderRepository keeps orders in process memory, in insertion order.
type OrderRepository struct {
	mu     sync.RWMutex
	orders []*domain.Order
	index  map[string]int
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{index: make(map[string]int)}
}

func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, fmt.Errorf("order is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored, err := clone(order)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[stored.ID()]; exists {
		return nil, fmt.Errorf("order %s already exists", stored.ID())
	}
	r.index[stored.ID()] = len(r.orders)
	r.orders = append(r.orders, stored)

	return clone(stored)
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.orders) == 0 {
		return nil, domain.OrdersNotFound()
	}

	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		c, err := clone(o)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func clone(o *domain.Order) (*domain.Order, error) {
	return domain.Restore(domain.RestoreParams{
		ID:         o.ID(),
		BookID:     o.BookID(),
		Quantity:   o.Quantity(),
		TotalPrice: o.TotalPrice(),
		Status:     o.Status(),
		Currency:   o.Currency(),
		CreatedAt:  o.CreatedAt(),
	})
}
