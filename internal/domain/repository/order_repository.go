package repository

import (
	"context"

	"book_orders/internal/domain/order"
)

// OrderRepository persists and enumerates orders.
//
// Save must fail with order.InvalidQuantity when the store rejects the data as
// invalid. FindAll must fail with order.OrdersNotFound when nothing is stored or
// the backing store has not been initialized.
type OrderRepository interface {
	Save(ctx context.Context, o *order.Order) (*order.Order, error)
	FindAll(ctx context.Context) ([]*order.Order, error)
}
