package order

import "time"

// OrderCreated is emitted once an order has been persisted.
type OrderCreated struct {
	EventID    string
	OrderID    string
	BookID     string
	Quantity   int
	TotalPrice float64
	Currency   string
	Status     Status
	CreatedAt  time.Time
	OccurredAt time.Time
}

func NewOrderCreated(o *Order, eventID string, occurredAt time.Time) OrderCreated {
	return OrderCreated{
		EventID:    eventID,
		OrderID:    o.ID(),
		BookID:     o.BookID(),
		Quantity:   o.Quantity(),
		TotalPrice: o.TotalPrice(),
		Currency:   o.Currency(),
		Status:     o.Status(),
		CreatedAt:  o.CreatedAt(),
		OccurredAt: occurredAt.UTC(),
	}
}

// Validate checks an event received from outside the process.
func (e OrderCreated) Validate() error {
	switch {
	case e.EventID == "":
		return InvalidOrderData("eventId", "event id is required")
	case e.OrderID == "":
		return InvalidOrderData("id", "order id is required")
	case e.BookID == "":
		return InvalidOrderData("bookId", "book id is required")
	case e.Quantity <= 0:
		return InvalidQuantity(float64(e.Quantity))
	case e.TotalPrice < 0:
		return InvalidOrderData("totalPrice", "total price must not be negative")
	case !e.Status.Valid():
		return InvalidOrderData("status", "unknown status "+string(e.Status))
	}
	return nil
}
