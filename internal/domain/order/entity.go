package order

import "time"

// Order is one request for a quantity of a single catalog book. Identity,
// book, currency and creation time never change after construction.
type Order struct {
	id         string
	bookID     string
	quantity   int
	totalPrice float64
	status     Status
	currency   string
	createdAt  time.Time
}

// NewParams carries the computed fields of a fresh order.
type NewParams struct {
	ID         string
	BookID     string
	Quantity   int
	TotalPrice float64
	Currency   string
	CreatedAt  time.Time
}

// RestoreParams carries a persisted record verbatim.
type RestoreParams struct {
	ID         string
	BookID     string
	Quantity   int
	TotalPrice float64
	Status     Status
	Currency   string
	CreatedAt  time.Time
}

// New builds a fresh PENDING order.
func New(p NewParams) (*Order, error) {
	if err := checkAmounts(p.Quantity, p.TotalPrice); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, InvalidOrderData("id", "id is required")
	}
	if p.BookID == "" {
		return nil, InvalidOrderData("bookId", "book id is required")
	}

	return &Order{
		id:         p.ID,
		bookID:     p.BookID,
		quantity:   p.Quantity,
		totalPrice: p.TotalPrice,
		status:     StatusPending,
		currency:   p.Currency,
		createdAt:  p.CreatedAt.UTC(),
	}, nil
}

// Restore rehydrates an order from storage without recomputing anything.
func Restore(p RestoreParams) (*Order, error) {
	if err := checkAmounts(p.Quantity, p.TotalPrice); err != nil {
		return nil, err
	}
	if !p.Status.Valid() {
		return nil, InvalidOrderData("status", "unknown status "+string(p.Status))
	}

	return &Order{
		id:         p.ID,
		bookID:     p.BookID,
		quantity:   p.Quantity,
		totalPrice: p.TotalPrice,
		status:     p.Status,
		currency:   p.Currency,
		createdAt:  p.CreatedAt.UTC(),
	}, nil
}

func (o *Order) ID() string           { return o.id }
func (o *Order) BookID() string       { return o.bookID }
func (o *Order) Quantity() int        { return o.quantity }
func (o *Order) TotalPrice() float64  { return o.totalPrice }
func (o *Order) Status() Status       { return o.status }
func (o *Order) Currency() string     { return o.currency }
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// ChangeQuantity replaces the quantity and reprices the order at unitPrice.
// The order is left untouched on error.
func (o *Order) ChangeQuantity(quantity int, unitPrice float64) error {
	if unitPrice < 0 {
		return InvalidOrderData("unitPrice", "unit price must not be negative")
	}
	total := unitPrice * float64(quantity)
	if err := checkAmounts(quantity, total); err != nil {
		return err
	}
	o.quantity = quantity
	o.totalPrice = total
	return nil
}

func checkAmounts(quantity int, totalPrice float64) error {
	if quantity <= 0 {
		return InvalidQuantity(float64(quantity))
	}
	if totalPrice < 0 {
		return InvalidOrderData("totalPrice", "total price must not be negative")
	}
	return nil
}
