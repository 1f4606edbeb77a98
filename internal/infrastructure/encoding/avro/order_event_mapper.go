package avro

import (
	"fmt"
	"time"

	domain "book_orders/internal/domain/order"
)

// OrderEventCodec turns order-created events into Avro binary and back.
type OrderEventCodec struct {
	enc *Encoder
}

func NewOrderEventCodec() (*OrderEventCodec, error) {
	enc, err := NewEncoder(OrderCreatedSchema)
	if err != nil {
		return nil, err
	}
	return &OrderEventCodec{enc: enc}, nil
}

func (c *OrderEventCodec) Encode(ev domain.OrderCreated) ([]byte, error) {
	return c.enc.EncodeNative(ToOrderCreatedNative(ev))
}

func (c *OrderEventCodec) Decode(binary []byte) (domain.OrderCreated, error) {
	native, err := c.enc.DecodeNative(binary)
	if err != nil {
		return domain.OrderCreated{}, err
	}
	record, ok := native.(map[string]interface{})
	if !ok {
		return domain.OrderCreated{}, fmt.Errorf("avro payload is %T, want record", native)
	}
	return FromOrderCreatedNative(record)
}

// ToOrderCreatedNative converts an event to the map form goavro expects.
func ToOrderCreatedNative(ev domain.OrderCreated) map[string]interface{} {
	return map[string]interface{}{
		"event_id":    ev.EventID,
		"order_id":    ev.OrderID,
		"book_id":     ev.BookID,
		"quantity":    int32(ev.Quantity),
		"total_price": ev.TotalPrice,
		"currency":    ev.Currency,
		"status":      string(ev.Status),
		"created_at":  ev.CreatedAt.UTC(),
		"occurred_at": ev.OccurredAt.UTC(),
	}
}

// FromOrderCreatedNative reads a decoded record back into an event.
func FromOrderCreatedNative(data map[string]interface{}) (domain.OrderCreated, error) {
	var (
		ev  domain.OrderCreated
		err error
	)

	getString := func(key string) string {
		if err != nil {
			return ""
		}
		s, ok := data[key].(string)
		if !ok {
			err = fmt.Errorf("field %s: want string, got %T", key, data[key])
		}
		return s
	}
	getTime := func(key string) time.Time {
		if err != nil {
			return time.Time{}
		}
		t, ok := data[key].(time.Time)
		if !ok {
			err = fmt.Errorf("field %s: want timestamp, got %T", key, data[key])
		}
		return t.UTC()
	}

	ev.EventID = getString("event_id")
	ev.OrderID = getString("order_id")
	ev.BookID = getString("book_id")
	ev.Currency = getString("currency")
	ev.Status = domain.Status(getString("status"))
	ev.CreatedAt = getTime("created_at")
	ev.OccurredAt = getTime("occurred_at")
	if err != nil {
		return domain.OrderCreated{}, err
	}

	switch q := data["quantity"].(type) {
	case int32:
		ev.Quantity = int(q)
	case int64:
		ev.Quantity = int(q)
	case int:
		ev.Quantity = q
	default:
		return domain.OrderCreated{}, fmt.Errorf("field quantity: want int, got %T", q)
	}

	price, ok := data["total_price"].(float64)
	if !ok {
		return domain.OrderCreated{}, fmt.Errorf("field total_price: want double, got %T", data["total_price"])
	}
	ev.TotalPrice = price

	return ev, nil
}
