package order

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind tags one member of the closed order error taxonomy.
type Kind string

const (
	KindOrdersNotFound          Kind = "ORDERS_NOT_FOUND"
	KindInvalidOrderData        Kind = "INVALID_ORDER_DATA"
	KindBookNotFound            Kind = "BOOK_NOT_FOUND"
	KindInvalidBookData         Kind = "INVALID_BOOK_DATA"
	KindInvalidQuantity         Kind = "INVALID_QUANTITY"
	KindInsufficientStock       Kind = "INSUFFICIENT_STOCK"
	KindBooksServiceUnavailable Kind = "BOOKS_SERVICE_UNAVAILABLE"
	KindBooksServiceTimeout     Kind = "BOOKS_SERVICE_TIMEOUT"
)

// Category groups kinds by how they surface to callers.
type Category string

const (
	CategoryMalformedRequest      Category = "malformed-request"
	CategoryNotFound              Category = "not-found"
	CategoryDependencyUnavailable Category = "dependency-unavailable"
	CategoryDependencyTimeout     Category = "dependency-timeout"
)

// Sentinels for errors.Is. Matching is by Kind, payload is ignored.
var (
	ErrOrdersNotFound          = &Error{Kind: KindOrdersNotFound}
	ErrInvalidOrderData        = &Error{Kind: KindInvalidOrderData}
	ErrBookNotFound            = &Error{Kind: KindBookNotFound}
	ErrInvalidBookData         = &Error{Kind: KindInvalidBookData}
	ErrInvalidQuantity         = &Error{Kind: KindInvalidQuantity}
	ErrInsufficientStock       = &Error{Kind: KindInsufficientStock}
	ErrBooksServiceUnavailable = &Error{Kind: KindBooksServiceUnavailable}
	ErrBooksServiceTimeout     = &Error{Kind: KindBooksServiceTimeout}
)

// Error is a classified domain failure. Only the payload fields relevant to
// Kind are populated.
type Error struct {
	Kind Kind

	Field     string
	Reason    string
	BookID    string
	Quantity  float64
	Available int
	Requested int
}

func OrdersNotFound() *Error {
	return &Error{Kind: KindOrdersNotFound}
}

func InvalidOrderData(field, reason string) *Error {
	return &Error{Kind: KindInvalidOrderData, Field: field, Reason: reason}
}

func BookNotFound(bookID string) *Error {
	return &Error{Kind: KindBookNotFound, BookID: bookID}
}

func InvalidBookData(field, reason string) *Error {
	return &Error{Kind: KindInvalidBookData, Field: field, Reason: reason}
}

func InvalidQuantity(quantity float64) *Error {
	if quantity == 0 {
		quantity = 0 // drops the sign of -0
	}
	return &Error{Kind: KindInvalidQuantity, Quantity: quantity}
}

func InsufficientStock(available, requested int) *Error {
	return &Error{Kind: KindInsufficientStock, Available: available, Requested: requested}
}

func BooksServiceUnavailable() *Error {
	return &Error{Kind: KindBooksServiceUnavailable}
}

func BooksServiceTimeout() *Error {
	return &Error{Kind: KindBooksServiceTimeout}
}

// Code returns the stable machine-readable code.
func (e *Error) Code() string {
	return string(e.Kind)
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindOrdersNotFound:
		return "No orders found in the database"
	case KindInvalidOrderData:
		return fmt.Sprintf("Order with the data field %s is incorrect: %s", e.Field, e.Reason)
	case KindBookNotFound:
		return fmt.Sprintf("Book with ID %s was not found in Books Service", e.BookID)
	case KindInvalidBookData:
		return fmt.Sprintf("Book with the data field %s is incorrect: %s", e.Field, e.Reason)
	case KindInvalidQuantity:
		return "Order quantity must be greater than 0, received " + strconv.FormatFloat(e.Quantity, 'f', -1, 64)
	case KindInsufficientStock:
		return fmt.Sprintf("Order quantity %d exceeds available stock %d, not possible to fulfill", e.Requested, e.Available)
	case KindBooksServiceUnavailable:
		return "Books Service is currently unavailable"
	case KindBooksServiceTimeout:
		return "Books Service request timed out"
	default:
		return "unknown order error"
	}
}

// Is reports kind equality so sentinels match any payload.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Category maps the kind onto its externally observable failure class.
func (e *Error) Category() Category {
	switch e.Kind {
	case KindInvalidOrderData, KindInvalidBookData, KindInvalidQuantity, KindInsufficientStock:
		return CategoryMalformedRequest
	case KindBookNotFound, KindOrdersNotFound:
		return CategoryNotFound
	case KindBooksServiceUnavailable:
		return CategoryDependencyUnavailable
	case KindBooksServiceTimeout:
		return CategoryDependencyTimeout
	default:
		return ""
	}
}

// AsError extracts a domain error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
