package order

import (
	"strings"

	"github.com/google/uuid"
)

// Status is the order lifecycle label. Only PENDING is reachable today.
type Status string

const (
	StatusPending Status = "PENDING"
)

func (s Status) Valid() bool {
	return s == StatusPending
}

// BookSnapshot is the catalog's view of a book at order time.
type BookSnapshot struct {
	ID       string
	Title    string
	Author   string
	Price    float64
	Currency string
	Stock    int
}

// ValidateBookID trims raw and checks it is a canonical uuid string.
func ValidateBookID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	// uuid.Parse also takes braced, urn and undashed forms; only the dashed one is accepted.
	if len(id) != 36 {
		return "", InvalidBookData("id", "Invalid book ID format")
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", InvalidBookData("id", "Invalid book ID format")
	}
	return id, nil
}
