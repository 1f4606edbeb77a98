package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"book_orders/internal/config"
	domain "book_orders/internal/domain/order"
	"book_orders/pkg/logger"
)

// maxBodyBytes bounds how much of a catalog response is read.
const maxBodyBytes = 1 << 20

// Client fetches book snapshots from the external books service.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	log        logger.Logger
}

func NewClient(cfg config.CatalogConfig, log logger.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base url: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Client{
		baseURL: base,
		log:     log,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
			// A redirect would be a second call; 3xx surfaces as an unexpected status.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
			},
		},
	}, nil
}

type bookResponse struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Price    *float64 `json:"price"`
	Currency string   `json:"currency"`
	Stock    *int     `json:"stock"`
}

// FetchBook issues exactly one GET /books/{id}. bookID is expected to be
// validated by the caller.
func (c *Client) FetchBook(ctx context.Context, bookID string) (domain.BookSnapshot, error) {
	log := c.log.WithContext(ctx).WithFields(logger.String("book_id", bookID))

	u := c.baseURL.JoinPath("books", bookID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.BookSnapshot{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			log.Warn("catalog request timed out", logger.Duration("elapsed", time.Since(start)))
			return domain.BookSnapshot{}, domain.BooksServiceTimeout()
		}
		log.Error("catalog request failed", logger.Error(err))
		return domain.BookSnapshot{}, fmt.Errorf("call books service: %w", err)
	}
	defer resp.Body.Close()

	log.Debug("catalog responded",
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.BookSnapshot{}, domain.BookNotFound(bookID)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return domain.BookSnapshot{}, domain.BooksServiceUnavailable()
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		log.Error("catalog returned unexpected status", logger.Int("status", resp.StatusCode))
		return domain.BookSnapshot{}, fmt.Errorf("books service status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(err) {
			return domain.BookSnapshot{}, domain.BooksServiceTimeout()
		}
		return domain.BookSnapshot{}, fmt.Errorf("read response body: %w", err)
	}

	return decodeBook(log, bookID, body)
}

func decodeBook(log logger.Logger, bookID string, body []byte) (domain.BookSnapshot, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return domain.BookSnapshot{}, domain.BookNotFound(bookID)
	}

	var payload bookResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn("catalog response is not valid json", logger.Error(err))
		return domain.BookSnapshot{}, domain.InvalidBookData("body", "response is not a valid book")
	}

	switch {
	case payload.Price == nil:
		return domain.BookSnapshot{}, domain.InvalidBookData("price", "price is missing")
	case *payload.Price < 0:
		return domain.BookSnapshot{}, domain.InvalidBookData("price", "price must not be negative")
	case payload.Stock == nil:
		return domain.BookSnapshot{}, domain.InvalidBookData("stock", "stock is missing")
	case *payload.Stock < 0:
		return domain.BookSnapshot{}, domain.InvalidBookData("stock", "stock must not be negative")
	case payload.Currency == "":
		return domain.BookSnapshot{}, domain.InvalidBookData("currency", "currency is missing")
	}

	id := payload.ID
	if id == "" {
		id = bookID
	}

	return domain.BookSnapshot{
		ID:       id,
		Title:    payload.Title,
		Author:   payload.Author,
		Price:    *payload.Price,
		Currency: payload.Currency,
		Stock:    *payload.Stock,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

