package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	app "book_orders/internal/application/order"
	domain "book_orders/internal/domain/order"
	"book_orders/pkg/logger"
)

// OrderService is the part of the application layer the handler drives.
type OrderService interface {
	CreateOrder(ctx context.Context, cmd app.CreateOrderCommand) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
}

type OrderHandler struct {
	svc OrderService
	log logger.Logger
}

func NewOrderHandler(svc OrderService, log logger.Logger) *OrderHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &OrderHandler{svc: svc, log: log}
}

// createOrderRequest keeps both fields loosely typed so that shape problems
// surface as domain validation errors, in validation order.
type createOrderRequest struct {
	BookID   any `json:"bookId"`
	Quantity any `json:"quantity"`
}

type orderResponse struct {
	ID         string  `json:"id"`
	BookID     string  `json:"bookId"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"totalPrice"`
	Currency   string  `json:"currency"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, domain.InvalidOrderData("body", "Request body must be a JSON object"))
		return
	}

	cmd := app.CreateOrderCommand{}
	if s, ok := req.BookID.(string); ok {
		cmd.BookID = s
	}
	if q, ok := req.Quantity.(float64); ok {
		cmd.Quantity = &q
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(order))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.svc.ListOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toResponse(o))
	}
	c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *OrderHandler) writeError(c *gin.Context, err error) {
	domainErr, ok := domain.AsError(err)
	if !ok {
		h.log.WithContext(c.Request.Context()).Error("unhandled error",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL_ERROR"})
		return
	}

	c.JSON(statusFor(domainErr.Category()), errorResponse{Error: domainErr.Error(), Code: domainErr.Code()})
}

func statusFor(category domain.Category) int {
	switch category {
	case domain.CategoryMalformedRequest:
		return http.StatusBadRequest
	case domain.CategoryNotFound:
		return http.StatusNotFound
	case domain.CategoryDependencyUnavailable:
		return http.StatusServiceUnavailable
	case domain.CategoryDependencyTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func toResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:         o.ID(),
		BookID:     o.BookID(),
		Quantity:   o.Quantity(),
		TotalPrice: o.TotalPrice(),
		Currency:   o.Currency(),
		Status:     string(o.Status()),
		CreatedAt:  o.CreatedAt().UTC().Format(time.RFC3339Nano),
	}
}
