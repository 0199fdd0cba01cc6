package orders

import (
	"time"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
)

// CreateOrderRequest starts a pending order at checkout initiation. The
// stripe session id is optional; when present it is the key the payment
// webhook later uses to flip the order to paid.
type CreateOrderRequest struct {
	Email           string `json:"email" validate:"required,email"`
	ProductID       string `json:"productId" validate:"required"`
	ProductName     string `json:"productName" validate:"required"`
	Price           string `json:"price" validate:"required"`
	StripeSessionID string `json:"stripeSessionId" validate:"omitempty,max=255"`
}

// UpdateStatusRequest moves an order through the state machine.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderResponse is the public shape of a ledger entry.
type OrderResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	ProductID       string    `json:"productId"`
	ProductName     string    `json:"productName"`
	Price           string    `json:"price"`
	StripeSessionID *string   `json:"stripeSessionId,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PaidSummary answers "has this email ever paid" for the storefront.
type PaidSummary struct {
	Paid   bool            `json:"paid"`
	Orders []OrderResponse `json:"orders"`
	Count  int             `json:"count"`
}

func toOrderResponse(order *models.Order) OrderResponse {
	return OrderResponse{
		ID:              order.ID.String(),
		Email:           order.Email,
		ProductID:       order.ProductID,
		ProductName:     order.ProductName,
		Price:           order.Price,
		StripeSessionID: order.StripeSessionID,
		Status:          order.Status.String(),
		CreatedAt:       order.CreatedAt,
	}
}

func toOrderResponses(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}
