package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
	"github.com/mambaservices/storefront-backend/pkg/enums"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
	"github.com/mambaservices/storefront-backend/pkg/logger"
)

// Service defines the ledger behavior needed by the orders controller and the
// fulfillment pipeline.
type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error)
	ListByEmail(ctx context.Context, email string) ([]OrderResponse, error)
	PaidSummary(ctx context.Context, email string) (*PaidSummary, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*OrderResponse, error)
	MarkPaidBySession(ctx context.Context, sessionID string) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// NewService constructs a ledger service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	return &service{repo: params.Repo, logg: params.Logger}, nil
}

func (s *service) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	order := &models.Order{
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Price:       req.Price,
		Status:      enums.OrderStatusPending,
	}
	if sessionID := strings.TrimSpace(req.StripeSessionID); sessionID != "" {
		order.StripeSessionID = &sessionID
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		if errors.Is(err, ErrSessionTaken) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already exists for this checkout session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, created.ID.String())
		s.logg.Info(s.logg.WithEmail(ctx, created.Email), "order.created")
	}
	resp := toOrderResponse(created)
	return &resp, nil
}

func (s *service) ListByEmail(ctx context.Context, email string) ([]OrderResponse, error) {
	orders, err := s.repo.ListByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return toOrderResponses(orders), nil
}

func (s *service) PaidSummary(ctx context.Context, email string) (*PaidSummary, error) {
	orders, err := s.repo.ListByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	var paid []models.Order
	for _, order := range orders {
		if order.Status == enums.OrderStatusPaid {
			paid = append(paid, order)
		}
	}
	return &PaidSummary{
		Paid:   len(paid) > 0,
		Orders: toOrderResponses(paid),
		Count:  len(paid),
	}, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*OrderResponse, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}

	next, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": req.Status})
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}

	if order.Status == next {
		resp := toOrderResponse(order)
		return &resp, nil
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "illegal order status transition").
			WithDetails(map[string]any{"from": order.Status.String(), "to": next.String()})
	}

	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	order.Status = next

	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Info(s.logg.WithField(ctx, "status", next.String()), "order.status_changed")
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

// MarkPaidBySession reconciles the ledger when a payment event arrives. A
// session with no matching order is not an error: payment links can be used
// without a storefront-created order.
func (s *service) MarkPaidBySession(ctx context.Context, sessionID string) error {
	order, err := s.repo.FindByStripeSessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order by session")
	}

	if order.Status != enums.OrderStatusPending {
		return nil
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPaid); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark order paid")
	}

	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Info(s.logg.WithStripeSession(ctx, sessionID), "order.paid")
	}
	return nil
}
