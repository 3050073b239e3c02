package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/jcmexdev/bizops-dashboard/internal/backend"
	"github.com/jcmexdev/bizops-dashboard/internal/domain"
	"github.com/jcmexdev/bizops-dashboard/internal/pkg/reqctx"
)

// OrderClient is the part of the orders API the actions need.
type OrderClient interface {
	Get(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, id string, in backend.UpdateOrderInput) (*domain.Order, error)
	ProcessPayment(ctx context.Context, id string) (*backend.PaymentResult, error)
}

// DeliveryClient is the part of the deliveries API the actions need.
type DeliveryClient interface {
	List(ctx context.Context) ([]domain.Delivery, error)
	Create(ctx context.Context, in backend.DeliveryInput) (*domain.Delivery, error)
	Update(ctx context.Context, id int64, in backend.DeliveryUpdateInput) (*domain.Delivery, error)
	Delete(ctx context.Context, id int64) error
	GetByOrder(ctx context.Context, orderID string) (*domain.Delivery, error)
}

// --- CreateDeliveryStep ---

type CreateDeliveryStep struct {
	client         DeliveryClient
	input          backend.DeliveryInput
	idempotencyKey string
	delivery       *domain.Delivery
}

// NewCreateDeliveryStep is the constructor for CreateDeliveryStep. The key
// is sent as X-Idempotency-Key so a retried request cannot create a second
// delivery.
func NewCreateDeliveryStep(client DeliveryClient, input backend.DeliveryInput, idempotencyKey string) *CreateDeliveryStep {
	return &CreateDeliveryStep{
		client:         client,
		input:          input,
		idempotencyKey: idempotencyKey,
	}
}

func (s *CreateDeliveryStep) Name() string { return "create_delivery" }

func (s *CreateDeliveryStep) Execute(ctx context.Context) error {
	if s.idempotencyKey != "" {
		ctx = reqctx.WithIdempotencyKey(ctx, s.idempotencyKey)
	}
	d, err := s.client.Create(ctx, s.input)
	if err != nil {
		return fmt.Errorf("failed to create delivery: %w", err)
	}
	s.delivery = d
	return nil
}

// Compensate deletes the delivery created by Execute.
func (s *CreateDeliveryStep) Compensate(ctx context.Context) error {
	if s.delivery == nil {
		return nil
	}
	if err := s.client.Delete(ctx, s.delivery.ID); err != nil {
		return fmt.Errorf("failed to delete delivery %d: %w", s.delivery.ID, err)
	}
	return nil
}

// Delivery returns the created delivery, nil before a successful Execute.
func (s *CreateDeliveryStep) Delivery() *domain.Delivery { return s.delivery }

// --- CompleteDeliveryStep ---

type CompleteDeliveryStep struct {
	client  DeliveryClient
	orderID string
	at      time.Time
	// prev is the delivery as it was before Execute changed it.
	prev     *domain.Delivery
	delivery *domain.Delivery
}

func NewCompleteDeliveryStep(client DeliveryClient, orderID string, at time.Time) *CompleteDeliveryStep {
	return &CompleteDeliveryStep{client: client, orderID: orderID, at: at}
}

func (s *CompleteDeliveryStep) Name() string { return "complete_delivery" }

// Execute looks up the order's delivery and marks it delivered at s.at.
func (s *CompleteDeliveryStep) Execute(ctx context.Context) error {
	d, err := s.client.GetByOrder(ctx, s.orderID)
	if err != nil {
		return fmt.Errorf("failed to find delivery of order %s: %w", s.orderID, err)
	}
	prev := *d
	updated, err := s.client.Update(ctx, d.ID, backend.DeliveryUpdateInput{
		ShippingStatus: domain.ShippingStatusDelivered,
		DeliveredAt:    backend.At(s.at),
	})
	if err != nil {
		return fmt.Errorf("failed to complete delivery %d: %w", d.ID, err)
	}
	s.prev = &prev
	s.delivery = updated
	return nil
}

// Compensate writes back the shipping status and delivery time the
// delivery had before Execute.
func (s *CompleteDeliveryStep) Compensate(ctx context.Context) error {
	if s.prev == nil {
		return nil
	}
	deliveredAt := backend.Null()
	if s.prev.DeliveredAt != nil {
		deliveredAt = backend.At(*s.prev.DeliveredAt)
	}
	_, err := s.client.Update(ctx, s.prev.ID, backend.DeliveryUpdateInput{
		ShippingStatus: s.prev.ShippingStatus,
		DeliveredAt:    deliveredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to restore delivery %d: %w", s.prev.ID, err)
	}
	return nil
}

// --- UpdateOrderStatusStep ---

type UpdateOrderStatusStep struct {
	client  OrderClient
	orderID string
	status  domain.OrderStatus
	order   *domain.Order
}

func NewUpdateOrderStatusStep(client OrderClient, orderID string, status domain.OrderStatus) *UpdateOrderStatusStep {
	return &UpdateOrderStatusStep{client: client, orderID: orderID, status: status}
}

func (s *UpdateOrderStatusStep) Name() string { return "update_order_status" }

func (s *UpdateOrderStatusStep) Execute(ctx context.Context) error {
	o, err := s.client.Update(ctx, s.orderID, backend.UpdateOrderInput{Status: s.status})
	if err != nil {
		return fmt.Errorf("failed to set order %s to %s: %w", s.orderID, s.status, err)
	}
	s.order = o
	return nil
}

func (s *UpdateOrderStatusStep) Compensate(ctx context.Context) error {
	// Always the last step of a saga, so nothing runs after it that could fail.
	return nil
}

// Order returns the order as the server sent it back.
func (s *UpdateOrderStatusStep) Order() *domain.Order { return s.order }
