package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/bizops-dashboard/internal/backend"
	"github.com/jcmexdev/bizops-dashboard/internal/coordinator/sagalog"
	"github.com/jcmexdev/bizops-dashboard/internal/domain"
	"github.com/jcmexdev/bizops-dashboard/internal/notify"
	"github.com/jcmexdev/bizops-dashboard/internal/pkg/apperr"
	"github.com/jcmexdev/bizops-dashboard/internal/pkg/reqctx"
)

const (
	SagaShipOrder     = "ship_order"
	SagaCompleteOrder = "complete_order"

	// DeliveryScreen is where the user lands after shipping an order.
	DeliveryScreen = "/delivery"
	OrdersScreen   = "/orders"
)

var (
	ErrNoOrder              = apperr.New(apperr.Invalid, "coordinator: no order loaded")
	ErrShippingCancelled    = apperr.New(apperr.Canceled, "coordinator: shipping cancelled")
	ErrTransitionNotAllowed = apperr.New(apperr.Conflict, "coordinator: status transition not allowed")
)

// OrderRef holds the order an action works on. A successful action replaces
// it with the order the server sent back.
type OrderRef struct {
	mu    sync.RWMutex
	order *domain.Order
}

func NewOrderRef(o *domain.Order) *OrderRef {
	return &OrderRef{order: o}
}

func (r *OrderRef) Order() *domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.order
}

func (r *OrderRef) Set(o *domain.Order) {
	r.mu.Lock()
	r.order = o
	r.mu.Unlock()
}

// ShippingInfo is what the user enters when dispatching an order.
type ShippingInfo struct {
	CourierName    string `json:"courierName"`
	TrackingNumber string `json:"trackingNumber"`
}

// ShippingPrompt asks the user for shipping details. A nil result with a
// nil error means the user dismissed the form.
type ShippingPrompt func(ctx context.Context) (*ShippingInfo, error)

// SharedLists is the session state other screens read after an action.
type SharedLists interface {
	ReplaceOrder(o domain.Order)
	SetDeliveries(d []domain.Delivery)
}

// OrderActions runs the user actions of the order detail screen and reports
// each outcome as a notification.
type OrderActions struct {
	orders     OrderClient
	deliveries DeliveryClient
	sagaLog    sagalog.Repository
	notifier   notify.Notifier
	navigator  notify.Navigator
	lists      SharedLists
	guard      bool
	now        func() time.Time
	logger     *slog.Logger
}

type Option func(*OrderActions)

func WithNavigator(n notify.Navigator) Option {
	return func(a *OrderActions) { a.navigator = n }
}

func WithSharedLists(l SharedLists) Option {
	return func(a *OrderActions) { a.lists = l }
}

func WithSagaLog(repo sagalog.Repository) Option {
	return func(a *OrderActions) { a.sagaLog = repo }
}

// WithTransitionGuard rejects actions whose status change is not a normal
// forward step before anything is sent.
func WithTransitionGuard() Option {
	return func(a *OrderActions) { a.guard = true }
}

func WithClock(now func() time.Time) Option {
	return func(a *OrderActions) { a.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *OrderActions) { a.logger = l }
}

func NewOrderActions(orders OrderClient, deliveries DeliveryClient, notifier notify.Notifier, opts ...Option) *OrderActions {
	a := &OrderActions{
		orders:     orders,
		deliveries: deliveries,
		notifier:   notifier,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.notifier == nil {
		a.notifier = notify.Discard{}
	}
	if a.navigator == nil {
		a.navigator = notify.Discard{}
	}
	if a.sagaLog == nil {
		a.sagaLog = sagalog.NewMemoryRepository()
	}
	return a
}

// Back returns to the order list.
func (a *OrderActions) Back(ctx context.Context) {
	a.navigator.Navigate(ctx, OrdersScreen)
}

// Edit opens the edit screen of the loaded order.
func (a *OrderActions) Edit(ctx context.Context, ref *OrderRef) error {
	o := ref.Order()
	if o == nil {
		return ErrNoOrder
	}
	a.navigator.Navigate(ctx, OrdersScreen+"/"+o.ID+"/edit")
	return nil
}

// Cancel sets the order status to cancelled.
func (a *OrderActions) Cancel(ctx context.Context, ref *OrderRef) error {
	o := ref.Order()
	if o == nil {
		return ErrNoOrder
	}
	fail := notify.Notification{
		Title:       "Failed to Cancel",
		Description: "There was an error cancelling this order.",
		Variant:     notify.VariantDestructive,
	}
	if err := a.checkTransition(ctx, o, domain.OrderStatusCancelled, fail); err != nil {
		return err
	}

	updated, err := a.orders.Update(ctx, o.ID, backend.UpdateOrderInput{Status: domain.OrderStatusCancelled})
	if err != nil {
		return a.failed(ctx, "cancel", o, err, fail)
	}
	a.succeeded(ctx, ref, updated, notify.Notification{
		Title:       "Order Cancelled",
		Description: fmt.Sprintf("Order #%s has been cancelled.", o.OrderNumber),
	})
	return nil
}

// Pay runs the payment endpoint for the order. When the answer carries no
// order, the order is fetched again.
func (a *OrderActions) Pay(ctx context.Context, ref *OrderRef) error {
	o := ref.Order()
	if o == nil {
		return ErrNoOrder
	}
	fail := notify.Notification{
		Title:       "Failed to Process Payment",
		Description: "An error occurred while processing payment.",
		Variant:     notify.VariantDestructive,
	}
	if err := a.checkTransition(ctx, o, domain.OrderStatusPaid, fail); err != nil {
		return err
	}

	res, err := a.orders.ProcessPayment(ctx, o.ID)
	if err != nil {
		return a.failed(ctx, "pay", o, err, fail)
	}
	updated := res.Order
	if updated == nil {
		updated, err = a.orders.Get(ctx, o.ID)
		if err != nil {
			return a.failed(ctx, "pay", o, fmt.Errorf("refresh after payment: %w", err), fail)
		}
	}
	a.succeeded(ctx, ref, updated, notify.Notification{
		Title:       "Payment Processed",
		Description: fmt.Sprintf("Payment for order #%s has been processed.", o.OrderNumber),
	})
	return nil
}

// Ship asks for courier details, creates a pending delivery and marks the
// order shipped. A failed status update deletes the delivery again.
//
// An idempotency key already in ctx is used for the delivery; otherwise a
// fresh one is generated.
func (a *OrderActions) Ship(ctx context.Context, ref *OrderRef, prompt ShippingPrompt) error {
	o := ref.Order()
	if o == nil {
		return ErrNoOrder
	}
	fail := notify.Notification{
		Title:       "Failed to Ship",
		Description: "An error occurred while processing shipment.",
		Variant:     notify.VariantDestructive,
	}

	info, err := prompt(ctx)
	if err != nil {
		return a.failed(ctx, "ship", o, fmt.Errorf("shipping form: %w", err), fail)
	}
	if info == nil {
		a.notifier.Notify(ctx, notify.Notification{
			Title:       "Shipping Cancelled",
			Description: "You cancelled the shipping process.",
			Variant:     notify.VariantDefault,
		})
		return ErrShippingCancelled
	}
	if err := a.checkTransition(ctx, o, domain.OrderStatusShipped, fail); err != nil {
		return err
	}

	key := reqctx.IdempotencyKey(ctx)
	if key == "" {
		key = uuid.NewString()
	}
	ctx = reqctx.WithoutIdempotencyKey(ctx)

	shippedAt := a.now().UTC()
	input := backend.DeliveryInput{
		OrderID:        o.ID,
		CourierName:    info.CourierName,
		TrackingNumber: info.TrackingNumber,
		ShippingStatus: domain.ShippingStatusPending,
		ShippedAt:      &shippedAt,
	}
	create := NewCreateDeliveryStep(a.deliveries, input, key)
	status := NewUpdateOrderStatusStep(a.orders, o.ID, domain.OrderStatusShipped)

	saga := NewSaga(SagaShipOrder, o.ID, a.sagaLog, a.logger, create, status).WithPayload(input)
	if err := saga.Start(ctx); err != nil {
		return a.failed(ctx, "ship", o, err, fail)
	}

	a.succeeded(ctx, ref, status.Order(), notify.Notification{
		Title:       "Order Shipped",
		Description: fmt.Sprintf("Order #%s is now marked as shipped.", o.OrderNumber),
	})
	a.refreshDeliveries(ctx)
	a.navigator.Navigate(ctx, DeliveryScreen)
	return nil
}

// MarkDelivered records the delivery as delivered now and completes the
// order. A failed status update puts the delivery back in transit.
func (a *OrderActions) MarkDelivered(ctx context.Context, ref *OrderRef) error {
	o := ref.Order()
	if o == nil {
		return ErrNoOrder
	}
	fail := notify.Notification{
		Title:       "Failed to Complete",
		Description: "An error occurred while completing the delivery.",
		Variant:     notify.VariantDestructive,
	}
	if err := a.checkTransition(ctx, o, domain.OrderStatusCompleted, fail); err != nil {
		return err
	}

	at := a.now().UTC()
	complete := NewCompleteDeliveryStep(a.deliveries, o.ID, at)
	status := NewUpdateOrderStatusStep(a.orders, o.ID, domain.OrderStatusCompleted)

	saga := NewSaga(SagaCompleteOrder, o.ID, a.sagaLog, a.logger, complete, status).
		WithPayload(map[string]any{"orderId": o.ID, "deliveredAt": at})
	if err := saga.Start(ctx); err != nil {
		return a.failed(ctx, "complete", o, err, fail)
	}

	a.succeeded(ctx, ref, status.Order(), notify.Notification{
		Title:       "Order Completed",
		Description: fmt.Sprintf("Order #%s has been marked as completed.", o.OrderNumber),
	})
	return nil
}

func (a *OrderActions) checkTransition(ctx context.Context, o *domain.Order, next domain.OrderStatus, fail notify.Notification) error {
	if !a.guard || o.Status.CanTransitionTo(next) {
		return nil
	}
	a.notifier.Notify(ctx, fail)
	return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, o.Status, next)
}

func (a *OrderActions) failed(ctx context.Context, action string, o *domain.Order, err error, n notify.Notification) error {
	a.logger.ErrorContext(ctx, "order action failed", "action", action, "order_id", o.ID, "error", err)
	a.notifier.Notify(ctx, n)
	return fmt.Errorf("%s order %s: %w", action, o.ID, err)
}

func (a *OrderActions) succeeded(ctx context.Context, ref *OrderRef, updated *domain.Order, n notify.Notification) {
	if updated != nil {
		ref.Set(updated)
		if a.lists != nil {
			a.lists.ReplaceOrder(*updated)
		}
	}
	n.Variant = notify.VariantDefault
	a.notifier.Notify(ctx, n)
}

func (a *OrderActions) refreshDeliveries(ctx context.Context) {
	if a.lists == nil {
		return
	}
	list, err := a.deliveries.List(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "refresh deliveries failed", "error", err)
		return
	}
	a.lists.SetDeliveries(list)
}
