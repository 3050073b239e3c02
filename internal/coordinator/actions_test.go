package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/bizops-dashboard/internal/coordinator/sagalog"
	"github.com/jcmexdev/bizops-dashboard/internal/domain"
	"github.com/jcmexdev/bizops-dashboard/internal/notify"
	"github.com/jcmexdev/bizops-dashboard/internal/pkg/apperr"
	"github.com/jcmexdev/bizops-dashboard/internal/pkg/reqctx"
)

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

type harness struct {
	log        *callLog
	orders     *fakeOrders
	deliveries *fakeDeliveries
	collector  *notify.Collector
	lists      *fakeLists
	repo       *sagalog.MemoryRepository
	actions    *OrderActions
}

func newHarness(opts ...Option) *harness {
	h := &harness{log: &callLog{}, collector: &notify.Collector{}, lists: &fakeLists{}, repo: sagalog.NewMemoryRepository()}
	h.orders = &fakeOrders{log: h.log}
	h.deliveries = &fakeDeliveries{log: h.log}
	base := []Option{
		WithNavigator(h.collector),
		WithSharedLists(h.lists),
		WithSagaLog(h.repo),
		WithClock(func() time.Time { return fixedNow }),
	}
	h.actions = NewOrderActions(h.orders, h.deliveries, h.collector, append(base, opts...)...)
	return h
}

func order(status domain.OrderStatus) *domain.Order {
	return &domain.Order{ID: "ord-1", OrderNumber: "SO-001", Status: status}
}

func shipInfo(ctx context.Context) (*ShippingInfo, error) {
	return &ShippingInfo{CourierName: "JNE", TrackingNumber: "JNE123"}, nil
}

func lastNotification(t *testing.T, c *notify.Collector) notify.Notification {
	t.Helper()
	all := c.Notifications()
	require.NotEmpty(t, all)
	return all[len(all)-1]
}

func TestActionsWithoutOrderDoNothing(t *testing.T) {
	h := newHarness()
	ref := NewOrderRef(nil)
	ctx := context.Background()

	assert.ErrorIs(t, h.actions.Cancel(ctx, ref), ErrNoOrder)
	assert.ErrorIs(t, h.actions.Pay(ctx, ref), ErrNoOrder)
	assert.ErrorIs(t, h.actions.Ship(ctx, ref, shipInfo), ErrNoOrder)
	assert.ErrorIs(t, h.actions.MarkDelivered(ctx, ref), ErrNoOrder)
	assert.ErrorIs(t, h.actions.Edit(ctx, ref), ErrNoOrder)

	assert.Empty(t, h.log.all())
	assert.Empty(t, h.collector.Notifications())
}

func TestCancel(t *testing.T) {
	h := newHarness()
	ref := NewOrderRef(order(domain.OrderStatusPending))

	require.NoError(t, h.actions.Cancel(context.Background(), ref))

	assert.Equal(t, []string{"orders.update ord-1 cancelled"}, h.log.all())
	assert.Equal(t, domain.OrderStatusCancelled, ref.Order().Status)
	assert.Equal(t, notify.Notification{
		Title:       "Order Cancelled",
		Description: "Order #SO-001 has been cancelled.",
		Variant:     notify.VariantDefault,
	}, lastNotification(t, h.collector))
	require.Len(t, h.lists.orders, 1)
	assert.Equal(t, "ord-1", h.lists.orders[0].ID)
}

func TestCancelFailureLeavesOrder(t *testing.T) {
	h := newHarness()
	h.orders.updateErr = errors.New("500")
	original := order(domain.OrderStatusPaid)
	ref := NewOrderRef(original)

	err := h.actions.Cancel(context.Background(), ref)
	require.Error(t, err)

	assert.Same(t, original, ref.Order())
	n := lastNotification(t, h.collector)
	assert.Equal(t, "Failed to Cancel", n.Title)
	assert.Equal(t, notify.VariantDestructive, n.Variant)
	assert.Empty(t, h.lists.orders)
}

func TestCancelDeliveredOrderIsSentWithoutGuard(t *testing.T) {
	h := newHarness()
	ref := NewOrderRef(order(domain.OrderStatusDelivered))

	require.NoError(t, h.actions.Cancel(context.Background(), ref))
	assert.Equal(t, []string{"orders.update ord-1 cancelled"}, h.log.all())
}

func TestTransitionGuard(t *testing.T) {
	tests := []struct {
		name   string
		status domain.OrderStatus
		run    func(a *OrderActions, ref *OrderRef) error
		title  string
	}{
		{
			name:   "cancel delivered",
			status: domain.OrderStatusDelivered,
			run:    func(a *OrderActions, ref *OrderRef) error { return a.Cancel(context.Background(), ref) },
			title:  "Failed to Cancel",
		},
		{
			name:   "pay shipped",
			status: domain.OrderStatusShipped,
			run:    func(a *OrderActions, ref *OrderRef) error { return a.Pay(context.Background(), ref) },
			title:  "Failed to Process Payment",
		},
		{
			name:   "ship pending",
			status: domain.OrderStatusPending,
			run: func(a *OrderActions, ref *OrderRef) error {
				return a.Ship(context.Background(), ref, shipInfo)
			},
			title: "Failed to Ship",
		},
		{
			name:   "complete paid",
			status: domain.OrderStatusPaid,
			run:    func(a *OrderActions, ref *OrderRef) error { return a.MarkDelivered(context.Background(), ref) },
			title:  "Failed to Complete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(WithTransitionGuard())
			ref := NewOrderRef(order(tt.status))

			err := tt.run(h.actions, ref)
			require.ErrorIs(t, err, ErrTransitionNotAllowed)
			assert.Equal(t, apperr.Conflict, apperr.Kind(err))
			assert.Empty(t, h.log.all())
			assert.Equal(t, tt.title, lastNotification(t, h.collector).Title)
		})
	}
}

func TestPayUsesOrderFromResponse(t *testing.T) {
	h := newHarness()
	h.orders.payOrder = &domain.Order{ID: "ord-1", OrderNumber: "SO-001", Status: domain.OrderStatusPaid}
	ref := NewOrderRef(order(domain.OrderStatusPending))

	require.NoError(t, h.actions.Pay(context.Background(), ref))

	assert.Equal(t, []string{"orders.pay ord-1"}, h.log.all())
	assert.Equal(t, domain.OrderStatusPaid, ref.Order().Status)
	n := lastNotification(t, h.collector)
	assert.Equal(t, "Payment Processed", n.Title)
	assert.Equal(t, "Payment for order #SO-001 has been processed.", n.Description)
}

func TestPayRefreshesWhenResponseHasNoOrder(t *testing.T) {
	h := newHarness()
	h.orders.getOrder = &domain.Order{ID: "ord-1", OrderNumber: "SO-001", Status: domain.OrderStatusPaid}
	ref := NewOrderRef(order(domain.OrderStatusPending))

	require.NoError(t, h.actions.Pay(context.Background(), ref))
	assert.Equal(t, []string{"orders.pay ord-1", "orders.get ord-1"}, h.log.all())
	assert.Same(t, h.orders.getOrder, ref.Order())
}

func TestPayFailure(t *testing.T) {
	h := newHarness()
	h.orders.payErr = errors.New("gateway down")
	ref := NewOrderRef(order(domain.OrderStatusPending))

	require.Error(t, h.actions.Pay(context.Background(), ref))
	assert.Equal(t, domain.OrderStatusPending, ref.Order().Status)
	assert.Equal(t, "Failed to Process Payment", lastNotification(t, h.collector).Title)
}

func TestShip(t *testing.T) {
	h := newHarness()
	h.deliveries.list = []domain.Delivery{{ID: 41, OrderID: "ord-1"}}
	ref := NewOrderRef(order(domain.OrderStatusPaid))

	require.NoError(t, h.actions.Ship(context.Background(), ref, shipInfo))

	assert.Equal(t, []string{
		"deliveries.create ord-1",
		"orders.update ord-1 shipped",
		"deliveries.list",
	}, h.log.all())

	created := h.deliveries.created
	assert.Equal(t, "JNE", created.CourierName)
	assert.Equal(t, "JNE123", created.TrackingNumber)
	assert.Equal(t, domain.ShippingStatusPending, created.ShippingStatus)
	require.NotNil(t, created.ShippedAt)
	assert.True(t, fixedNow.Equal(*created.ShippedAt))
	assert.Len(t, h.deliveries.idemKey, 36)
	assert.Equal(t, []string{""}, h.orders.idemKeys)

	assert.Equal(t, domain.OrderStatusShipped, ref.Order().Status)
	assert.Equal(t, "Order Shipped", lastNotification(t, h.collector).Title)
	assert.Equal(t, "Order #SO-001 is now marked as shipped.", lastNotification(t, h.collector).Description)
	assert.Equal(t, DeliveryScreen, h.collector.Redirect())
	assert.Len(t, h.lists.deliveries, 1)

	latest, err := h.repo.LatestForOrder(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, sagalog.StatusCompleted, latest.Status)
	assert.Equal(t, SagaShipOrder, latest.SagaType)
}

func TestShipUsesIdempotencyKeyFromContext(t *testing.T) {
	h := newHarness()
	ctx := reqctx.WithIdempotencyKey(context.Background(), "client-key")

	require.NoError(t, h.actions.Ship(ctx, NewOrderRef(order(domain.OrderStatusPaid)), shipInfo))
	assert.Equal(t, "client-key", h.deliveries.idemKey)
	assert.Equal(t, []string{""}, h.orders.idemKeys)
}

func TestShipPromptCancelled(t *testing.T) {
	h := newHarness()
	ref := NewOrderRef(order(domain.OrderStatusPaid))

	err := h.actions.Ship(context.Background(), ref, func(context.Context) (*ShippingInfo, error) { return nil, nil })
	require.ErrorIs(t, err, ErrShippingCancelled)

	assert.Empty(t, h.log.all())
	assert.Equal(t, notify.Notification{
		Title:       "Shipping Cancelled",
		Description: "You cancelled the shipping process.",
		Variant:     notify.VariantDefault,
	}, lastNotification(t, h.collector))
	assert.Empty(t, h.collector.Redirect())
}

func TestShipStatusFailureDeletesDelivery(t *testing.T) {
	h := newHarness()
	h.orders.updateErr = errors.New("409")
	original := order(domain.OrderStatusPaid)
	ref := NewOrderRef(original)

	require.Error(t, h.actions.Ship(context.Background(), ref, shipInfo))

	assert.Equal(t, []string{
		"deliveries.create ord-1",
		"orders.update ord-1 shipped",
		"deliveries.delete 41",
	}, h.log.all())
	assert.Same(t, original, ref.Order())
	assert.Equal(t, "Failed to Ship", lastNotification(t, h.collector).Title)
	assert.Empty(t, h.collector.Redirect())

	latest, err := h.repo.LatestForOrder(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, sagalog.StatusCompensated, latest.Status)
}

func TestShipCompensationFailureLeavesFailedRow(t *testing.T) {
	h := newHarness()
	h.orders.updateErr = errors.New("409")
	h.deliveries.deleteErr = errors.New("delete refused")

	err := h.actions.Ship(context.Background(), NewOrderRef(order(domain.OrderStatusPaid)), shipInfo)
	var ce *CompensationError
	require.ErrorAs(t, err, &ce)

	latest, err := h.repo.LatestForOrder(context.Background(), "ord-1")
	require.NoError(t, err)
	assert.Equal(t, sagalog.StatusFailed, latest.Status)
	assert.Contains(t, latest.ErrorMessages, "delete refused")
	assert.Contains(t, latest.ErrorMessages, "409")
}

func TestShipCreateFailureSkipsStatusUpdate(t *testing.T) {
	h := newHarness()
	h.deliveries.createErr = errors.New("400")

	require.Error(t, h.actions.Ship(context.Background(), NewOrderRef(order(domain.OrderStatusPaid)), shipInfo))
	assert.Equal(t, []string{"deliveries.create ord-1"}, h.log.all())
}

func TestShipRefreshFailureStillSucceeds(t *testing.T) {
	h := newHarness()
	h.deliveries.listErr = errors.New("offline")

	require.NoError(t, h.actions.Ship(context.Background(), NewOrderRef(order(domain.OrderStatusPaid)), shipInfo))
	assert.Nil(t, h.lists.deliveries)
	assert.Equal(t, "Order Shipped", lastNotification(t, h.collector).Title)
}

func TestMarkDelivered(t *testing.T) {
	h := newHarness()
	ref := NewOrderRef(order(domain.OrderStatusShipped))

	require.NoError(t, h.actions.MarkDelivered(context.Background(), ref))

	assert.Equal(t, []string{
		"deliveries.by_order ord-1",
		"deliveries.update 41 delivered",
		"orders.update ord-1 completed",
	}, h.log.all())
	require.Len(t, h.deliveries.updates, 1)
	assert.True(t, h.deliveries.updates[0].DeliveredAt.Valid)
	assert.True(t, fixedNow.Equal(h.deliveries.updates[0].DeliveredAt.Time))
	assert.Equal(t, domain.OrderStatusCompleted, ref.Order().Status)
	assert.Equal(t, "Order #SO-001 has been marked as completed.", lastNotification(t, h.collector).Description)
}

func TestMarkDeliveredStatusFailureRestoresDelivery(t *testing.T) {
	earlier := fixedNow.Add(-48 * time.Hour)

	tests := []struct {
		name   string
		before domain.Delivery
	}{
		{"shipped", domain.Delivery{ID: 41, OrderID: "ord-1", ShippingStatus: domain.ShippingStatusShipped}},
		{"pending", domain.Delivery{ID: 41, OrderID: "ord-1", ShippingStatus: domain.ShippingStatusPending}},
		{"delivered before", domain.Delivery{ID: 41, OrderID: "ord-1", ShippingStatus: domain.ShippingStatusDelivered, DeliveredAt: &earlier}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.deliveries.byOrder = &tt.before
			h.orders.updateErr = errors.New("500")
			ref := NewOrderRef(order(domain.OrderStatusShipped))

			require.Error(t, h.actions.MarkDelivered(context.Background(), ref))

			assert.Equal(t, []string{
				"deliveries.by_order ord-1",
				"deliveries.update 41 delivered",
				"orders.update ord-1 completed",
				"deliveries.update 41 " + string(tt.before.ShippingStatus),
			}, h.log.all())
			require.Len(t, h.deliveries.updates, 2)
			restore := h.deliveries.updates[1]
			assert.Equal(t, tt.before.ShippingStatus, restore.ShippingStatus)
			assert.False(t, restore.DeliveredAt.IsZero())
			if tt.before.DeliveredAt == nil {
				assert.False(t, restore.DeliveredAt.Valid)
			} else {
				assert.True(t, restore.DeliveredAt.Valid)
				assert.True(t, earlier.Equal(restore.DeliveredAt.Time))
			}
			assert.Equal(t, domain.OrderStatusShipped, ref.Order().Status)
			assert.Equal(t, "Failed to Complete", lastNotification(t, h.collector).Title)
		})
	}
}

func TestMarkDeliveredWithoutDelivery(t *testing.T) {
	h := newHarness()
	h.deliveries.byOrderErr = errors.New("404")

	require.Error(t, h.actions.MarkDelivered(context.Background(), NewOrderRef(order(domain.OrderStatusShipped))))
	assert.Equal(t, []string{"deliveries.by_order ord-1"}, h.log.all())
}

func TestNavigation(t *testing.T) {
	h := newHarness()

	require.NoError(t, h.actions.Edit(context.Background(), NewOrderRef(order(domain.OrderStatusPending))))
	assert.Equal(t, "/orders/ord-1/edit", h.collector.Redirect())

	h.actions.Back(context.Background())
	assert.Equal(t, OrdersScreen, h.collector.Redirect())
}
