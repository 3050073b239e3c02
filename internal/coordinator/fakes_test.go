package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/jcmexdev/bizops-dashboard/internal/backend"
	"github.com/jcmexdev/bizops-dashboard/internal/domain"
	"github.com/jcmexdev/bizops-dashboard/internal/pkg/reqctx"
)

// callLog records backend calls in the order they were issued.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeOrders struct {
	log        *callLog
	updateErr  error
	payErr     error
	getErr     error
	payOrder   *domain.Order
	getOrder   *domain.Order
	lastUpdate backend.UpdateOrderInput
	idemKeys   []string
}

func (f *fakeOrders) Get(_ context.Context, id string) (*domain.Order, error) {
	f.log.add("orders.get %s", id)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOrder, nil
}

func (f *fakeOrders) Update(ctx context.Context, id string, in backend.UpdateOrderInput) (*domain.Order, error) {
	f.log.add("orders.update %s %s", id, in.Status)
	f.idemKeys = append(f.idemKeys, reqctx.IdempotencyKey(ctx))
	f.lastUpdate = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &domain.Order{ID: id, OrderNumber: "SO-" + id, Status: in.Status}, nil
}

func (f *fakeOrders) ProcessPayment(_ context.Context, id string) (*backend.PaymentResult, error) {
	f.log.add("orders.pay %s", id)
	if f.payErr != nil {
		return nil, f.payErr
	}
	return &backend.PaymentResult{SnapToken: "snap", Order: f.payOrder}, nil
}

type fakeDeliveries struct {
	log        *callLog
	createErr  error
	updateErrs []error
	deleteErr  error
	byOrderErr error
	byOrder    *domain.Delivery
	listErr    error
	created    backend.DeliveryInput
	updates    []backend.DeliveryUpdateInput
	idemKey    string
	list       []domain.Delivery
}

func (f *fakeDeliveries) List(context.Context) ([]domain.Delivery, error) {
	f.log.add("deliveries.list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeDeliveries) Create(ctx context.Context, in backend.DeliveryInput) (*domain.Delivery, error) {
	f.log.add("deliveries.create %s", in.OrderID)
	f.idemKey = reqctx.IdempotencyKey(ctx)
	f.created = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Delivery{ID: 41, OrderID: in.OrderID, ShippingStatus: in.ShippingStatus}, nil
}

func (f *fakeDeliveries) Update(_ context.Context, id int64, in backend.DeliveryUpdateInput) (*domain.Delivery, error) {
	f.log.add("deliveries.update %d %s", id, in.ShippingStatus)
	f.updates = append(f.updates, in)
	if len(f.updateErrs) > 0 {
		err := f.updateErrs[0]
		f.updateErrs = f.updateErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &domain.Delivery{ID: id, ShippingStatus: in.ShippingStatus}, nil
}

func (f *fakeDeliveries) Delete(_ context.Context, id int64) error {
	f.log.add("deliveries.delete %d", id)
	return f.deleteErr
}

func (f *fakeDeliveries) GetByOrder(_ context.Context, orderID string) (*domain.Delivery, error) {
	f.log.add("deliveries.by_order %s", orderID)
	if f.byOrderErr != nil {
		return nil, f.byOrderErr
	}
	if f.byOrder != nil {
		d := *f.byOrder
		return &d, nil
	}
	return &domain.Delivery{ID: 41, OrderID: orderID, ShippingStatus: domain.ShippingStatusShipped}, nil
}

type fakeLists struct {
	orders     []domain.Order
	deliveries []domain.Delivery
}

func (f *fakeLists) ReplaceOrder(o domain.Order) { f.orders = append(f.orders, o) }

func (f *fakeLists) SetDeliveries(d []domain.Delivery) { f.deliveries = d }
