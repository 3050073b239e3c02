package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/bizops-dashboard/internal/coordinator"
	"github.com/jcmexdev/bizops-dashboard/internal/domain"
	"github.com/jcmexdev/bizops-dashboard/internal/notify"
	"github.com/jcmexdev/bizops-dashboard/internal/orders"
	"github.com/jcmexdev/bizops-dashboard/internal/session"
)

// ListOrders returns the orders the signed-in role works with and stores
// them as the session's shared order list.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	var fetch func(context.Context) ([]domain.Order, error)
	switch s.Role() {
	case domain.RoleAdmin:
		fetch = h.orders.List
	case domain.RoleSupplier:
		fetch = h.orders.ListIncoming
	default:
		fetch = h.orders.ListMine
	}
	list, err := s.RefreshOrders(r.Context(), fetch)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetOrder returns the order with its totals and progress timeline.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	d := h.deliveryOf(r.Context(), o)
	sum := orders.Summarize(o)
	writeJSON(w, http.StatusOK, OrderDetailResponse{
		Order:    o,
		Delivery: d,
		Summary:  sum,
		Total:    orders.FormatIDR(sum.GrandTotal),
		Timeline: orders.Timeline(o, d),
	})
}

// deliveryOf returns the order's delivery when the order carries one or
// has been shipped. A failed lookup only drops the delivery timestamps.
func (h *Handler) deliveryOf(ctx context.Context, o *domain.Order) *domain.Delivery {
	if len(o.Deliveries) > 0 {
		d := o.Deliveries[0]
		return &d
	}
	switch o.Status {
	case domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCompleted:
	default:
		return nil
	}
	d, err := h.deliveries.GetByOrder(ctx, o.ID)
	if err != nil {
		h.logger.WarnContext(ctx, "delivery lookup failed", "order_id", o.ID, "error", err)
		return nil
	}
	return d
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, func(ctx context.Context, a *coordinator.OrderActions, ref *coordinator.OrderRef) error {
		return a.Cancel(ctx, ref)
	})
}

func (h *Handler) PayOrder(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, func(ctx context.Context, a *coordinator.OrderActions, ref *coordinator.OrderRef) error {
		return a.Pay(ctx, ref)
	})
}

// ShipOrder ships with the courier details in the body. An empty body is
// the user closing the form.
func (h *Handler) ShipOrder(w http.ResponseWriter, r *http.Request) {
	info, err := decodeShipping(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	prompt := func(context.Context) (*coordinator.ShippingInfo, error) { return info, nil }
	h.runAction(w, r, func(ctx context.Context, a *coordinator.OrderActions, ref *coordinator.OrderRef) error {
		return a.Ship(ctx, ref, prompt)
	})
}

func (h *Handler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, func(ctx context.Context, a *coordinator.OrderActions, ref *coordinator.OrderRef) error {
		return a.MarkDelivered(ctx, ref)
	})
}

// OrderSaga returns the latest saga log row written for the order.
func (h *Handler) OrderSaga(w http.ResponseWriter, r *http.Request) {
	entry, err := h.sagaLog.LatestForOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	list, err := session.FromContext(r.Context()).RefreshDeliveries(r.Context(), h.deliveries.List)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type action func(ctx context.Context, a *coordinator.OrderActions, ref *coordinator.OrderRef) error

// runAction loads the order, runs fn with a per-request notification
// collector and answers with the resulting order, notifications and
// redirect.
func (h *Handler) runAction(w http.ResponseWriter, r *http.Request, fn action) {
	ctx := r.Context()
	o, err := h.orders.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}

	collector := &notify.Collector{}
	opts := append([]coordinator.Option{
		coordinator.WithNavigator(collector),
		coordinator.WithSharedLists(session.FromContext(ctx)),
		coordinator.WithSagaLog(h.sagaLog),
		coordinator.WithLogger(h.logger),
	}, h.actionOpts...)
	actions := coordinator.NewOrderActions(h.orders, h.deliveries,
		notify.Multi{collector, notify.Log{Logger: h.logger}}, opts...)

	ref := coordinator.NewOrderRef(o)
	err = fn(ctx, actions, ref)
	if err != nil && !errors.Is(err, coordinator.ErrShippingCancelled) {
		h.fail(w, r, err, collector.Notifications())
		return
	}
	writeJSON(w, http.StatusOK, ActionResponse{
		Order:         ref.Order(),
		Notifications: collector.Notifications(),
		Redirect:      collector.Redirect(),
	})
}

// decodeShipping returns nil for an empty body or one without courier
// details.
func decodeShipping(body io.Reader) (*coordinator.ShippingInfo, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}
	var req ShipRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	if req.CourierName == "" && req.TrackingNumber == "" {
		return nil, nil
	}
	return &coordinator.ShippingInfo{CourierName: req.CourierName, TrackingNumber: req.TrackingNumber}, nil
}
