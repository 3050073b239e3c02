package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jcmexdev/bizops-dashboard/internal/domain"
)

const orderResource = "order"

// OrderService talks to /orders. Order ids are opaque strings.
type OrderService struct {
	c *Client
}

// CreatedOrder is the answer to an order creation: the order plus the
// payment token issued for it, if any.
type CreatedOrder struct {
	Order     domain.Order
	SnapToken string
}

// PaymentResult is the answer to a payment request. Order is nil when the
// backend did not echo the updated order back.
type PaymentResult struct {
	SnapToken string
	Order     *domain.Order
}

func orderPath(id string) string {
	return "/orders/" + url.PathEscape(id)
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.listAt(ctx, "/orders", false)
}

// ListMine returns the orders placed by the logged-in customer.
func (s *OrderService) ListMine(ctx context.Context) ([]domain.Order, error) {
	return s.listAt(ctx, "/orders/me", true)
}

// ListIncoming returns the orders addressed to the logged-in supplier.
func (s *OrderService) ListIncoming(ctx context.Context) ([]domain.Order, error) {
	return s.listAt(ctx, "/orders/incoming", true)
}

func (s *OrderService) listAt(ctx context.Context, path string, auth bool) ([]domain.Order, error) {
	raw, err := s.c.send(ctx, request{method: http.MethodGet, path: path, authRequired: auth})
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Order](s.c, orderResource, raw)
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	if err := nonEmptyKey("order.get", "id", id); err != nil {
		return nil, err
	}
	return s.object(ctx, request{method: http.MethodGet, path: orderPath(id)})
}

// Create places an order. The backend answers {order, snapToken}.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*CreatedOrder, error) {
	if err := s.c.validateInput("order.create", in); err != nil {
		return nil, err
	}
	raw, err := s.c.send(ctx, request{method: http.MethodPost, path: "/orders", body: in})
	if err != nil {
		return nil, err
	}

	var body struct {
		Order     *domain.Order `json:"order"`
		SnapToken *string       `json:"snapToken"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &SchemaError{Resource: orderResource, Err: err}
	}
	if body.Order == nil {
		return nil, &SchemaError{Resource: orderResource, Err: errMissingOrder}
	}
	if err := s.c.validateResponse(orderResource, body.Order); err != nil {
		return nil, err
	}

	out := &CreatedOrder{Order: *body.Order}
	if body.SnapToken != nil {
		out.SnapToken = *body.SnapToken
	}
	return out, nil
}

func (s *OrderService) Update(ctx context.Context, id string, in UpdateOrderInput) (*domain.Order, error) {
	op := "order.update"
	if err := nonEmptyKey(op, "id", id); err != nil {
		return nil, err
	}
	if err := s.c.validateInput(op, in); err != nil {
		return nil, err
	}
	return s.object(ctx, request{method: http.MethodPut, path: orderPath(id), body: in})
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := nonEmptyKey("order.delete", "id", id); err != nil {
		return err
	}
	_, err := s.c.send(ctx, request{method: http.MethodDelete, path: orderPath(id)})
	return err
}

// Cancel asks the backend to cancel the order through its dedicated route.
func (s *OrderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	if err := nonEmptyKey("order.cancel", "id", id); err != nil {
		return nil, err
	}
	return s.object(ctx, request{method: http.MethodPatch, path: orderPath(id) + "/cancel"})
}

func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	op := "order.update_status"
	if err := nonEmptyKey(op, "id", id); err != nil {
		return nil, err
	}
	if !status.IsKnown() {
		return nil, &ValidationError{Op: op, Fields: map[string]string{"status": "must be one of pending paid shipped delivered completed cancelled"}}
	}
	return s.object(ctx, request{method: http.MethodPatch, path: orderPath(id) + "/status/" + string(status)})
}

// ProcessPayment requests a payment token for the order.
func (s *OrderService) ProcessPayment(ctx context.Context, id string) (*PaymentResult, error) {
	if err := nonEmptyKey("order.process_payment", "id", id); err != nil {
		return nil, err
	}
	raw, err := s.c.send(ctx, request{method: http.MethodPatch, path: orderPath(id) + "/snap-token"})
	if err != nil {
		return nil, err
	}

	var body struct {
		SnapToken *string       `json:"snapToken"`
		Order     *domain.Order `json:"order"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &SchemaError{Resource: orderResource, Err: err}
	}
	if body.Order != nil {
		if err := s.c.validateResponse(orderResource, body.Order); err != nil {
			return nil, err
		}
	}

	out := &PaymentResult{Order: body.Order}
	if body.SnapToken != nil {
		out.SnapToken = *body.SnapToken
	}
	return out, nil
}

func (s *OrderService) object(ctx context.Context, r request) (*domain.Order, error) {
	raw, err := s.c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	return decodeObject[domain.Order](s.c, orderResource, raw)
}
