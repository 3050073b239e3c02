package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jcmexdev/bizops-dashboard/internal/domain"
)

// DeliveryService talks to /shippings, the shipment records of orders.
type DeliveryService struct {
	crud[domain.Delivery]
}

func (s *DeliveryService) List(ctx context.Context) ([]domain.Delivery, error) {
	return s.list(ctx, nil)
}

func (s *DeliveryService) Create(ctx context.Context, in DeliveryInput) (*domain.Delivery, error) {
	return s.create(ctx, in)
}

func (s *DeliveryService) Update(ctx context.Context, id int64, in DeliveryUpdateInput) (*domain.Delivery, error) {
	return s.update(ctx, id, in)
}

// GetByOrder returns the delivery attached to an order.
func (s *DeliveryService) GetByOrder(ctx context.Context, orderID string) (*domain.Delivery, error) {
	if err := nonEmptyKey("delivery.get_by_order", "orderId", orderID); err != nil {
		return nil, err
	}
	raw, err := s.c.send(ctx, request{method: http.MethodGet, path: s.base + "/by-order/" + url.PathEscape(orderID)})
	if err != nil {
		return nil, err
	}
	return decodeObject[domain.Delivery](s.c, s.resource, raw)
}
