package domain

import "time"

type ShippingStatus string

const (
	ShippingStatusPending   ShippingStatus = "pending"
	ShippingStatusShipped   ShippingStatus = "shipped"
	ShippingStatusDelivered ShippingStatus = "delivered"
	ShippingStatusCancelled ShippingStatus = "cancelled"
	ShippingStatusReturned  ShippingStatus = "returned"
)

// Delivery is the shipment record attached to an order once it is dispatched.
type Delivery struct {
	ID             int64          `json:"id" validate:"required"`
	OrderID        string         `json:"orderId,omitempty"`
	CourierName    string         `json:"courierName"`
	TrackingNumber string         `json:"trackingNumber"`
	ShippingStatus ShippingStatus `json:"shippingStatus"`
	ShippedAt      *time.Time     `json:"shippedAt"`
	DeliveredAt    *time.Time     `json:"deliveredAt"`
	CreatedAt      *time.Time     `json:"createdAt,omitempty"`
	Order          *Order         `json:"order,omitempty"`
}

// OrderRef returns the id of the order the delivery belongs to, whichever
// way the backend chose to send it.
func (d Delivery) OrderRef() string {
	if d.OrderID != "" {
		return d.OrderID
	}
	if d.Order != nil {
		return d.Order.ID
	}
	return ""
}
