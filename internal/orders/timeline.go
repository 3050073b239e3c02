package orders

import (
	"time"

	"github.com/jcmexdev/bizops-dashboard/internal/domain"
)

type Step struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	At          *time.Time `json:"at"`
	Completed   bool       `json:"completed"`
}

// Timeline lays the order's progress out as five steps. Timestamps come from
// the order and its delivery; steps the backend keeps no time for stay nil.
// delivery may be nil.
func Timeline(o *domain.Order, delivery *domain.Delivery) []Step {
	if o == nil {
		return nil
	}

	reached := func(statuses ...domain.OrderStatus) bool {
		for _, s := range statuses {
			if o.Status == s {
				return true
			}
		}
		return false
	}
	// Any status past pending, cancelled included, has left payment behind.
	paymentDone := o.Status != domain.OrderStatusPending
	paid := reached(domain.OrderStatusPaid, domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCompleted)
	shipped := reached(domain.OrderStatusShipped, domain.OrderStatusDelivered, domain.OrderStatusCompleted)
	delivered := reached(domain.OrderStatusDelivered, domain.OrderStatusCompleted)

	var created *time.Time
	if !o.OrderDate.IsZero() {
		t := o.OrderDate
		created = &t
	}

	var shippedAt, deliveredAt *time.Time
	if delivery != nil {
		shippedAt = delivery.ShippedAt
		deliveredAt = delivery.DeliveredAt
	}
	if !shipped {
		shippedAt = nil
	}
	if !delivered {
		deliveredAt = nil
	}

	return []Step{
		{Title: "Order Created", Description: "Order has been placed", At: created, Completed: true},
		{Title: "Payment Processing", Description: "Waiting for payment confirmation", Completed: paymentDone},
		{Title: "Order Confirmed", Description: "Payment confirmed, preparing for shipment", Completed: paid},
		{Title: "Shipped", Description: "Order has been shipped", At: shippedAt, Completed: shipped},
		{Title: "Delivered", Description: "Order has been delivered", At: deliveredAt, Completed: delivered},
	}
}
