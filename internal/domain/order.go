package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsKnown reports whether s is one of the statuses this client understands.
// Unknown values are still carried through untouched.
func (s OrderStatus) IsKnown() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusPaid,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCompleted,
		OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks the normal forward progression
// pending -> paid -> shipped -> delivered/completed, with cancellation
// allowed from pending and paid. The backend is authoritative; this is
// only consulted when a caller opts into a client-side guard.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusPaid || next == OrderStatusCancelled
	case OrderStatusPaid:
		return next == OrderStatusShipped || next == OrderStatusCancelled
	case OrderStatusShipped:
		return next == OrderStatusDelivered || next == OrderStatusCompleted
	case OrderStatusDelivered:
		return next == OrderStatusCompleted
	default:
		return false
	}
}

// Order is the sales order as returned by the backend.
type Order struct {
	ID              string          `json:"id" validate:"required"`
	OrderNumber     string          `json:"orderNumber" validate:"required"`
	CustomerID      int64           `json:"customerId"`
	SupplierID      int64           `json:"supplierId"`
	OrderDate       time.Time       `json:"orderDate"`
	Status          OrderStatus     `json:"status" validate:"required"`
	Notes           string          `json:"notes"`
	DeliveryAddress string          `json:"deliveryAddress"`
	SubTotal        decimal.Decimal `json:"subTotal"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	Total           decimal.Decimal `json:"total"`
	SnapToken       *string         `json:"snapToken"`
	ParentOrderID   *string         `json:"parentOrderId"`
	Customer        *Customer       `json:"customer,omitempty"`
	Supplier        *Supplier       `json:"supplier,omitempty"`
	Items           []OrderItem     `json:"items" validate:"dive"`
	Deliveries      []Delivery      `json:"deliveries,omitempty"`
}

type OrderItem struct {
	ID               int64           `json:"id"`
	OrderID          string          `json:"orderId"`
	Quantity         int             `json:"quantity" validate:"gte=0"`
	Price            decimal.Decimal `json:"price"`
	SourceBundleCode *string         `json:"sourceBundleCode"`
	Product          *Product        `json:"product,omitempty"`
	Taxes            []TaxEntry      `json:"taxes"`
}

// TaxEntry is the tax computed on one order line for one tax definition.
type TaxEntry struct {
	ID        int64           `json:"id"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
	Tax       Tax             `json:"tax"`
}
