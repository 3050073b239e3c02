package backend

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/bizops-dashboard/internal/domain"
)

type OrderLineInput struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

type CreateOrderInput struct {
	CustomerID      int64            `json:"customerId,omitempty"`
	SupplierID      int64            `json:"supplierId,omitempty"`
	DeliveryAddress string           `json:"deliveryAddress" validate:"required"`
	ShippingCost    decimal.Decimal  `json:"shippingCost"`
	Notes           string           `json:"notes,omitempty"`
	Items           []OrderLineInput `json:"items" validate:"required,min=1,dive"`
}

func (in CreateOrderInput) checkFields() map[string]string {
	if in.ShippingCost.IsNegative() {
		return map[string]string{"shippingCost": "must be at least 0"}
	}
	return nil
}

// UpdateOrderInput is a partial order update. At least one field must be set.
type UpdateOrderInput struct {
	Status          domain.OrderStatus `json:"status,omitempty" validate:"omitempty,oneof=pending paid shipped delivered completed cancelled"`
	Notes           *string            `json:"notes,omitempty"`
	DeliveryAddress *string            `json:"deliveryAddress,omitempty"`
}

func (in UpdateOrderInput) checkFields() map[string]string {
	if in.Status == "" && in.Notes == nil && in.DeliveryAddress == nil {
		return map[string]string{"_": "no fields to update"}
	}
	return nil
}

type CustomerInput struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string `json:"phone,omitempty"`
	NPWP       string `json:"npwp,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postalcode,omitempty"`
}

func (in CustomerInput) checkFields() map[string]string {
	return npwpField("npwp", in.NPWP)
}

type SupplierInput struct {
	Name         string `json:"name" validate:"required"`
	SupplierCode string `json:"supplier_code,omitempty"`
	Category     string `json:"kategori,omitempty"`
	NPWP         string `json:"npwp,omitempty"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	City         string `json:"city,omitempty"`
	Province     string `json:"province,omitempty"`
	PostalCode   string `json:"postalcode,omitempty"`
}

func (in SupplierInput) checkFields() map[string]string {
	return npwpField("npwp", in.NPWP)
}

type ProductInput struct {
	ProductCode   string `json:"product_code,omitempty"`
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description,omitempty"`
	Stock         int    `json:"stock" validate:"gte=0"`
	IsBundle      bool   `json:"is_bundle"`
	InventoryType string `json:"inventory_type,omitempty"`
	SupplierID    int64  `json:"supplier_id,omitempty"`
}

type TaxInput struct {
	Name        string          `json:"name" validate:"required"`
	Rate        decimal.Decimal `json:"rate"`
	Description *string         `json:"description,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

var hundred = decimal.NewFromInt(100)

func (in TaxInput) checkFields() map[string]string {
	if in.Rate.IsNegative() || in.Rate.GreaterThan(hundred) {
		return map[string]string{"rate": "must be between 0 and 100"}
	}
	return nil
}

// DeliveryInput creates a shipping record for an order.
type DeliveryInput struct {
	OrderID        string                `json:"orderId" validate:"required"`
	CourierName    string                `json:"courierName" validate:"required"`
	TrackingNumber string                `json:"trackingNumber" validate:"required"`
	ShippingStatus domain.ShippingStatus `json:"shippingStatus" validate:"required,oneof=pending shipped delivered cancelled returned"`
	ShippedAt      *time.Time            `json:"shippedAt,omitempty"`
}

// NullTime is a timestamp that can be sent as an explicit JSON null.
// The zero value is omitted from the body entirely.
type NullTime struct {
	Time  time.Time
	Valid bool
	set   bool
}

// At returns a NullTime carrying t.
func At(t time.Time) NullTime { return NullTime{Time: t, Valid: true, set: true} }

// Null returns a NullTime that serializes as null.
func Null() NullTime { return NullTime{set: true} }

func (n NullTime) IsZero() bool { return !n.set }

func (n NullTime) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Time)
}

type DeliveryUpdateInput struct {
	CourierName    string                `json:"courierName,omitempty"`
	TrackingNumber string                `json:"trackingNumber,omitempty"`
	ShippingStatus domain.ShippingStatus `json:"shippingStatus,omitempty" validate:"omitempty,oneof=pending shipped delivered cancelled returned"`
	ShippedAt      NullTime              `json:"shippedAt,omitzero"`
	DeliveredAt    NullTime              `json:"deliveredAt,omitzero"`
}

// AddressInput is an address of the current user. Owner fields are filled
// in by the client.
type AddressInput struct {
	OwnerID    int64       `json:"ownerId"`
	OwnerType  domain.Role `json:"ownerType"`
	Name       string      `json:"name" validate:"required"`
	Phone      string      `json:"phone" validate:"required"`
	Address    string      `json:"address" validate:"required"`
	Village    string      `json:"village,omitempty"`
	District   string      `json:"district,omitempty"`
	City       string      `json:"city" validate:"required"`
	Province   string      `json:"province" validate:"required"`
	PostalCode string      `json:"postalcode,omitempty"`
	IsDefault  bool        `json:"is_default"`
}

type TaxIdentificationInput struct {
	OwnerID           int64       `json:"ownerId"`
	OwnerType         domain.Role `json:"ownerType"`
	TaxType           string      `json:"taxType" validate:"required"`
	TaxNumber         string      `json:"taxNumber" validate:"required"`
	TaxName           string      `json:"taxName" validate:"required"`
	RegisteredAddress string      `json:"registeredAddress,omitempty"`
	IsPrimary         bool        `json:"isPrimary"`
}

func (in TaxIdentificationInput) checkFields() map[string]string {
	if in.TaxType == "npwp" {
		return npwpField("taxNumber", in.TaxNumber)
	}
	return nil
}

func npwpField(field, v string) map[string]string {
	if v == "" {
		return nil
	}
	if err := domain.ValidateNPWP(v); err != nil {
		return map[string]string{field: strings.ReplaceAll(err.Error(), "\n", "; ")}
	}
	return nil
}
