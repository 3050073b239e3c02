package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPaid, OrderStatusShipped, true},
		{OrderStatusPaid, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCompleted, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPaid, false},
		{OrderStatus("archived"), OrderStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderDecodesStringAndNumericMoney(t *testing.T) {
	raw := `{
		"id": "ord-1",
		"orderNumber": "SO-001",
		"status": "pending",
		"orderDate": "2025-06-19T10:30:00Z",
		"subTotal": "20000.00",
		"shippingCost": null,
		"total": 22200,
		"items": [{"id": 1, "quantity": 2, "price": "10000.00", "taxes": [{"id": 1, "taxRate": "11.00", "taxAmount": "2200.00", "tax": {"id": 1, "name": "PPN 11%", "rate": "11.00", "is_active": true}}]}]
	}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))

	assert.True(t, o.Total.Equal(decimal.NewFromInt(22200)))
	assert.True(t, o.ShippingCost.IsZero())
	require.Len(t, o.Items, 1)
	assert.Equal(t, "2200", o.Items[0].Taxes[0].TaxAmount.String())
}

func TestDeliveryOrderRef(t *testing.T) {
	assert.Equal(t, "a", Delivery{OrderID: "a"}.OrderRef())
	assert.Equal(t, "b", Delivery{Order: &Order{ID: "b"}}.OrderRef())
	assert.Equal(t, "", Delivery{}.OrderRef())
}

func TestFormatNPWP(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"01", "01"},
		{"0123", "01.23"},
		{"0123456", "01.234.56"},
		{"012345678", "01.234.567.8"},
		{"0123456780", "01.234.567.8-0"},
		{"012345678000000", "01.234.567.8-000.000"},
		{"01.234.567.8-000.000999", "01.234.567.8-000.000"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNPWP(tt.in))
		})
	}
}

func TestValidateNPWP(t *testing.T) {
	assert.NoError(t, ValidateNPWP("01.234.567.8-000.000"))
	assert.ErrorIs(t, ValidateNPWP(""), ErrNPWPEmpty)
	assert.ErrorIs(t, ValidateNPWP("0123"), ErrNPWPLength)
	assert.ErrorIs(t, ValidateNPWP("012345679000000"), ErrNPWPCheckDigit)

	err := ValidateNPWP("992345678000000")
	assert.ErrorIs(t, err, ErrNPWPTaxpayerType)
	assert.ErrorIs(t, err, ErrNPWPCheckDigit)
}

func TestUserOwner(t *testing.T) {
	u := User{ID: 7, Role: RoleSupplier, Profile: Profile{ID: 42}}
	assert.Equal(t, Owner{ID: 42, Type: RoleSupplier}, u.Owner())
}
