package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID           int64     `json:"id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	CustomerCode *string   `json:"customer_code"`
	Email        string    `json:"email" validate:"omitempty,email"`
	Phone        string    `json:"phone"`
	NPWP         string    `json:"npwp"`
	Address      string    `json:"address,omitempty"`
	City         string    `json:"city"`
	Province     string    `json:"province"`
	PostalCode   string    `json:"postalcode"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Supplier struct {
	ID           int64     `json:"id" validate:"required"`
	SupplierCode string    `json:"supplier_code"`
	Name         string    `json:"name" validate:"required"`
	Category     *string   `json:"kategori"`
	NPWP         *string   `json:"npwp"`
	Address      string    `json:"address"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email" validate:"omitempty,email"`
	City         *string   `json:"city"`
	Province     *string   `json:"province"`
	PostalCode   *string   `json:"postalcode"`
	AccurateID   *string   `json:"accurate_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID            int64      `json:"id" validate:"required"`
	ProductCode   string     `json:"product_code"`
	Name          string     `json:"name" validate:"required"`
	Description   string     `json:"description"`
	Stock         int        `json:"stock"`
	IsBundle      bool       `json:"is_bundle"`
	InventoryType string     `json:"inventory_type"`
	IsDeleted     bool       `json:"is_deleted"`
	DeletedAt     *time.Time `json:"deleted_at"`
	CreatedAt     time.Time  `json:"created_at"`
	Supplier      *Supplier  `json:"supplier,omitempty"`
	Prices        []Price    `json:"prices"`
}

// Price is one price row of a product: purchase base, selling base and
// selling price.
type Price struct {
	ID        int64           `json:"id"`
	DPPBuy    decimal.Decimal `json:"dpp_beli"`
	DPPSell   decimal.Decimal `json:"dpp_jual"`
	SellPrice decimal.Decimal `json:"h_jual_b"`
	CreatedAt time.Time       `json:"created_at"`
}

type Tax struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Rate        decimal.Decimal `json:"rate"`
	Description *string         `json:"description"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Address struct {
	ID         int64  `json:"id" validate:"required"`
	OwnerID    int64  `json:"ownerId"`
	OwnerType  Role   `json:"ownerType"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Village    string `json:"village,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalcode"`
	IsDefault  bool   `json:"is_default"`
}

type TaxIdentification struct {
	ID                int64     `json:"id" validate:"required"`
	OwnerType         Role      `json:"ownerType"`
	OwnerID           int64     `json:"ownerId"`
	TaxType           string    `json:"taxType"`
	TaxNumber         string    `json:"taxNumber"`
	TaxName           string    `json:"taxName"`
	RegisteredAddress string    `json:"registeredAddress"`
	IsActive          bool      `json:"isActive"`
	IsPrimary         bool      `json:"isPrimary"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Owner identifies the party that owns addresses and tax identifications.
type Owner struct {
	ID   int64
	Type Role
}

// User is the authenticated account together with its party profile.
type User struct {
	ID      int64   `json:"id" validate:"required"`
	Email   string  `json:"email"`
	Role    Role    `json:"role" validate:"required"`
	Profile Profile `json:"profile"`
}

type Profile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Owner returns the owner identity used for owner-scoped resources.
func (u User) Owner() Owner {
	return Owner{ID: u.Profile.ID, Type: u.Role}
}
