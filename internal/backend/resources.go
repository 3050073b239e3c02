package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jcmexdev/bizops-dashboard/internal/domain"
)

type CustomerService struct {
	crud[domain.Customer]
}

func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.list(ctx, nil)
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	return s.create(ctx, in)
}

func (s *CustomerService) Update(ctx context.Context, id int64, in CustomerInput) (*domain.Customer, error) {
	return s.update(ctx, id, in)
}

// Me returns the customer profile of the logged-in user.
func (s *CustomerService) Me(ctx context.Context) (*domain.Customer, error) {
	raw, err := s.c.send(ctx, request{method: http.MethodGet, path: "/customers/me", authRequired: true})
	if err != nil {
		return nil, err
	}
	return decodeObject[domain.Customer](s.c, s.resource, raw)
}

// AddAddress attaches a new address to a customer.
func (s *CustomerService) AddAddress(ctx context.Context, customerID int64, in AddressInput) (*domain.Address, error) {
	op := "customer.add_address"
	if err := positiveID(op, customerID); err != nil {
		return nil, err
	}
	if err := s.c.validateInput(op, in); err != nil {
		return nil, err
	}
	raw, err := s.c.send(ctx, request{method: http.MethodPost, path: s.path(customerID) + "/addresses", body: in})
	if err != nil {
		return nil, err
	}
	return decodeObject[domain.Address](s.c, "address", raw)
}

type SupplierService struct {
	crud[domain.Supplier]
}

func (s *SupplierService) List(ctx context.Context) ([]domain.Supplier, error) {
	return s.list(ctx, nil)
}

func (s *SupplierService) Create(ctx context.Context, in SupplierInput) (*domain.Supplier, error) {
	return s.create(ctx, in)
}

func (s *SupplierService) Update(ctx context.Context, id int64, in SupplierInput) (*domain.Supplier, error) {
	return s.update(ctx, id, in)
}

type ProductService struct {
	crud[domain.Product]
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, nil)
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	return s.create(ctx, in)
}

func (s *ProductService) Update(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	return s.update(ctx, id, in)
}

// ListMine returns the products of the logged-in supplier.
func (s *ProductService) ListMine(ctx context.Context) ([]domain.Product, error) {
	return s.listAt(ctx, "/products/my", true)
}

// Catalog returns the products offered to customers.
func (s *ProductService) Catalog(ctx context.Context) ([]domain.Product, error) {
	return s.listAt(ctx, "/products/catalog", false)
}

// AdminAll returns every product, deleted ones included.
func (s *ProductService) AdminAll(ctx context.Context) ([]domain.Product, error) {
	return s.listAt(ctx, "/products/admin/all", false)
}

func (s *ProductService) BySupplier(ctx context.Context, supplierID int64) ([]domain.Product, error) {
	if err := positiveID("product.by_supplier", supplierID); err != nil {
		return nil, err
	}
	return s.listAt(ctx, "/products/supplier/"+strconv.FormatInt(supplierID, 10), false)
}

// Bundles returns the products flagged as bundles.
func (s *ProductService) Bundles(ctx context.Context) ([]domain.Product, error) {
	return s.filtered(ctx, true)
}

// NonBundles returns the products that are not bundles.
func (s *ProductService) NonBundles(ctx context.Context) ([]domain.Product, error) {
	return s.filtered(ctx, false)
}

func (s *ProductService) filtered(ctx context.Context, bundle bool) ([]domain.Product, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if p.IsBundle == bundle {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProductService) listAt(ctx context.Context, path string, auth bool) ([]domain.Product, error) {
	raw, err := s.c.send(ctx, request{method: http.MethodGet, path: path, authRequired: auth})
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Product](s.c, s.resource, raw)
}

type TaxService struct {
	crud[domain.Tax]
}

func (s *TaxService) List(ctx context.Context) ([]domain.Tax, error) {
	return s.list(ctx, nil)
}

func (s *TaxService) Create(ctx context.Context, in TaxInput) (*domain.Tax, error) {
	return s.create(ctx, in)
}

func (s *TaxService) Update(ctx context.Context, id int64, in TaxInput) (*domain.Tax, error) {
	return s.update(ctx, id, in)
}

// AddressService manages the addresses of the logged-in party. Every call
// requires a token.
type AddressService struct {
	crud[domain.Address]
}

func (s *AddressService) List(ctx context.Context, owner domain.Owner) ([]domain.Address, error) {
	q, err := s.c.ownerQuery(ctx, "address.list", owner)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, q)
}

func (s *AddressService) Create(ctx context.Context, owner domain.Owner, in AddressInput) (*domain.Address, error) {
	if _, err := s.c.ownerQuery(ctx, "address.create", owner); err != nil {
		return nil, err
	}
	if in.OwnerID == 0 {
		in.OwnerID = owner.ID
	}
	if in.OwnerType == "" {
		in.OwnerType = owner.Type
	}
	return s.create(ctx, in)
}

func (s *AddressService) Update(ctx context.Context, id int64, in AddressInput) (*domain.Address, error) {
	return s.update(ctx, id, in)
}

// SetDefault makes the address the owner's default one.
func (s *AddressService) SetDefault(ctx context.Context, id int64) (*domain.Address, error) {
	return s.patchAction(ctx, id, "set-default")
}

// TaxIdentificationService manages the tax numbers of the logged-in party.
// Every call requires a token.
type TaxIdentificationService struct {
	crud[domain.TaxIdentification]
}

func (s *TaxIdentificationService) List(ctx context.Context, owner domain.Owner) ([]domain.TaxIdentification, error) {
	q, err := s.c.ownerQuery(ctx, "tax_identification.list", owner)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, q)
}

func (s *TaxIdentificationService) Create(ctx context.Context, owner domain.Owner, in TaxIdentificationInput) (*domain.TaxIdentification, error) {
	if _, err := s.c.ownerQuery(ctx, "tax_identification.create", owner); err != nil {
		return nil, err
	}
	in.OwnerID = owner.ID
	in.OwnerType = owner.Type
	return s.create(ctx, in)
}

func (s *TaxIdentificationService) Update(ctx context.Context, id int64, in TaxIdentificationInput) (*domain.TaxIdentification, error) {
	return s.update(ctx, id, in)
}

func (s *TaxIdentificationService) SetPrimary(ctx context.Context, id int64) (*domain.TaxIdentification, error) {
	return s.patchAction(ctx, id, "set-primary")
}

func (s *TaxIdentificationService) ToggleActive(ctx context.Context, id int64) (*domain.TaxIdentification, error) {
	return s.patchAction(ctx, id, "toggle-active")
}

// ownerQuery checks the session before the owner so a logged-out caller
// always sees ErrUnauthenticated.
func (c *Client) ownerQuery(ctx context.Context, op string, owner domain.Owner) (url.Values, error) {
	if c.tokens.Token(ctx) == "" {
		return nil, ErrUnauthenticated
	}
	fields := map[string]string{}
	if owner.ID <= 0 {
		fields["ownerId"] = "is required"
	}
	if !owner.Type.IsValid() {
		fields["ownerType"] = "must be one of admin supplier customer"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Op: op, Fields: fields}
	}
	return url.Values{
		"ownerId":   {strconv.FormatInt(owner.ID, 10)},
		"ownerType": {string(owner.Type)},
	}, nil
}
