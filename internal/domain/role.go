package domain

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSupplier Role = "supplier"
	RoleCustomer Role = "customer"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSupplier, RoleCustomer:
		return true
	default:
		return false
	}
}
