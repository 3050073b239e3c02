package httpx

import (
	"github.com/jcmexdev/bizops-dashboard/internal/domain"
	"github.com/jcmexdev/bizops-dashboard/internal/nav"
	"github.com/jcmexdev/bizops-dashboard/internal/notify"
	"github.com/jcmexdev/bizops-dashboard/internal/orders"
	"github.com/jcmexdev/bizops-dashboard/internal/wilayah"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user"`
}

type NavResponse struct {
	Role   domain.Role `json:"role"`
	Menu   []nav.Menu  `json:"menu"`
	Bottom []nav.Item  `json:"bottom"`
}

// ShipRequest carries the shipping form. An empty body means the user
// closed the form.
type ShipRequest struct {
	CourierName    string `json:"courierName"`
	TrackingNumber string `json:"trackingNumber"`
}

type OrderDetailResponse struct {
	Order    *domain.Order    `json:"order"`
	Delivery *domain.Delivery `json:"delivery,omitempty"`
	Summary  orders.Summary   `json:"summary"`
	Total    string           `json:"totalText"`
	Timeline []orders.Step    `json:"timeline"`
}

type ActionResponse struct {
	Order         *domain.Order         `json:"order"`
	Notifications []notify.Notification `json:"notifications"`
	Redirect      string                `json:"redirect,omitempty"`
}

type AddressResponse struct {
	Selected    wilayah.Selection `json:"selected"`
	FullAddress string            `json:"fullAddress"`
	Options     wilayah.State     `json:"options"`
}

type ErrorResponse struct {
	Error         string                `json:"error"`
	Message       string                `json:"message,omitempty"`
	Fields        map[string]string     `json:"fields,omitempty"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}
