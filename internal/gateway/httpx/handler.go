package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jcmexdev/bizops-dashboard/internal/backend"
	"github.com/jcmexdev/bizops-dashboard/internal/coordinator"
	"github.com/jcmexdev/bizops-dashboard/internal/coordinator/sagalog"
	"github.com/jcmexdev/bizops-dashboard/internal/domain"
	"github.com/jcmexdev/bizops-dashboard/internal/nav"
	"github.com/jcmexdev/bizops-dashboard/internal/notify"
	"github.com/jcmexdev/bizops-dashboard/internal/pkg/apperr"
	"github.com/jcmexdev/bizops-dashboard/internal/session"
	"github.com/jcmexdev/bizops-dashboard/internal/wilayah"
)

// OrderAPI is the orders resource as the gateway uses it.
type OrderAPI interface {
	coordinator.OrderClient
	List(ctx context.Context) ([]domain.Order, error)
	ListMine(ctx context.Context) ([]domain.Order, error)
	ListIncoming(ctx context.Context) ([]domain.Order, error)
}

// Deps are the collaborators of the gateway.
type Deps struct {
	Orders     OrderAPI
	Deliveries coordinator.DeliveryClient
	Auth       session.Authenticator
	// Sessions holds one session per browser, keyed by SessionCookie.
	Sessions *session.Registry
	SagaLog  sagalog.Repository
	Regions  wilayah.Source
	// RegionWait bounds each level of an address lookup.
	RegionWait time.Duration
	// ActionOptions are applied to every order action, e.g. the
	// transition guard.
	ActionOptions []coordinator.Option
	Logger        *slog.Logger
}

// Handler serves the dashboard API on top of the backend resource clients.
type Handler struct {
	orders     OrderAPI
	deliveries coordinator.DeliveryClient
	auth       session.Authenticator
	sessions   *session.Registry
	sagaLog    sagalog.Repository
	regions    wilayah.Source
	regionWait time.Duration
	actionOpts []coordinator.Option
	logger     *slog.Logger
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		orders:     d.Orders,
		deliveries: d.Deliveries,
		auth:       d.Auth,
		sessions:   d.Sessions,
		sagaLog:    d.SagaLog,
		regions:    d.Regions,
		regionWait: d.RegionWait,
		actionOpts: d.ActionOptions,
		logger:     d.Logger,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.sessions == nil {
		h.sessions = session.NewRegistry(session.WithRegistryLogger(h.logger))
	}
	if h.sagaLog == nil {
		h.sagaLog = sagalog.NewMemoryRepository()
	}
	return h
}

// Login exchanges credentials through the backend and starts a new session
// under a fresh cookie. A session the caller already had is ended.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	ctx := r.Context()
	id, s := h.sessions.Start()
	if err := s.Login(ctx, h.auth, req.Email, req.Password); err != nil {
		_ = h.sessions.End(ctx, id)
		h.fail(w, r, err, nil)
		return
	}
	if old := sessionID(r); old != "" {
		if err := h.sessions.End(ctx, old); err != nil {
			h.logger.WarnContext(ctx, "failed to end previous session", "error", err)
		}
	}
	setSessionCookie(w, r, id)
	writeJSON(w, http.StatusOK, LoginResponse{Authenticated: true, User: s.User()})
}

// Logout ends the caller's session, if any, and expires the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.Context(), sessionID(r)); err != nil {
		h.fail(w, r, err, nil)
		return
	}
	clearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	var (
		u   *domain.User
		err error
	)
	if s := session.FromContext(r.Context()); s != nil {
		u, err = s.FetchProfile(r.Context(), h.auth)
	}
	if err == nil && u == nil {
		err = backend.ErrUnauthenticated
	}
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Nav returns the menus for ?role=, or for the signed-in user's role.
func (h *Handler) Nav(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))
	if s := session.FromContext(r.Context()); role == "" && s != nil {
		role = s.Role()
	}
	if role == "" {
		h.fail(w, r, backend.ErrUnauthenticated, nil)
		return
	}
	if !role.IsValid() {
		writeError(w, http.StatusBadRequest, apperr.Invalid, "unknown role "+string(role))
		return
	}
	writeJSON(w, http.StatusOK, NavResponse{
		Role:   role,
		Menu:   nav.Filter(nav.DefaultMenu(), role),
		Bottom: nav.FilterItems(nav.DefaultBottomMenu(), role),
	})
}

// fail writes err classified by apperr, with any notifications the failed
// action produced.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, notifications []notify.Notification) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	resp := ErrorResponse{
		Error:         apperr.Kind(err),
		Message:       err.Error(),
		Notifications: notifications,
	}
	var ve *backend.ValidationError
	if errors.As(err, &ve) {
		resp.Fields = ve.Fields
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
