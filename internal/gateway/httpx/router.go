package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/bizops-dashboard/internal/gateway/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestContext)
	r.Use(handler.withSession)
	r.Use(middlewares.Trace)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", handler.Login)
		r.Post("/logout", handler.Logout)
		r.With(handler.requireSession).Get("/profile", handler.Profile)
	})
	r.Get("/nav", handler.Nav)

	r.Route("/orders", func(r chi.Router) {
		r.Use(handler.requireSession)
		r.Get("/", handler.ListOrders)
		r.Get("/{id}", handler.GetOrder)
		r.Get("/{id}/saga", handler.OrderSaga)
		r.Post("/{id}/cancel", handler.CancelOrder)
		r.Post("/{id}/pay", handler.PayOrder)
		r.Post("/{id}/ship", handler.ShipOrder)
		r.Post("/{id}/deliver", handler.DeliverOrder)
	})
	r.With(handler.requireSession).Get("/deliveries", handler.ListDeliveries)

	r.Route("/api/wilayah", func(r chi.Router) {
		r.Get("/provinces", handler.Provinces)
		r.Get("/{level}/{code}", handler.RegionChildren)
		r.Get("/cache", handler.RegionCacheInfo)
		r.Delete("/cache", handler.ClearRegionCache)
		r.Post("/address", handler.ResolveAddress)
	})
	return r
}
