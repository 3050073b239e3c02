package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/bizops-dashboard/internal/pkg/reqctx"
)

// AttachRequestContext copies the chi request id and the caller's
// idempotency key into the context, so backend calls forward them.
func AttachRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := reqctx.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		ctx = reqctx.WithIdempotencyKey(ctx, r.Header.Get(reqctx.HeaderXIdempotencyKey))

		if id := reqctx.RequestID(ctx); id != "" {
			w.Header().Set(reqctx.HeaderXRequestID, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
