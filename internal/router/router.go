package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-catalog-api/internal/config"
	"go-catalog-api/internal/handler"
	"go-catalog-api/internal/metrics"
	"go-catalog-api/internal/middleware"
	"go-catalog-api/internal/rbac"
)

// Pinger reports backing-store reachability for the health endpoint.
type Pinger interface {
	Health(ctx context.Context) error
}

func New(
	cfg *config.Config,
	db Pinger,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(metrics.Instrument)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("database unreachable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", authHandler.Register)
			auth.Post("/login", authHandler.Login)
			auth.Post("/logout", authHandler.Logout)
			auth.Post("/refresh-tokens", authHandler.Refresh)
			auth.Post("/forgot-password", authHandler.ForgotPassword)
			auth.Post("/reset-password", authHandler.ResetPassword)
			auth.With(authMiddleware.RequireAuth).Get("/send-verification-email", authHandler.SendVerificationEmail)
			auth.Post("/verify-email", authHandler.VerifyEmail)
		})

		api.Route("/products", func(products chi.Router) {
			products.Use(authMiddleware.RequireAuth)

			products.With(authMiddleware.RequireRights(rbac.RightGetAllProducts)).Get("/", productHandler.List)
			products.With(authMiddleware.RequireRights(rbac.RightCreateProduct)).Post("/", productHandler.Create)
			products.With(authMiddleware.RequireRights(rbac.RightGetProduct)).Get("/{productID}", productHandler.Get)
			products.With(authMiddleware.RequireRights(rbac.RightUpdateProduct)).Put("/{productID}", productHandler.Update)
			products.With(authMiddleware.RequireRights(rbac.RightDeleteProduct)).Delete("/{productID}", productHandler.Delete)
		})
	})

	return r
}
