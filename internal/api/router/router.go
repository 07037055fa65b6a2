package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// SetupRouter limiter 為 nil 時不限流
func SetupRouter(server *api.Server, users service.IUserService, limiter ratelimit.ILimiter, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RecoverMiddleware)
	if limiter != nil {
		r.Use(m.RateLimitMiddleware(limiter))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.ErrorJSON(w, http.StatusNotFound, response.ErrorBody{Code: "not_found", Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.ErrorJSON(w, http.StatusMethodNotAllowed, response.ErrorBody{Code: "method_not_allowed", Message: "method not allowed"})
	})

	admin := m.RequireAdmin(users)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", server.CatalogHandler.ListProducts)
			r.Get("/{id}", server.CatalogHandler.GetProduct)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", server.CatalogHandler.CreateProduct)
				r.Patch("/{id}", server.CatalogHandler.UpdateProduct)
				r.Delete("/{id}", server.CatalogHandler.DeleteProduct)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", server.CatalogHandler.ListCategories)
			r.Get("/{id}", server.CatalogHandler.GetCategory)
			r.Get("/{id}/products", server.CatalogHandler.CategoryProducts)
			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", server.CatalogHandler.CreateCategory)
				r.Patch("/{id}", server.CatalogHandler.UpdateCategory)
				r.Delete("/{id}", server.CatalogHandler.DeleteCategory)
			})
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", server.InventoryHandler.List)
			r.Get("/low-stock", server.InventoryHandler.LowStock)
			r.Get("/{id}", server.InventoryHandler.Get)
			r.With(admin).Put("/{id}", server.InventoryHandler.SetQuantity)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", server.OrderHandler.List)
			r.Post("/", server.OrderHandler.Place)
			r.Get("/{id}", server.OrderHandler.Get)
			r.With(admin).Patch("/{id}/status", server.OrderHandler.UpdateStatus)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(admin).Get("/", server.AuthHandler.ListUsers)
			r.Get("/{userID}/orders", server.OrderHandler.ListByUser)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", server.AuthHandler.Register)
			r.Post("/login", server.AuthHandler.Login)
			r.Post("/logout", server.AuthHandler.Logout)
			r.Get("/me", server.AuthHandler.Me)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", server.SettingsHandler.Get)
			r.With(admin).Put("/", server.SettingsHandler.Save)
		})

		r.With(admin).Get("/dashboard", server.SettingsHandler.Dashboard)
	})

	return r
}

// LogRoutes 啟動時把路由表寫進 debug log
func LogRoutes(r chi.Routes, logger *zerolog.Logger) error {
	return chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		logger.Debug().Str("method", method).Str("route", route).Msg("route registered")
		return nil
	})
}
