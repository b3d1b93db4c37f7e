package router

import (
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func SetupRouter(
	server *api.Server,
	authService service.IAdminAuthService,
	loginLimiter *ratelimit.KeyedLimiter,
	sessionTTL time.Duration,
	logger *zerolog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.RecoverMiddleware(logger))
	r.Use(m.LoggerMiddleware(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/images/*", server.ImageHandler.GetImage)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", server.ProductHandler.ListProducts)
			r.Get("/{id}", server.ProductHandler.GetProduct)
		})

		r.Get("/testimonials", server.ContentHandler.GetTestimonials)
		r.Get("/visualizer-colors", server.ContentHandler.GetVisualizerColors)
		r.Get("/attributes", server.ContentHandler.GetProductAttributes)
		r.Post("/estimations", server.ContentHandler.CreateEstimation)

		// 購物車以 session 區分
		r.Group(func(r chi.Router) {
			r.Use(m.SessionMiddleware(sessionTTL))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", server.CartHandler.GetCart)
				r.Delete("/", server.CartHandler.ClearCart)
				r.Post("/items", server.CartHandler.AddItem)
				r.Patch("/items/{itemID}", server.CartHandler.UpdateItem)
				r.Delete("/items/{itemID}", server.CartHandler.RemoveItem)
			})
			r.Post("/checkout", server.CartHandler.Checkout)
			r.Get("/orders", server.OrderHandler.GetOrders)
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(m.RateLimitMiddleware(loginLimiter)).Post("/login", server.AdminHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(m.AdminAuthMiddleware(authService))
				r.Get("/me", server.AdminHandler.Me)
				r.Get("/dashboard", server.OrderHandler.Dashboard)

				r.Route("/products", func(r chi.Router) {
					r.Get("/", server.ProductHandler.AdminListProducts)
					r.Post("/", server.ProductHandler.CreateProduct)
					r.Get("/{id}", server.ProductHandler.AdminGetProduct)
					r.Put("/{id}", server.ProductHandler.UpdateProduct)
					r.Delete("/{id}", server.ProductHandler.DeleteProduct)
				})

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", server.OrderHandler.AdminListOrders)
					r.Put("/{id}/status", server.OrderHandler.UpdateOrderStatus)
					r.Patch("/{id}/status", server.OrderHandler.UpdateOrderStatus)
				})

				r.Route("/testimonials", func(r chi.Router) {
					r.Get("/", server.ContentHandler.GetTestimonials)
					r.Post("/", server.ContentHandler.CreateTestimonial)
					r.Put("/{id}", server.ContentHandler.UpdateTestimonial)
					r.Delete("/{id}", server.ContentHandler.DeleteTestimonial)
				})

				r.Route("/visualizer-colors", func(r chi.Router) {
					r.Get("/", server.ContentHandler.GetVisualizerColors)
					r.Post("/", server.ContentHandler.CreateVisualizerColor)
					r.Put("/{id}", server.ContentHandler.UpdateVisualizerColor)
					r.Delete("/{id}", server.ContentHandler.DeleteVisualizerColor)
				})

				r.Put("/attributes", server.ContentHandler.UpdateProductAttributes)

				r.Route("/estimations", func(r chi.Router) {
					r.Get("/", server.ContentHandler.GetEstimations)
					r.Delete("/{id}", server.ContentHandler.DeleteEstimation)
				})
			})
		})
	})

	return r
}

// LogRoutes 啟動時列出路由樹
func LogRoutes(r chi.Routes, logger *zerolog.Logger) error {
	return chi.Walk(r, func(method string, route string, handler http.Handler, middlewares ...func(http.Handler) http.Handler) error {
		logger.Debug().Str("method", method).Str("route", route).Msg("route registered")
		return nil
	})
}
