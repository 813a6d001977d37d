package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(catalogUC usecase.CatalogUC, orderUC usecase.OrderUC) {
	r.router.Use(logRequests(r.logger))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		prHandler := NewProductHandler(catalogUC, r.logger)
		registerProductRoutes(v1, prHandler, r.logger)

		orHandler := NewOrderHandler(orderUC, r.logger)
		registerOrderRoutes(v1, orHandler, r.logger)
	})
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler, log logger.Logger) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", prHandler.listProducts)
		pr.Get("/{id}", prHandler.getProduct)

		pr.With(requireUser(log)).Post("/", prHandler.addProduct)
	})
}

func registerOrderRoutes(router chi.Router, orHandler *OrderHandler, log logger.Logger) {
	router.Route("/orders", func(or chi.Router) {
		or.Use(requireUser(log))

		or.Post("/", orHandler.placeOrder)
		or.Get("/", orHandler.listOrders)
		or.Get("/{id}", orHandler.getOrder)
		or.Put("/{id}/status", orHandler.updateOrderStatus)
	})
}
