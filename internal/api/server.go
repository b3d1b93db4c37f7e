package api

import "github.com/RoyceAzure/lab/storefront/internal/api/handler"

type Server struct {
	ProductHandler *handler.ProductHandler
	CartHandler    *handler.CartHandler
	OrderHandler   *handler.OrderHandler
	ContentHandler *handler.ContentHandler
	ImageHandler   *handler.ImageHandler
	AdminHandler   *handler.AdminHandler
}

func NewServer(
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	contentHandler *handler.ContentHandler,
	imageHandler *handler.ImageHandler,
	adminHandler *handler.AdminHandler,
) *Server {
	return &Server{
		ProductHandler: productHandler,
		CartHandler:    cartHandler,
		OrderHandler:   orderHandler,
		ContentHandler: contentHandler,
		ImageHandler:   imageHandler,
		AdminHandler:   adminHandler,
	}
}
