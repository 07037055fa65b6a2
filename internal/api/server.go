package api

import "github.com/RoyceAzure/lab/storefront/internal/api/handler"

type Server struct {
	CatalogHandler   *handler.CatalogHandler
	InventoryHandler *handler.InventoryHandler
	OrderHandler     *handler.OrderHandler
	AuthHandler      *handler.AuthHandler
	SettingsHandler  *handler.SettingsHandler
}

func NewServer(
	catalogHandler *handler.CatalogHandler,
	inventoryHandler *handler.InventoryHandler,
	orderHandler *handler.OrderHandler,
	authHandler *handler.AuthHandler,
	settingsHandler *handler.SettingsHandler,
) *Server {
	return &Server{
		CatalogHandler:   catalogHandler,
		InventoryHandler: inventoryHandler,
		OrderHandler:     orderHandler,
		AuthHandler:      authHandler,
		SettingsHandler:  settingsHandler,
	}
}
