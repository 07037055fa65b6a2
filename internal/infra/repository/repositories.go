package repository

import (
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

type (
	ProductRepo    = Collection[model.Product, *model.Product]
	CategoryRepo   = Collection[model.Category, *model.Category]
	InventoryRepo  = Collection[model.Inventory, *model.Inventory]
	OrderRepo      = Collection[model.Order, *model.Order]
	OrderItemRepo  = Collection[model.OrderItem, *model.OrderItem]
	UserRepo       = Collection[model.User, *model.User]
	CredentialRepo = Collection[model.Credential, *model.Credential]
)

// Repositories 所有集合, 共用同一組 Options
type Repositories struct {
	Products    *ProductRepo
	Categories  *CategoryRepo
	Inventory   *InventoryRepo
	Orders      *OrderRepo
	OrderItems  *OrderItemRepo
	Users       *UserRepo
	Credentials *CredentialRepo
	Settings    *Singleton[model.Settings]
	Session     *Singleton[model.User]
}

func New(opts Options) *Repositories {
	opts = opts.withDefaults()
	return &Repositories{
		Products:    NewCollection[model.Product](constants.KeyProducts, opts),
		Categories:  NewCollection[model.Category](constants.KeyCategories, opts),
		Inventory:   NewCollection[model.Inventory](constants.KeyInventory, opts),
		Orders:      NewCollection[model.Order](constants.KeyOrders, opts).WithDecoder(model.DecodeOrders),
		OrderItems:  NewCollection[model.OrderItem](constants.KeyOrderItems, opts),
		Users:       NewCollection[model.User](constants.KeyUsers, opts).WithDecoder(model.DecodeUsers),
		Credentials: NewCollection[model.Credential](constants.KeyCredentials, opts).WithDecoder(model.DecodeCredentials),
		Settings:    NewSingleton[model.Settings](constants.KeySettings, opts),
		Session:     NewSingleton[model.User](constants.KeySession, opts).WithDecoder(model.DecodeUser),
	}
}
