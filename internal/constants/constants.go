package constants

// 集合在 key-value store 中的 key
const (
	KeyProducts    = "products"
	KeyCategories  = "categories"
	KeyInventory   = "inventory"
	KeyOrders      = "orders"
	KeyOrderItems  = "order_items"
	KeyUsers       = "users"
	KeyCredentials = "credentials"
	KeySettings    = "settings"
	KeySession     = "user"
)

// CollectionKeys 初始化時需要存在的陣列集合
var CollectionKeys = []string{
	KeyProducts,
	KeyCategories,
	KeyInventory,
	KeyOrders,
	KeyOrderItems,
	KeyUsers,
	KeyCredentials,
}

// LegacyKeys 舊版前端使用的 key 對應到目前的 key
var LegacyKeys = map[string]string{
	"e-commerce-products":    KeyProducts,
	"e-commerce-categories":  KeyCategories,
	"e-commerce-inventory":   KeyInventory,
	"e-commerce-orders":      KeyOrders,
	"e-commerce-order-items": KeyOrderItems,
	"e-commerce-users":       KeyUsers,
}

const (
	DefaultLowStockThreshold int = 5
	DefaultTxMaxRetries      int = 5
	DefaultRecentOrders      int = 5
	MinPasswordLength        int = 6
	MoneyScale               int32 = 3
	DefaultPaymentMethod           = "Cash on Delivery"
)

type StoreDriver string

const (
	DriverBolt     StoreDriver = "bolt"
	DriverRedis    StoreDriver = "redis"
	DriverSqlite   StoreDriver = "sqlite"
	DriverPostgres StoreDriver = "postgres"
)

func IsValidStoreDriver(driver string) bool {
	switch StoreDriver(driver) {
	case DriverBolt, DriverRedis, DriverSqlite, DriverPostgres:
		return true
	default:
		return false
	}
}

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Prod  ENV = "production"
)

type RequestID string

const (
	RequestIDKey RequestID = "request_id"
)

type ContextKey string

const (
	SessionUserKey ContextKey = "session_user"
)
