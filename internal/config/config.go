package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

type Config struct {
	ModuleName        string `mapstructure:"MODULE_NAME"`
	ServerPort        string `mapstructure:"SERVER_PORT"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	LogPretty         bool   `mapstructure:"LOG_PRETTY"`
	StoreDriver       string `mapstructure:"STORE_DRIVER"`
	StorePath         string `mapstructure:"STORE_PATH"`
	StorePrefix       string `mapstructure:"STORE_PREFIX"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int    `mapstructure:"REDIS_DB"`
	RedisPoolSize     int    `mapstructure:"REDIS_POOL_SIZE"`
	DbName            string `mapstructure:"POSTGRES_DB"`
	DbHost            string `mapstructure:"POSTGRES_HOST"`
	DbPort            string `mapstructure:"POSTGRES_PORT"`
	DbUser            string `mapstructure:"POSTGRES_USER"`
	DbPas             string `mapstructure:"POSTGRES_PASSWORD"`
	KafkaBrokers      string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic        string `mapstructure:"KAFKA_TOPIC"`
	LogKafkaTopic     string `mapstructure:"LOG_KAFKA_TOPIC"`
	AdminEmail        string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword     string `mapstructure:"ADMIN_PASSWORD"`
	LowStockThreshold int    `mapstructure:"LOW_STOCK_THRESHOLD"`
	TxMaxRetries      int    `mapstructure:"TX_MAX_RETRIES"`
	SeedFile          string `mapstructure:"SEED_FILE"`
	// RateLimitCapacity 0 代表不限流
	RateLimitCapacity  int `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitPerSecond int `mapstructure:"RATE_LIMIT_PER_SECOND"`
}

// Brokers KAFKA_BROKERS 以逗號分隔, 空字串代表不送事件
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func (c *Config) Validate() error {
	if !constants.IsValidStoreDriver(c.StoreDriver) {
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.LowStockThreshold <= 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("MODULE_NAME", "storefront")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("STORE_DRIVER", string(constants.DriverBolt))
	v.SetDefault("STORE_PATH", "storefront.db")
	v.SetDefault("STORE_PREFIX", "storefront")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 0)
	v.SetDefault("POSTGRES_DB", "storefront")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "storefront.events")
	v.SetDefault("LOG_KAFKA_TOPIC", "")
	v.SetDefault("ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("LOW_STOCK_THRESHOLD", constants.DefaultLowStockThreshold)
	v.SetDefault("TX_MAX_RETRIES", constants.DefaultTxMaxRetries)
	v.SetDefault("SEED_FILE", "")
	v.SetDefault("RATE_LIMIT_CAPACITY", 0)
	v.SetDefault("RATE_LIMIT_PER_SECOND", 10)
}

/*
Loader 包一個 viper instance
init : Load 讀檔並設定預設值
watch : Watch 在檔案變更時重新讀取, 讀取時使用讀寫鎖
*/
type Loader struct {
	v      *viper.Viper
	mu     sync.RWMutex
	config *Config
}

// NewLoader path 為空時只讀環境變數
func NewLoader(path string) *Loader {
	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	}
	v.AutomaticEnv()
	return &Loader{v: v}
}

/*
Load 單純回傳錯誤, 由外部決定要不要結束
*/
func (l *Loader) Load() (*Config, error) {
	if l.v.ConfigFileUsed() != "" {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	cf, err := l.unmarshal()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.config = cf
	l.mu.Unlock()
	return cf, nil
}

func (l *Loader) unmarshal() (*Config, error) {
	cf := &Config{}
	if err := l.v.Unmarshal(cf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

func (l *Loader) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// Watch 設定檔變更時重新讀取, 新設定有誤時保留舊設定並回呼 error
func (l *Loader) Watch(onChange func(*Config, error)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cf, err := l.unmarshal()
		if err == nil {
			l.mu.Lock()
			l.config = cf
			l.mu.Unlock()
		}
		if onChange != nil {
			onChange(cf, err)
		}
	})
	l.v.WatchConfig()
}

// Load 讀取一次設定
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}
