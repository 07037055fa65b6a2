package appcontext

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv/bolt"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv/gormkv"
	kvredis "github.com/RoyceAzure/lab/storefront/internal/infra/kv/redis"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv/sqlite"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/RoyceAzure/lab/storefront/internal/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/rs/zerolog"
)

// eventPublisher service 需要 Publish, 關閉時需要 Close
type eventPublisher interface {
	service.Publisher
	Close() error
}

type ApplicationContext struct {
	Cf               *config.Config
	Logger           *zerolog.Logger
	Store            kv.Store
	Repos            *repository.Repositories
	Publisher        eventPublisher
	Limiter          ratelimit.ILimiter
	logWriter        *logger.KafkaLogWriter
	StorageService   service.IStorageService
	CatalogService   service.ICatalogService
	InventoryService service.IInventoryService
	OrderService     service.IOrderService
	UserService      service.IUserService
	SettingsService  service.ISettingsService
	DashboardService service.IDashboardService
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	if err := app.Init(); err != nil {
		_ = app.Shutdown()
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	app.setUpLogger()

	err := app.setUpStore()
	if err != nil {
		return err
	}
	err = app.setUpPublisher()
	if err != nil {
		return err
	}
	err = app.setUpRateLimiter()
	if err != nil {
		return err
	}
	app.setUpServices()
	return nil
}

func (app *ApplicationContext) setUpLogger() {
	opts := logger.Options{
		Module: app.Cf.ModuleName,
		Level:  app.Cf.LogLevel,
		Pretty: app.Cf.LogPretty,
	}
	brokers := app.Cf.Brokers()
	if app.Cf.LogKafkaTopic != "" && len(brokers) > 0 {
		boot := zerolog.Nop()
		w, err := producer.NewKafkaWriter(producer.Config{Brokers: brokers, Topic: app.Cf.LogKafkaTopic}, &boot)
		if err == nil {
			app.logWriter = logger.NewKafkaLogWriter(w)
			opts.Writers = append(opts.Writers, app.logWriter)
		}
	}
	app.Logger = logger.New(opts)
}

func (app *ApplicationContext) setUpStore() error {
	app.Logger.Info().Str("driver", app.Cf.StoreDriver).Msg("start setup store")
	store, err := OpenStore(app.Cf)
	if err != nil {
		return err
	}
	app.Store = store
	app.Repos = repository.New(repository.Options{Logger: app.Logger})
	app.Logger.Info().Str("driver", app.Cf.StoreDriver).Msg("finish setup store")
	return nil
}

// OpenStore 依 STORE_DRIVER 開啟對應的 key-value store
func OpenStore(cf *config.Config) (kv.Store, error) {
	switch constants.StoreDriver(cf.StoreDriver) {
	case constants.DriverBolt:
		return bolt.Open(cf.StorePath)
	case constants.DriverSqlite:
		return sqlite.Open(cf.StorePath)
	case constants.DriverRedis:
		client, err := kvredis.SharedClient(redisClientConfig(cf))
		if err != nil {
			return nil, err
		}
		store := kvredis.NewRedisStore(client, cf.StorePrefix, cf.TxMaxRetries)
		if _, err := store.Ping(context.Background()); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return store, nil
	case constants.DriverPostgres:
		db, err := gormkv.GetDbConn(gormkv.GetDSN(cf.DbName, cf.DbHost, cf.DbPort, cf.DbUser, cf.DbPas))
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := gormkv.NewGormStore(db)
		if err := store.InitMigrate(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cf.StoreDriver)
	}
}

func redisClientConfig(cf *config.Config) kvredis.ClientConfig {
	return kvredis.ClientConfig{
		Addr:     cf.RedisAddr,
		Password: cf.RedisPassword,
		DB:       cf.RedisDB,
		PoolSize: cf.RedisPoolSize,
	}
}

func (app *ApplicationContext) setUpPublisher() error {
	brokers := app.Cf.Brokers()
	if len(brokers) == 0 {
		app.Logger.Info().Msg("no kafka brokers configured, events disabled")
		app.Publisher = producer.NopPublisher{}
		return nil
	}
	w, err := producer.NewKafkaWriter(producer.Config{Brokers: brokers, Topic: app.Cf.KafkaTopic}, app.Logger)
	if err != nil {
		return err
	}
	app.Publisher = producer.NewEventProducer(w)
	app.Logger.Info().Strs("brokers", brokers).Str("topic", app.Cf.KafkaTopic).Msg("event producer ready")
	return nil
}

// setUpRateLimiter redis store 時多個 instance 共用 token bucket, 其他 driver 用單機固定視窗
func (app *ApplicationContext) setUpRateLimiter() error {
	if app.Cf.RateLimitCapacity <= 0 {
		return nil
	}
	cfg := ratelimit.LimiterConfig{
		Prefix:   app.Cf.StorePrefix + ":ratelimit",
		Capacity: app.Cf.RateLimitCapacity,
		RatePS:   app.Cf.RateLimitPerSecond,
	}
	if constants.StoreDriver(app.Cf.StoreDriver) == constants.DriverRedis {
		client, err := kvredis.SharedClient(redisClientConfig(app.Cf))
		if err != nil {
			return err
		}
		app.Limiter = ratelimit.NewRedisTokenBucket(client, cfg)
	} else {
		app.Limiter = ratelimit.NewFixedWindow(cfg)
	}
	app.Logger.Info().Int("capacity", cfg.Capacity).Msg("rate limiter ready")
	return nil
}

func (app *ApplicationContext) setUpServices() {
	deps := service.Deps{
		Store:             app.Store,
		Repos:             app.Repos,
		Logger:            app.Logger,
		Publisher:         app.Publisher,
		LowStockThreshold: app.Cf.LowStockThreshold,
	}
	app.StorageService = service.NewStorageService(deps)
	app.CatalogService = service.NewCatalogService(deps)
	app.InventoryService = service.NewInventoryService(deps)
	app.OrderService = service.NewOrderService(deps)
	app.UserService = service.NewUserService(deps)
	app.SettingsService = service.NewSettingsService(deps)
	app.DashboardService = service.NewDashboardService(deps)
}

// Bootstrap 初始化預設資料並整理舊資料, 每次啟動都可以安全執行
func (app *ApplicationContext) Bootstrap(ctx context.Context) error {
	err := app.StorageService.Initialize(ctx, service.AdminAccount{
		Email:    app.Cf.AdminEmail,
		Password: app.Cf.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if _, err := app.StorageService.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate storage: %w", err)
	}
	return nil
}

func (app *ApplicationContext) Shutdown() error {
	var errs []error
	if app.Publisher != nil {
		errs = append(errs, app.Publisher.Close())
	}
	if app.Store != nil {
		errs = append(errs, app.Store.Close())
	}
	errs = append(errs, kvredis.CloseSharedClients())
	if app.logWriter != nil {
		errs = append(errs, app.logWriter.Close())
	}
	return errors.Join(errs...)
}
