package appcontext

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	event_handler "github.com/RoyceAzure/lab/storefront/internal/handler/event"
	"github.com/RoyceAzure/lab/storefront/internal/infra/consumer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/memory_repo"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/mongo_repo"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/logger"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/seed"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

const (
	cartJanitorInterval = 10 * time.Minute
	eventDrainTimeout   = 10 * time.Second
)

type ApplicationContext struct {
	Cf     *config.Config
	Logger *zerolog.Logger

	MongoClient *mongo.Client
	RedisClient *redis.Client
	DbConn      *gorm.DB

	ProductRepo     repository.IProductRepository
	TestimonialRepo repository.ITestimonialRepository
	ColorRepo       repository.IVisualizerColorRepository
	ConfigRepo      repository.IConfigurationRepository
	EstimationRepo  repository.IEstimationRepository
	ImageStore      repository.IImageStore
	OrderRepo       repository.IOrderRepository

	StockService   service.IStockService
	OrderService   service.IOrderService
	CartService    *service.CartService
	ProductService service.IProductService
	ContentService service.IContentService
	AuthService    service.IAdminAuthService

	EventDispatcher event_handler.Handler
	KafkaWriter     producer.Writer
	EventProducer   *producer.OrderEventProducer
	LocalPublisher  *producer.LocalPublisher
	OrderConsumer   consumer.IBaseConsumer

	LoginLimiter *ratelimit.KeyedLimiter

	bgCancel context.CancelFunc
	bgWg     sync.WaitGroup
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf:     cf,
		Logger: logger.New(cf.LogLevel, cf.LogFormat),
	}
	app.Logger.Info().
		Str("catalog_backend", cf.CatalogBackend).
		Str("order_store", cf.OrderStore).
		Str("event_transport", cf.EventTransport).
		Str("server_port", cf.ServerPort).
		Msg("loaded config")

	if err := app.Init(); err != nil {
		// 已建立的連線一併釋放
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Shutdown(shutdownCtx)
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	steps := []func() error{
		app.setUpCatalog,
		app.setUpOrderStore,
		app.setUpStockService,
		app.setUpEventPublisher,
		app.setUpOrderService,
		app.setUpCartService,
		app.setUpProductService,
		app.setUpContentService,
		app.setUpAuthService,
		app.setUpSeed,
		app.startBackground,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	app.LoginLimiter = ratelimit.NewKeyedLimiter(ratelimit.PerMinute(app.Cf.AdminLoginRate))
	return nil
}

func (app *ApplicationContext) log() *zerolog.Logger {
	return logger.Component(app.Logger, "appcontext")
}

func (app *ApplicationContext) setUpCatalog() error {
	l := app.log()
	l.Info().Msg("Start setup catalog")

	switch constants.CatalogBackend(app.Cf.CatalogBackend) {
	case constants.CatalogMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		client, err := mongo_repo.GetMongoConn(ctx, app.Cf.MongoURI)
		if err != nil {
			return err
		}
		app.MongoClient = client
		database := client.Database(app.Cf.MongoDB)
		if err := mongo_repo.EnsureIndexes(ctx, database); err != nil {
			return err
		}
		images, err := mongo_repo.NewImageStore(database, app.Cf.ImageBaseURL)
		if err != nil {
			return err
		}
		app.ProductRepo = mongo_repo.NewProductRepo(database)
		app.TestimonialRepo = mongo_repo.NewTestimonialRepo(database)
		app.ColorRepo = mongo_repo.NewVisualizerColorRepo(database)
		app.ConfigRepo = mongo_repo.NewConfigurationRepo(database)
		app.EstimationRepo = mongo_repo.NewEstimationRepo(database)
		app.ImageStore = images
	case constants.CatalogMemory:
		l.Warn().Msg("using in-memory catalog, data is lost on restart")
		app.ProductRepo = memory_repo.NewProductRepo()
		app.TestimonialRepo = memory_repo.NewTestimonialRepo()
		app.ColorRepo = memory_repo.NewVisualizerColorRepo()
		app.ConfigRepo = memory_repo.NewConfigurationRepo()
		app.EstimationRepo = memory_repo.NewEstimationRepo()
		app.ImageStore = memory_repo.NewImageStore(app.Cf.ImageBaseURL)
	default:
		return fmt.Errorf("unknown CATALOG_BACKEND %q", app.Cf.CatalogBackend)
	}

	l.Info().Str("backend", app.Cf.CatalogBackend).Msg("Finish setup catalog")
	return nil
}

func (app *ApplicationContext) setUpOrderStore() error {
	l := app.log()
	l.Info().Msg("Start setup order store")

	var kv repository.IKVStore
	switch constants.OrderStore(app.Cf.OrderStore) {
	case constants.OrderStoreRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := redis_repo.GetRedisClient(ctx, app.Cf.RedisAddr,
			redis_repo.WithPassword(app.Cf.RedisPassword),
			redis_repo.WithDB(app.Cf.RedisDB),
		)
		if err != nil {
			return err
		}
		app.RedisClient = client
		kv = redis_repo.NewKVStore(client)
	case constants.OrderStorePostgres:
		conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
		if err != nil {
			return fmt.Errorf("failed to connect postgres: %w", err)
		}
		app.DbConn = conn
		dao := db.NewDbDao(conn)
		if err := dao.InitMigrate(); err != nil {
			return fmt.Errorf("failed to migrate order store: %w", err)
		}
		kv = db.NewKVStore(dao)
	case constants.OrderStoreMemory:
		l.Warn().Msg("using in-memory order store, orders are lost on restart")
		kv = memory_repo.NewKVStore()
	default:
		return fmt.Errorf("unknown ORDER_STORE %q", app.Cf.OrderStore)
	}
	app.OrderRepo = repository.NewOrderRepo(kv)

	l.Info().Str("store", app.Cf.OrderStore).Msg("Finish setup order store")
	return nil
}

func (app *ApplicationContext) setUpStockService() error {
	l := app.log()
	l.Info().Msg("Start setup stock service")
	app.StockService = service.NewStockService(
		app.ProductRepo,
		app.Cf.ReconcileConcurrency,
		app.Cf.ReconcileMaxRetries,
		logger.Component(app.Logger, "stock"),
	)
	orderEventHandler := event_handler.NewOrderEventHandler(app.StockService, logger.Component(app.Logger, "order_event_handler"))
	app.EventDispatcher = event_handler.NewOrderEventHandlerDispatcher(orderEventHandler)
	l.Info().Msg("Finish setup stock service")
	return nil
}

// setUpEventPublisher kafka 模式下由 consumer 執行庫存回寫，local 模式在 process 內執行
func (app *ApplicationContext) setUpEventPublisher() error {
	l := app.log()
	l.Info().Msg("Start setup event publisher")

	switch constants.EventTransport(app.Cf.EventTransport) {
	case constants.EventTransportKafka:
		brokers := app.Cf.GetKafkaBrokers()
		if len(brokers) == 0 {
			return errors.New("KAFKA_BROKERS is empty")
		}
		app.KafkaWriter = producer.NewKafkaWriter(brokers, app.Cf.KafkaOrderTopic)
		app.EventProducer = producer.NewOrderEventProducer(app.KafkaWriter)
		reader := consumer.NewKafkaReader(brokers, app.Cf.KafkaOrderTopic, app.Cf.KafkaConsumerGroup)
		app.OrderConsumer = consumer.NewOrderEventConsumer(reader, app.EventDispatcher, logger.Component(app.Logger, "order_consumer"))
	case constants.EventTransportLocal:
		app.LocalPublisher = producer.NewLocalPublisher(app.EventDispatcher, logger.Component(app.Logger, "local_publisher"))
	default:
		return fmt.Errorf("unknown EVENT_TRANSPORT %q", app.Cf.EventTransport)
	}

	l.Info().Str("transport", app.Cf.EventTransport).Msg("Finish setup event publisher")
	return nil
}

func (app *ApplicationContext) publisher() service.IEventPublisher {
	if app.EventProducer != nil {
		return app.EventProducer
	}
	return app.LocalPublisher
}

func (app *ApplicationContext) setUpOrderService() error {
	l := app.log()
	l.Info().Msg("Start setup order service")
	app.OrderService = service.NewOrderService(context.Background(), app.OrderRepo, app.publisher(), logger.Component(app.Logger, "order"))
	l.Info().Msg("Finish setup order service")
	return nil
}

func (app *ApplicationContext) setUpCartService() error {
	l := app.log()
	l.Info().Msg("Start setup cart service")
	app.CartService = service.NewCartService(app.ProductRepo, app.OrderService, app.Cf.CartSessionTTL, logger.Component(app.Logger, "cart"))
	l.Info().Msg("Finish setup cart service")
	return nil
}

func (app *ApplicationContext) setUpProductService() error {
	l := app.log()
	l.Info().Msg("Start setup product service")
	app.ProductService = service.NewProductService(app.ProductRepo, app.ImageStore, logger.Component(app.Logger, "product"))
	l.Info().Msg("Finish setup product service")
	return nil
}

func (app *ApplicationContext) setUpContentService() error {
	l := app.log()
	l.Info().Msg("Start setup content service")
	app.ContentService = service.NewContentService(
		app.TestimonialRepo,
		app.ColorRepo,
		app.ConfigRepo,
		app.EstimationRepo,
		app.ImageStore,
		logger.Component(app.Logger, "content"),
	)
	l.Info().Msg("Finish setup content service")
	return nil
}

func (app *ApplicationContext) setUpAuthService() error {
	l := app.log()
	l.Info().Msg("Start setup admin auth service")
	authService, err := service.NewAdminAuthService(
		app.Cf.AdminPinHash,
		app.Cf.AdminDefaultPin,
		app.Cf.AdminTokenSecret,
		app.Cf.AdminTokenTTL,
		logger.Component(app.Logger, "admin_auth"),
	)
	if err != nil {
		return err
	}
	app.AuthService = authService
	l.Info().Msg("Finish setup admin auth service")
	return nil
}

func (app *ApplicationContext) setUpSeed() error {
	path := strings.TrimSpace(app.Cf.SeedFile)
	if path == "" {
		return nil
	}
	l := app.log()
	l.Info().Str("file", path).Msg("Start setup seed data")

	catalog, err := seed.LoadFile(path)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	loader := seed.NewLoader(app.ProductRepo, app.ColorRepo, logger.Component(app.Logger, "seed"))
	if _, _, err := loader.Apply(ctx, catalog); err != nil {
		return err
	}

	l.Info().Msg("Finish setup seed data")
	return nil
}

func (app *ApplicationContext) startBackground() error {
	l := app.log()
	l.Info().Msg("Start background workers")

	ctx, cancel := context.WithCancel(context.Background())
	app.bgCancel = cancel

	app.bgWg.Add(1)
	go func() {
		defer app.bgWg.Done()
		app.CartService.RunJanitor(ctx, cartJanitorInterval)
	}()

	if app.OrderConsumer != nil {
		if err := app.OrderConsumer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start order consumer: %w", err)
		}
	}

	l.Info().Msg("Finish background workers")
	return nil
}

// Shutdown 依建立的相反順序釋放資源，個別錯誤不中斷流程
func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	l := app.log()
	l.Info().Msg("Start application shutdown")

	done := make(chan error, 1)
	go func() {
		var errs []error

		if app.bgCancel != nil {
			app.bgCancel()
		}
		app.bgWg.Wait()

		if app.LoginLimiter != nil {
			app.LoginLimiter.Stop()
		}

		if app.OrderConsumer != nil {
			l.Info().Msg("Stopping order consumer...")
			if err := app.OrderConsumer.Stop(eventDrainTimeout); err != nil {
				errs = append(errs, fmt.Errorf("order consumer: %w", err))
			}
		}
		if app.LocalPublisher != nil {
			l.Info().Msg("Draining in-process events...")
			if err := app.LocalPublisher.Close(eventDrainTimeout); err != nil {
				errs = append(errs, fmt.Errorf("local publisher: %w", err))
			}
		}
		if app.EventProducer != nil {
			if err := app.EventProducer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("kafka producer: %w", err))
			}
		}

		if app.RedisClient != nil {
			l.Info().Msg("Closing redis connection...")
			if err := app.RedisClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("redis: %w", err))
			}
		}
		if app.DbConn != nil {
			l.Info().Msg("Closing database connection...")
			if sqlDB, err := app.DbConn.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					errs = append(errs, fmt.Errorf("postgres: %w", err))
				}
			}
		}
		if app.MongoClient != nil {
			l.Info().Msg("Closing mongo connection...")
			if err := app.MongoClient.Disconnect(ctx); err != nil {
				errs = append(errs, fmt.Errorf("mongo: %w", err))
			}
		}

		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		if err != nil {
			l.Error().Err(err).Msg("application shutdown finished with errors")
			return err
		}
		l.Info().Msg("Application shutdown complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %v", ctx.Err())
	}
}
