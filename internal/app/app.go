package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	httpapi "github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/api/http"
	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/config"
	eventrabbitmq "github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/event/rabbitmq"
	mongorepo "github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/repository/mongo"
	"github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/internal/service"
	platformlogging "github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/platform/logging"
	platformshutdown "github.com/Taller-2-Arq-de-Sistemas/censudex-inventory/platform/shutdown"
)

// App содержит все зависимости для запуска и корректного shutdown Inventory Service
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	consumer    *eventrabbitmq.OrderCreatedConsumer
	shutdownMgr *platformshutdown.Manager
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Inventory Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	// Создаём logger
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "inventory",
		Env:         string(cfg.AppEnv),
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("op", op))
	logger.Info("Building Inventory service", zap.String("http_addr", cfg.HTTPAddr))

	// Подключаемся к MongoDB
	logger.Info("Connecting to MongoDB")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	logger.Info("MongoDB connection established")

	// Функция readiness для health check
	readiness := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx, nil) == nil
	}

	// Создаём MongoDB репозиторий
	stockRepo := mongorepo.NewRepository(client, cfg.MongoDBName)

	// Подключаемся к RabbitMQ и объявляем топологию
	logger.Info("Connecting to RabbitMQ")
	conn, ch, err := eventrabbitmq.Setup(cfg.RabbitMQ.URL, cfg.RabbitMQ.ConnectAttempts, logger)
	if err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	logger.Info("RabbitMQ connection established")

	// Создаём publisher доменных событий
	publisher := eventrabbitmq.NewPublisher(logger, ch)

	// Создаём service слой с зависимостями
	stockService := service.NewStockService(stockRepo, publisher, logger, service.Options{
		RejectUnchangedStock: cfg.RejectUnchangedStock,
	})

	// Создаём consumer событий order.created
	consumer := eventrabbitmq.NewOrderCreatedConsumer(logger, ch, stockService, eventrabbitmq.FailurePolicy{
		MaxAttempts: cfg.ConsumerMaxAttempts,
		BackoffBase: cfg.ConsumerBackoffBase,
	})

	// Создаем HTTP handler и роутер
	handler := httpapi.NewHandler(stockService, logger)
	router := httpapi.NewRouter(handler, readiness)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Создаём shutdown manager
	// Функции выполняются в обратном порядке регистрации:
	// http -> amqp channel -> amqp connection -> mongo
	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)
	shutdownMgr.Add("mongodb", platformshutdown.DisconnectMongo(client))
	shutdownMgr.Add("amqp_connection", platformshutdown.CloseResource(conn))
	shutdownMgr.Add("amqp_channel", platformshutdown.CloseResource(ch))
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		consumer:    consumer,
		shutdownMgr: shutdownMgr,
	}, nil
}

// Run запускает сервис и блокируется до graceful shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()

	// Consumer останавливается первым, до закрытия канала
	a.shutdownMgr.Add("order_consumer", func(context.Context) error {
		cancelConsumer()
		return nil
	})

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.consumer.Start(consumerCtx); err != nil {
			a.logger.Error("consumer error", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	a.logger.Info("Inventory service started", zap.String("http_addr", a.httpServer.Addr))

	a.shutdownMgr.Wait()

	a.wg.Wait()
	a.logger.Info("Inventory service stopped")
	return nil
}
