package appServer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/hotel-booking/config"
	repository "github.com/ds124wfegd/hotel-booking/internal/database/postgres"
	redisdb "github.com/ds124wfegd/hotel-booking/internal/database/redis"
	"github.com/ds124wfegd/hotel-booking/internal/service"
	"github.com/ds124wfegd/hotel-booking/internal/transport"
	"github.com/ds124wfegd/hotel-booking/internal/worker"

	"github.com/ds124wfegd/hotel-booking/pkg/mailer"
	"github.com/ds124wfegd/hotel-booking/pkg/postgres"
	"github.com/ds124wfegd/hotel-booking/pkg/queue"
	"github.com/ds124wfegd/hotel-booking/pkg/rabbitmq"
	"github.com/ds124wfegd/hotel-booking/pkg/redis"
	"github.com/ds124wfegd/hotel-booking/pkg/telegram"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	bookingRepo := repository.NewBookingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	guestRepo := repository.NewGuestRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Initialize Telegram bot
	var telegramBot *telegram.Bot
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		telegramBot = telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		logrus.Info("Telegram bot initialized")
	} else {
		logrus.Warn("Telegram bot token not provided, notifications disabled")
	}

	// Initialize mailer
	emailSender := mailer.NewMailer(&cfg.Email)

	// Initialize Redis: room cache and delayed task queue
	redisClient := redis.NewRedisClient(&cfg.Redis)
	defer redisClient.Close()

	roomCache := redisdb.NewRoomCache(redisClient, cfg.Cache.RoomTTL)

	var redisQueue queue.Queue
	var taskPublisher service.TaskPublisher

	retryManager := queue.NewRetryManager(3, 5*time.Second)
	dlqHandler := queue.NewDefaultDLQHandler(redisClient, "hotel_booking:dlq")

	queueCfg := queue.DefaultRedisQueueConfig()
	queueCfg.Addr = fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	queueCfg.Password = cfg.Redis.Password
	queueCfg.DB = cfg.Redis.DB

	redisQueue, err = queue.NewRedisQueue(queueCfg, retryManager, dlqHandler)
	if err != nil {
		logrus.Errorf("Failed to initialize Redis queue: %v. Continuing without queue...", err)
		redisQueue = nil
	} else {
		logrus.Info("Redis queue initialized")
		// Создаем адаптер для очереди
		taskPublisher = service.NewQueueAdapter(redisQueue)
	}

	// Initialize RabbitMQ publisher for booking lifecycle events
	var eventPublisher rabbitmq.Publisher
	if cfg.RabbitMQ.Enabled {
		rmq, err := rabbitmq.NewRabbitMQ(rabbitmq.Config{
			URL:       cfg.RabbitMQ.URL,
			QueueName: cfg.RabbitMQ.QueueName,
		})
		if err != nil {
			logrus.Errorf("Failed to initialize RabbitMQ: %v. Continuing without events...", err)
		} else {
			eventPublisher = rmq
			defer rmq.Close()
			logrus.Info("RabbitMQ publisher initialized")
		}
	}

	// Initialize services
	var notifier service.OpsNotifier
	if telegramBot != nil {
		notifier = telegramBot
	}
	bookingService := service.NewBookingService(bookingRepo, roomRepo, discountRepo, paymentRepo, taskPublisher, eventPublisher, notifier, cfg.Booking)
	roomService := service.NewRoomService(roomRepo, roomCache)
	guestService := service.NewGuestService(guestRepo)
	discountService := service.NewDiscountService(discountRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize task handler if queue is available
	if redisQueue != nil {
		var opsNotifier queue.OpsNotifier
		if telegramBot != nil {
			opsNotifier = telegramBot
		}
		taskHandler := queue.NewTaskHandler(emailSender, opsNotifier)

		// Start queue consumer
		go func() {
			if err := redisQueue.Subscribe(ctx, taskHandler.HandleTask); err != nil {
				logrus.Errorf("Queue subscriber error: %v", err)
			}
		}()
		logrus.Info("Queue subscriber started")
	}

	// Initialize night audit worker
	auditWorker := worker.NewNightAuditWorker(bookingService, cfg.Worker.AuditInterval)
	go auditWorker.Start(ctx)
	logrus.Info("Night audit worker started")

	// Initialize handlers
	bookingHandler := transport.NewBookingHandler(bookingService)
	roomHandler := transport.NewRoomHandler(roomService, bookingService)
	guestHandler := transport.NewGuestHandler(guestService)
	discountHandler := transport.NewDiscountHandler(discountService)

	// Setup HTTP server
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(bookingHandler, roomHandler, guestHandler, discountHandler)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
