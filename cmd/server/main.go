package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/config"
	"marketplace/internal/api"
	"marketplace/internal/authz"
	"marketplace/internal/broker"
	"marketplace/internal/redisclient"
	"marketplace/internal/service"
	"marketplace/internal/store"
	"marketplace/internal/util"
	"marketplace/internal/worker"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting marketplace service")

	tp, err := util.InitTracer("marketplace", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	if cfg.Seed.AdminPassword != "" {
		if err := db.SeedAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
			log.Fatalf("Failed to seed admin user: %v", err)
		}
	} else {
		log.Println("SEED_ADMIN_PASSWORD not set, skipping admin bootstrap")
	}

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	authorizer := authz.NewAuthorizer(db)
	secured := store.NewSecured(db, authorizer)

	accountService := service.NewAccountService(db, secured, cfg.Auth.JWTSecret, cfg.Auth.TokenTTLHours)
	catalogService := service.NewCatalogService(secured, redisClient)
	promoService := service.NewPromoService(secured, redisClient, eventPublisher)
	orderService := service.NewOrderService(secured, eventPublisher, promoService)
	reviewService := service.NewReviewService(secured, eventPublisher)
	merchantService := service.NewMerchantService(secured)
	profileService := service.NewProfileService(secured)
	notificationService := service.NewNotificationService(db, secured)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
	notificationWorker := worker.NewNotificationWorker(consumer, notificationService)
	go func() {
		if err := notificationWorker.Start(workerCtx); err != nil {
			log.Printf("Notification worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(
		accountService,
		catalogService,
		orderService,
		reviewService,
		merchantService,
		profileService,
		promoService,
	)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	notificationWorker.Stop()

	log.Println("Server exited")
}
