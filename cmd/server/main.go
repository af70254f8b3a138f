package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	natsadapter "github.com/bazario/listing-service/internal/adapter/messaging/nats"
	"github.com/bazario/listing-service/internal/adapter/repository/cache"
	"github.com/bazario/listing-service/internal/adapter/repository/memory"
	"github.com/bazario/listing-service/internal/adapter/repository/mongodb"
	"github.com/bazario/listing-service/internal/adapter/rest"
	"github.com/bazario/listing-service/internal/adapter/rest/middleware"
	"github.com/bazario/listing-service/internal/adapter/storage/s3"
	"github.com/bazario/listing-service/internal/config"
	listingdomain "github.com/bazario/listing-service/internal/listing/domain"
	listingusecase "github.com/bazario/listing-service/internal/listing/usecase"
	"github.com/bazario/listing-service/internal/mailer"
	"github.com/bazario/listing-service/internal/platform/logger"
	"github.com/bazario/listing-service/internal/platform/tracer"
	userdomain "github.com/bazario/listing-service/internal/user/domain"
	userusecase "github.com/bazario/listing-service/internal/user/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewLogger()
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracing := false
	if cfg.OTLPEndpoint != "" {
		tp, err := tracer.InitTracer(ctx, cfg.OTLPEndpoint)
		if err != nil {
			appLogger.Error("Failed to initialize tracer", "error", err.Error())
		} else {
			tracing = true
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					appLogger.Error("Tracer shutdown failed", "error", err.Error())
				}
			}()
		}
	}

	var (
		listingRepo listingdomain.ListingRepository
		userRepo    userdomain.UserRepository
	)
	switch cfg.StorageDriver {
	case "mongo":
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			appLogger.Error("Failed to connect to MongoDB", "error", err.Error())
			log.Fatal(err)
		}
		defer mongoClient.Disconnect(context.Background())
		db := mongoClient.Database(cfg.MongoDatabase)
		listingRepo = mongodb.NewListingRepository(db)
		userRepo = mongodb.NewUserRepository(db)
		appLogger.Info("Using MongoDB storage", "database", cfg.MongoDatabase)
	default:
		listingRepo = memory.NewListingRepository()
		userRepo = memory.NewUserRepository()
		appLogger.Info("Using in-memory storage")
	}

	listingUC := listingusecase.NewListingUsecase(listingRepo, appLogger)

	var listingCache *cache.ListingCache
	if cfg.RedisAddress != "" {
		lc, err := cache.NewListingCache(cfg.RedisAddress)
		if err != nil {
			appLogger.Error("Failed to connect to Redis, continuing without cache", "error", err.Error())
		} else {
			listingCache = lc
			listingUC.WithCache(listingCache)
			appLogger.Info("Listing read cache enabled", "redis", cfg.RedisAddress)
		}
	}

	if cfg.NATSURL != "" {
		publisher, err := natsadapter.NewPublisher(cfg.NATSURL)
		if err != nil {
			appLogger.Error("Failed to connect to NATS, continuing without events", "error", err.Error())
		} else {
			defer publisher.Close()
			listingUC.WithPublisher(publisher)
			appLogger.Info("Event publishing enabled", "nats", cfg.NATSURL)
		}
	}

	if cfg.SMTPHost != "" {
		smtp := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
		listingUC.WithMailer(smtp, userRepo)
		appLogger.Info("Mail notices enabled", "smtp_host", cfg.SMTPHost)
	}

	var photoUC *listingusecase.PhotoUsecase
	if cfg.MinIOEndpoint != "" {
		storage, err := s3.NewS3Storage(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL, appLogger)
		if err != nil {
			appLogger.Error("Failed to initialize photo storage, continuing without uploads", "error", err.Error())
		} else {
			photoUC = listingusecase.NewPhotoUsecase(storage, listingRepo, appLogger)
			if listingCache != nil {
				photoUC.WithCache(listingCache)
			}
		}
	}

	userUC := userusecase.NewUserUsecase(userRepo, cfg.JWTSecret, appLogger)
	handler := rest.NewHandler(listingUC, photoUC, userUC, appLogger)
	router := rest.NewRouter(rest.RouterConfig{
		Handler: handler,
		Auth:    middleware.NewAuthMiddleware(userUC, appLogger),
		Logger:  appLogger,
		Tracing: tracing,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		appLogger.Info("Starting HTTP server", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err.Error())
	}
}
