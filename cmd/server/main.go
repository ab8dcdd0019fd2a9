package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Anantbhardwaj2003/Event-Management/config"
	_ "github.com/Anantbhardwaj2003/Event-Management/docs"
	"github.com/Anantbhardwaj2003/Event-Management/internal/adapters/auth"
	"github.com/Anantbhardwaj2003/Event-Management/internal/adapters/email"
	"github.com/Anantbhardwaj2003/Event-Management/internal/adapters/objectstore"
	httpdelivery "github.com/Anantbhardwaj2003/Event-Management/internal/delivery/http"
	"github.com/Anantbhardwaj2003/Event-Management/internal/delivery/http/controllers"
	"github.com/Anantbhardwaj2003/Event-Management/internal/delivery/http/middleware"
	"github.com/Anantbhardwaj2003/Event-Management/internal/delivery/ws"
	"github.com/Anantbhardwaj2003/Event-Management/internal/domain"
	mongorepo "github.com/Anantbhardwaj2003/Event-Management/internal/repository/mongo"
	"github.com/Anantbhardwaj2003/Event-Management/internal/repository/postgres"
	"github.com/Anantbhardwaj2003/Event-Management/internal/services"
)

const (
	serviceTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// @title Event Management API
// @version 1.0
// @description REST API for creating and attending events, with a websocket channel for live attendance counts.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)

	eventRepo, userRepo, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.DatabaseDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()
	logger.Info("store ready", "driver", cfg.DatabaseDriver)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.SESRegion,
			AccessKeyID:     cfg.Email.SESAccessKeyID,
			SecretAccessKey: cfg.Email.SESSecretAccess,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	fileStore, err := newFileStore(cfg, logger)
	if err != nil {
		logger.Error("failed to create object store", "err", err)
		os.Exit(1)
	}

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	eventService := services.NewEventService(eventRepo, userRepo, serviceTimeout)
	attendanceService := services.NewAttendanceService(eventRepo, userRepo, emailService, logger, serviceTimeout)

	hub := ws.NewHub(ws.NewSessionRegistry(), attendanceService, verifier, logger, serviceTimeout)
	wsHandler := ws.NewHandler(hub, logger)

	eventController := controllers.NewEventController(logger, eventService, fileStore)
	attendanceController := controllers.NewAttendanceController(logger, attendanceService)

	mux := httpdelivery.NewRouter(eventController, attendanceController, wsHandler.Serve, verifier, logger)

	var handler http.Handler = mux
	handler = middleware.RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst, handler)
	handler = middleware.CORS(strings.Split(cfg.CORSAllowedOrigins, ","), handler)
	handler = middleware.LoggingMiddleware(logger, handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket connections are long-lived
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logger.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	logger.Info("server stopped")
}

// openStore connects to the configured backend and returns its repositories
// together with a close function.
func openStore(cfg *config.Config) (domain.EventRepository, domain.UserRepository, func(), error) {
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		return postgres.NewEventRepository(db), postgres.NewUserRepository(db), func() { db.Close() }, nil

	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, nil, fmt.Errorf("ping mongo: %w", err)
		}
		db := client.Database(cfg.MongoDB)
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			client.Disconnect(ctx)
		}
		return mongorepo.NewEventRepository(db), mongorepo.NewUserRepository(db), closeFn, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported driver %q", cfg.DatabaseDriver)
	}
}

func newFileStore(cfg *config.Config, logger *slog.Logger) (domain.FileStore, error) {
	if cfg.Storage.Endpoint == "" {
		logger.Warn("no object store configured, image uploads disabled")
		return objectstore.NewDisabledStore(), nil
	}
	return objectstore.NewMinioStore(objectstore.Config{
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		Bucket:        cfg.Storage.Bucket,
		UseSSL:        cfg.Storage.UseSSL,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
}
