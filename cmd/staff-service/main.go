package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/schoolhub/schoolhub-backend/internal/staff/consumers"
	"github.com/schoolhub/schoolhub-backend/internal/staff/events"
	"github.com/schoolhub/schoolhub-backend/internal/staff/handler"
	"github.com/schoolhub/schoolhub-backend/internal/staff/repository"
	"github.com/schoolhub/schoolhub-backend/internal/staff/service"
	"github.com/schoolhub/schoolhub-backend/pkg/auth"
	"github.com/schoolhub/schoolhub-backend/pkg/config"
	"github.com/schoolhub/schoolhub-backend/pkg/database"
	"github.com/schoolhub/schoolhub-backend/pkg/httputil"
	"github.com/schoolhub/schoolhub-backend/pkg/i18n"
	"github.com/schoolhub/schoolhub-backend/pkg/logger"
	"github.com/schoolhub/schoolhub-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("staff-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("staff-service", cfg.Server.Environment)
	log.Info().Msg("starting Staff Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	if err := rmq.DeclareDeadLetterQueue("staff-service"); err != nil {
		log.Fatal().Err(err).Msg("failed to declare dead letter queue")
	}

	// Initialize event publisher
	staffPublisher, err := messaging.NewPublisher(rmq, messaging.ExchangeStaffEvents, "staff-service", log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}
	attendancePublisher := events.NewAttendancePublisher(staffPublisher, log)

	// Initialize repositories
	staffRepo := repository.NewStaffRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	userCacheRepo := repository.NewUserCacheRepository(db)

	// Initialize services
	overtimeCalc := service.NewOvertimeCalculator()
	attendanceService := service.NewAttendanceService(staffRepo, attendanceRepo, overtimeCalc, attendancePublisher, log)
	staffService := service.NewStaffService(staffRepo, overtimeCalc, log)

	// Initialize handlers
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, log)
	staffHandler := handler.NewStaffHandler(staffService, log)

	// Start user event consumer to keep the local name cache warm
	userConsumer, err := consumers.NewUserConsumer(rmq, userCacheRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create user event consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := userConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start user event consumer")
	}

	// JWT validation
	authManager := auth.NewManager(&cfg.JWT)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Accept-Language", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(i18n.Middleware)
	r.Use(httputil.Auth(authManager))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "staff-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		staffHandler.RegisterRoutes(r)
		attendanceHandler.RegisterRoutes(r)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("staff service stopped")
}
