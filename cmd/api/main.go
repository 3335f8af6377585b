package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/menahealth/medflow-api/internal/config"
	"github.com/menahealth/medflow-api/internal/handler"
	authHandler "github.com/menahealth/medflow-api/internal/handler/auth"
	intakeHandler "github.com/menahealth/medflow-api/internal/handler/intake"
	patientHandler "github.com/menahealth/medflow-api/internal/handler/patient"
	pharmacyHandler "github.com/menahealth/medflow-api/internal/handler/pharmacy"
	userHandler "github.com/menahealth/medflow-api/internal/handler/user"
	"github.com/menahealth/medflow-api/internal/middleware"
	"github.com/menahealth/medflow-api/internal/model"
	"github.com/menahealth/medflow-api/internal/repository/mongodb"
	"github.com/menahealth/medflow-api/internal/router"
	authService "github.com/menahealth/medflow-api/internal/service/auth"
	lifecycleService "github.com/menahealth/medflow-api/internal/service/lifecycle"
	notificationService "github.com/menahealth/medflow-api/internal/service/notification"
	orderService "github.com/menahealth/medflow-api/internal/service/order"
	patientService "github.com/menahealth/medflow-api/internal/service/patient"
	userService "github.com/menahealth/medflow-api/internal/service/user"
	"github.com/menahealth/medflow-api/pkg/auth"
	"github.com/menahealth/medflow-api/pkg/logger"
	"github.com/menahealth/medflow-api/pkg/metrics"
	"github.com/menahealth/medflow-api/pkg/qr"
	"github.com/menahealth/medflow-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.NewMetrics("medflow")

	if err := model.RegisterValidations(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	db, err := mongodb.NewDB(cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Client().Disconnect(ctx)
	}()

	patientRepo := mongodb.NewPatientRepository(db)
	medOrderRepo := mongodb.NewMedOrderRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	telegramRepo := mongodb.NewTelegramRepository(db)
	outboxRepo := mongodb.NewOutboxRepository(db)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(12)

	userSvc := userService.NewService(userRepo)
	notificationSvc := notificationService.NewService(userSvc, outboxRepo, appLogger)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher, appLogger)
	patientSvc := patientService.NewService(patientRepo, telegramRepo, notificationSvc, appLogger)
	lifecycleSvc := lifecycleService.NewService(patientRepo, notificationSvc, appLogger, appMetrics)
	orderSvc := orderService.NewService(patientRepo, medOrderRepo, qr.NewGenerator(), cfg.URLs.PublicBase, appLogger)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc)
	patientH := patientHandler.NewHandler(patientSvc, lifecycleSvc, orderSvc)
	pharmacyH := pharmacyHandler.NewHandler(orderSvc)
	intakeH := intakeHandler.NewHandler(patientSvc)
	userH := userHandler.NewHandler(userSvc)

	r := router.NewRouter(
		authMiddleware,
		authH,
		patientH,
		pharmacyH,
		intakeH,
		userH,
		h,
		appLogger,
		router.Config{
			RateLimitRPS:   50,
			RateLimitBurst: 100,
			RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			WebhookSecret:  cfg.Intake.WebhookSecret,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "medflow_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("starting API server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error(err, "forced shutdown")
	}
}
