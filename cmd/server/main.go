package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tutorbook_backend/internal/app"
	"tutorbook_backend/internal/config"
	httpcontroller "tutorbook_backend/internal/controller/http"
	"tutorbook_backend/internal/gateway"
	"tutorbook_backend/internal/notification"
	"tutorbook_backend/internal/repository"
	"tutorbook_backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	loc := cfg.Location()
	logger.Info("Starting tutorbook backend",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("timezone", cfg.Timezone),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	reservations := repository.NewReservationRepository(pool)
	availability := repository.NewAvailabilityRepository(pool)
	services := repository.NewServiceRepository(pool)
	payments := repository.NewPaymentRepository(pool)
	ratings := repository.NewRatingRepository(pool)
	users := repository.NewUserRepository(pool)

	channels := []notification.Channel{notification.NewLogChannel(logger)}
	if cfg.TelegramToken != "" {
		tgBot, err := bot.New(cfg.TelegramToken)
		if err != nil {
			logger.Fatal("Failed to create telegram bot", zap.Error(err))
		}
		channels = append(channels, notification.NewTelegramChannel(tgBot, users))
	}
	// The dispatcher outlives the signal context so Stop can drain
	// queued notifications during shutdown.
	dispatcher := notification.NewAsyncDispatcher(logger, channels...)
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	payGateway := gateway.NewRedirectGateway(cfg.GatewayBaseURL, logger)

	tutorService := service.NewTutorService(availability, services, logger)
	reservationService := service.NewReservationService(reservations, availability, services, dispatcher, logger, loc)
	paymentService := service.NewPaymentService(payments, reservations, services, payGateway, dispatcher, logger)
	meetingService := service.NewMeetingService(reservations, services, loc)
	ratingService := service.NewRatingService(ratings, reservations, payments, logger)

	handler := httpcontroller.NewHandler(tutorService, reservationService, paymentService, meetingService, ratingService, logger, loc)

	fiberApp := fiber.New(fiber.Config{
		AppName:      "tutorbook_backend",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	fiberApp.Use(recover.New())
	fiberApp.Use(fiberlogger.New())
	httpcontroller.RegisterRoutes(fiberApp, handler)

	go func() {
		if err := fiberApp.Listen(cfg.HTTPAddr); err != nil {
			logger.Error("HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	if err := fiberApp.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Failed to shut down HTTP server", zap.Error(err))
		os.Exit(1)
	}
}
