package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/facility-ops-api/internal/auth"
	"github.com/noah-isme/facility-ops-api/internal/config"
	"github.com/noah-isme/facility-ops-api/internal/database"
	"github.com/noah-isme/facility-ops-api/internal/handler"
	"github.com/noah-isme/facility-ops-api/internal/middleware"
	"github.com/noah-isme/facility-ops-api/internal/observability"
	"github.com/noah-isme/facility-ops-api/internal/repository"
	"github.com/noah-isme/facility-ops-api/internal/router"
	"github.com/noah-isme/facility-ops-api/internal/service"
	cloud "github.com/noah-isme/facility-ops-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	observability.RegisterMetrics()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, caches and cross-node alerts disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, alert fan-out uses redis only")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	var photos service.FileStorage
	if cfg.CloudinaryConfigured() {
		store, err := cloud.NewPhotoStore(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		photos = store
	} else {
		logger.Warn().Msg("cloudinary not configured, manager photo uploads disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	tenantRepo := repository.NewTenantRepository(db)
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	managerAttendanceRepo := repository.NewManagerAttendanceRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	clientRepo := repository.NewClientRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	communicationRepo := repository.NewCommunicationRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, tenantRepo, tokens, validate, cfg.BcryptCost, logger)
	tenantService := service.NewTenantService(tenantRepo, validate, activityService, logger)
	userService := service.NewUserService(userRepo, validate, activityService, cfg.BcryptCost, logger)
	alertService := service.NewAlertService(alertRepo, redisClient, cfg.EventChannel, natsConn, validate, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, userRepo, validate, service.AttendanceOptions{
		HalfDayHours: cfg.HalfDayHours,
		Location:     cfg.Location,
	}, logger)
	managerAttendanceService := service.NewManagerAttendanceService(managerAttendanceRepo, photos, validate, service.ManagerAttendanceOptions{
		HalfDayHours: cfg.HalfDayHours,
		MaxPhotos:    cfg.MaxManagerPhotos,
		MaxUploadMB:  cfg.MaxUploadMB,
		Location:     cfg.Location,
	}, logger)
	rosterService := service.NewRosterService(rosterRepo, userRepo, validate, activityService, logger)
	leaveService := service.NewLeaveService(leaveRepo, validate, activityService, logger)
	clientService := service.NewClientService(clientRepo, validate, activityService, logger)
	leadService := service.NewLeadService(leadRepo, validate, activityService, redisClient, cfg.DashboardCacheTTL, logger)
	communicationService := service.NewCommunicationService(communicationRepo, clientRepo, leadRepo, validate, logger)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, validate, activityService, cfg.Location, logger)
	expenseService := service.NewExpenseService(expenseRepo, validate, activityService, cfg.Location, logger)
	dashboardService := service.NewDashboardService(service.DashboardRepositories{
		Tenants:    tenantRepo,
		Users:      userRepo,
		Attendance: attendanceRepo,
		Leaves:     leaveRepo,
		Alerts:     alertRepo,
		Leads:      leadRepo,
		Invoices:   invoiceRepo,
		Expenses:   expenseRepo,
	}, redisClient, cfg.DashboardCacheTTL, cfg.Location, logger)

	if cfg.SuperadminEmail != "" && cfg.SuperadminPassword != "" {
		if err := authService.EnsureSuperadmin(ctx, cfg.SuperadminEmail, cfg.SuperadminPassword); err != nil {
			log.Fatalf("failed to bootstrap superadmin: %v", err)
		}
	}
	alertService.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.MaxUploadMB*cfg.MaxManagerPhotos + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:              handler.NewAuthHandler(authService, logger),
		TenantHandler:            handler.NewTenantHandler(tenantService, logger),
		UserHandler:              handler.NewUserHandler(userService, logger),
		AlertHandler:             handler.NewAlertHandler(alertService, logger),
		AttendanceHandler:        handler.NewAttendanceHandler(attendanceService, logger),
		ManagerAttendanceHandler: handler.NewManagerAttendanceHandler(managerAttendanceService, logger),
		RosterHandler:            handler.NewRosterHandler(rosterService, logger),
		LeaveHandler:             handler.NewLeaveHandler(leaveService, logger),
		CRMHandler:               handler.NewCRMHandler(clientService, leadService, communicationService, logger),
		InvoiceHandler:           handler.NewInvoiceHandler(invoiceService, logger),
		ExpenseHandler:           handler.NewExpenseHandler(expenseService, logger),
		DashboardHandler:         handler.NewDashboardHandler(dashboardService, logger),
		ActivityHandler:          handler.NewActivityHandler(activityService, logger),
		HealthProbes:             healthProbes(db, redisClient),
		JWTMiddleware:            middleware.JWTProtected(tokens),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(ctx, app, logger)
}

func healthProbes(db *gorm.DB, redisClient *redis.Client) map[string]handler.HealthProbe {
	probes := map[string]handler.HealthProbe{
		"database": func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return errors.New("redis unreachable")
			}
			return nil
		}
	}
	return probes
}

func waitForShutdown(ctx context.Context, app *fiber.App, logger zerolog.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
