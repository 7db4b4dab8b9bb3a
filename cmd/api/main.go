package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/clinical-portal/internal/api/http"
	"github.com/spec-kit/clinical-portal/internal/api/http/handlers"
	"github.com/spec-kit/clinical-portal/internal/auth"
	"github.com/spec-kit/clinical-portal/internal/config"
	"github.com/spec-kit/clinical-portal/internal/events"
	"github.com/spec-kit/clinical-portal/internal/observability"
	"github.com/spec-kit/clinical-portal/internal/persistence"
	"github.com/spec-kit/clinical-portal/internal/rbac"
	"github.com/spec-kit/clinical-portal/internal/repository"
	"github.com/spec-kit/clinical-portal/internal/service"
	"github.com/spec-kit/clinical-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	roleRepo := repository.NewRoleRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	apptRepo := repository.NewAppointmentRepository(pool)
	rxRepo := repository.NewPrescriptionRepository(pool)
	recordRepo := repository.NewPatientRecordRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	// Align persisted roles with the canonical catalog and guarantee the
	// administrator credential. Failures here are logged but not fatal:
	// the process keeps serving with whatever role data is persisted.
	catalog := rbac.DefaultCatalog()
	if _, err := rbac.NewReconciler(roleRepo, logger).Reconcile(ctx, catalog); err != nil {
		logger.Error("role reconciliation failed; continuing with persisted roles", zap.Error(err))
	}
	bootstrapper := rbac.NewBootstrapper(userRepo, roleRepo, cfg.Auth.BcryptCost, logger)
	if _, err := bootstrapper.EnsureAdmin(ctx, cfg.Auth.AdminPassword); err != nil {
		logger.Error("admin bootstrap failed", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, auditRepo, logger)

	limiter := auth.NewLoginLimiter(redis.Client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow(), logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		RoleRepo:   roleRepo,
		RecordRepo: recordRepo,
		Limiter:    limiter,
		Dispatcher: dispatcher,
	})
	accessService := service.NewAccessService(userRepo, roleRepo, dispatcher)
	adminService := service.NewUserAdminService(userRepo, roleRepo, dispatcher, cfg.Auth.BcryptCost)
	portalService := service.NewPortalService(service.PortalDependencies{
		UserRepo:         userRepo,
		RoleRepo:         roleRepo,
		AppointmentRepo:  apptRepo,
		PrescriptionRepo: rxRepo,
		RecordRepo:       recordRepo,
	})

	gate := auth.NewMiddleware(authService.TokenManager(), userRepo, roleRepo)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:       handlers.NewAuthHandler(authService),
		Roles:      handlers.NewRolesHandler(accessService),
		Patients:   handlers.NewPatientsHandler(portalService),
		Doctors:    handlers.NewDoctorsHandler(portalService),
		Nurses:     handlers.NewNursesHandler(portalService),
		Access:     handlers.NewAccessHandler(accessService),
		AdminUsers: handlers.NewAdminUsersHandler(adminService),
		Gate:       gate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
