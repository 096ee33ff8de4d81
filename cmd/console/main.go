// Command console sirve la consola de administración de bodega: sesiones, tableros de revisión
// de categorías, productos y proveedores, y la bitácora de decisiones.
//
// @title                       Inventario Admin Console API
// @version                     1.0
// @description                 BFF de la consola de administración de bodega sobre el API REST de inventario.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/inventario-admin/docs"
	"github.com/jhoicas/inventario-admin/internal/application/approval"
	"github.com/jhoicas/inventario-admin/internal/application/auth"
	"github.com/jhoicas/inventario-admin/internal/application/state"
	"github.com/jhoicas/inventario-admin/internal/domain/repository"
	"github.com/jhoicas/inventario-admin/internal/infrastructure/backend"
	infrapdf "github.com/jhoicas/inventario-admin/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-admin/internal/infrastructure/postgres"
	consoleredis "github.com/jhoicas/inventario-admin/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/inventario-admin/internal/interfaces/http"
	"github.com/jhoicas/inventario-admin/pkg/config"
	"github.com/jhoicas/inventario-admin/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.Backend.BaseURL).
		Msg("iniciando consola")

	ctx := context.Background()

	// Sesiones persistidas (usuario + access token del backend)
	redisClient := consoleredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
	}
	cancelPing()
	sessionStore := consoleredis.NewSessionStore(redisClient, cfg.Session.Secret, cfg.Session.TTL())

	// Bitácora de revisión (opcional)
	var reviewLogs repository.ReviewLogRepository
	if cfg.DB.ReviewLog {
		pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, postgres.NewTxRunner(pool)); err != nil {
			log.Fatal().Err(err).Msg("migrar esquema de la consola")
		}
		reviewLogs = postgres.NewReviewLogRepository(pool)
	} else {
		log.Warn().Msg("bitácora de revisión deshabilitada (REVIEW_LOG_ENABLED=false)")
	}

	// Backend REST de bodega
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), log)
	categorySvc := backend.NewCategoryService(client)
	productSvc := backend.NewProductService(client)
	supplierSvc := backend.NewSupplierService(client)
	userSvc := backend.NewUserService(client)

	registry := state.NewRegistry()
	authUC := auth.NewAuthUseCase(userSvc, sessionStore, registry, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	reviewSvc := approval.NewService(approval.Deps{
		Gateways:   []approval.Gateway{categorySvc, productSvc, supplierSvc},
		Categories: categorySvc,
		Registry:   registry,
		Logs:       reviewLogs,
		Report:     infrapdf.NewReviewReportGenerator(),
		Log:        log,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Backend.Timeout() + 10*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Title = cfg.App.Name
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Admin Console API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "sessions": registry.Len()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		Reviews:      reviewSvc,
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Session.Secure,
		Log:          log,
	})

	// Estado en memoria de sesiones que vencieron sin logout
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go registry.RunSweeper(sweepCtx, cfg.Session.TTL(), time.Minute, func(n int) {
		log.Debug().Int("workspaces", n).Msg("estado de sesiones vencidas descartado")
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("consola detenida")
}
