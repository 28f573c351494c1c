package main

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"marketapi/docs"
	"marketapi/internal/abr"
	"marketapi/internal/config"
	"marketapi/internal/database"
	"marketapi/internal/database/migration"
	handlers "marketapi/internal/http/handler"
	"marketapi/internal/http/middleware"
	"marketapi/internal/logger"
	"marketapi/internal/notify"
	"marketapi/internal/otel"
	"marketapi/internal/repository/postgres"
	"marketapi/internal/scheduler"
	"marketapi/internal/service"
	"marketapi/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// @title Marketplace API
// @version 1.0
// @description Briefs, responses, teams and supplier assessments for the digital marketplace.
// @BasePath /
// @securityDefinitions.apikey UserID
// @in header
// @name X-User-ID
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Log.Timezone)
	if err != nil {
		loc = time.UTC
	}
	log := logger.New(logger.Options{Service: "marketapi", Env: cfg.Log.Env, Level: cfg.Log.Level, Location: loc})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", "error", err)
	}

	// PostgreSQL pool (database/sql over pgx, traced by otelsql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}

	// Response documents live in S3-compatible object storage
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		log.Fatal("failed to initialize object storage", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", "error", err, "redis_addr", cfg.Redis.Addr)
	}
	queue, err := notify.NewRedisQueue(rdb, cfg.Redis.QueueKey, reg)
	if err != nil {
		log.Fatal("failed to initialize notification queue", "error", err)
	}

	userRepo := postgres.NewUserPostgres(db)
	repos := service.Repositories{
		Users:       userRepo,
		Suppliers:   postgres.NewSupplierPostgres(db),
		Domains:     postgres.NewDomainPostgres(db),
		Briefs:      postgres.NewBriefPostgres(db),
		Responses:   postgres.NewBriefResponsePostgres(db),
		Assessors:   postgres.NewBriefAssessorPostgres(db),
		Questions:   postgres.NewQuestionPostgres(db),
		Teams:       postgres.NewTeamPostgres(db),
		Evidence:    postgres.NewEvidencePostgres(db),
		CaseStudies: postgres.NewCaseStudyPostgres(db),
		Audit:       postgres.NewAuditPostgres(db),
	}

	svcLog := log.Component("service")
	briefSvc := service.NewBriefService(repos, queue, cfg.Marketplace, svcLog)
	services := handlers.Services{
		Briefs:      briefSvc,
		Responses:   service.NewBriefResponseService(repos, objStore, queue, cfg.Marketplace, svcLog),
		Teams:       service.NewTeamService(repos, queue, cfg.Marketplace, svcLog),
		Questions:   service.NewQuestionService(repos, queue, svcLog),
		Assessors:   service.NewAssessorService(repos, queue, svcLog),
		Evidence:    service.NewEvidenceService(repos, queue, svcLog),
		CaseStudies: service.NewCaseStudyService(repos, queue, svcLog),
		Domains:     service.NewDomainService(repos),
		Suppliers:   service.NewSupplierService(repos, abr.New(cfg.ABR), cfg.Marketplace),
	}

	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("failed to register http metrics", "error", err)
	}

	closer, err := scheduler.New(cfg.Marketplace.BriefCloseSchedule, briefSvc, reg, log)
	if err != nil {
		log.Fatal("failed to create brief close scheduler", "error", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	// RequestID first so every later middleware and handler can read it
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(log))
	app.Use(promMW.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, db, userRepo, services)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("server starting", "event", "server_start", "addr", addr, "app_host", cfg.AppHost)
		return app.Listen(addr)
	})

	g.Go(func() error {
		closer.Start()
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info("server stopping", "event", "server_stop")
		err := errors.Join(
			closer.Stop(shutdownCtx),
			app.ShutdownWithContext(shutdownCtx),
			shutdownTracing(shutdownCtx),
		)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "event", "server_exit", "error", err)
	}
}
