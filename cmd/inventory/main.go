package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skotchmaster/inventory/internal/config"
	"github.com/Skotchmaster/inventory/internal/httpserver"
	"github.com/Skotchmaster/inventory/internal/metrics"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/search"
	"github.com/Skotchmaster/inventory/internal/service"
	pkgdb "github.com/Skotchmaster/inventory/pkg/db"
	"github.com/Skotchmaster/inventory/pkg/events"
	"github.com/Skotchmaster/inventory/pkg/hash"
	"github.com/Skotchmaster/inventory/pkg/logging"
	middleware "github.com/Skotchmaster/inventory/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/inventory/pkg/middleware/logging"
	"github.com/Skotchmaster/inventory/pkg/middleware/ratelimit"
	"github.com/Skotchmaster/inventory/pkg/tokens"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	if cfg.InsecureSecret {
		logger.Warn("jwt_secret_missing", "reason", "using the development fallback secret")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, pkgdb.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL})
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	switch {
	case cfg.DBDriver == pkgdb.DriverSQLite:
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatalf("automigrate: %v", err)
		}
	case cfg.MigrateOnStart:
		if err := pkgdb.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	publisher, err := events.New(cfg.KafkaBrokers)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}

	var index search.Index = search.Nop{}
	if cfg.ESURL != "" {
		es, err := search.NewESIndex(search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := es.Ping(pingCtx); err != nil {
			logger.Warn("elasticsearch_unreachable", "url", cfg.ESURL, "error", err)
		}
		pingCancel()
		index = es
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	store := repo.New(db)
	tokenIssuer := tokens.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	authSvc := &service.AuthService{
		Repo:             store,
		Hasher:           hash.NewBcrypt(0),
		Tokens:           tokenIssuer,
		Events:           publisher,
		Metrics:          collector,
		AllowAdminSignup: cfg.AllowAdminSignup,
	}
	equipmentSvc := &service.EquipmentService{
		Repo:    store,
		Index:   index,
		Events:  publisher,
		Metrics: collector,
	}

	var active middleware.ActiveChecker
	if cfg.AuthCheckActive {
		active = store
	}

	limiter := ratelimit.New(ratelimit.Config{
		PerMinute: cfg.AuthRatePerMinute,
		Burst:     cfg.AuthRateBurst,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(collector.Middleware())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("1M"))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:      &httpserver.AuthHTTP{Svc: authSvc},
		EquipmentHandler: &httpserver.EquipmentHTTP{Svc: equipmentSvc},
		HealthHandler:    &httpserver.HealthHTTP{DB: store},
		Auth:             middleware.NewAuthenticator(tokenIssuer, active),
		AuthRateLimit:    limiter.Middleware(),
		MetricsHandler:   metrics.Handler(reg),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_started", "addr", srv.Addr, "env", cfg.AppEnv, "db_driver", cfg.DBDriver, "search", index.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	limiter.Stop()
	if err := publisher.Close(); err != nil {
		logger.Warn("publisher_close_error", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Warn("db_close_error", "error", err)
	}

	logger.Info("server_stopped")
}
