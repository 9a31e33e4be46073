package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	pkgconfig "github.com/Skotchmaster/delivery_platform/pkg/config"
	"github.com/Skotchmaster/delivery_platform/pkg/db"
	"github.com/Skotchmaster/delivery_platform/pkg/events"
	"github.com/Skotchmaster/delivery_platform/pkg/hash"
	"github.com/Skotchmaster/delivery_platform/pkg/logging"
	loggingmw "github.com/Skotchmaster/delivery_platform/pkg/middleware/logging"
	"github.com/Skotchmaster/delivery_platform/pkg/tokens"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/config"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/httpserver"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/repo"
	"github.com/Skotchmaster/delivery_platform/services/auth/internal/service"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	help := pflag.BoolP("help", "h", false, "show the environment variables and exit")
	pflag.Parse()
	if *help {
		fmt.Println(pkgconfig.Usage(&config.ServiceConfig{}))
		return
	}

	cfg := config.Load(*envFile)
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, logger)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	gdb, err := db.Open(initCtx, db.Config{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseURL})
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close(gdb)

	gormRepo := &repo.GormRepo{DB: gdb}
	if err := gormRepo.Migrate(ctx); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	var ledger repo.Ledger = gormRepo
	if cfg.RedisAddr != "" {
		cache, err := repo.NewRedisCache(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Fatalf("redis init error: %v", err)
		}
		defer cache.Close()
		ledger = &repo.CachedLedger{Ledger: gormRepo, Cache: cache}
		logger.Info("revocation_cache_enabled", "addr", cfg.RedisAddr)
	}

	publisher, audit, closePublisher := buildPublisher(cfg, logger)
	defer closePublisher()

	codec, err := tokens.NewCodec(tokens.Config{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	svc := &service.AuthService{
		Users:  gormRepo,
		Ledger: ledger,
		Hasher: hash.Bcrypt{},
		Codec:  codec,
		Events: publisher,
	}

	if cfg.BootstrapAdmin() {
		if err := svc.EnsureAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword); err != nil {
			log.Fatalf("bootstrap admin: %v", err)
		}
		logger.Info("bootstrap_admin_ready", "username", cfg.BootstrapAdminUsername)
	}

	if cfg.LedgerPurgeInterval > 0 {
		go service.RunLedgerPurge(ctx, gormRepo, cfg.LedgerPurgeInterval, nil)
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := &httpserver.Deps{
		Svc: svc,
		Ready: func(ctx context.Context) error {
			return db.Ping(ctx, gdb)
		},
	}
	if audit != nil {
		deps.Audit = audit
	}
	httpserver.Register(e, deps)

	go func() {
		logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("echo_shutdown", "error", err)
	}
}

// buildPublisher fans events out to whichever sinks are configured. Both are
// optional; with neither the service runs with a no-op publisher. The audit
// index is also returned so its trail can be searched.
func buildPublisher(cfg *config.ServiceConfig, logger *slog.Logger) (events.Publisher, *events.AuditIndex, func()) {
	var sinks events.Multi
	var closers []func() error
	var auditIndex *events.AuditIndex

	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		sinks = append(sinks, kp)
		closers = append(closers, kp.Close)
		logger.Info("events_kafka_enabled", "topic", cfg.KafkaTopic)
	}

	if len(cfg.ESAddresses) > 0 {
		audit, err := events.NewAuditIndex(events.AuditConfig{
			Addresses: cfg.ESAddresses,
			Username:  cfg.ESUsername,
			Password:  cfg.ESPassword,
			Index:     cfg.ESIndex,
		})
		if err != nil {
			logger.Warn("events_audit_disabled", "error", err)
		} else {
			sinks = append(sinks, audit)
			auditIndex = audit
			logger.Info("events_audit_enabled", "index", cfg.ESIndex)
		}
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("publisher_close", "error", err)
			}
		}
	}
	if len(sinks) == 0 {
		return events.Nop{}, nil, closeAll
	}
	return sinks, auditIndex, closeAll
}
