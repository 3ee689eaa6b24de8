package main

import (
	"CivicPulse/internal/adapters/eventbus"
	"CivicPulse/internal/adapters/memory"
	"CivicPulse/internal/adapters/metrics"
	"CivicPulse/internal/adapters/postgres"
	rediscache "CivicPulse/internal/adapters/redis"
	"CivicPulse/internal/adapters/rest"
	"CivicPulse/internal/adapters/security"
	"CivicPulse/internal/adapters/seed"
	"CivicPulse/internal/adapters/telegram"
	"CivicPulse/internal/core/lifecycle"
	"CivicPulse/internal/core/ports"
	"CivicPulse/internal/core/services"
	"CivicPulse/internal/shared/config"
	"CivicPulse/internal/shared/logger"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// stores is the persistence wiring selected by configuration.
type stores struct {
	users   ports.UserRepository
	reports ports.ReportRepository
	notes   ports.NotificationRepository
	uow     ports.UnitOfWork
	ready   func(ctx context.Context) error
	close   func()
}

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	baseLogger := logger.New(cfg.IsDev(), cfg.LogLevel)
	baseLogger.Info().
		Str("app_env", cfg.AppEnv).
		Bool("postgres", cfg.Postgres.URL != "").
		Bool("redis", cfg.Redis.URL != "").
		Bool("telegram", cfg.Telegram.Token != "").
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize the Security Service
	secSvc, err := security.NewAESServiceFromHex(cfg.EncryptionKey, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize security service")
	}

	// 4. Initialize Stores
	st, err := openStores(ctx, cfg, secSvc, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize stores")
	}
	defer st.close()

	if cfg.SeedFile != "" {
		n, err := seed.LoadUsersFile(ctx, cfg.SeedFile, st.users, &baseLogger)
		if err != nil {
			baseLogger.Fatal().Err(err).Str("path", cfg.SeedFile).Msg("Failed to seed users")
		}
		baseLogger.Info().Int("created", n).Msg("User seed applied")
	}

	// 5. Event bus and delivery
	bus := eventbus.NewInMemoryEventBus(&baseLogger)

	var bot ports.BotClientPort
	if cfg.Telegram.Token != "" {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			baseLogger.Fatal().Err(err).Msg("Failed to connect to Telegram")
		}
		baseLogger.Info().Str("bot", api.Self.UserName).Msg("Telegram delivery enabled")
		bot = telegram.NewClient(api, &baseLogger)
	}
	telegram.NewNotifier(bot, st.users, &baseLogger).Subscribe(bus)

	// 6. Services
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	reportSvc := services.NewReportService(lifecycle.NewEngine(), st.users, st.reports, st.uow, bus, m, &baseLogger)
	notificationSvc := services.NewNotificationService(st.users, st.notes, &baseLogger)

	// 7. HTTP
	api := rest.NewServer(reportSvc, notificationSvc,
		rest.NewAuthenticator(cfg.JWT.Secret, cfg.JWT.Issuer), &baseLogger,
		rest.WithMetrics(m), rest.WithReadiness(st.ready))

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		baseLogger.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		baseLogger.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		if err := bus.Wait(shutdownCtx); err != nil {
			baseLogger.Warn().Err(err).Msg("Gave up waiting for event handlers")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		baseLogger.Error().Err(err).Msg("Server stopped with error")
		return
	}
	baseLogger.Info().Msg("Server stopped")
}

// openStores picks postgres when DATABASE_URL is set and the in-memory
// store otherwise. A configured redis fronts the user directory.
func openStores(ctx context.Context, cfg *config.Config, sec ports.SecurityPort, baseLogger *zerolog.Logger) (*stores, error) {
	var st stores

	if cfg.Postgres.URL == "" {
		baseLogger.Warn().Msg("DATABASE_URL not set, using in-memory stores")
		mem := memory.NewStore(baseLogger)
		st = stores{
			users:   mem.Users(),
			reports: mem.Reports(),
			notes:   mem.Notifications(),
			uow:     mem,
			close:   func() {},
		}
	} else {
		db, err := postgres.NewDB(ctx, cfg.Postgres.URL, sec, baseLogger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		st = stores{
			users:   postgres.NewUserRepository(db, baseLogger),
			reports: postgres.NewReportRepository(db, baseLogger),
			notes:   postgres.NewNotificationRepository(db, baseLogger),
			uow:     db,
			ready:   db.Ping,
			close:   db.Close,
		}
	}

	client, err := rediscache.NewClient(ctx, cfg.Redis.URL)
	if err != nil {
		st.close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	if client != nil {
		st.users = rediscache.NewCachedUserRepository(st.users, client, cfg.Redis.UserTTL, baseLogger)
		closeStores := st.close
		st.close = func() {
			_ = client.Close()
			closeStores()
		}
		baseLogger.Info().Dur("ttl", cfg.Redis.UserTTL).Msg("User cache enabled")
	}

	return &st, nil
}
