package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/Roma7-7-7/love-dialect/internal/ai"
	"github.com/Roma7-7-7/love-dialect/internal/api"
	"github.com/Roma7-7-7/love-dialect/internal/config"
	"github.com/Roma7-7-7/love-dialect/internal/dal"
	"github.com/Roma7-7-7/love-dialect/internal/schedule"
	"github.com/Roma7-7-7/love-dialect/internal/social"
	"github.com/Roma7-7-7/love-dialect/internal/stats"
	"github.com/Roma7-7-7/love-dialect/pkg/kv"
)

var (
	// Version is set via -ldflags at build time
	Version = "dev" //nolint:gochecknoglobals // must be global to be replaced at build time
	// BuildTime is set via -ldflags at build time
	BuildTime = "unknown" //nolint:gochecknoglobals // must be global to be replaced at build time
)

const (
	exitCodeOK int = iota
	exitCodeConfigParse
	exitCodeDBConnect
	exitCodeServerStart
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conf, err := config.NewAPI(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get config", "error", err) //nolint:sloglint // app logger is not configured yet
		return exitCodeConfigParse
	}
	log := mustLogger(conf.Dev)

	store, closeStore, err := kvStore(ctx, conf.DB, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to open key value store", "error", err)
		return exitCodeDBConnect
	}
	defer closeStore()

	deps := dependencies(ctx, conf, store, log)
	router := api.NewRouter(ctx, conf, deps)
	log.InfoContext(ctx, "starting api server",
		"version", Version,
		"build_time", BuildTime,
		"address", conf.Server.Addr,
		"ai_enabled", conf.AI.Enabled(),
	)

	server := &http.Server{
		ReadHeaderTimeout: conf.Server.ReadHeaderTimeout,
		Addr:              conf.Server.Addr,
		Handler:           router,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		schedule.StartDanglingCodeSweep(egCtx, conf.Server.SweepInterval, deps.Repo, log)
		return nil
	})
	eg.Go(func() error {
		if sErr := server.ListenAndServe(); sErr != nil && !errors.Is(sErr, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", sErr)
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		cCtx, cCancel := context.WithTimeout(context.WithoutCancel(ctx), conf.Server.ShutdownTimeout)
		defer cCancel()

		if sErr := server.Shutdown(cCtx); sErr != nil {
			return fmt.Errorf("shutdown api server: %w", sErr)
		}
		return nil
	})

	if err = eg.Wait(); err != nil {
		log.ErrorContext(ctx, "api server failed", "error", err)
		return exitCodeServerStart
	}

	log.InfoContext(ctx, "api server is stopped")

	return exitCodeOK
}

func dependencies(ctx context.Context, conf config.API, store kv.Store, log *slog.Logger) api.Dependencies {
	repo := dal.NewStore(store, log)
	deps := api.Dependencies{
		Repo:   repo,
		Stats:  stats.NewAggregator(repo),
		Social: social.NewRegistry(social.NewKakao()),
		Logger: log,
	}

	client, err := ai.NewClient(ai.Config{
		APIKey:     conf.AI.APIKey,
		BaseURL:    conf.AI.BaseURL,
		Model:      conf.AI.Model,
		Timeout:    conf.AI.Timeout,
		MaxRetries: conf.AI.MaxRetries,
	}, log)
	if err != nil {
		// store routes keep working; ai routes answer 503
		log.WarnContext(ctx, "ai features are disabled", "error", err)
		return deps
	}

	deps.Generator = client
	deps.Source = client
	return deps
}

// kvStore opens the SQLite backed store, or an in-memory one when no file is configured.
func kvStore(ctx context.Context, conf config.DB, log *slog.Logger) (kv.Store, func(), error) {
	if conf.Path == "" {
		log.WarnContext(ctx, "no database file configured, data is kept in memory")
		return kv.NewInMemory(), func() {}, nil
	}

	db, err := sql.Open("sqlite", conf.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store, err := kv.NewSQLite(ctx, db, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return store, func() {
		if cErr := db.Close(); cErr != nil {
			log.ErrorContext(ctx, "failed to close database", "error", cErr)
		}
	}, nil
}

func mustLogger(dev bool) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	if dev {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler)
}
