package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"celebrity-trivia/internal/app"
	"celebrity-trivia/internal/config"
	"celebrity-trivia/internal/infra/files"
	"celebrity-trivia/internal/infra/memory"
	"celebrity-trivia/internal/infra/postgres"
	redisstore "celebrity-trivia/internal/infra/redis"
	"celebrity-trivia/internal/logging"
	"celebrity-trivia/internal/metrics"
	"celebrity-trivia/internal/tmdb"
	transport "celebrity-trivia/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level)

	if cfg.TMDB.APIKey == "" {
		slog.Warn("TMDB_API_KEY is not set, catalog requests will be rejected upstream")
	}

	if cfg.Postgres.URL != "" {
		if err := postgres.Migrate(ctx, cfg.Postgres.URL); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var (
		catalog app.CatalogRepository
		scores  app.ScoreRepository
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		catalog = postgres.NewCatalogStore(pool)
		scores = postgres.NewScoreStore(pool)
	} else {
		slog.Info("no postgres configured, catalog and scores are kept in memory")
		catalog = memory.NewCatalogStore()
		scores = memory.NewScoreStore()
	}

	client := tmdb.NewClient(tmdb.Options{
		APIKey:       cfg.TMDB.APIKey,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		Language:     cfg.TMDB.Language,
		Timeout:      config.TTLDuration(cfg.TMDB.Timeout, 15*time.Second),
	})
	cacheTTL := config.TTLDuration(cfg.TMDB.CacheTTL, time.Hour)
	roundTTL := config.TTLDuration(cfg.Rounds.TTL, 30*time.Minute)

	var (
		fetcher tmdb.Fetcher
		rounds  app.RoundRepository
	)
	if redisClient != nil {
		fetcher = redisstore.NewMetadataCache(redisClient, client, cacheTTL)
		rounds = redisstore.NewRoundStore(redisClient, roundTTL)
	} else {
		fetcher = memory.NewMetadataCache(client, cacheTTL)
		rounds = memory.NewRoundStore(roundTTL)
	}
	api := tmdb.NewAPI(fetcher)

	imageStore, err := files.NewImageStore(cfg.Images.Dir)
	if err != nil {
		return err
	}
	images := app.NewImageCacher(api, imageStore, catalog)
	games := app.NewGameService(catalog, scores, rounds, api, app.GameOptions{
		NumOptions: cfg.Game.NumOptions,
		NumCorrect: cfg.Game.NumCorrect,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		return err
	}

	router := transport.NewRouter(
		transport.NewHandler(games, images),
		transport.NewWSHandler(games, images),
		metrics.Handler(reg),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		slog.Info("starting trivia service", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
