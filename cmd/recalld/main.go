// Command recalld runs the recall backend HTTP server.
//
// Startup order: load .env, load config, configure logging, open storage,
// build the curation/search/saved-set services, register routes, then serve
// until SIGINT/SIGTERM with a graceful drain.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/recallhub/go-recall-backend/internal/config"
	"github.com/recallhub/go-recall-backend/internal/curation"
	"github.com/recallhub/go-recall-backend/internal/feed"
	httpapi "github.com/recallhub/go-recall-backend/internal/http"
	"github.com/recallhub/go-recall-backend/internal/http/handlers"
	"github.com/recallhub/go-recall-backend/internal/observability"
	"github.com/recallhub/go-recall-backend/internal/pagination"
	"github.com/recallhub/go-recall-backend/internal/repo"
	"github.com/recallhub/go-recall-backend/internal/savedset"
	"github.com/recallhub/go-recall-backend/internal/search"
	"github.com/recallhub/go-recall-backend/internal/services"
	"github.com/recallhub/go-recall-backend/internal/store/boltkv"
	"github.com/recallhub/go-recall-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting recalld")

	// Tracing
	shutdownOTel, err := observability.SetupOTel(context.Background(), cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(ctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	// Relational storage (idempotency records, and the default KV backend)
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open sqlite failed")
	}

	// Saved-set KV backend
	var kv savedset.KV
	switch cfg.KVBackend {
	case "bolt":
		bdb, err := boltkv.Open(cfg.BoltPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.BoltPath).Msg("open bolt failed")
		}
		defer func() {
			if err := bdb.Close(); err != nil {
				log.Warn().Err(err).Msg("bolt close")
			}
		}()
		kv = bdb
	default:
		kv = repo.NewKVStore(db)
	}

	savedStore := savedset.New(kv, savedset.DefaultKey)
	if err := savedStore.Load(context.Background()); err != nil {
		// A corrupt or missing value starts the set empty; the store already
		// handled that. Anything else is a real storage failure.
		log.Fatal().Err(err).Msg("load saved set failed")
	}

	// Curation pipeline and allowlists
	allow, err := curation.LoadAllowlist(cfg.AllowlistPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.AllowlistPath).Msg("load allowlist failed")
	}
	pipeline := curation.NewPipeline(allow)
	pipeline.Cap = cfg.CuratedCap

	dataset := curation.NewDataset()
	window := pagination.NewWindow(dataset.Snapshot, cfg.PageSize)
	engine := search.NewEngine(dataset.Snapshot, cfg.SearchDebounce, cfg.FuzzyThreshold)

	// Upstream feed
	feedClient := feed.NewClient(cfg.Feed.URL, &http.Client{Timeout: cfg.Feed.Timeout})

	// Application services
	recallSvc := &services.RecallService{
		Feed:        feedClient,
		Pipeline:    pipeline,
		Dataset:     dataset,
		Window:      window,
		Engine:      engine,
		FetchWindow: cfg.Feed.FetchWindow,
	}
	searchSvc := &services.SearchService{Engine: engine}
	savedSvc := &services.SavedService{Store: savedStore, DB: db, TTL: cfg.IdempotencyTTL}

	// HTTP transport
	r := gin.New()
	h := handlers.New(recallSvc, searchSvc, savedSvc)
	httpapi.RegisterRoutes(r, db, h, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	// Warm the dataset in the background so the first /recalls request is not
	// stuck behind the upstream fetch. Failures are logged and left for the
	// next /recalls/refresh call to retry.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Feed.Timeout+10*time.Second)
		defer cancel()
		if published, err := recallSvc.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("initial refresh failed")
		} else if published {
			log.Info().Int("recalls", dataset.Len()).Msg("initial refresh complete")
		}
	}()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
