package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammed-shakir/vakuf-map/internal/cache"
	"github.com/mohammed-shakir/vakuf-map/internal/cache/keys"
	"github.com/mohammed-shakir/vakuf-map/internal/cache/redisstore"
	"github.com/mohammed-shakir/vakuf-map/internal/core/config"
	"github.com/mohammed-shakir/vakuf-map/internal/core/health"
	"github.com/mohammed-shakir/vakuf-map/internal/core/httpclient"
	"github.com/mohammed-shakir/vakuf-map/internal/core/model"
	"github.com/mohammed-shakir/vakuf-map/internal/core/observability"
	"github.com/mohammed-shakir/vakuf-map/internal/core/server"
	"github.com/mohammed-shakir/vakuf-map/internal/filter"
	"github.com/mohammed-shakir/vakuf-map/internal/invalidation"
	"github.com/mohammed-shakir/vakuf-map/internal/invalidation/kafkaconsumer"
	"github.com/mohammed-shakir/vakuf-map/internal/logger"
	"github.com/mohammed-shakir/vakuf-map/internal/metrics"
	"github.com/mohammed-shakir/vakuf-map/internal/navigation"
	"github.com/mohammed-shakir/vakuf-map/internal/session"
	"github.com/mohammed-shakir/vakuf-map/internal/store"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   int(cfg.LogSampleN),
		Service:   "vakuf-map",
		Component: "server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	appLog.Info("starting vakuf-map",
		"addr", cfg.Addr,
		"version", Version,
		"docstore", cfg.DocStoreURL,
		"collection", cfg.DocStoreCollection)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		p := metrics.Init(metrics.Config{
			Enabled: true,
			Addr:    cfg.Metrics.Addr,
			Path:    cfg.Metrics.Path,
			Build: metrics.BuildInfo{
				Version:   Version,
				Revision:  os.Getenv("BUILD_REVISION"),
				Branch:    os.Getenv("BUILD_BRANCH"),
				BuildDate: os.Getenv("BUILD_DATE"),
			},
		})
		observability.Init(p.Registerer())
		serveMetrics(ctx, appLog, cfg.Metrics.Addr, p)
	}

	remote, err := store.NewRemote(appLog, httpclient.NewOutbound(0), cfg.DocStoreURL, cfg.DocStoreCollection)
	if err != nil {
		appLog.Error("invalid document store url", "err", err)
		return 1
	}

	cacheKey := keys.Records(cfg.DocStoreURL, cfg.DocStoreCollection)
	pingers := map[string]health.Pinger{}
	var recCache cache.Interface
	if cfg.CacheEnabled {
		// one key is read at startup and on reloads
		rc, err := redisstore.New(ctx, cfg.RedisAddr,
			redisstore.WithPoolSize(8),
			redisstore.WithMinIdleConns(1),
			redisstore.WithReadTimeout(cfg.CacheOpTimeout),
			redisstore.WithWriteTimeout(cfg.CacheOpTimeout),
		)
		if err != nil {
			// the store works without a cache; every load goes remote
			appLog.Warn("redis unavailable, record cache disabled", "addr", cfg.RedisAddr, "err", err)
		} else {
			defer func() { _ = rc.Close() }()
			recCache = rc
			pingers["redis"] = rc
		}
	}

	st := store.New(remote, store.Options{
		Logger:    appLog,
		Cache:     recCache,
		CacheKey:  cacheKey,
		Validity:  cfg.CacheValidity,
		OpTimeout: cfg.CacheOpTimeout,
	})
	recs := st.Load(ctx)
	appLog.Info("records loaded", "count", len(recs))

	mgr := session.NewManager(st, session.ManagerOptions{
		Logger: appLog,
		Session: session.Options{
			Filter:      filter.Options{Logger: appLog, FitDelay: cfg.FitDebounce},
			SuggestMax:  cfg.SuggestMax,
			PanelHeight: 5 * navigation.DefaultItemHeight,
		},
		Center:     model.LatLng{Lat: cfg.MapCenterLat, Lng: cfg.MapCenterLng},
		Zoom:       cfg.MapInitialZoom,
		MobileZoom: cfg.MapMobileZoom,
		IdleTTL:    cfg.SessionIdleTTL,
	})
	go mgr.Run(ctx)

	if cfg.Invalidation.Enabled && recCache != nil {
		kc := kafkaconsumer.New(
			kafkaconsumer.NewConfig(cfg.Invalidation.Brokers, cfg.Invalidation.Topic, cfg.Invalidation.GroupID),
			kafkaconsumer.Deps{
				Logger:      appLog,
				Zerolog:     &zl,
				Cache:       recCache,
				CacheKey:    cacheKey,
				Collection:  cfg.DocStoreCollection,
				Store:       st,
				Dedupe:      invalidation.NewDedupe(0),
				ReloadDelay: cfg.Invalidation.ReloadDelay,
			})
		go func() {
			if err := kc.Start(ctx); err != nil {
				appLog.Error("invalidation consumer stopped", "err", err)
			}
		}()
	} else if cfg.Invalidation.Enabled {
		appLog.Warn("invalidation enabled but record cache is off; consumer not started")
	}

	if err := server.Run(ctx, cfg, appLog, server.Deps{
		Sessions: mgr,
		Records:  st,
		Pingers:  pingers,
		// default registry, as promauto registers the core collectors there
		Metrics:     promhttp.Handler(),
		MetricsPath: cfg.Metrics.Path,
	}); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}

// serveMetrics exposes the registry on its own listener until ctx is done.
func serveMetrics(ctx context.Context, log *slog.Logger, addr string, p *metrics.Provider) {
	mux := http.NewServeMux()
	mux.Handle(p.Path(), p.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("metrics listening", "addr", addr, "path", p.Path())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server exited", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("metrics shutdown error", "err", err)
		}
	}()
}
