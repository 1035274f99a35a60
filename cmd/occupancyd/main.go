// Command occupancyd runs an occupancyx engine as an HTTP daemon: it accepts
// sensor/manual/lock events over HTTP, serves the current effective state,
// and drives its own wake-up loop from NextExpiration.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/comalice/occupancyx"
	"github.com/comalice/occupancyx/internal/extensibility"
	"github.com/comalice/occupancyx/internal/production"
)

func main() {
	configPath := flag.String("config", "", "path to the location hierarchy config (YAML or JSON)")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	registryDir := flag.String("registry-dir", "", "directory for the Badger snapshot registry (disabled if empty)")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "occupancyd").Logger()

	if *configPath == "" {
		logger.Fatal().Msg("-config is required")
	}

	if err := run(*configPath, *addr, *registryDir, logger); err != nil {
		logger.Fatal().Err(err).Msg("occupancyd exited with error")
	}
}

func run(configPath, addr, registryDir string, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configs, err := production.ConfigLoader{}.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	reg := prometheus.NewRegistry()
	observer := extensibility.MultiObserver{
		extensibility.NewZerologObserver(logger),
		extensibility.NewPrometheusObserver(reg),
	}

	engine, err := occupancyx.NewEngine(configs, occupancyx.WithObserver(observer))
	if err != nil {
		return fmt.Errorf("construct engine: %w", err)
	}

	var registry *production.BadgerRegistry
	if registryDir != "" {
		limiter := rate.NewLimiter(rate.Limit(10), 20)
		registry, err = production.NewBadgerRegistry(registryDir, limiter)
		if err != nil {
			return fmt.Errorf("open registry: %w", err)
		}
		defer registry.Close()
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: buildRouter(engine, registry, reg, logger),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(configPath); err != nil {
		return fmt.Errorf("watch %s: %w", configPath, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error { return watchConfig(gctx, watcher, configPath, logger) })
	g.Go(func() error { return wakeupLoop(gctx, engine, logger) })

	return g.Wait()
}

// watchConfig rejects (logs, does not apply) a reload that fails Validate.
func watchConfig(ctx context.Context, watcher *fsnotify.Watcher, configPath string, logger zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if _, err := production.ConfigLoader{}.Load(configPath); err != nil {
				logger.Warn().Err(err).Msg("config reload rejected: validation failed")
				continue
			}
			logger.Info().Msg("config file changed; a restart is required to pick it up")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

// wakeupLoop sleeps until the engine's own NextExpiration, then sweeps. The
// engine never reads a clock itself; this loop is the host half of the
// "wake me up" protocol. Events handled between sweeps are not signalled to
// the loop, so it never sleeps longer than 30 seconds.
func wakeupLoop(ctx context.Context, engine *occupancyx.Engine, logger zerolog.Logger) error {
	const idleCheck = 30 * time.Second
	first := idleCheck
	if next := engine.NextExpiration(); next != nil {
		if d := time.Until(*next); d < first {
			first = d
		}
	}
	timer := time.NewTimer(first)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			now := time.Now()
			res := engine.CheckTimeouts(now)
			if len(res.Transitions) > 0 {
				logger.Debug().Int("count", len(res.Transitions)).Msg("timeout sweep")
			}
			wait := idleCheck
			if res.NextExpiration != nil {
				if d := res.NextExpiration.Sub(now); d > 0 && d < wait {
					wait = d
				}
			}
			timer.Reset(wait)
		}
	}
}

func buildRouter(engine *occupancyx.Engine, registry *production.BadgerRegistry, reg *prometheus.Registry, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(100, time.Minute))
		r.Post("/events", newEventHandler(engine, registry, logger))
	})

	r.Get("/state/{id}", newStateHandler(engine))
	r.Get("/export", newExportHandler(engine))
	r.Post("/restore", newRestoreHandler(engine))

	return r
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}
