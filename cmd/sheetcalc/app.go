package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/gurps-sheet-engine/internal/config"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/rules"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/domain/sheet"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/metrics"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/repositories/sheets"
	sheetsvc "github.com/KirkDiggler/gurps-sheet-engine/internal/services/sheet"
	"github.com/KirkDiggler/gurps-sheet-engine/internal/sheetdoc"
)

// app holds everything the commands share once configuration is loaded
type app struct {
	settings rules.Settings
	recorder metrics.Recorder
	service  sheetsvc.Service
	redis    *redis.Client
	server   *http.Server
}

func newApp(cfg *config.Config) (*app, error) {
	settings, err := cfg.RuleSettings()
	if err != nil {
		return nil, err
	}

	a := &app{settings: settings, recorder: metrics.Nop{}}

	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		a.recorder = metrics.NewPrometheus(reg)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		a.server = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Metrics server stopped: %v", err)
			}
		}()
		log.Printf("Serving metrics on %s/metrics", cfg.Metrics.Addr)
	}

	var repo sheets.Repository
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		a.redis = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.redis.Ping(ctx).Err(); err != nil {
			_ = a.redis.Close()
			return nil, err
		}
		log.Printf("Using Redis at %s for sheet storage", opts.Addr)
		repo = sheets.NewRedisRepository(&sheets.RedisRepoConfig{Client: a.redis})
	} else {
		log.Println("No REDIS_URL found, sheets are kept in memory for this run")
		repo = sheets.NewInMemoryRepository()
	}

	a.service = sheetsvc.NewService(&sheetsvc.ServiceConfig{
		Repository: repo,
		Defaults:   settings,
		Recorder:   a.recorder,
	})
	return a, nil
}

// loadFile decodes a sheet document from disk, picking the format from the
// file extension
func (a *app) loadFile(path string) (*sheetdoc.Document, *sheet.Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	doc, err := sheetdoc.Decode(f, sheetdoc.FormatFromPath(path))
	if err != nil {
		return nil, nil, err
	}
	live, err := doc.ToSheet(&sheetdoc.Options{Defaults: a.settings, Recorder: a.recorder})
	if err != nil {
		return nil, nil, err
	}
	return doc, live, nil
}

func (a *app) close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.server.Shutdown(ctx)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("Failed to close Redis client: %v", err)
		}
	}
}
