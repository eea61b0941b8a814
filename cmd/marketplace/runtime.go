package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abelbrown/marketplace/internal/cache"
	"github.com/abelbrown/marketplace/internal/catalog"
	"github.com/abelbrown/marketplace/internal/config"
	"github.com/abelbrown/marketplace/internal/events"
	"github.com/abelbrown/marketplace/internal/fetch"
	"github.com/abelbrown/marketplace/internal/logging"
	"github.com/abelbrown/marketplace/internal/tracing"
)

// eventLogName is the JSONL event log inside the data directory.
const eventLogName = "events.jsonl"

// runtime is everything a command needs after startup.
type runtime struct {
	cfg     *config.Config
	dataDir string

	rec       *events.Recorder
	ring      *events.Ring
	eventFile *os.File
	traceStop tracing.Shutdown

	source fetch.Source
	cache  *cache.Cache[[]catalog.Item]
}

// setup loads config and starts logging, tracing and the event log.
func setup() (*runtime, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagURL != "" {
		cfg.Source.URL = flagURL
	}

	dir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	if err := logging.Init(dir, cfg.LogLevel); err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, dataDir: dir, ring: events.NewRing(events.DefaultRingSize)}

	f, err := os.OpenFile(filepath.Join(dir, eventLogName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.Warn("event log unavailable", "err", err)
		rt.rec = events.Discard()
	} else {
		rt.eventFile = f
		rt.rec = events.NewRecorder(f)
	}
	rt.rec.Attach(rt.ring)

	rt.traceStop, err = tracing.Setup(dir)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.source, err = fetch.NewSource(cfg.Source, rt.rec)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.cache = cache.New(func(ctx context.Context) ([]catalog.Item, error) {
		doc, err := rt.source.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		return doc.Packages, nil
	}, cfg.Source.StaleTime, cache.WithRecorder(rt.rec))

	rt.rec.Info(events.KindStartup, "main", rt.source.URL())
	logging.Info("startup",
		"source", rt.source.Name(),
		"url", rt.source.URL(),
		"stale_time", rt.cache.StaleTime(),
		"data_dir", dir,
		"session", rt.rec.SessionID())
	return rt, nil
}

// category resolves the startup category: the flag when given, else config.
func (rt *runtime) category(flag string) (catalog.Category, error) {
	if flag == "" {
		return rt.cfg.Category(), nil
	}
	c, err := catalog.ParseCategory(flag)
	if err != nil {
		return "", fmt.Errorf("--category: %w", err)
	}
	return c, nil
}

// Close flushes the event log and tracer and closes the log file.
func (rt *runtime) Close() {
	rt.rec.Info(events.KindShutdown, "main", "")
	rt.rec.Close()
	if d := rt.rec.Dropped(); d > 0 {
		logging.WithPrefix("events").Warn("events dropped", "count", d, "session", rt.rec.SessionID())
	}
	if rt.eventFile != nil {
		rt.eventFile.Close()
	}
	if rt.traceStop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rt.traceStop(ctx); err != nil {
			logging.Warn("trace shutdown", "err", err)
		}
		cancel()
	}
	logging.Close()
}
