package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/elicitation/internal/catalog"
	"github.com/aretw0/elicitation/internal/config"
	"github.com/aretw0/elicitation/internal/logging"
	"github.com/aretw0/elicitation/pkg/adapters/memory"
	"github.com/aretw0/elicitation/pkg/adapters/redis"
	"github.com/aretw0/elicitation/pkg/elicit"
	"github.com/aretw0/elicitation/pkg/observability"
	"github.com/aretw0/elicitation/pkg/persistence/middleware"
	"github.com/aretw0/elicitation/pkg/ports"
	"github.com/aretw0/elicitation/pkg/tool"
)

// app is the state shared by every command.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *tool.Registry
	metrics  *observability.Metrics
}

func loadApp() (*app, error) {
	set, err := config.ParseSet(overrides)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		set = mergeSet(set, map[string]any{"log": map[string]any{"level": logLevel}})
	}
	cfg, err := config.Load(configPath, set)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.LogLevel())
	registry, err := catalog.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to build tool catalog: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, registry: registry}
	if cfg.Metrics.Enabled {
		a.metrics = observability.NewMetrics()
	}
	return a, nil
}

func mergeSet(dst, src map[string]any) map[string]any {
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				dst[k] = mergeSet(existing, sub)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}

// openStore returns the configured transcript store, wrapped with the
// configured redaction and encryption, and its closer.
func (a *app) openStore(ctx context.Context) (ports.TranscriptStore, func() error, error) {
	var store ports.TranscriptStore = memory.NewStore()
	closeFunc := func() error { return nil }
	if a.cfg.Store.Driver == "redis" {
		var opts []redis.Option
		if a.cfg.Store.Prefix != "" {
			opts = append(opts, redis.WithPrefix(a.cfg.Store.Prefix))
		}
		if a.cfg.Store.TTL > 0 {
			opts = append(opts, redis.WithTTL(a.cfg.Store.TTL))
		}
		rs, err := redis.New(a.cfg.Store.Address, opts...)
		if err != nil {
			return nil, nil, err
		}
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, err
		}
		store, closeFunc = rs, rs.Close
	}

	mws, err := a.storeMiddleware()
	if err != nil {
		_ = closeFunc()
		return nil, nil, err
	}
	return middleware.Chain(store, mws...), closeFunc, nil
}

func (a *app) storeMiddleware() ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(a.cfg.Store.Redact) > 0 {
		redact, err := middleware.NewRedactMiddleware(a.cfg.Store.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, redact)
	}
	key, err := a.cfg.Store.Key()
	if err != nil {
		return nil, err
	}
	if key != nil {
		seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, seal)
	}
	return mws, nil
}

// baseOptions carries the configured policy and the logging hooks.
func (a *app) baseOptions() []elicit.Option {
	return append(a.cfg.SessionOptions(),
		elicit.WithLogger(a.logger),
		elicit.WithHooks(observability.LogHooks(a.logger)),
	)
}

// sessionOptions adds metrics and recording to baseOptions.
func (a *app) sessionOptions(store ports.TranscriptStore) []elicit.Option {
	opts := a.baseOptions()
	if a.metrics != nil {
		opts = append(opts, elicit.WithHooks(a.metrics.Hooks()))
	}
	if store != nil {
		opts = append(opts, elicit.WithRecorder(store))
	}
	return opts
}
