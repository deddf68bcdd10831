package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gorm.io/gorm"

	"editionhouse/config"
	"editionhouse/core/events"
	"editionhouse/core/state"
	"editionhouse/native/auction"
	"editionhouse/native/collectible"
	"editionhouse/observability/logging"
	telemetry "editionhouse/observability/otel"
	"editionhouse/services/eventlog"
	"editionhouse/storage"
)

// node is the engine stack assembled for one command invocation.
type node struct {
	cfg      *config.Config
	db       storage.Database
	state    *state.Manager
	engine   *auction.Engine
	registry *collectible.Registry
	events   *gorm.DB
	sink     *eventlog.Sink
	logger   *slog.Logger
	otel     *telemetry.Providers
}

func openNode(ctx context.Context, cfg *config.Config, now int64, stderr io.Writer) (*node, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	engineAddr, err := cfg.EngineAddr()
	if err != nil {
		return nil, err
	}
	series, err := cfg.Series()
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(logging.Options{
		Service: cfg.Logging.Service,
		Env:     cfg.Logging.Env,
		Level:   level,
		Format:  cfg.Logging.Format,
		Output:  stderr,
		File:    cfg.Logging.File,
	})

	providers, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: cfg.Logging.Service,
		Environment: cfg.Logging.Env,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Traces:      cfg.Telemetry.Traces,
		Metrics:     cfg.Telemetry.Metrics,
		Attributes: map[string]string{
			"editionhouse.engine":     hexAddr(engineAddr),
			"editionhouse.collection": hexAddr(series.Address),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	db, err := storage.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		_ = providers.Shutdown(ctx)
		return nil, err
	}
	n := &node{cfg: cfg, db: db, state: state.NewManager(db), logger: logger, otel: providers}

	n.engine = auction.NewEngine(engineAddr)
	n.engine.SetState(n.state)
	n.engine.SetLogger(logger.With("module", auction.ModuleName))
	n.engine.SetTracer(providers.Tracer(auction.TracerName))
	if now > 0 {
		n.engine.SetNowFunc(func() int64 { return now })
	}

	n.registry, err = collectible.NewRegistry(n.state, series)
	if err != nil {
		n.Close(ctx)
		return nil, err
	}
	n.registry.SetClaimStatus(n.engine)

	if cfg.EventLog.Enabled() {
		n.events, err = eventlog.Open(cfg.EventLog.Driver, cfg.EventLog.DSN)
		if err != nil {
			n.Close(ctx)
			return nil, err
		}
		n.sink = eventlog.NewSink(n.events, logger)
	}
	return n, nil
}

// attach binds the registry for this invocation and then starts forwarding
// events, so the binding itself is not logged on every run.
func (n *node) attach() error {
	settings, err := n.engine.Settings()
	if err != nil {
		return err
	}
	if err := n.engine.SetRegistry(settings.Owner, n.registry); err != nil {
		return err
	}
	n.startEvents()
	return nil
}

func (n *node) startEvents() {
	if n.sink != nil {
		n.engine.SetEmitter(events.Fanout{n.sink})
	}
}

// commit persists the journal after a successful operation and only then
// writes the events it produced.
func (n *node) commit() error {
	if err := n.state.Commit(); err != nil {
		n.discard()
		return fmt.Errorf("commit state: %w", err)
	}
	if n.sink == nil {
		return nil
	}
	if err := n.sink.Flush(); err != nil {
		return err
	}
	if failed := n.sink.Failed(); failed > 0 {
		return fmt.Errorf("event log: %d events not persisted", failed)
	}
	return nil
}

// discard drops the journal and the events buffered for it.
func (n *node) discard() {
	n.state.Discard()
	if n.sink != nil {
		n.sink.Discard()
	}
}

func (n *node) Close(ctx context.Context) error {
	var errs []error
	if n.events != nil {
		sqlDB, err := n.events.DB()
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}
	if n.db != nil {
		errs = append(errs, n.db.Close())
	}
	errs = append(errs, n.otel.Shutdown(ctx))
	return errors.Join(errs...)
}
