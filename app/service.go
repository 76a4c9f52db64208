package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/nwp-workflow/taskgen/config"
	"github.com/nwp-workflow/taskgen/core/ledger"
	coremetrics "github.com/nwp-workflow/taskgen/core/metrics"
	"github.com/nwp-workflow/taskgen/core/taskgen"
	"github.com/nwp-workflow/taskgen/infra/logger"
	_ "github.com/nwp-workflow/taskgen/infra/metrics"
)

// Document is the generated metatask document.
type Document struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	GeneratedAt time.Time          `json:"generated_at" yaml:"generated_at"`
	Run         string             `json:"run" yaml:"run"`
	Metatasks   []taskgen.Metatask `json:"metatasks" yaml:"metatasks"`
}

// Service wires the generator to its metrics sinks and ledger.
type Service struct {
	cfg   *config.Config
	runID string
	gen   *taskgen.Generator
	sink  coremetrics.MetricsSink
	store ledger.Store
	log   logger.Logger
	now   func() time.Time
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.NewWithLevel("service", cfg.LogLevel)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := ledger.Open(cfg.Ledger.Options())
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}

	svc := &Service{
		cfg:   cfg,
		runID: uuid.NewString(),
		sink:  sink,
		store: store,
		log:   logg,
		now:   time.Now,
	}
	svc.gen, err = taskgen.NewGenerator(cfg.Generator(), svc.runID,
		taskgen.WithMetrics(sink),
		taskgen.WithLedger(store),
		taskgen.WithLogger(logger.NewWithLevel("taskgen", cfg.LogLevel)),
		taskgen.WithClock(func() time.Time { return svc.now() }),
	)
	if err != nil {
		if cerr := store.Close(); cerr != nil {
			logg.Errorf("close ledger: %v", cerr)
		}
		return nil, fmt.Errorf("generator: %w", err)
	}
	return svc, nil
}

// RunID identifies this generation in metrics and the ledger.
func (s *Service) RunID() string { return s.runID }

// Generate builds the metatask document.
func (s *Service) Generate(ctx context.Context) (*Document, error) {
	start := s.now()
	mts, err := s.gen.Generate(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Infof("generated %d metatasks for %s in %s (run %s)",
		len(mts), s.cfg.Run, time.Since(start).Round(time.Millisecond), s.runID)
	return &Document{
		RunID:       s.runID,
		GeneratedAt: start.UTC(),
		Run:         s.cfg.Run,
		Metatasks:   mts,
	}, nil
}

// Run generates the document and writes it to the configured path, or to
// stdout when no path is set. Metrics are flushed afterwards.
func (s *Service) Run(ctx context.Context, stdout io.Writer) error {
	doc, err := s.Generate(ctx)
	if err != nil {
		return err
	}
	if s.cfg.Output.Path == "" {
		err = Encode(stdout, doc, s.cfg.Output.Format)
	} else {
		err = writeFile(s.cfg.Output.Path, doc, s.cfg.Output.Format)
	}
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if f, ok := s.sink.(coremetrics.Flusher); ok {
		if err := f.Flush(); err != nil {
			s.log.Warnf("flush metrics: %v", err)
		}
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error { return s.store.Close() }

// Encode writes v to w as YAML or JSON.
func Encode(w io.Writer, v any, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %s", format)
	}
}

// writeFile replaces path atomically so a reader never sees a partial document.
func writeFile(path string, v any, format string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err := Encode(tmp, v, format); err != nil {
		return errors.Join(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// History returns the ledger records matching q.
func History(ctx context.Context, cfg *config.Config, q ledger.Query) ([]ledger.Record, error) {
	store, err := ledger.Open(cfg.Ledger.Options())
	if err != nil {
		return nil, fmt.Errorf("ledger: %w", err)
	}
	defer func() { _ = store.Close() }()
	return store.Query(ctx, q)
}
