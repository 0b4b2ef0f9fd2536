// Package pipeline runs the load, detect, clean and analyze stages over one
// CSV file and writes the resulting artifacts.
package pipeline

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/cortexai-cli/internal/analysis"
	"github.com/KaramelBytes/cortexai-cli/internal/cleaner"
	"github.com/KaramelBytes/cortexai-cli/internal/loader"
	"github.com/KaramelBytes/cortexai-cli/internal/logging"
	"github.com/KaramelBytes/cortexai-cli/internal/schema"
	"github.com/KaramelBytes/cortexai-cli/internal/table"
)

// Options bundles the per-stage options.
type Options struct {
	Loader   loader.Options
	Schema   schema.Options
	Cleaner  cleaner.Options
	Analysis analysis.Options
}

// DefaultOptions returns each stage's defaults.
func DefaultOptions() Options {
	return Options{
		Loader:   loader.DefaultOptions(),
		Schema:   schema.DefaultOptions(),
		Cleaner:  cleaner.DefaultOptions(),
		Analysis: analysis.DefaultOptions(),
	}
}

// Result holds every stage output of one run.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Metadata   *loader.Metadata
	Raw        *table.Table
	Schema     *schema.Schema
	Cleaned    *table.Table
	Cleaning   *cleaner.Report
	EDA        *analysis.Report
	Quality    *analysis.Quality
}

// Duration returns how long the run took.
func (r *Result) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// Runner wires the stages together. Stages run one after another; only the
// loader can fail.
type Runner struct {
	loader   *loader.Loader
	detector *schema.Detector
	cleaner  *cleaner.Cleaner
	analyzer *analysis.Analyzer
	log      *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewRunner builds a Runner whose stages all log through logger.
func NewRunner(opt Options, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{
		loader:   loader.New(opt.Loader, logger),
		detector: schema.NewDetector(opt.Schema, logger),
		cleaner:  cleaner.New(opt.Cleaner, logger),
		analyzer: analysis.New(opt.Analysis, logger),
		log:      logging.Component(logger, "pipeline"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Run executes every stage on the CSV at path.
func (r *Runner) Run(path string) (*Result, error) {
	res := &Result{RunID: r.newID(), StartedAt: r.now()}
	log := r.log.With("run_id", res.RunID)
	log.Info("pipeline started", "path", path)

	tb, meta, err := r.loader.Load(path)
	if err != nil {
		log.Error("load failed", "error", err)
		return nil, err
	}
	res.Raw, res.Metadata = tb, meta
	log.Info("stage complete", "stage", "load", "rows", meta.Rows, "columns", meta.Columns)

	res.Schema = r.detector.Detect(tb)
	log.Info("stage complete", "stage", "schema", "target", res.Schema.Target, "identifiers", len(res.Schema.Identifiers))

	res.Cleaned, res.Cleaning = r.cleaner.Clean(tb, res.Schema)
	log.Info("stage complete", "stage", "clean", "actions", len(res.Cleaning.Actions))

	res.EDA = r.analyzer.Analyze(filepath.Base(path), res.Cleaned, res.Schema)
	res.Quality = analysis.Assess(res.Schema, res.EDA)
	res.EDA.Quality = res.Quality
	log.Info("stage complete", "stage", "analyze", "score", res.Quality.Score, "verdict", res.Quality.Verdict)

	res.FinishedAt = r.now()
	log.Info("pipeline finished", "duration", res.Duration())
	return res, nil
}
