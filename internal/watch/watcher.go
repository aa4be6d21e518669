package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"ghgcli/internal/files"
	"ghgcli/internal/infrastructure"
	"ghgcli/pkg/contracts/domain"
	"ghgcli/pkg/contracts/events"
)

const (
	// DefaultSettle is how long a file must be quiet before it is read
	DefaultSettle = 500 * time.Millisecond

	StatusProcessed = "processed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

var (
	ErrNoInbox  = errors.New("watch: inbox directory is required")
	ErrNoOutbox = errors.New("watch: outbox directory is required")
	ErrSameDir  = errors.New("watch: inbox and outbox must differ")
)

// Evaluator turns a dataset file into an evaluation and a workbook
type Evaluator interface {
	EvaluateFile(ctx context.Context, path string, factor *domain.EmissionFactor) (*domain.Evaluation, error)
	Export(ctx context.Context, eval *domain.Evaluation, source string) (domain.ReportDocument, error)
}

// Publisher receives watch:processed events
type Publisher interface {
	Publish(ctx context.Context, messageType events.MessageType, data interface{})
}

// Config controls which directories are watched
type Config struct {
	InboxDir  string
	OutboxDir string
	// Backfill processes datasets already in the inbox on start
	Backfill bool
	Settle   time.Duration
	// Factor overrides the evaluator default when set
	Factor *domain.EmissionFactor
}

// Result describes one processed inbox file
type Result struct {
	Input      string
	Output     string
	Status     string
	Evaluation *domain.Evaluation
	Err        error
}

// Watcher evaluates every dataset dropped into the inbox and writes the
// report workbook to the outbox. Files are handled one at a time.
type Watcher struct {
	cfg       Config
	evaluator Evaluator
	publisher Publisher
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// Option configures a Watcher
type Option func(*Watcher)

// WithPublisher publishes a watch:processed event per file
func WithPublisher(p Publisher) Option {
	return func(w *Watcher) { w.publisher = p }
}

// WithMetrics records per-file outcomes
func WithMetrics(m *infrastructure.BusinessMetrics) Option {
	return func(w *Watcher) { w.metrics = m }
}

// New creates a watcher
func New(cfg Config, evaluator Evaluator, logger *slog.Logger, opts ...Option) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}

	w := &Watcher{
		cfg:       cfg,
		evaluator: evaluator,
		metrics:   infrastructure.NoopBusinessMetrics(),
		logger:    logger.With(slog.String("component", "watcher")),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Watcher) validate() error {
	if w.cfg.InboxDir == "" {
		return ErrNoInbox
	}
	if w.cfg.OutboxDir == "" {
		return ErrNoOutbox
	}
	in, err := filepath.Abs(w.cfg.InboxDir)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(w.cfg.OutboxDir)
	if err != nil {
		return err
	}
	if in == out {
		return ErrSameDir
	}
	return nil
}

// Run watches the inbox until ctx is cancelled. Cancellation is not an
// error.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.validate(); err != nil {
		return err
	}
	for _, dir := range []string{w.cfg.InboxDir, w.cfg.OutboxDir} {
		if err := files.EnsureDirectory(dir); err != nil {
			return err
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.cfg.InboxDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.cfg.InboxDir, err)
	}

	w.logger.InfoContext(ctx, "Watching inbox",
		slog.String("inbox", w.cfg.InboxDir),
		slog.String("outbox", w.cfg.OutboxDir),
		slog.Bool("backfill", w.cfg.Backfill))

	// The watch is registered first so nothing dropped during backfill is missed
	if w.cfg.Backfill {
		if _, err := w.Backfill(ctx); err != nil {
			return err
		}
	}

	// path -> time the file becomes eligible
	pending := make(map[string]time.Time)
	tick := w.cfg.Settle / 2
	if tick < time.Millisecond {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Watcher stopped", slog.Int("pending", len(pending)))
			return nil

		case evt, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write) == 0 || !files.IsDataset(evt.Name) {
				continue
			}
			pending[evt.Name] = time.Now().Add(w.cfg.Settle)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.ErrorContext(ctx, "Watcher error", slog.String("error", err.Error()))

		case now := <-ticker.C:
			for _, path := range due(pending, now) {
				delete(pending, path)
				if !files.FileExists(path) {
					continue
				}
				w.ProcessFile(ctx, path)
			}
		}
	}
}

// due returns the settled paths in name order
func due(pending map[string]time.Time, now time.Time) []string {
	var paths []string
	for path, at := range pending {
		if !now.Before(at) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

// Backfill processes the datasets already in the inbox. Files whose
// report is newer than the dataset are skipped.
func (w *Watcher) Backfill(ctx context.Context) ([]Result, error) {
	datasets, err := files.NewDiscovery("").FindDatasets(w.cfg.InboxDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox: %w", err)
	}

	var results []Result
	for _, ds := range datasets {
		if ctx.Err() != nil {
			break
		}
		if w.upToDate(ds.Path) {
			w.logger.DebugContext(ctx, "Report up to date", slog.String("input", ds.Path))
			results = append(results, Result{Input: ds.Path, Output: w.outputPath(ds.Path), Status: StatusSkipped})
			continue
		}
		results = append(results, w.ProcessFile(ctx, ds.Path))
	}

	w.logger.InfoContext(ctx, "Backfill complete", slog.Int("files", len(results)))
	return results, nil
}

// ProcessFile evaluates one dataset and writes its report. Failures are
// logged, counted and published; they never stop the watcher.
func (w *Watcher) ProcessFile(ctx context.Context, path string) Result {
	ctx = infrastructure.EnsureTraceID(ctx)
	logger := w.logger.With(slog.String("input", path))
	result := Result{Input: path}

	eval, err := w.evaluator.EvaluateFile(ctx, path, w.cfg.Factor)
	if err == nil {
		result.Evaluation = eval
		result.Output, err = w.writeReport(ctx, path, eval)
	}

	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		logger.ErrorContext(ctx, "Failed to process dataset", slog.String("error", err.Error()))
	} else {
		result.Status = StatusProcessed
		logger.InfoContext(ctx, "Report written",
			slog.String("output", result.Output),
			slog.String("tier", string(eval.Result.Tier)),
			slog.Float64("total_tco2e", eval.Total))
	}

	infrastructure.RecordWatchFile(ctx, w.metrics, result.Status)
	if w.publisher != nil {
		evt := events.WatchProcessed{
			Input:  filepath.Base(path),
			Status: result.Status,
		}
		if result.Output != "" {
			evt.Output = filepath.Base(result.Output)
		}
		if result.Err != nil {
			evt.Error = result.Err.Error()
		}
		w.publisher.Publish(ctx, events.MessageTypeWatchProcessed, evt)
	}

	return result
}

func (w *Watcher) writeReport(ctx context.Context, input string, eval *domain.Evaluation) (string, error) {
	doc, err := w.evaluator.Export(ctx, eval, events.SourceWatch)
	if err != nil {
		return "", err
	}
	out := w.outputPath(input)
	if err := files.WriteFileAtomic(out, doc.Data); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return out, nil
}

// outputPath maps inbox/plant_a.xlsx to outbox/plant_a_report.xlsx
func (w *Watcher) outputPath(input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(w.cfg.OutboxDir, stem+ReportSuffix)
}

func (w *Watcher) upToDate(input string) bool {
	in, err := os.Stat(input)
	if err != nil {
		return false
	}
	out, err := os.Stat(w.outputPath(input))
	if err != nil {
		return false
	}
	return !out.ModTime().Before(in.ModTime())
}

// ReportSuffix is appended to the dataset name for its report
const ReportSuffix = "_report.xlsx"
