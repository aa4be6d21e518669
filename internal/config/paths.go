package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the directories the application reads from and writes to
type Paths struct {
	BaseDir   string
	DataDir   string
	InboxDir  string
	OutboxDir string
	LogsDir   string
	LogFile   string
}

// ResolvePaths resolves the configured paths against baseDir.
// An empty baseDir means the current working directory.
func ResolvePaths(cfg *Config, baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	logFile := resolve(cfg.Logging.FilePath)

	return &Paths{
		BaseDir:   baseDir,
		DataDir:   resolve(DefaultDataDir),
		InboxDir:  resolve(cfg.Watch.InboxDir),
		OutboxDir: resolve(cfg.Watch.OutboxDir),
		LogsDir:   filepath.Dir(logFile),
		LogFile:   logFile,
	}, nil
}

// EnsureDirectories creates the watcher directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.InboxDir, p.OutboxDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// OutboxPath returns the path of a report file in the outbox
func (p *Paths) OutboxPath(name string) string {
	return filepath.Join(p.OutboxDir, name)
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Resolved application paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("inbox_dir", p.InboxDir),
		slog.String("outbox_dir", p.OutboxDir),
		slog.String("log_file", p.LogFile))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
