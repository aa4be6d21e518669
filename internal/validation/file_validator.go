package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ghgcli/internal/files"
)

// FileValidator checks the directories the evaluate and watch commands
// read from and write to before any dataset is processed
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputDirectory checks that dir exists and returns how many
// datasets it currently holds
func (v *FileValidator) ValidateInputDirectory(dir string) (int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return 0, fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	datasets, err := files.NewDiscovery("").FindDatasets(dir)
	if err != nil {
		return 0, err
	}

	v.logger.Info("Input directory validated",
		slog.String("directory", dir),
		slog.Int("datasets_found", len(datasets)))
	return len(datasets), nil
}

// ValidateOutputDirectory creates dir if needed and checks that it is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := files.EnsureDirectory(dir); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return err
	}

	tmp, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateReportPath checks that a report can be written at path
func (v *FileValidator) ValidateReportPath(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}
