package manager

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// SnapshotWriter persists reports to a JSON file
type SnapshotWriter struct {
	file   string
	logger *zap.Logger
}

// NewSnapshotWriter creates a new snapshot writer
func NewSnapshotWriter(file string, logger *zap.Logger) *SnapshotWriter {
	return &SnapshotWriter{
		file:   file,
		logger: logger,
	}
}

// File returns the snapshot path
func (sw *SnapshotWriter) File() string {
	return sw.file
}

// Save writes the report; readers never see a partially written file
func (sw *SnapshotWriter) Save(report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(sw.file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(sw.file)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), sw.file); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}

	sw.logger.Info("Snapshot saved",
		zap.String("file", sw.file),
		zap.String("range", report.Range.String()),
		zap.Strings("countries", report.Countries))

	return nil
}

// Load reads the last saved report; a missing file yields nil without error
func (sw *SnapshotWriter) Load() (*Report, error) {
	data, err := os.ReadFile(sw.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}

	sw.logger.Info("Snapshot loaded",
		zap.String("file", sw.file),
		zap.String("range", report.Range.String()))

	return &report, nil
}
