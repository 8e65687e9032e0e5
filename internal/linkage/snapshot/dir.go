package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CBIIT/ccdi-cpi-etl/internal/linkage/models"
)

// DirWriter writes snapshots under a local directory using the same object
// names as GCSUploader.
type DirWriter struct {
	dir    string
	prefix string
}

func NewDirWriter(dir, prefix string) *DirWriter {
	return &DirWriter{dir: dir, prefix: prefix}
}

func (d *DirWriter) Upload(_ context.Context, sets []models.LinkedSet, at time.Time) (string, error) {
	path := filepath.Join(d.dir, filepath.FromSlash(ObjectName(d.prefix, at)))
	if err := WriteFile(path, sets); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile encodes sets to path, creating parent directories. The file is
// written beside the target and renamed so readers never see a partial file.
func WriteFile(path string, sets []models.LinkedSet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, sets); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move snapshot into place: %w", err)
	}
	return nil
}
