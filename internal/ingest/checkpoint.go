package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"docubot/internal/helper"
)

// Checkpoint is the durability hand-off between extraction and
// chunking. The orchestrator stages the extracted text before
// embedding and discards it only after a successful upsert, so a
// failed upsert leaves the artifact behind for manual retry.
type Checkpoint interface {
	Stage(filename, content string) error
	Discard(filename string) error
}

// FileCheckpoint stages one UTF-8 text file per document under Dir,
// named after the document.
type FileCheckpoint struct {
	Dir string
}

func NewFileCheckpoint(dir string) *FileCheckpoint {
	return &FileCheckpoint{Dir: dir}
}

// Path returns the staging location for a document.
func (f *FileCheckpoint) Path(filename string) string {
	return filepath.Join(f.Dir, filepath.Base(filename)+".txt")
}

func (f *FileCheckpoint) Stage(filename, content string) error {
	if err := helper.CreateFolder(f.Dir); err != nil {
		return fmt.Errorf("creating staging dir: %w", err)
	}
	if err := os.WriteFile(f.Path(filename), []byte(content), 0o644); err != nil {
		return fmt.Errorf("staging %s: %w", filename, err)
	}
	return nil
}

func (f *FileCheckpoint) Discard(filename string) error {
	if err := os.Remove(f.Path(filename)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
