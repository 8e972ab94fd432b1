package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/noah-isme/tum-registrar/internal/dto"
)

// ErrStateNotFound signals that no snapshot has been persisted yet.
var ErrStateNotFound = errors.New("state not found")

// FileStateRepository keeps the snapshot in a single JSON file at a fixed path.
// Saves overwrite the file in place.
type FileStateRepository struct {
	path string
}

// NewFileStateRepository constructs a FileStateRepository. An empty path means state.json.
func NewFileStateRepository(path string) *FileStateRepository {
	if path == "" {
		path = "state.json"
	}
	return &FileStateRepository{path: path}
}

// Path returns the file the repository reads and writes.
func (r *FileStateRepository) Path() string {
	return r.path
}

// Load reads and decodes the snapshot.
func (r *FileStateRepository) Load(ctx context.Context) (*dto.StateDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("read state file %s: %w", r.path, err)
	}
	var doc dto.StateDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode state file %s: %w", r.path, err)
	}
	return &doc, nil
}

// Save encodes the snapshot as indented JSON and overwrites the file.
func (r *FileStateRepository) Save(ctx context.Context, doc *dto.StateDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("prepare state directory: %w", err)
		}
	}
	if err := os.WriteFile(r.path, raw, 0o644); err != nil {
		return fmt.Errorf("write state file %s: %w", r.path, err)
	}
	return nil
}
