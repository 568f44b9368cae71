package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Snapshot is the archived copy of a row taken just before it is deleted.
type Snapshot struct {
	Table     string            `json:"table"`
	RecordID  string            `json:"record_id"`
	Actor     string            `json:"actor"`
	Values    map[string]string `json:"values"`
	DeletedAt time.Time         `json:"deleted_at"`
}

// Archiver writes deleted rows to a directory as one JSON file each.
type Archiver struct {
	Dir string
}

func NewArchiver(dir string) *Archiver {
	return &Archiver{Dir: dir}
}

// Enabled reports whether an archive directory is configured.
func (a *Archiver) Enabled() bool {
	return a != nil && a.Dir != ""
}

// SaveJSON saves data as indented JSON under a random UUID filename.
func (a *Archiver) SaveJSON(data any) (string, error) {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	filename := uuid.New().String() + ".json"
	path := filepath.Join(a.Dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal archive entry: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0o644); err != nil {
		return "", fmt.Errorf("failed to write archive entry: %w", err)
	}

	log.Debug().Str("path", path).Msg("archived row")
	return filename, nil
}

// Archive stores a snapshot of a row about to be deleted.
// It is a no-op when no directory is configured.
func (a *Archiver) Archive(snap Snapshot) (string, error) {
	if !a.Enabled() {
		return "", nil
	}
	if snap.DeletedAt.IsZero() {
		snap.DeletedAt = time.Now().UTC()
	}
	return a.SaveJSON(snap)
}
