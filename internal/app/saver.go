package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/prosecheck/internal/assist"
)

// DirSaver persists analysis snapshots as JSON files in a directory, one
// file per title. Writes go through a temp file and rename so a crash
// never leaves a half-written snapshot.
type DirSaver struct {
	dir string
}

// NewDirSaver creates a DirSaver, creating the directory if needed.
func NewDirSaver(dir string) (*DirSaver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot dir: %w", err)
	}
	return &DirSaver{dir: dir}, nil
}

// Save implements assist.Saver.
func (s *DirSaver) Save(ctx context.Context, snap assist.AnalysisSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	final := filepath.Join(s.dir, sanitizeTitle(snap.Title)+".json")
	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), final)
}

// Load reads a previously saved snapshot by title.
func (s *DirSaver) Load(title string) (assist.AnalysisSnapshot, error) {
	var snap assist.AnalysisSnapshot
	data, err := os.ReadFile(filepath.Join(s.dir, sanitizeTitle(title)+".json"))
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}

// sanitizeTitle maps a snapshot title to a safe file name.
func sanitizeTitle(title string) string {
	if title == "" {
		return "untitled"
	}
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

var _ assist.Saver = (*DirSaver)(nil)
