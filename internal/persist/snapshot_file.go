package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// FileStore keeps the latest snapshot in a single msgpack file. Saves go
// through a temp file and a rename so a crash never leaves a torn snapshot.
type FileStore struct {
	path string
	log  *zap.Logger
}

func NewFileStore(path string, log *zap.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

func (s *FileStore) Save(_ context.Context, snap *Snapshot) error {
	snap.normalize()
	raw, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create snapshot temp: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	s.log.Debug("snapshot written",
		zap.String("path", s.path),
		zap.Uint64("turn", snap.Turn),
		zap.Int("creatures", len(snap.Creatures)),
		zap.Int("bytes", len(raw)))
	return nil
}

func (s *FileStore) Load(_ context.Context) (*Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	slices.SortStableFunc(snap.Creatures, func(a, b CreatureRecord) int { return a.Slot - b.Slot })
	return &snap, nil
}
