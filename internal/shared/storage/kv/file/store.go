package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"nutrisnap-backend/internal/shared/storage/kv"
	"nutrisnap-backend/internal/shared/util"
)

// Store keeps each slot in its own file under baseDir.
type Store struct {
	baseDir string
}

// New creates a file-backed store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read slot: %w", err)
	}
	return data, true, nil
}

// Set replaces the slot contents with a rename so readers never see a partial write.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".slot-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write slot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close slot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename slot: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove slot: %w", err)
	}
	return nil
}

func (s *Store) pathFor(key string) (string, error) {
	parts := strings.Split(strings.Trim(key, "/"), "/")
	clean := make([]string, 0, len(parts)+1)
	clean = append(clean, s.baseDir)
	for _, p := range parts {
		seg, err := util.SanitizeKeySegment(p)
		if err != nil {
			return "", fmt.Errorf("%w: %q", kv.ErrInvalidKey, key)
		}
		clean = append(clean, seg)
	}
	return filepath.Join(clean...) + ".json", nil
}

var _ kv.Store = (*Store)(nil)
