package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileStore persists credentials as a JSON document. Writes go through a
// temp file and a rename so readers never see a partial document.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("os.MkdirAll -> %w", err)
	}

	return &FileStore{path: path}, nil
}

func (s *FileStore) Get(_ context.Context) (Holder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

func (s *FileStore) Set(_ context.Context, h Holder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(h)
}

func (s *FileStore) SetAccessToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.read()
	if err != nil {
		return err
	}
	h.AccessToken = token

	return s.write(h)
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("os.Remove -> %w", err)
	}

	return nil
}

// Watch calls onChange whenever another process rewrites or removes the
// credential file, until ctx is done.
func (s *FileStore) Watch(ctx context.Context, onChange func(Holder)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher -> %w", err)
	}
	defer watcher.Close()

	// The directory is watched because rename-based writes replace the file.
	if err = watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watcher.Add -> %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			h, err := s.Get(ctx)
			if err != nil {
				zap.L().Warn("credential file unreadable", zap.String("path", s.path), zap.Error(err))
				continue
			}
			onChange(h)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			zap.L().Warn("credential watcher error", zap.Error(err))
		}
	}
}

func (s *FileStore) read() (Holder, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Holder{}, nil
	}
	if err != nil {
		return Holder{}, fmt.Errorf("os.ReadFile -> %w", err)
	}

	var h Holder
	if err = json.Unmarshal(data, &h); err != nil {
		return Holder{}, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return h, nil
}

func (s *FileStore) write(h Holder) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp -> %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("tmp.Write -> %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close -> %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("os.Chmod -> %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("os.Rename -> %w", err)
	}

	return nil
}
