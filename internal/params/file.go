package params

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"FXSentinel/pkg/logger"
)

// fileState is the on-disk JSON document.
type fileState struct {
	Values    map[string]string `json:"values"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// FileStore keeps parameters in a JSON file, rewritten on every Set.
type FileStore struct {
	mu    sync.Mutex
	path  string
	state *fileState
}

// NewFileStore loads path, starting empty if the file doesn't exist.
func NewFileStore(path string) (*FileStore, error) {
	state, err := loadState(path)
	if err != nil {
		return nil, err
	}
	return &FileStore{path: path, state: state}, nil
}

func loadState(path string) (*fileState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileState{Values: map[string]string{}}, nil
		}
		return nil, err
	}
	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if state.Values == nil {
		state.Values = map[string]string{}
	}
	return &state, nil
}

func (f *FileStore) Get(key, def string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.state.Values[key]; ok {
		return v
	}
	return def
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.state.Values[key]
	f.state.Values[key] = value
	if err := f.save(); err != nil {
		if had {
			f.state.Values[key] = prev
		} else {
			delete(f.state.Values, key)
		}
		return err
	}
	return nil
}

// save writes to a temp file and renames it over the target. Caller holds mu.
func (f *FileStore) save() error {
	f.state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(f.state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		logger.Error("params file rename failed", logger.String("path", f.path), logger.ErrorField(err))
		return err
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
