package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"boscov/client/internal/domain/models"
)

// FileStore keeps the session record in a JSON file, the durable-storage
// analogue of the browser's local storage. Concurrent processes are not
// synchronized: a logout in one does not propagate to another.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*models.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session record: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}
	if sess.Token == "" {
		return nil, nil
	}
	return &sess, nil
}

func (s *FileStore) Save(sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	// The record carries a live credential, keep it owner-only.
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
