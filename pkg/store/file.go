package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileStore keeps the session in one JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path. The file is created on first Save.
func NewFileStore(path string) (s *FileStore) {
	s = &FileStore{path: path}
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() (path string) {
	path = s.path
	return path
}

// Load reads the state file.
func (s *FileStore) Load(ctx context.Context) (state State, found bool, err error) {
	err = ctx.Err()
	if err != nil {
		return state, found, err
	}

	var data []byte
	data, err = os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			err = nil
			return state, found, err
		}
		err = errors.Wrapf(err, "failed to read session file: %s", s.path)
		return state, found, err
	}

	state, err = decodeState(data)
	if err != nil {
		err = errors.Wrapf(err, "failed to load session file: %s", s.path)
		return state, found, err
	}

	found = true
	return state, found, err
}

// Save writes the state to a temporary file and renames it into place.
func (s *FileStore) Save(ctx context.Context, state State) (err error) {
	err = ctx.Err()
	if err != nil {
		return err
	}

	var data []byte
	data, err = encodeState(state)
	if err != nil {
		return err
	}

	var tmp *os.File
	tmp, err = os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		err = errors.Wrap(err, "failed to create temporary session file")
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	_, err = tmp.Write(data)
	if err != nil {
		_ = tmp.Close()
		err = errors.Wrap(err, "failed to write temporary session file")
		return err
	}

	err = tmp.Sync()
	if err != nil {
		_ = tmp.Close()
		err = errors.Wrap(err, "failed to sync temporary session file")
		return err
	}

	err = tmp.Close()
	if err != nil {
		err = errors.Wrap(err, "failed to close temporary session file")
		return err
	}

	err = os.Chmod(tmpName, 0600)
	if err != nil {
		err = errors.Wrap(err, "failed to set session file permissions")
		return err
	}

	err = os.Rename(tmpName, s.path)
	if err != nil {
		err = errors.Wrapf(err, "failed to replace session file: %s", s.path)
		return err
	}

	return err
}

// Clear removes the state file.
func (s *FileStore) Clear(ctx context.Context) (err error) {
	err = ctx.Err()
	if err != nil {
		return err
	}

	err = os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		err = errors.Wrapf(err, "failed to remove session file: %s", s.path)
		return err
	}

	err = nil
	return err
}

// Close is a no-op.
func (s *FileStore) Close() (err error) {
	return err
}
