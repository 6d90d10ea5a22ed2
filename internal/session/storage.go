package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fleety/fleetyctl/internal/api"
	"github.com/fleety/fleetyctl/internal/errors"
)

// Storage is the durable home of a session: one key for the serialized
// identity, one for the raw credential token. Absence of either key means
// "no session". Writes replace the whole key; there are no partial updates.
type Storage interface {
	LoadToken() (string, error)
	SaveToken(token string) error
	RemoveToken() error

	LoadUser() (*api.User, error)
	SaveUser(user *api.User) error
	RemoveUser() error
}

const (
	tokenFile    = "token"
	identityFile = "identity.json"
)

// FileStorage persists the session under a state directory, token and
// identity each in their own file.
type FileStorage struct {
	dir string
}

// NewFileStorage creates a file-backed session storage rooted at dir
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

func (s *FileStorage) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeStateWriteFailed, "failed to create state directory: "+s.dir, err)
	}
	return nil
}

// LoadToken returns the stored credential token, or "" when none is stored
func (s *FileStorage) LoadToken() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(errors.ErrCodeStateReadFailed, "failed to read stored token", err)
	}
	return string(data), nil
}

// SaveToken stores the credential token
func (s *FileStorage) SaveToken(token string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(token), 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeStateWriteFailed, "failed to store token", err)
	}
	return nil
}

// RemoveToken deletes the stored token. Removing an absent token is not an
// error.
func (s *FileStorage) RemoveToken() error {
	if err := os.Remove(filepath.Join(s.dir, tokenFile)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStateWriteFailed, "failed to remove stored token", err)
	}
	return nil
}

// LoadUser returns the stored identity, nil when none is stored, or a
// malformed-state error when the file exists but cannot be parsed.
func (s *FileStorage) LoadUser() (*api.User, error) {
	path := filepath.Join(s.dir, identityFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeStateReadFailed, "failed to read stored identity", err)
	}

	var user api.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, errors.NewStateMalformedError(path, err)
	}
	return &user, nil
}

// SaveUser stores the identity
func (s *FileStorage) SaveUser(user *api.User) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStateWriteFailed, "failed to serialize identity", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, identityFile), data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeStateWriteFailed, "failed to store identity", err)
	}
	return nil
}

// RemoveUser deletes the stored identity
func (s *FileStorage) RemoveUser() error {
	if err := os.Remove(filepath.Join(s.dir, identityFile)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStateWriteFailed, "failed to remove stored identity", err)
	}
	return nil
}
