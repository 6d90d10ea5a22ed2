package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleety/fleetyctl/internal/api"
	"github.com/fleety/fleetyctl/internal/errors"
)

func TestFileStorage_AbsentKeysMeanNoSession(t *testing.T) {
	storage := NewFileStorage(t.TempDir())

	token, err := storage.LoadToken()
	require.NoError(t, err)
	assert.Empty(t, token)

	user, err := storage.LoadUser()
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestFileStorage_RoundTrip(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "nested", "state"))

	require.NoError(t, storage.SaveToken("tok-9"))
	require.NoError(t, storage.SaveUser(&api.User{ID: "u9", Username: "ines"}))

	token, err := storage.LoadToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-9", token)

	user, err := storage.LoadUser()
	require.NoError(t, err)
	assert.Equal(t, "ines", user.Username)
}

func TestFileStorage_RemoveIsIdempotent(t *testing.T) {
	storage := NewFileStorage(t.TempDir())

	require.NoError(t, storage.RemoveToken())
	require.NoError(t, storage.RemoveUser())

	require.NoError(t, storage.SaveToken("tok"))
	require.NoError(t, storage.RemoveToken())
	require.NoError(t, storage.RemoveToken())
}

func TestFileStorage_MalformedIdentity(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "identity.json"), []byte("not json"), 0o600))

	_, err := NewFileStorage(dir).LoadUser()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStateMalformed, errors.Code(err))
}

func TestFileStorage_TokenFilePermissions(t *testing.T) {
	dir := t.TempDir()
	storage := NewFileStorage(dir)
	require.NoError(t, storage.SaveToken("secret"))

	info, err := os.Stat(filepath.Join(dir, "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
