package session_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashguard/go-sign-bridge/internal/session"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store := session.NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json"))
	rec := validRecord()

	require.NoError(t, store.Save(rec))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, rec.SessionAddress, loaded.SessionAddress)
	assert.Equal(t, rec.AuthenticatorID, loaded.AuthenticatorID)
	assert.Equal(t, rec.SessionMnemonic, loaded.SessionMnemonic)
	assert.True(t, rec.ExpiresAt.Equal(loaded.ExpiresAt))
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := session.NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := session.NewFileStore(path)
	require.NoError(t, store.Save(validRecord()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStoreRejectsFutureVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	rec := validRecord()
	rec.Version = session.RecordVersion + 3
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	store := session.NewFileStore(path)
	_, err = store.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, session.ErrUnsupportedVersion))
}

func TestFileStoreOverwrite(t *testing.T) {
	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	first := validRecord()
	require.NoError(t, store.Save(first))

	second := validRecord()
	second.SessionAddress = "dydx1replacement"
	second.AuthenticatorID = 99
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "dydx1replacement", loaded.SessionAddress)
	assert.Equal(t, uint64(99), loaded.AuthenticatorID)
}

func TestFileStoreDeleteIdempotent(t *testing.T) {
	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(validRecord()))

	require.NoError(t, store.Delete())
	require.NoError(t, store.Delete())

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFileStoreSaveRejectsInvalid(t *testing.T) {
	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	rec := validRecord()
	rec.SessionMnemonic = ""
	assert.Error(t, store.Save(rec))

	assert.Error(t, store.Save(nil))
}
