package session

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashguard/go-sign-bridge/internal/chain"
	sessionstore "github.com/kashguard/go-sign-bridge/internal/session"
)

func newTestStore(t *testing.T) *sessionstore.FileStore {
	t.Helper()
	return sessionstore.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
}

func persistedKey(t *testing.T, store *sessionstore.FileStore, now time.Time) *chain.SessionKey {
	t.Helper()

	key, err := chain.GenerateSessionKey("dydx")
	require.NoError(t, err)
	t.Cleanup(key.Destroy)

	require.NoError(t, store.Save(&sessionstore.Record{
		Version:         sessionstore.RecordVersion,
		CreatedAt:       now,
		ExpiresAt:       now.Add(25 * time.Minute),
		Network:         "dydx-testnet-4",
		MasterAddress:   "dydx1master",
		SessionAddress:  key.Address,
		SessionMnemonic: key.Mnemonic.Reveal(),
		AuthenticatorID: 7,
	}))
	return key
}

func TestShowSessionMissingFile(t *testing.T) {
	var out bytes.Buffer
	showSession(&out, newTestStore(t), time.Now())

	assert.Contains(t, out.String(), "No session is persisted.")
}

func TestShowSessionUnreadableRecord(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"version":99}`), 0o600))

	var out bytes.Buffer
	showSession(&out, store, time.Now())

	assert.Contains(t, out.String(), "No session is persisted.")
}

func TestShowSessionActive(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	key := persistedKey(t, store, now)

	var out bytes.Buffer
	showSession(&out, store, now)

	assert.Contains(t, out.String(), "Status:           active")
	assert.Contains(t, out.String(), key.Address)
	assert.NotContains(t, out.String(), key.Mnemonic.Reveal())
}

func TestShowSessionExpired(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	persistedKey(t, store, now)

	var out bytes.Buffer
	showSession(&out, store, now.Add(26*time.Minute))

	assert.Contains(t, out.String(), "Status:           expired")
}

func TestShowSessionCorruptRecord(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	persistedKey(t, store, now)

	rec, err := store.Load()
	require.NoError(t, err)
	rec.SessionAddress = "dydx1someoneelse"
	require.NoError(t, store.Save(rec))

	var out bytes.Buffer
	showSession(&out, store, now)

	assert.Contains(t, out.String(), "Status:           corrupt")
}
