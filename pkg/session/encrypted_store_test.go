package session

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewEncryptedFileStore(dir)
	require.NoError(t, err)

	cookies := []*http.Cookie{
		{Name: "msToken", Value: "abc123"},
		{Name: "ttwid", Value: "xyz"},
	}
	require.NoError(t, store.Save(cookies))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "msToken", loaded[0].Name)
	assert.Equal(t, "abc123", loaded[0].Value)
}

func TestEncryptedFileStoreLoadWithoutSave(t *testing.T) {
	store, err := NewEncryptedFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestEncryptedFileStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, err := NewEncryptedFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Save([]*http.Cookie{{Name: "msToken", Value: "v1"}}))

	// A new instance over the same directory reuses the passphrase file.
	second, err := NewEncryptedFileStore(dir)
	require.NoError(t, err)
	loaded, err := second.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "v1", loaded[0].Value)
}

func TestEncryptedFileStoreClear(t *testing.T) {
	dir := t.TempDir()
	store, err := NewEncryptedFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save([]*http.Cookie{{Name: "msToken", Value: "v"}}))
	require.NoError(t, store.Clear())

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	// Clearing an already-empty store is not an error.
	assert.NoError(t, store.Clear())
}

func TestManagerFallsBackAcrossStores(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewEncryptedFileStore(dir)
	require.NoError(t, err)

	m := &Manager{stores: []Store{fs}}

	_, err = m.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, m.Save([]*http.Cookie{{Name: "msToken", Value: "chained"}}))
	loaded, err := m.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "chained", loaded[0].Value)
}
