// Package session persists TikTok session cookies between runs so repeat
// collections reuse an already-warmed identity. The system keychain is
// preferred, with an encrypted file as fallback.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "tiktracker"
	keyringKey     = "session_cookies"
)

// ErrNoSession is returned when a store holds no cookies.
var ErrNoSession = errors.New("no stored session cookies")

// Store saves and restores session cookies.
type Store interface {
	Save(cookies []*http.Cookie) error
	Load() ([]*http.Cookie, error)
	Clear() error
}

// KeyringStore implements Store using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a keychain-backed store, verifying the keyring
// actually works on this machine first.
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)
	return &KeyringStore{}, nil
}

func (k *KeyringStore) Save(cookies []*http.Cookie) error {
	data, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	if err := keyring.Set(keyringService, keyringKey, string(data)); err != nil {
		return fmt.Errorf("store in keyring: %w", err)
	}
	return nil
}

func (k *KeyringStore) Load() ([]*http.Cookie, error) {
	data, err := keyring.Get(keyringService, keyringKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("retrieve from keyring: %w", err)
	}
	var cookies []*http.Cookie
	if err := json.Unmarshal([]byte(data), &cookies); err != nil {
		return nil, fmt.Errorf("unmarshal cookies: %w", err)
	}
	return cookies, nil
}

func (k *KeyringStore) Clear() error {
	err := keyring.Delete(keyringService, keyringKey)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete from keyring: %w", err)
	}
	return nil
}

// Manager chains stores: keychain first, encrypted file as fallback.
type Manager struct {
	stores []Store
}

// NewManager builds the store chain rooted at dir for the file fallback.
func NewManager(dir string) (*Manager, error) {
	var stores []Store

	if ks, err := NewKeyringStore(); err == nil {
		stores = append(stores, ks)
	}

	fs, err := NewEncryptedFileStore(dir)
	if err != nil {
		return nil, fmt.Errorf("create encrypted file store: %w", err)
	}
	stores = append(stores, fs)

	return &Manager{stores: stores}, nil
}

// Save writes the cookies to the first store that accepts them.
func (m *Manager) Save(cookies []*http.Cookie) error {
	var lastErr error
	for _, s := range m.stores {
		if err := s.Save(cookies); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// Load returns cookies from the first store that has any.
func (m *Manager) Load() ([]*http.Cookie, error) {
	for _, s := range m.stores {
		cookies, err := s.Load()
		if err != nil {
			continue
		}
		return cookies, nil
	}
	return nil, ErrNoSession
}

// Clear removes cookies from every store.
func (m *Manager) Clear() error {
	var lastErr error
	for _, s := range m.stores {
		if err := s.Clear(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
