// Package secrets stores model API keys in the OS keyring.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"golang.org/x/term"

	"github.com/salmonumbrella/perchance-cli/internal/config"
)

const (
	// DefaultProfile names the key used when no --key is given.
	DefaultProfile = "default"

	keyPrefix         = "apikey:"
	envKeyringBackend = "PERCHANCE_KEYRING_BACKEND"
	envKeyringPass    = "PERCHANCE_KEYRING_PASSWORD"
	keyringTimeout    = 5 * time.Second
)

var errKeyringTimeout = errors.New("timed out opening keyring")

// ErrNotFound is returned when no key is stored under a profile.
var ErrNotFound = errors.New("api key not found")

// Token is a stored API key.
type Token struct {
	Profile   string    `json:"profile"`
	APIKey    string    `json:"api_key"`
	CreatedAt time.Time `json:"created_at"`
}

// Store reads and writes API keys.
type Store interface {
	GetToken(profile string) (Token, error)
	SetToken(profile string, tok Token) error
	DeleteToken(profile string) error
	ListTokens() ([]Token, error)
	Keys() ([]string, error)
}

// KeyringBackendInfo records which backend was requested and where from.
type KeyringBackendInfo struct {
	Value  string
	Source string
}

type keyringStore struct {
	ring keyring.Keyring
}

var keyringOpenFunc = keyring.Open

// ResolveKeyringBackend reads the backend from the environment, then config.
func ResolveKeyringBackend(cfg *config.Config) KeyringBackendInfo {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(envKeyringBackend))); v != "" {
		return KeyringBackendInfo{Value: v, Source: "env"}
	}
	if cfg != nil && strings.TrimSpace(cfg.KeyringBackend) != "" {
		return KeyringBackendInfo{Value: strings.ToLower(strings.TrimSpace(cfg.KeyringBackend)), Source: "config"}
	}
	return KeyringBackendInfo{Value: "auto", Source: "default"}
}

// OpenDefault opens the keyring selected by the environment and config file.
func OpenDefault() (Store, error) {
	cfg, err := config.ReadConfig()
	if err != nil {
		cfg = &config.Config{}
	}
	return Open(ResolveKeyringBackend(cfg))
}

// Open opens the keyring for info.
func Open(info KeyringBackendInfo) (Store, error) {
	if err := EnsureKeychainAccess(); err != nil {
		return nil, err
	}

	dbusAddr := os.Getenv("DBUS_SESSION_BUS_ADDRESS")
	if shouldForceFileBackend(runtime.GOOS, info, dbusAddr) {
		info = KeyringBackendInfo{Value: "file", Source: "fallback"}
	}

	cfg, err := keyringConfig(info)
	if err != nil {
		return nil, err
	}

	var ring keyring.Keyring
	if shouldUseKeyringTimeout(runtime.GOOS, info, dbusAddr) {
		ring, err = openKeyringWithTimeout(cfg, keyringTimeout)
	} else {
		ring, err = keyringOpenFunc(cfg)
	}
	if err != nil {
		return nil, wrapKeychainError(fmt.Errorf("opening keyring: %w", err))
	}
	return &keyringStore{ring: ring}, nil
}

func keyringConfig(info KeyringBackendInfo) (keyring.Config, error) {
	cfg := keyring.Config{
		ServiceName:              config.AppName,
		KeychainTrustApplication: true,
	}

	switch info.Value {
	case "", "auto":
	case "keychain":
		cfg.AllowedBackends = []keyring.BackendType{keyring.KeychainBackend}
	case "secret-service":
		cfg.AllowedBackends = []keyring.BackendType{keyring.SecretServiceBackend}
	case "file":
		dir, err := config.EnsureKeyringDir()
		if err != nil {
			return keyring.Config{}, err
		}
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		cfg.FileDir = dir
		cfg.FilePasswordFunc = filePassword
	default:
		return keyring.Config{}, fmt.Errorf("unknown keyring backend %q (expected auto|keychain|secret-service|file)", info.Value)
	}
	return cfg, nil
}

func filePassword(prompt string) (string, error) {
	if pass, ok := os.LookupEnv(envKeyringPass); ok {
		return pass, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("%s must be set when stdin is not a terminal", envKeyringPass)
	}
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading keyring password: %w", err)
	}
	return string(pass), nil
}

// shouldForceFileBackend is true on Linux without a session bus, where the
// secret service cannot be reached.
func shouldForceFileBackend(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr == ""
}

// shouldUseKeyringTimeout is true when the secret service may hang waiting
// for an unlock prompt.
func shouldUseKeyringTimeout(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr != ""
}

func openKeyringWithTimeout(cfg keyring.Config, timeout time.Duration) (keyring.Keyring, error) {
	type result struct {
		ring keyring.Keyring
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		ring, err := keyringOpenFunc(cfg)
		ch <- result{ring: ring, err: err}
	}()

	select {
	case res := <-ch:
		return res.ring, res.err
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %s; set %s=file to use the encrypted file backend", errKeyringTimeout, timeout, envKeyringBackend)
	}
}

func wrapKeychainError(err error) error {
	if err == nil {
		return nil
	}
	if IsKeychainLockedError(err.Error()) {
		return fmt.Errorf("%w\n\nThe login keychain is locked. Unlock it with:\n  security unlock-keychain %s", err, loginKeychainPath())
	}
	return err
}

func (s *keyringStore) GetToken(profile string) (Token, error) {
	item, err := s.ring.Get(keyPrefix + profile)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return Token{}, fmt.Errorf("%w: %s", ErrNotFound, profile)
		}
		return Token{}, wrapKeychainError(err)
	}
	var tok Token
	if err := json.Unmarshal(item.Data, &tok); err != nil {
		return Token{}, fmt.Errorf("decoding stored key %q: %w", profile, err)
	}
	return tok, nil
}

func (s *keyringStore) SetToken(profile string, tok Token) error {
	if strings.TrimSpace(tok.APIKey) == "" {
		return errors.New("api key is empty")
	}
	tok.Profile = profile
	if tok.CreatedAt.IsZero() {
		tok.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding key: %w", err)
	}
	return wrapKeychainError(s.ring.Set(keyring.Item{
		Key:   keyPrefix + profile,
		Data:  data,
		Label: config.AppName + " API key (" + profile + ")",
	}))
}

func (s *keyringStore) DeleteToken(profile string) error {
	err := s.ring.Remove(keyPrefix + profile)
	if errors.Is(err, keyring.ErrKeyNotFound) || os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, profile)
	}
	return wrapKeychainError(err)
}

func (s *keyringStore) ListTokens() ([]Token, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	tokens := make([]Token, 0, len(keys))
	for _, profile := range keys {
		tok, err := s.GetToken(profile)
		if err != nil {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// Keys returns the stored profile names, sorted.
func (s *keyringStore) Keys() ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, wrapKeychainError(err)
	}
	var profiles []string
	for _, k := range keys {
		if p, ok := strings.CutPrefix(k, keyPrefix); ok {
			profiles = append(profiles, p)
		}
	}
	sort.Strings(profiles)
	return profiles, nil
}
