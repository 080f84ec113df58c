//go:build integration

package secrets

import (
	"runtime"
	"testing"
)

func TestKeychainAccess_Integration(t *testing.T) {
	if runtime.GOOS != "darwin" {
		t.Skip("keychain tests only run on macOS")
	}
	if err := EnsureKeychainAccess(); err != nil {
		t.Logf("keychain may be locked: %v", err)
	}
}

func TestFileBackendRoundTrip_Integration(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("file backend fallback only applies on Linux")
	}

	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "")
	t.Setenv("PERCHANCE_KEYRING_PASSWORD", "testpassword")

	store, err := Open(KeyringBackendInfo{Value: "auto", Source: "default"})
	if err != nil {
		t.Fatalf("Open() with forced file backend failed: %v", err)
	}
	if err := store.SetToken("ci", Token{APIKey: "sk-integration"}); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}
	tok, err := store.GetToken("ci")
	if err != nil || tok.APIKey != "sk-integration" {
		t.Fatalf("GetToken() = %+v, %v", tok, err)
	}
	if err := store.DeleteToken("ci"); err != nil {
		t.Fatalf("DeleteToken() error = %v", err)
	}
}
