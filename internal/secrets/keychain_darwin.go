//go:build darwin

package secrets

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// IsKeychainLockedError reports whether errStr is the macOS "interaction not
// allowed" failure raised by a locked keychain.
func IsKeychainLockedError(errStr string) bool {
	return strings.Contains(errStr, "errSecInteractionNotAllowed") || strings.Contains(errStr, "-25308")
}

func loginKeychainPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}
	return filepath.Join(home, "Library", "Keychains", "login.keychain-db")
}

// CheckKeychainLocked reports whether the login keychain is locked.
func CheckKeychainLocked() bool {
	return exec.Command("security", "show-keychain-info", loginKeychainPath()).Run() != nil
}

// UnlockKeychain runs security unlock-keychain, prompting on the terminal.
func UnlockKeychain() error {
	cmd := exec.Command("security", "unlock-keychain", loginKeychainPath())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("unlocking keychain: %w", err)
	}
	return nil
}

// EnsureKeychainAccess unlocks the login keychain when it is locked and a
// terminal is available.
func EnsureKeychainAccess() error {
	if !CheckKeychainLocked() {
		return nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("login keychain is locked; run: security unlock-keychain %s", loginKeychainPath())
	}
	return UnlockKeychain()
}
