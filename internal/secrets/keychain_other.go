//go:build !darwin

package secrets

// IsKeychainLockedError is always false outside macOS.
func IsKeychainLockedError(string) bool { return false }

func loginKeychainPath() string { return "" }

// CheckKeychainLocked is a no-op outside macOS.
func CheckKeychainLocked() bool { return false }

// UnlockKeychain is a no-op outside macOS.
func UnlockKeychain() error { return nil }

// EnsureKeychainAccess is a no-op outside macOS.
func EnsureKeychainAccess() error { return nil }
