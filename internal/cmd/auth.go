package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/perchance-cli/internal/secrets"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the completion service API key",
	Long: `Manage the API key used by correct-words and translated conversions.

Keys are stored in your system keychain (macOS Keychain, Windows Credential
Manager, Secret Service, or an encrypted file on Linux without a session bus).
PERCHANCE_API_KEY and OPENAI_API_KEY take precedence over stored keys.

Examples:
  perchance auth set-key            # prompt for the key
  echo "$KEY" | perchance auth set-key
  perchance auth status
  perchance auth remove-key`,
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key [api-key]",
	Short: "Store an API key in the keyring",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSetKey,
}

var removeKeyCmd = &cobra.Command{
	Use:   "remove-key",
	Short: "Remove a stored API key",
	Args:  cobra.NoArgs,
	RunE:  runRemoveKey,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which API key would be used",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authProfile string

func init() {
	authCmd.PersistentFlags().StringVar(&authProfile, "key", secrets.DefaultProfile, "Name of the stored key")

	authCmd.AddCommand(setKeyCmd)
	authCmd.AddCommand(removeKeyCmd)
	authCmd.AddCommand(authStatusCmd)

	rootCmd.AddCommand(authCmd)
}

func profileName() string {
	if p := strings.TrimSpace(authProfile); p != "" {
		return p
	}
	return secrets.DefaultProfile
}

func runSetKey(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	var key string
	if len(args) == 1 {
		key = strings.TrimSpace(args[0])
	} else {
		var err error
		key, err = promptSecret(ctx, "API key: ")
		if err != nil {
			return fmt.Errorf("reading API key: %w", err)
		}
	}
	if key == "" {
		return errors.New("API key is empty")
	}

	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	profile := profileName()
	if err := store.SetToken(profile, secrets.Token{APIKey: key, CreatedAt: time.Now().UTC()}); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	if structuredOutputRequested() {
		return printStructured(cmd, map[string]any{
			"status":  "stored",
			"key":     profile,
			"preview": maskToken(key),
		})
	}
	fmt.Fprintf(stdoutFromContext(ctx), "Stored API key %q (%s)\n", profile, maskToken(key))
	return nil
}

func runRemoveKey(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	profile := profileName()
	removed := true
	if err := store.DeleteToken(profile); err != nil {
		if !errors.Is(err, secrets.ErrNotFound) {
			return fmt.Errorf("failed to remove API key: %w", err)
		}
		removed = false
	}

	if structuredOutputRequested() {
		return printStructured(cmd, map[string]any{
			"status":  "removed",
			"key":     profile,
			"existed": removed,
		})
	}
	if !removed {
		fmt.Fprintf(stdoutFromContext(ctx), "No API key stored as %q\n", profile)
		return nil
	}
	fmt.Fprintf(stdoutFromContext(ctx), "Removed API key %q\n", profile)
	return nil
}

// authStatus describes the key the completion commands would use.
type authStatus struct {
	Configured bool     `json:"configured"`
	Source     string   `json:"source,omitempty"`
	Preview    string   `json:"preview,omitempty"`
	StoredKeys []string `json:"stored_keys"`
	StoredAt   string   `json:"stored_at,omitempty"`
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	key, source := resolveAPIKey(ctx, configFromContext(ctx))
	status := authStatus{Configured: key != "", Source: source, StoredKeys: []string{}}
	if key != "" {
		status.Preview = maskToken(key)
	}

	if store, err := openSecretsStore(); err == nil {
		if keys, err := store.Keys(); err == nil && keys != nil {
			status.StoredKeys = keys
		}
		if tok, err := store.GetToken(profileName()); err == nil && !tok.CreatedAt.IsZero() {
			status.StoredAt = tok.CreatedAt.Format(time.RFC3339)
		}
	}

	if structuredOutputRequested() {
		return printStructured(cmd, status)
	}

	out := stdoutFromContext(ctx)
	if !status.Configured {
		fmt.Fprintln(out, "Status: No API key configured")
		fmt.Fprintln(out, "\nSet PERCHANCE_API_KEY or run 'perchance auth set-key'.")
		return nil
	}
	fmt.Fprintln(out, "Status: API key configured")
	fmt.Fprintf(out, "Source: %s\n", status.Source)
	fmt.Fprintf(out, "Key: %s\n", status.Preview)
	if status.StoredAt != "" {
		fmt.Fprintf(out, "Stored at: %s\n", status.StoredAt)
	}
	if len(status.StoredKeys) > 0 {
		fmt.Fprintf(out, "Stored keys: %s\n", strings.Join(status.StoredKeys, ", "))
	}
	return nil
}

// promptSecret prompts for a secret input (no echo)
func promptSecret(ctx context.Context, prompt string) (string, error) {
	in := stdinFromContext(ctx)
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fmt.Fprint(stderrFromContext(ctx), prompt)
		secret, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(stderrFromContext(ctx))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	// Piped input: read the first line.
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// maskToken masks a token for display, showing only first and last 4 characters
func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
