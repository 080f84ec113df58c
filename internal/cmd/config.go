package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/perchance-cli/internal/config"
	"github.com/salmonumbrella/perchance-cli/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration stored in $XDG_CONFIG_HOME/perchance/config.yaml.

You can view, set, or unset keys such as base_url, model, translate_model,
use_cache, cache_dir, timeout and output_format.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigFromFlag()
		if err != nil {
			return formatConfigLoadError(err)
		}
		if structuredOutputRequested() {
			return printStructured(cmd, configOutput(cfg))
		}

		out := stdoutFromContext(commandContext(cmd))
		fmt.Fprintln(out, "Config:")
		for _, key := range supportedConfigKeys() {
			fmt.Fprintf(out, "  %s: %v\n", key, configOutput(cfg)[key])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Unset a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported configuration keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := supportedConfigKeys()
		sort.Strings(keys)

		if structuredOutputRequested() {
			return printStructured(cmd, keys)
		}

		out := stdoutFromContext(commandContext(cmd))
		fmt.Fprintln(out, "Supported keys:")
		for _, key := range keys {
			fmt.Fprintf(out, "  %s\n", key)
		}
		return nil
	},
}

func configPath() (string, error) {
	if strings.TrimSpace(configFile) != "" {
		return configFile, nil
	}
	return config.DefaultConfigPath()
}

func supportedConfigKeys() []string {
	return []string{
		"base_url",
		"model",
		"translate_model",
		"api_key",
		"use_cache",
		"cache_dir",
		"timeout",
		"keyring_backend",
		"output_format",
	}
}

func applyConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "base_url":
		cfg.BaseURL = value
	case "model":
		cfg.Model = value
	case "translate_model":
		cfg.TranslateModel = value
	case "api_key":
		cfg.APIKey = value
	case "use_cache":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid use_cache %q (expected true|false)", value)
		}
		cfg.UseCache = &b
	case "cache_dir":
		cfg.CacheDir = value
	case "timeout":
		prev := cfg.Timeout
		cfg.Timeout = value
		if _, err := cfg.TimeoutDuration(); err != nil {
			cfg.Timeout = prev
			return err
		}
	case "keyring_backend":
		switch value {
		case "auto", "keychain", "secret-service", "file":
		default:
			return fmt.Errorf("invalid keyring_backend %q (expected auto|keychain|secret-service|file)", value)
		}
		cfg.KeyringBackend = value
	case "output_format":
		if _, err := output.ParseFormat(value); err != nil {
			return err
		}
		cfg.OutputFormat = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func clearConfigValue(cfg *config.Config, key string) error {
	switch key {
	case "base_url":
		cfg.BaseURL = ""
	case "model":
		cfg.Model = ""
	case "translate_model":
		cfg.TranslateModel = ""
	case "api_key":
		cfg.APIKey = ""
	case "use_cache":
		cfg.UseCache = nil
	case "cache_dir":
		cfg.CacheDir = ""
	case "timeout":
		cfg.Timeout = ""
	case "keyring_backend":
		cfg.KeyringBackend = ""
	case "output_format":
		cfg.OutputFormat = ""
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configKeysCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))
	value := strings.TrimSpace(args[1])

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}
	if err := applyConfigValue(cfg, key, value); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	if structuredOutputRequested() {
		if key == "api_key" {
			value = maskToken(value)
		}
		return printStructured(cmd, map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}

	fmt.Fprintf(stdoutFromContext(commandContext(cmd)), "Updated %s\n", key)
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}
	if err := clearConfigValue(cfg, key); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	if structuredOutputRequested() {
		return printStructured(cmd, map[string]string{
			"status": "unset",
			"key":    key,
		})
	}

	fmt.Fprintf(stdoutFromContext(commandContext(cmd)), "Unset %s\n", key)
	return nil
}

func configOutput(cfg *config.Config) map[string]any {
	cacheDir, err := cfg.ResolvedCacheDir()
	if err != nil {
		cacheDir = ""
	}
	format := cfg.OutputFormat
	if format == "" {
		format = string(output.FormatText)
	}
	return map[string]any{
		"base_url":        cfg.BaseURL,
		"model":           cfg.Model,
		"translate_model": cfg.TranslateModel,
		"api_key":         maskToken(cfg.APIKey),
		"api_key_set":     cfg.APIKey != "",
		"use_cache":       cfg.CacheEnabled(),
		"cache_dir":       cacheDir,
		"timeout":         cfg.Timeout,
		"keyring_backend": cfg.KeyringBackend,
		"output_format":   format,
	}
}
