package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/perchance-cli/internal/config"
	"github.com/salmonumbrella/perchance-cli/internal/llm"
	"github.com/salmonumbrella/perchance-cli/internal/log"
	"github.com/salmonumbrella/perchance-cli/internal/secrets"
)

// loadConfigFromFlag loads config from --config if provided, otherwise from default path.
func loadConfigFromFlag() (*config.Config, error) {
	if strings.TrimSpace(configFile) != "" {
		return config.Load(configFile)
	}
	return config.ReadConfig()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed(name) {
		return true
	}
	return cmd.InheritedFlags().Changed(name)
}

// resolveAPIKey finds the API key with precedence env > keyring > config and
// reports where it came from.
func resolveAPIKey(ctx context.Context, cfg *config.Config) (key, source string) {
	for _, name := range []string{"PERCHANCE_API_KEY", "OPENAI_API_KEY"} {
		if v := strings.TrimSpace(envGet(name)); v != "" {
			return v, "env:" + name
		}
	}

	store, err := openSecretsStore()
	if err == nil {
		if tok, err := store.GetToken(secrets.DefaultProfile); err == nil && strings.TrimSpace(tok.APIKey) != "" {
			return strings.TrimSpace(tok.APIKey), "keyring"
		}
	} else {
		log.FromContext(ctx).Debug("keyring unavailable", "error", err)
	}

	if cfg != nil && strings.TrimSpace(cfg.APIKey) != "" {
		return strings.TrimSpace(cfg.APIKey), "config"
	}
	return "", ""
}

// completionSettings gathers client and cache settings from env, flags and config.
func completionSettings(ctx context.Context, cfg *config.Config, noCache bool) (llm.Settings, error) {
	key, source := resolveAPIKey(ctx, cfg)

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return llm.Settings{}, formatConfigLoadError(err)
	}

	baseURL := strings.TrimSpace(envGet("PERCHANCE_BASE_URL"))
	if baseURL == "" {
		baseURL = strings.TrimSpace(cfg.BaseURL)
	}

	cacheDir := strings.TrimSpace(cacheDirArg)
	if cacheDir == "" {
		cacheDir, err = cfg.ResolvedCacheDir()
		if err != nil {
			return llm.Settings{}, err
		}
	}

	s := llm.Settings{
		APIKey:   key,
		BaseURL:  baseURL,
		Timeout:  timeout,
		UseCache: cfg.CacheEnabled() && !noCache,
		CacheDir: cacheDir,
	}
	log.FromContext(ctx).Debug("completion settings",
		"key_source", source,
		"base_url", s.BaseURL,
		"use_cache", s.UseCache,
		"cache_dir", s.CacheDir,
	)
	return s, nil
}

// openCompletionService builds the completion service for the current command.
func openCompletionService(ctx context.Context, noCache bool) (completionService, error) {
	cfg := configFromContext(ctx)
	settings, err := completionSettings(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return newLLMService(settings)
}

// pickModel returns the flag value, then the config value, then fallback.
func pickModel(flag, configured, fallback string) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	if v := strings.TrimSpace(configured); v != "" {
		return v
	}
	return fallback
}

func formatConfigLoadError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load config: %w", err)
}
