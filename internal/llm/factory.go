package llm

import (
	"fmt"
	"strings"
	"time"
)

// Settings holds what is needed to reach the completion service.
type Settings struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	UseCache bool
	CacheDir string
}

// Service is a ready-to-use completer and the resources behind it.
type Service struct {
	Completer
	cache *Cache
}

// Close releases the response cache, if any.
func (s *Service) Close() error {
	if s == nil || s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

// NewService builds a completer from settings. It fails with ErrUnavailable
// when the API key is missing or the cache cannot be opened.
func NewService(s Settings, opts ...ClientOption) (*Service, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, fmt.Errorf("%w: no API key configured (set PERCHANCE_API_KEY or run 'perchance auth set-key')", ErrUnavailable)
	}

	clientOpts := []ClientOption{WithTimeout(s.Timeout)}
	if strings.TrimSpace(s.BaseURL) != "" {
		clientOpts = append(clientOpts, WithBaseURL(strings.TrimSpace(s.BaseURL)))
	}
	clientOpts = append(clientOpts, opts...)

	var completer Completer = NewClient(strings.TrimSpace(s.APIKey), clientOpts...)
	if !s.UseCache {
		return &Service{Completer: completer}, nil
	}

	cache, err := OpenCache(s.CacheDir, DefaultCacheOptions())
	if err != nil {
		return nil, err
	}
	return &Service{Completer: NewCachingCompleter(completer, cache), cache: cache}, nil
}
