package cmd

import (
	"os"

	"github.com/salmonumbrella/perchance-cli/internal/llm"
	"github.com/salmonumbrella/perchance-cli/internal/secrets"
)

var (
	openSecretsStore = secrets.OpenDefault
	envGet           = os.Getenv
	newLLMService    = func(s llm.Settings) (completionService, error) {
		return llm.NewService(s)
	}
)

// completionService is a completer holding resources until closed.
type completionService interface {
	llm.Completer
	Close() error
}
