package coach

import (
	"fmt"

	"github.com/claude/fitcoach/internal/config"
)

// NewProviders builds the chat model and transcriber selected by cfg. Both
// are nil for the "none" provider. The transcriber is nil for Azure when no
// transcription deployment is configured.
func NewProviders(cfg config.CoachConfig) (ChatModel, Transcriber, error) {
	switch cfg.Provider {
	case config.ProviderNone, "":
		return nil, nil, nil
	case config.ProviderAzure:
		c, err := NewAzureClient(cfg.Endpoint, cfg.APIKey, cfg.ChatDeployment, cfg.TranscriptionDeployment)
		if err != nil {
			return nil, nil, err
		}
		if cfg.TranscriptionDeployment == "" {
			return c, nil, nil
		}
		return c, c, nil
	case config.ProviderOpenAI:
		c, err := NewOpenAIClient(cfg.Endpoint, cfg.APIKey, cfg.ChatDeployment, cfg.TranscriptionDeployment)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	default:
		return nil, nil, fmt.Errorf("unknown coach provider %q", cfg.Provider)
	}
}
