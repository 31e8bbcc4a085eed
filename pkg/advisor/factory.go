package advisor

import (
	"context"
	"errors"
	"fmt"
)

const (
	ProviderGemini  = "gemini"
	ProviderOffline = "offline"
)

var ErrMissingAPIKey = errors.New("api key not configured")

// Providers lists the names NewProvider accepts.
func Providers() []string {
	return []string{ProviderGemini, ProviderOffline}
}

func NewProvider(ctx context.Context, providerName, apiKey, modelName string) (Provider, error) {
	switch providerName {
	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("%s: %w", providerName, ErrMissingAPIKey)
		}
		return NewGeminiProvider(ctx, apiKey, modelName)
	case ProviderOffline, "":
		return OfflineProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}
}
