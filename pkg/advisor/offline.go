package advisor

import (
	"context"
	"strings"
)

// OfflineHeader prefixes every answer of the offline provider.
const OfflineHeader = "Offline briefing (no AI provider configured)"

// OfflineProvider answers without a model: it echoes the latest user turn
// so a rendered Briefing is returned as the briefing itself. It never calls
// tools.
type OfflineProvider struct{}

func (OfflineProvider) ListModels(ctx context.Context) ([]string, error) {
	return []string{"offline"}, nil
}

func (OfflineProvider) GenerateResponse(ctx context.Context, system string, history []Message, tools []Tool) (string, *ToolCall, error) {
	var last string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == RoleUser {
			last = history[i].Content
			break
		}
	}
	return strings.TrimSpace(OfflineHeader + "\n\n" + last), nil, nil
}
