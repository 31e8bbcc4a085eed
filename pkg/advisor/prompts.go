package advisor

import (
	_ "embed"
)

//go:embed prompts/system_prompt.md
var systemPrompt string

// SystemPrompt returns the default system prompt for the advisor
func SystemPrompt() string {
	return systemPrompt
}
