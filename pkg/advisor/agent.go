package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
)

// Tool represents an action the model may ask the advisor to run
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]interface{} // JSON schema for arguments
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// ToolCall represents a request from the model to execute a tool
type ToolCall struct {
	ToolName string
	Args     map[string]interface{}
}

const (
	RoleUser     = "user"
	RoleModel    = "model"
	RoleFunction = "function"
)

// Message represents a chat message
type Message struct {
	Role    string
	Content string
}

// Provider defines the interface for the language model backends
type Provider interface {
	GenerateResponse(ctx context.Context, system string, history []Message, tools []Tool) (string, *ToolCall, error)
	ListModels(ctx context.Context) ([]string, error)
}

// maxToolCalls bounds the tool round trips of a single Chat turn.
const maxToolCalls = 8

var ErrTooManyToolCalls = errors.New("model requested too many tool calls")

// Advisor holds one conversation with a provider and the tools it may call.
// It is not safe for concurrent use.
type Advisor struct {
	llm          Provider
	tools        map[string]Tool
	order        []string
	history      []Message
	systemPrompt string
	log          logr.Logger
}

func New(llm Provider, log logr.Logger) *Advisor {
	return &Advisor{
		llm:          llm,
		tools:        make(map[string]Tool),
		systemPrompt: SystemPrompt(),
		log:          log.WithName("advisor"),
	}
}

// RegisterTool adds a tool to the registry. A tool with the same name
// replaces the earlier one.
func (a *Advisor) RegisterTool(t Tool) {
	if _, exists := a.tools[t.Name()]; !exists {
		a.order = append(a.order, t.Name())
	}
	a.tools[t.Name()] = t
}

func (a *Advisor) SetSystemPrompt(prompt string) {
	a.systemPrompt = prompt
}

// History returns a copy of the conversation so far.
func (a *Advisor) History() []Message {
	out := make([]Message, len(a.history))
	copy(out, a.history)
	return out
}

// Brief asks the model for a posture briefing built from b.
func (a *Advisor) Brief(ctx context.Context, b Briefing) (string, error) {
	return a.Chat(ctx, b.Render(), nil)
}

// Chat sends a message and returns the model's answer, running any tools
// the model asks for along the way.
func (a *Advisor) Chat(ctx context.Context, input string, progress func(string)) (string, error) {
	a.history = append(a.history, Message{Role: RoleUser, Content: input})

	tools := make([]Tool, 0, len(a.order))
	for _, name := range a.order {
		tools = append(tools, a.tools[name])
	}

	for calls := 0; ; calls++ {
		if calls > maxToolCalls {
			return "", ErrTooManyToolCalls
		}

		respText, toolCall, err := a.llm.GenerateResponse(ctx, a.systemPrompt, a.history, tools)
		if err != nil {
			return "", err
		}

		if toolCall == nil {
			a.history = append(a.history, Message{Role: RoleModel, Content: respText})
			return respText, nil
		}

		a.log.V(1).Info("Executing tool", "tool", toolCall.ToolName, "args", toolCall.Args)
		if progress != nil {
			progress(fmt.Sprintf("running %s", toolCall.ToolName))
		}

		a.history = append(a.history, Message{
			Role:    RoleModel,
			Content: fmt.Sprintf("I will call tool %s with args %v", toolCall.ToolName, toolCall.Args),
		})

		tool, exists := a.tools[toolCall.ToolName]
		if !exists {
			a.history = append(a.history, Message{
				Role:    RoleFunction,
				Content: fmt.Sprintf("Error: tool %s not found", toolCall.ToolName),
			})
			continue
		}

		result, err := tool.Execute(ctx, toolCall.Args)
		if err != nil {
			a.log.Error(err, "Tool failed", "tool", toolCall.ToolName)
			result = fmt.Sprintf("Error executing tool: %v", err)
		}

		a.history = append(a.history, Message{
			Role:    RoleFunction,
			Content: fmt.Sprintf("Tool %s returned: %s", toolCall.ToolName, result),
		})
	}
}
