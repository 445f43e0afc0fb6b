// Package agent bridges the task tools to a chat model using eino ADK.
package agent

import (
	"context"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
)

// NewRunner creates a ChatModelAgent wrapped in an ADK Runner. The
// instruction is frozen at creation, so callers needing per-turn
// context use a Factory instead.
func NewRunner(ctx context.Context, chatModel model.ToolCallingChatModel, instructions string, tools []tool.BaseTool) (*adk.Runner, error) {
	if instructions == "" {
		instructions = DefaultInstructions
	}

	cfg := &adk.ChatModelAgentConfig{
		Name:        "taskchat",
		Description: "Conversational task management assistant",
		Instruction: instructions,
		Model:       chatModel,
	}
	if len(tools) > 0 {
		cfg.ToolsConfig.Tools = tools
	}

	a, err := adk.NewChatModelAgent(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return adk.NewRunner(ctx, adk.RunnerConfig{Agent: a}), nil
}

// Factory creates a fresh ADK Runner per turn. Eino's runner freezes
// its instruction and tool set after the first Run() call, and the
// last-mentioned-task context changes between turns.
type Factory struct {
	chatModel    model.ToolCallingChatModel
	instructions string
}

// NewFactory creates a runner factory. instructions replaces
// DefaultInstructions when non-empty.
func NewFactory(chatModel model.ToolCallingChatModel, instructions string) *Factory {
	if instructions == "" {
		instructions = DefaultInstructions
	}
	return &Factory{chatModel: chatModel, instructions: instructions}
}

// Instructions returns the base instruction string.
func (f *Factory) Instructions() string { return f.instructions }

// CreateRunner builds a runner whose instruction is the base
// instructions plus the per-turn context block.
func (f *Factory) CreateRunner(ctx context.Context, turnContext string, tools []tool.BaseTool) (*adk.Runner, error) {
	return NewRunner(ctx, f.chatModel, f.instructions+turnContext, tools)
}
