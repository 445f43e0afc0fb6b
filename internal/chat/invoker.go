package chat

import (
	"context"
	"io"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/dohr-michael/taskchat/internal/agent"
)

// Invoker runs one model turn. It returns the assistant reply plus the
// raw output fragments (tool results and assistant text) the extractor
// scrapes for payloads.
type Invoker interface {
	Invoke(ctx context.Context, turnContext string, history []*schema.Message) (reply string, fragments []string, err error)
}

// AgentInvoker drives an eino ADK runner built fresh per turn so the
// instruction can carry the current last-mentioned-task block.
type AgentInvoker struct {
	factory *agent.Factory
	tools   []tool.BaseTool
}

// NewAgentInvoker creates an invoker over the given factory and tool set.
func NewAgentInvoker(factory *agent.Factory, tools []tool.BaseTool) *AgentInvoker {
	return &AgentInvoker{factory: factory, tools: tools}
}

func (a *AgentInvoker) Invoke(ctx context.Context, turnContext string, history []*schema.Message) (string, []string, error) {
	runner, err := a.factory.CreateRunner(ctx, turnContext, a.tools)
	if err != nil {
		return "", nil, err
	}

	iter := runner.Run(ctx, history)

	var reply string
	var fragments []string

	for {
		event, ok := iter.Next()
		if !ok {
			break
		}
		if event.Err != nil {
			return "", nil, event.Err
		}
		if event.Output == nil || event.Output.MessageOutput == nil {
			continue
		}

		mv := event.Output.MessageOutput

		if mv.Role == schema.Tool {
			content := messageContent(mv)
			if content != "" {
				fragments = append(fragments, content)
			}
			continue
		}

		// Assistant output: intermediate messages carry tool calls with
		// no content, the final one carries the reply.
		content := messageContent(mv)
		if content == "" {
			continue
		}
		reply = content
		fragments = append(fragments, content)
	}

	return reply, fragments, nil
}

// messageContent drains a message view, streaming or not.
func messageContent(mv *adk.MessageVariant) string {
	if mv.IsStreaming && mv.MessageStream != nil {
		var sb []byte
		for {
			chunk, err := mv.MessageStream.Recv()
			if err == io.EOF {
				break
			}
			if err != nil {
				break
			}
			if chunk != nil && chunk.Content != "" {
				sb = append(sb, chunk.Content...)
			}
		}
		return string(sb)
	}
	if mv.Message != nil {
		return mv.Message.Content
	}
	return ""
}
