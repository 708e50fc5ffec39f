package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
)

// ChainResponder runs the user text through an eino prompt + chat model chain.
type ChainResponder struct {
	chain    compose.Runnable[map[string]any, *schema.Message]
	provider string
	timeout  time.Duration
}

// NewChainResponder compiles a system prompt followed by the single user message.
func NewChainResponder(ctx context.Context, chatModel model.BaseChatModel, provider string, timeout time.Duration) (*ChainResponder, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ChainResponder{chain: runnable, provider: provider, timeout: timeout}, nil
}

// Reply invokes the chain with only the latest user text.
func (r *ChainResponder) Reply(ctx context.Context, text string) (string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	response, err := r.chain.Invoke(ctx, map[string]any{"query": text})
	if err != nil {
		return "", &chat.ResponderError{Provider: r.provider, Err: err}
	}
	if response == nil {
		return "", &chat.ResponderError{Provider: r.provider, Err: fmt.Errorf("empty model response")}
	}
	return response.Content, nil
}
