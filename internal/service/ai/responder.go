package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zhouzirui/chatdesk/backend/internal/config"
)

// Responder produces reply text for the latest user message.
type Responder interface {
	Reply(ctx context.Context, text string) (string, error)
}

// OrderPrompt is the fixed reply to any message mentioning an order.
const OrderPrompt = "I can help with that. Please provide your Order ID or the email address associated with the purchase."

const mockReplyPrefix = "This is a mock AI response to: "

// systemPrompt instructs hosted models; it must not contain template braces.
const systemPrompt = `You are a customer support assistant for an online store.
Reply to the customer's latest message only, briefly and politely.
If the customer asks about an order, ask for the Order ID or the email address associated with the purchase.`

// RuleResponder is the placeholder policy used when no model is configured.
type RuleResponder struct{}

// NewRuleResponder returns the keyword-based responder.
func NewRuleResponder() RuleResponder {
	return RuleResponder{}
}

// Reply never fails.
func (RuleResponder) Reply(_ context.Context, text string) (string, error) {
	if strings.Contains(strings.ToLower(text), "order") {
		return OrderPrompt, nil
	}
	return mockReplyPrefix + text, nil
}

// NewResponder builds the responder selected by cfg.Provider.
func NewResponder(ctx context.Context, cfg config.AIConfig) (Responder, error) {
	switch cfg.Provider {
	case "", config.ProviderRule:
		return NewRuleResponder(), nil
	case config.ProviderArk:
		chatModel, err := cfg.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		return NewChainResponder(ctx, chatModel, config.ProviderArk, cfg.Timeout)
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
		return NewAnthropicResponder(AnthropicOptions{
			APIKey:    cfg.AnthropicAPIKey,
			Model:     cfg.AnthropicModel,
			MaxTokens: derefInt(cfg.MaxTokens),
			Timeout:   cfg.Timeout,
		}), nil
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		return NewOpenAIResponder(OpenAIOptions{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			Model:     cfg.OpenAIModel,
			MaxTokens: derefInt(cfg.MaxTokens),
			Timeout:   cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown responder provider %q", cfg.Provider)
	}
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
