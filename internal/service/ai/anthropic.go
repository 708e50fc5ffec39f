package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/zhouzirui/chatdesk/backend/internal/config"
	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
)

// DefaultAnthropicModel is used when ANTHROPIC_MODEL is unset.
const DefaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest

// AnthropicOptions configure the Anthropic Messages responder.
type AnthropicOptions struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	// RequestOptions are appended to the client options; tests use them to point at a fake server.
	RequestOptions []option.RequestOption
}

// AnthropicResponder asks the Anthropic Messages API for a reply.
type AnthropicResponder struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
}

// NewAnthropicResponder creates a responder with its own client.
func NewAnthropicResponder(opts AnthropicOptions) *AnthropicResponder {
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	clientOpts = append(clientOpts, opts.RequestOptions...)
	client := anthropic.NewClient(clientOpts...)

	model := anthropic.Model(opts.Model)
	if model == "" {
		model = DefaultAnthropicModel
	}
	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &AnthropicResponder{client: &client, model: model, maxTokens: maxTokens, timeout: opts.Timeout}
}

// Reply sends the latest user text as the only message.
func (r *AnthropicResponder) Reply(ctx context.Context, text string) (string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", &chat.ResponderError{Provider: config.ProviderAnthropic, Err: err}
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return "", &chat.ResponderError{Provider: config.ProviderAnthropic, Err: fmt.Errorf("no text in response %s", resp.ID)}
	}
	return b.String(), nil
}
