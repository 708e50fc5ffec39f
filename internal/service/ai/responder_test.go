package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/chatdesk/backend/internal/config"
)

func TestRuleResponderFixtures(t *testing.T) {
	r := NewRuleResponder()
	ctx := context.Background()

	cases := map[string]string{
		"Where is my order?":     "I can help with that. Please provide your Order ID or the email address associated with the purchase.",
		"ORDER status please":    OrderPrompt,
		"I want to reorder this": OrderPrompt,
		"hello":                  "This is a mock AI response to: hello",
		"":                       "This is a mock AI response to: ",
	}
	for in, want := range cases {
		got, err := r.Reply(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestNewResponderSelectsProvider(t *testing.T) {
	ctx := context.Background()

	r, err := NewResponder(ctx, config.AIConfig{Provider: config.ProviderRule})
	require.NoError(t, err)
	assert.IsType(t, RuleResponder{}, r)

	r, err = NewResponder(ctx, config.AIConfig{Provider: config.ProviderAnthropic, AnthropicAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicResponder{}, r)

	r, err = NewResponder(ctx, config.AIConfig{Provider: config.ProviderOpenAI, OpenAIAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIResponder{}, r)
}

func TestNewResponderRequiresCredentials(t *testing.T) {
	ctx := context.Background()

	for _, cfg := range []config.AIConfig{
		{Provider: config.ProviderArk},
		{Provider: config.ProviderAnthropic},
		{Provider: config.ProviderOpenAI},
		{Provider: "gemini"},
	} {
		_, err := NewResponder(ctx, cfg)
		assert.Error(t, err, "provider %q", cfg.Provider)
	}
}
