package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/chatdesk/backend/internal/model/chat"
)

type fakeChatModel struct {
	reply    string
	err      error
	received []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.received = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (f *fakeChatModel) BindTools([]*schema.ToolInfo) error { return nil }

func TestChainResponderSendsOnlyLatestMessage(t *testing.T) {
	ctx := context.Background()
	fake := &fakeChatModel{reply: "Sure, what is your Order ID?"}

	r, err := NewChainResponder(ctx, fake, "ark", time.Second)
	require.NoError(t, err)

	got, err := r.Reply(ctx, "where is {my} order")
	require.NoError(t, err)
	assert.Equal(t, "Sure, what is your Order ID?", got)

	require.Len(t, fake.received, 2)
	assert.Equal(t, schema.System, fake.received[0].Role)
	assert.Equal(t, schema.User, fake.received[1].Role)
	assert.Equal(t, "where is {my} order", fake.received[1].Content)
}

func TestChainResponderWrapsModelError(t *testing.T) {
	ctx := context.Background()
	fake := &fakeChatModel{err: errors.New("upstream unavailable")}

	r, err := NewChainResponder(ctx, fake, "ark", time.Second)
	require.NoError(t, err)

	_, err = r.Reply(ctx, "hello")
	require.Error(t, err)

	var re *chat.ResponderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "ark", re.Provider)
}
