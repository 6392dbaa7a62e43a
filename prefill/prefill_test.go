package prefill

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/briefpay/types"
)

func formAllowed() map[string]bool {
	return AllowedSet(AllowedPaths[types.FormValues]())
}

func TestAllowedPaths(t *testing.T) {
	assert.Equal(t, []string{
		"/client_name", "/client_email", "/brief_text", "/topic",
		"/tone", "/target_audience", "/word_count",
	}, AllowedPaths[*types.FormValues]())
	assert.Empty(t, AllowedPaths[string]())
}

func TestApplyRFC6902(t *testing.T) {
	current := types.FormValues{Topic: "Old topic", Tone: "formal"}
	out, err := ApplyRFC6902(current, []Operation{
		{Op: OperationReplace, Path: "/topic", Value: "Go generics"},
		{Op: OperationAdd, Path: "/word_count", Value: "900"},
		{Op: OperationRemove, Path: "/tone"},
	}, formAllowed())

	require.NoError(t, err)
	assert.Equal(t, "Go generics", out.Topic)
	assert.Equal(t, "900", out.WordCount)
	assert.Empty(t, out.Tone)
	assert.Equal(t, "Old topic", current.Topic)
}

func TestApplyRFC6902RejectsUnknownPath(t *testing.T) {
	_, err := ApplyRFC6902(types.FormValues{}, []Operation{
		{Op: OperationReplace, Path: "/price", Value: "0"},
	}, formAllowed())
	assert.ErrorContains(t, err, `path "/price" is not in the allowed paths set`)
}

func TestApplyRFC6902RejectsUnsupportedOp(t *testing.T) {
	_, err := ApplyRFC6902(types.FormValues{}, []Operation{
		{Op: "move", Path: "/topic"},
	}, formAllowed())
	assert.ErrorContains(t, err, "unsupported op")
}

func TestFixOperations(t *testing.T) {
	doc := []byte(`{"topic":"x"}`)
	fixed := FixOperations(doc, []Operation{
		{Op: OperationReplace, Path: "/tone", Value: "casual"},
		{Op: OperationRemove, Path: "/missing"},
		{Op: OperationRemove, Path: "/topic"},
	})
	require.Len(t, fixed, 2)
	assert.Equal(t, OperationAdd, fixed[0].Op)
	assert.Equal(t, "/topic", fixed[1].Path)
}

func TestLocalPrefillerParsesFieldLines(t *testing.T) {
	args, err := NewLocalPrefiller().Prefill(context.Background(), &types.ToolRequest{
		Answer: "Name: Ada Lovelace\nE-mail = ada@example.com\nword_count: 1200\nmood: upbeat\nTarget Audience: students",
	})
	require.NoError(t, err)

	out, err := ApplyRFC6902(types.FormValues{}, args.Ops, formAllowed())
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", out.ClientName)
	assert.Equal(t, "ada@example.com", out.ClientEmail)
	assert.Equal(t, "1200", out.WordCount)
	assert.Equal(t, "students", out.TargetAudience)
	assert.Empty(t, out.Tone)
}

func TestLocalPrefillerFillsAskedField(t *testing.T) {
	args, err := NewLocalPrefiller().Prefill(context.Background(), &types.ToolRequest{
		Answer:        "The history of the analytical engine",
		MissingFields: []types.FieldInfo{{JSONPointer: "/topic"}},
	})
	require.NoError(t, err)
	require.Len(t, args.Ops, 1)
	assert.Equal(t, Operation{Op: OperationReplace, Path: "/topic", Value: "The history of the analytical engine"}, args.Ops[0])

	args, err = NewLocalPrefiller().Prefill(context.Background(), &types.ToolRequest{
		Answer:           "800",
		ValidationErrors: []types.FieldInfo{{JSONPointer: "/word_count"}},
	})
	require.NoError(t, err)
	require.Len(t, args.Ops, 1)
	assert.Equal(t, "/word_count", args.Ops[0].Path)
}

func TestLocalPrefillerIgnoresChatter(t *testing.T) {
	args, err := NewLocalPrefiller().Prefill(context.Background(), &types.ToolRequest{Answer: "hello there"})
	require.NoError(t, err)
	assert.Empty(t, args.Ops)

	args, err = NewLocalPrefiller().Prefill(context.Background(), &types.ToolRequest{Answer: "   "})
	require.NoError(t, err)
	assert.Empty(t, args.Ops)
}

type fakeChatModel struct {
	arguments string
	err       error
	options   *model.Options
	messages  []*schema.Message
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.messages = input
	m.options = model.GetCommonOptions(nil, opts...)
	if m.err != nil {
		return nil, m.err
	}
	msg := &schema.Message{Role: schema.Assistant}
	if m.arguments != "" {
		msg.ToolCalls = []schema.ToolCall{{
			ID:       "call_1",
			Function: schema.FunctionCall{Name: updateBriefToolName, Arguments: m.arguments},
		}}
	}
	return msg, nil
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func (m *fakeChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func TestToolBasedPrefiller(t *testing.T) {
	cm := &fakeChatModel{arguments: `{"ops":[{"op":"replace","path":"/topic","value":"Rust ownership"}]}`}
	p, err := NewToolBasedPrefiller(cm)
	require.NoError(t, err)

	args, err := p.Prefill(context.Background(), &types.ToolRequest{Answer: "I need a post about Rust ownership"})
	require.NoError(t, err)
	require.Len(t, args.Ops, 1)
	assert.Equal(t, "Rust ownership", args.Ops[0].Value)

	require.Len(t, cm.messages, 2)
	assert.Equal(t, schema.System, cm.messages[0].Role)
	assert.Contains(t, cm.messages[1].Content, "I need a post about Rust ownership")
	require.Len(t, cm.options.Tools, 1)
	assert.Equal(t, updateBriefToolName, cm.options.Tools[0].Name)
}

func TestToolBasedPrefillerRejectsForeignPaths(t *testing.T) {
	p, err := NewToolBasedPrefiller(&fakeChatModel{arguments: `{"ops":[{"op":"replace","path":"/amount","value":"1"}]}`})
	require.NoError(t, err)

	_, err = p.Prefill(context.Background(), &types.ToolRequest{Answer: "charge me 1 dollar"})
	assert.ErrorContains(t, err, "failed validation")
}

func TestToolBasedPrefillerWithoutToolCall(t *testing.T) {
	p, err := NewToolBasedPrefiller(&fakeChatModel{})
	require.NoError(t, err)

	_, err = p.Prefill(context.Background(), &types.ToolRequest{Answer: "hi"})
	assert.ErrorContains(t, err, "no update_brief call")
}

func TestFailbackPrefiller(t *testing.T) {
	broken, err := NewToolBasedPrefiller(&fakeChatModel{err: errors.New("rate limited")})
	require.NoError(t, err)

	p := NewFailbackPrefiller(broken, NewLocalPrefiller())
	args, err := p.Prefill(context.Background(), &types.ToolRequest{Answer: "topic: Go"})
	require.NoError(t, err)
	require.Len(t, args.Ops, 1)
	assert.Equal(t, "/topic", args.Ops[0].Path)

	_, err = NewFailbackPrefiller(broken).Prefill(context.Background(), &types.ToolRequest{Answer: "topic: Go"})
	assert.ErrorContains(t, err, "rate limited")
}
