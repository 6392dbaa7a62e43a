package prefill

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/briefpay/types"
)

const (
	updateBriefToolName        = "update_brief"
	updateBriefToolDescription = "Generate RFC6902 JSON Patch operations that fill brief form fields from the user's message. Only include information the user stated explicitly."
)

// DefaultPrefillSystemPrompt may contain a single "%s" placeholder for the tool name.
const DefaultPrefillSystemPrompt = `You help a client fill in a content brief for a writing service.
Read the latest dialogue and call %s with RFC6902 operations for the brief form.
Rules: only use information the user stated; use replace for every field; keep word_count as digits only; only use the allowed paths; return no operations when there is nothing to extract.`

type ToolBasedPrefiller struct {
	chatModel    model.ToolCallingChatModel
	toolInfo     *schema.ToolInfo
	systemPrompt string
	allowed      map[string]bool
}

type ToolOption func(*ToolBasedPrefiller)

func WithSystemPrompt(prompt string) ToolOption {
	return func(p *ToolBasedPrefiller) {
		p.systemPrompt = prompt
	}
}

func NewToolBasedPrefiller(chatModel model.ToolCallingChatModel, opts ...ToolOption) (*ToolBasedPrefiller, error) {
	toolInfo, err := utils.GoStruct2ToolInfo[UpdateArgs](updateBriefToolName, updateBriefToolDescription)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}
	p := &ToolBasedPrefiller{
		chatModel:    chatModel,
		toolInfo:     toolInfo,
		systemPrompt: fmt.Sprintf(DefaultPrefillSystemPrompt, updateBriefToolName),
		allowed:      AllowedSet(AllowedPaths[types.FormValues]()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

func (p *ToolBasedPrefiller) Prefill(ctx context.Context, req *types.ToolRequest) (*UpdateArgs, error) {
	message, err := types.FormatToolRequest(req)
	if err != nil {
		return nil, fmt.Errorf("build prefill prompt: %w", err)
	}
	messages := []*schema.Message{
		schema.SystemMessage(p.systemPrompt),
		schema.UserMessage(message),
	}

	response, err := p.chatModel.Generate(ctx, messages,
		model.WithTools([]*schema.ToolInfo{p.toolInfo}),
		model.WithToolChoice(schema.ToolChoiceForced, p.toolInfo.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	if response == nil || len(response.ToolCalls) == 0 {
		return nil, fmt.Errorf("no %s call found in model response", updateBriefToolName)
	}

	var args UpdateArgs
	if err := sonic.UnmarshalString(response.ToolCalls[0].Function.Arguments, &args); err != nil {
		return nil, fmt.Errorf("parse %s arguments failed: %w", updateBriefToolName, err)
	}
	if err := ValidateOperations(args.Ops, p.allowed); err != nil {
		return nil, fmt.Errorf("generated operations failed validation: %w", err)
	}
	return &args, nil
}
