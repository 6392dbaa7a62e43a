package prefill

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbxark/briefpay/types"
)

var defaultAliases = map[string]string{
	"name":            types.FieldClientName,
	"client":          types.FieldClientName,
	"client name":     types.FieldClientName,
	"email":           types.FieldClientEmail,
	"e mail":          types.FieldClientEmail,
	"client email":    types.FieldClientEmail,
	"brief":           types.FieldBriefText,
	"brief text":      types.FieldBriefText,
	"details":         types.FieldBriefText,
	"description":     types.FieldBriefText,
	"topic":           types.FieldTopic,
	"subject":         types.FieldTopic,
	"tone":            types.FieldTone,
	"style":           types.FieldTone,
	"audience":        types.FieldTargetAudience,
	"target audience": types.FieldTargetAudience,
	"readers":         types.FieldTargetAudience,
	"words":           types.FieldWordCount,
	"word count":      types.FieldWordCount,
	"wordcount":       types.FieldWordCount,
	"length":          types.FieldWordCount,
}

// LocalPrefiller understands "field: value" lines. A bare answer fills the field
// that was asked for last.
type LocalPrefiller struct {
	Aliases map[string]string
}

func NewLocalPrefiller() *LocalPrefiller {
	return &LocalPrefiller{Aliases: defaultAliases}
}

func (p *LocalPrefiller) Prefill(ctx context.Context, req *types.ToolRequest) (*UpdateArgs, error) {
	answer := strings.TrimSpace(req.Answer)
	if answer == "" {
		return &UpdateArgs{}, nil
	}

	var ops []Operation
	for _, line := range strings.Split(answer, "\n") {
		key, value, ok := splitField(line)
		if !ok {
			continue
		}
		field, known := p.Aliases[normalizeKey(key)]
		if !known {
			continue
		}
		ops = append(ops, Operation{Op: OperationReplace, Path: "/" + field, Value: value})
	}
	if len(ops) > 0 {
		return &UpdateArgs{Ops: ops}, nil
	}

	if field := askedField(req); field != "" {
		return &UpdateArgs{Ops: []Operation{{Op: OperationReplace, Path: "/" + field, Value: answer}}}, nil
	}
	return &UpdateArgs{}, nil
}

func splitField(line string) (string, string, bool) {
	idx := strings.IndexAny(line, ":=")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:idx])
	value := strings.TrimSpace(line[idx+1:])
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	return strings.Join(strings.Fields(key), " ")
}

func askedField(req *types.ToolRequest) string {
	if len(req.MissingFields) > 0 {
		return req.MissingFields[0].Field()
	}
	if len(req.ValidationErrors) > 0 {
		return req.ValidationErrors[0].Field()
	}
	return ""
}

// FailbackPrefiller returns the first successful result of its prefillers.
type FailbackPrefiller struct {
	prefillers []Prefiller
}

func NewFailbackPrefiller(prefillers ...Prefiller) *FailbackPrefiller {
	return &FailbackPrefiller{prefillers: prefillers}
}

func (p *FailbackPrefiller) Prefill(ctx context.Context, req *types.ToolRequest) (*UpdateArgs, error) {
	var lastErr error
	for _, prefiller := range p.prefillers {
		args, err := prefiller.Prefill(ctx, req)
		if err == nil {
			return args, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		return &UpdateArgs{}, nil
	}
	return nil, fmt.Errorf("all prefillers failed: %w", lastErr)
}
