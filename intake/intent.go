package intake

import (
	"context"
	"strings"

	"github.com/tbxark/briefpay/types"
)

type Intent string

const (
	Submit Intent = "submit"
	Cancel Intent = "cancel"
	Edit   Intent = "edit"
)

type Recognizer interface {
	Recognize(ctx context.Context, req *types.ToolRequest) (Intent, error)
}

type LocalIntentRecognizer struct {
	CancelKeywords []string
	SubmitKeywords []string
}

func NewLocalIntentRecognizer() *LocalIntentRecognizer {
	return &LocalIntentRecognizer{
		CancelKeywords: []string{"cancel", "quit", "exit", "stop", "abort"},
		SubmitKeywords: []string{"submit", "confirm", "pay", "done", "send", "submit and pay"},
	}
}

func (r *LocalIntentRecognizer) Recognize(ctx context.Context, req *types.ToolRequest) (Intent, error) {
	normalized := strings.ToLower(strings.TrimSpace(req.Answer))
	normalized = strings.TrimRight(normalized, ".!")
	for _, keyword := range r.CancelKeywords {
		if normalized == keyword {
			return Cancel, nil
		}
	}
	for _, keyword := range r.SubmitKeywords {
		if normalized == keyword {
			return Submit, nil
		}
	}
	return Edit, nil
}
