package intake

import (
	"context"
	"fmt"

	"github.com/tbxark/briefpay/form"
	"github.com/tbxark/briefpay/types"
)

type Questioner interface {
	Ask(ctx context.Context, req *types.ToolRequest) (string, error)
}

var fieldQuestions = map[string]string{
	types.FieldClientName:  "What name should we put on the brief?",
	types.FieldClientEmail: "Which email address should we contact you at?",
	types.FieldBriefText:   "What should the content cover?",
	types.FieldTopic:       "What is the main topic?",
	types.FieldWordCount:   fmt.Sprintf("How many words should it be (%d-%d)?", types.MinWordCount, types.MaxWordCount),
}

// LocalQuestioner asks for one field at a time, in form order.
type LocalQuestioner struct {
	Spec form.BriefFormSpec
}

func (q *LocalQuestioner) Ask(ctx context.Context, req *types.ToolRequest) (string, error) {
	if len(req.MissingFields) > 0 {
		field := req.MissingFields[0].Field()
		if question, ok := fieldQuestions[field]; ok {
			return question, nil
		}
		return req.MissingFields[0].Description, nil
	}
	if len(req.ValidationErrors) > 0 {
		issue := req.ValidationErrors[0]
		if req.Values.WordCount == "" {
			return fieldQuestions[issue.Field()], nil
		}
		return fmt.Sprintf("%s %s", issue.Description, fieldQuestions[issue.Field()]), nil
	}
	return fmt.Sprintf("%s\n\nType \"submit\" to pay and send the brief, or keep editing with \"field: value\".",
		q.Spec.Summary(&req.Values)), nil
}
