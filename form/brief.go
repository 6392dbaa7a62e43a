package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/eino-contrib/jsonschema"
	"github.com/tbxark/briefpay/types"
)

var _ FormSpec[*types.FormValues] = (*BriefFormSpec)(nil)

var wordCountMessage = fmt.Sprintf("Word count must be between %d and %d.", types.MinWordCount, types.MaxWordCount)

type requiredField struct {
	id      string
	display string
	value   func(v *types.FormValues) string
}

// Order matters: the first blank field receives focus.
var requiredFields = []requiredField{
	{types.FieldClientName, "Client name", func(v *types.FormValues) string { return v.ClientName }},
	{types.FieldClientEmail, "Client email", func(v *types.FormValues) string { return v.ClientEmail }},
	{types.FieldBriefText, "Brief text", func(v *types.FormValues) string { return v.BriefText }},
	{types.FieldTopic, "Topic", func(v *types.FormValues) string { return v.Topic }},
}

type BriefFormSpec struct{}

func (BriefFormSpec) JsonSchema() (string, error) {
	schema := jsonschema.Reflect(&types.FormValues{})
	schema.Title = "Content brief"
	schema.Description = "A request for written content: who the client is, what to write, and how long it should be."
	schemaBytes, err := sonic.Marshal(schema)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return string(schemaBytes), nil
}

func (BriefFormSpec) MissingFacts(current *types.FormValues) []types.FieldInfo {
	var missing []types.FieldInfo
	for _, f := range requiredFields {
		if strings.TrimSpace(f.value(current)) != "" {
			continue
		}
		missing = append(missing, types.FieldInfo{
			JSONPointer: "/" + f.id,
			DisplayName: f.display,
			Description: blankFieldMessage(f.id),
			Required:    true,
		})
	}
	return missing
}

func (BriefFormSpec) ValidateFacts(current *types.FormValues) []types.FieldInfo {
	if _, ok := parseWordCount(current.WordCount); ok {
		return nil
	}
	return []types.FieldInfo{{
		JSONPointer: "/" + types.FieldWordCount,
		DisplayName: "Word count",
		Description: wordCountMessage,
		Required:    true,
	}}
}

func (BriefFormSpec) Summary(current *types.FormValues) string {
	return fmt.Sprintf("Brief summary:\nClient: %s <%s>\nTopic: %s\nTone: %s\nAudience: %s\nWords: %s\nBrief: %s",
		current.ClientName, current.ClientEmail, current.Topic, current.Tone,
		current.TargetAudience, current.WordCount, current.BriefText)
}

// Validate runs every check and reports the first offending field for focus.
func (s BriefFormSpec) Validate(values *types.FormValues) Result {
	issues := append(s.MissingFacts(values), s.ValidateFacts(values)...)
	if len(issues) == 0 {
		return Result{Valid: true}
	}
	return Result{
		Valid:   false,
		Issues:  issues,
		Message: issues[0].Description,
		Focus:   issues[0].Field(),
	}
}

// Build validates values and converts them into the request sent to the backend.
func (s BriefFormSpec) Build(values *types.FormValues) (*types.BriefRequest, error) {
	if err := s.Validate(values).Err(); err != nil {
		return nil, err
	}
	wordCount, _ := parseWordCount(values.WordCount)
	return &types.BriefRequest{
		ClientName:     strings.TrimSpace(values.ClientName),
		ClientEmail:    strings.TrimSpace(values.ClientEmail),
		BriefText:      strings.TrimSpace(values.BriefText),
		Topic:          strings.TrimSpace(values.Topic),
		Tone:           strings.TrimSpace(values.Tone),
		TargetAudience: strings.TrimSpace(values.TargetAudience),
		WordCount:      wordCount,
	}, nil
}

func parseWordCount(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, n >= types.MinWordCount && n <= types.MaxWordCount
}

func blankFieldMessage(field string) string {
	return fmt.Sprintf("Please fill in the %s field.", strings.ReplaceAll(field, "_", " "))
}
