package types

import "log/slog"

type UIState string

const (
	UIIdle       UIState = "idle"
	UISubmitting UIState = "submitting"
)

// Field ids shared with the host page template.
const (
	FieldClientName     = "client_name"
	FieldClientEmail    = "client_email"
	FieldBriefText      = "brief_text"
	FieldTopic          = "topic"
	FieldTone           = "tone"
	FieldTargetAudience = "target_audience"
	FieldWordCount      = "word_count"
)

const (
	MinWordCount = 300
	MaxWordCount = 3000
)

type FieldInfo struct {
	JSONPointer string `json:"json_pointer"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// Field returns the page field id addressed by the pointer.
func (f FieldInfo) Field() string {
	if len(f.JSONPointer) > 0 && f.JSONPointer[0] == '/' {
		return f.JSONPointer[1:]
	}
	return f.JSONPointer
}

// FormValues holds the raw, untrimmed input of the brief form.
type FormValues struct {
	ClientName     string `json:"client_name" jsonschema:"description=Full name of the client"`
	ClientEmail    string `json:"client_email" jsonschema:"description=Contact email of the client"`
	BriefText      string `json:"brief_text" jsonschema:"description=What the content should cover"`
	Topic          string `json:"topic" jsonschema:"description=Main topic of the content"`
	Tone           string `json:"tone" jsonschema:"description=Writing tone, e.g. professional or casual"`
	TargetAudience string `json:"target_audience" jsonschema:"description=Who the content is written for"`
	WordCount      string `json:"word_count" jsonschema:"description=Requested length in words, between 300 and 3000"`
}

type BriefRequest struct {
	ClientName     string `json:"client_name"`
	ClientEmail    string `json:"client_email"`
	BriefText      string `json:"brief_text"`
	Topic          string `json:"topic"`
	Tone           string `json:"tone"`
	TargetAudience string `json:"target_audience"`
	WordCount      int    `json:"word_count"`
}

type BriefResponse struct {
	BriefID      string `json:"brief_id"`
	ClientSecret string `json:"payment_intent_client_secret"`
}

// LogValue keeps the client secret out of logs.
func (r BriefResponse) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("brief_id", r.BriefID),
		slog.Bool("has_client_secret", r.ClientSecret != ""),
	)
}
