package intake

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/briefpay/form"
	"github.com/tbxark/briefpay/prefill"
	"github.com/tbxark/briefpay/types"
)

var _ adk.Agent = (*Agent)(nil)

// Agent collects a brief through conversation, one assistant message per turn.
type Agent struct {
	name        string
	description string
	schema      string
	spec        form.BriefFormSpec
	store       Store
	prefiller   prefill.Prefiller
	recognizer  Recognizer
	questioner  Questioner
	allowed     map[string]bool
}

type Option func(*Agent)

func WithRecognizer(r Recognizer) Option {
	return func(a *Agent) {
		if r != nil {
			a.recognizer = r
		}
	}
}

func WithQuestioner(q Questioner) Option {
	return func(a *Agent) {
		if q != nil {
			a.questioner = q
		}
	}
}

func NewAgent(name, description string, store Store, prefiller prefill.Prefiller, opts ...Option) (*Agent, error) {
	spec := form.BriefFormSpec{}
	jsonSchema, err := spec.JsonSchema()
	if err != nil {
		return nil, err
	}
	a := &Agent{
		name:        name,
		description: description,
		schema:      jsonSchema,
		spec:        spec,
		store:       store,
		prefiller:   prefiller,
		recognizer:  NewLocalIntentRecognizer(),
		questioner:  &LocalQuestioner{Spec: spec},
		allowed:     prefill.AllowedSet(prefill.AllowedPaths[types.FormValues]()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a, nil
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			if e := recover(); e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if input == nil || len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("no messages in input"),
			})
			return
		}
		reply, err := a.Turn(ctx, input.Messages[len(input.Messages)-1].Content)
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("intake turn failed: %w", err),
			})
			return
		}
		gen.Send(&adk.AgentEvent{
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message: &schema.Message{
						Role:    schema.Assistant,
						Content: reply,
					},
					Role: schema.Assistant,
				},
			},
		})
	}()
	return iter
}

// Turn applies one user message to the stored draft and returns the assistant reply.
func (a *Agent) Turn(ctx context.Context, text string) (string, error) {
	draft, err := a.store.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("read draft: %w", err)
	}
	req := a.toolRequest(draft, text)

	intent, err := a.recognizer.Recognize(ctx, req)
	if err != nil {
		slog.Debug("Intent recognition failed, treating input as edit", "error", err)
		intent = Edit
	}
	slog.Debug("Recognized intent", "intent", intent)

	var reply string
	switch intent {
	case Cancel:
		draft.Cancelled = true
		draft.Ready = false
		reply = "Brief cancelled."
	case Submit:
		result := a.spec.Validate(&draft.Values)
		if result.Valid {
			draft.Ready = true
			reply = "Submitting your brief..."
			break
		}
		reply, err = a.questioner.Ask(ctx, a.toolRequest(draft, ""))
		if err != nil {
			return "", fmt.Errorf("ask question: %w", err)
		}
	default:
		draft.Ready = false
		args, pErr := a.prefiller.Prefill(ctx, req)
		if pErr == nil && args != nil {
			var values types.FormValues
			values, pErr = prefill.ApplyRFC6902(draft.Values, args.Ops, a.allowed)
			if pErr == nil {
				draft.Values = values
			}
		}
		if pErr != nil {
			slog.Warn("Could not prefill brief", "error", pErr)
		}
		reply, err = a.questioner.Ask(ctx, a.toolRequest(draft, ""))
		if err != nil {
			return "", fmt.Errorf("ask question: %w", err)
		}
		if pErr != nil {
			reply = "Sorry, I could not use that. " + reply
		}
	}

	draft.LatestQuestion = reply
	if err := a.store.Write(ctx, draft); err != nil {
		return "", fmt.Errorf("write draft: %w", err)
	}
	return reply, nil
}

// Draft returns the current draft of the session routed by ctx.
func (a *Agent) Draft(ctx context.Context) (*Draft, error) {
	return a.store.Read(ctx)
}

// Reopen clears the ready flag after a failed submission so the user can keep editing.
func (a *Agent) Reopen(ctx context.Context, reason string) error {
	draft, err := a.store.Read(ctx)
	if err != nil {
		return err
	}
	draft.Ready = false
	draft.LatestQuestion = reason
	return a.store.Write(ctx, draft)
}

func (a *Agent) toolRequest(draft *Draft, answer string) *types.ToolRequest {
	return &types.ToolRequest{
		Values:           draft.Values,
		StateSchema:      a.schema,
		Question:         draft.LatestQuestion,
		Answer:           answer,
		MissingFields:    a.spec.MissingFacts(&draft.Values),
		ValidationErrors: a.spec.ValidateFacts(&draft.Values),
	}
}
