package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/cloudwego/eino/callbacks"
	"github.com/tbxark/briefpay/form"
	"github.com/tbxark/briefpay/payment"
	"github.com/tbxark/briefpay/types"
	"github.com/tbxark/briefpay/ui"
)

const (
	notInitializedMessage    = "Payment system not initialized. Please refresh the page."
	notConfiguredMessage     = "Payment system is not configured. Please contact support."
	missingSecretMessage     = "Could not retrieve payment details. Please try again."
	unexpectedPaymentMessage = "An unexpected error occurred."
	genericMessage           = "An error occurred. Please try again."

	successPath = "/payment-success"
)

var (
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrSubmissionDisabled   = errors.New("submission is disabled")
)

type BriefSubmitter interface {
	SubmitBrief(ctx context.Context, brief *types.BriefRequest) (*types.BriefResponse, error)
}

type Config struct {
	// Origin is the scheme and host the payment provider redirects back to.
	Origin     string
	Container  string
	Appearance payment.Appearance
}

type Option func(*SubmissionFlow)

func WithTransitionHook(hook TransitionHook) Option {
	return func(f *SubmissionFlow) {
		if hook != nil {
			f.hooks = append(f.hooks, hook)
		}
	}
}

// SubmissionFlow drives one page's brief submission and payment confirmation.
type SubmissionFlow struct {
	cfg      Config
	spec     form.BriefFormSpec
	briefs   BriefSubmitter
	payments payment.Adapter
	reporter *ui.ErrorReporter
	loading  *ui.LoadingIndicator
	hooks    []TransitionHook

	mu      sync.Mutex
	state   State
	handle  *payment.Handle
	session *payment.Session
	briefID string
}

func New(cfg Config, briefs BriefSubmitter, payments payment.Adapter, page ui.Page, opts ...Option) *SubmissionFlow {
	if cfg.Container == "" {
		cfg.Container = "#payment-element"
	}
	if cfg.Appearance.Theme == "" {
		cfg.Appearance = payment.DefaultAppearance()
	}
	cfg.Origin = strings.TrimRight(cfg.Origin, "/")
	f := &SubmissionFlow{
		cfg:      cfg,
		briefs:   briefs,
		payments: payments,
		reporter: ui.NewErrorReporter(page),
		loading:  ui.NewLoadingIndicator(page),
		state:    StateIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Initialize binds the flow to a payment client. A failure disables submission for good.
func (f *SubmissionFlow) Initialize(publicKey string) error {
	handle, err := f.payments.Initialize(publicKey)
	if err != nil {
		if types.KindOf(err) != types.KindConfiguration {
			err = types.NewConfigurationError(notConfiguredMessage, err)
		}
		slog.Error("Payment client initialization failed", "error", err)
		f.reporter.ShowError(types.MessageOf(err, notConfiguredMessage))
		f.loading.Disable()
		return err
	}
	f.mu.Lock()
	f.handle = handle
	f.mu.Unlock()
	return nil
}

// Submit runs one attempt. A nil error means the page is redirecting to the provider.
// Nil values are treated as an empty form.
func (f *SubmissionFlow) Submit(ctx context.Context, values *types.FormValues) error {
	if values == nil {
		values = &types.FormValues{}
	}
	ctx = callbacks.EnsureRunInfo(ctx, "SubmissionFlow", "Flow")
	ctx = callbacks.OnStart(ctx, map[string]any{
		"state": string(f.State()),
		"topic": values.Topic,
	})

	err := f.submit(ctx, values)
	if err != nil {
		callbacks.OnError(ctx, err)
		return err
	}

	callbacks.OnEnd(ctx, map[string]any{
		"state":    string(f.State()),
		"brief_id": f.BriefID(),
	})
	return nil
}

func (f *SubmissionFlow) submit(ctx context.Context, values *types.FormValues) error {
	if f.loading.Disabled() {
		return ErrSubmissionDisabled
	}
	handle := f.Handle()
	if handle == nil {
		err := types.NewConfigurationError(notInitializedMessage, payment.ErrNoHandle)
		f.reporter.ShowError(err.Message)
		return err
	}
	if !f.loading.TryBegin() {
		return ErrSubmissionInProgress
	}

	result := f.spec.Validate(values)
	if !result.Valid {
		slog.Debug("Brief form invalid", "focus", result.Focus, "issues", len(result.Issues))
		f.reporter.ShowError(result.Message)
		f.reporter.FocusField(result.Focus)
		f.loading.SetLoading(false)
		return result.Err()
	}
	brief, err := f.spec.Build(values)
	if err != nil {
		return f.fail(err)
	}

	f.transition(StateSubmittingBrief)
	resp, err := f.briefs.SubmitBrief(ctx, brief)
	if err != nil {
		return f.fail(err)
	}

	f.transition(StateAwaitingSecret)
	if resp == nil || resp.ClientSecret == "" {
		return f.fail(types.NewPaymentDataError(missingSecretMessage, errors.New("response has no payment_intent_client_secret")))
	}
	f.mu.Lock()
	f.briefID = resp.BriefID
	f.mu.Unlock()
	slog.Info("Brief submitted", "brief_id", resp.BriefID)

	f.transition(StateMountingWidget)
	session, err := f.payments.CreateSession(handle, resp.ClientSecret, f.cfg.Appearance)
	if err != nil {
		return f.fail(unhandled(fmt.Errorf("create payment session: %w", err)))
	}
	if err := f.payments.MountWidget(session, f.cfg.Container); err != nil {
		return f.fail(unhandled(fmt.Errorf("mount payment widget: %w", err)))
	}
	f.mu.Lock()
	f.session = session
	f.mu.Unlock()

	f.transition(StateConfirmingPayment)
	returnURL := f.ReturnURL(resp.BriefID)
	confirmation, err := f.payments.ConfirmPayment(ctx, session, returnURL)
	if err != nil {
		return f.fail(unhandled(err))
	}
	if confirmation.Error != nil {
		message := unexpectedPaymentMessage
		if confirmation.Error.UserCorrectable() && confirmation.Error.Message != "" {
			message = confirmation.Error.Message
		}
		return f.fail(types.NewPaymentConfirmationError(message,
			fmt.Errorf("%s: %s", confirmation.Error.Kind, confirmation.Error.Message)))
	}

	f.transition(StateRedirecting)
	slog.Info("Payment confirmed, redirecting", "brief_id", resp.BriefID, "url", confirmation.RedirectURL)
	return nil
}

// fail surfaces exactly one message and makes the form resubmittable.
func (f *SubmissionFlow) fail(err error) error {
	f.transition(StateFailed)
	slog.Warn("Brief submission failed", "kind", types.KindOf(err), "error", err)
	f.reporter.ShowError(types.MessageOf(err, genericMessage))
	f.loading.SetLoading(false)
	f.transition(StateIdle)
	return err
}

func unhandled(err error) error {
	var e *types.Error
	if errors.As(err, &e) {
		return err
	}
	message := err.Error()
	if inner := errors.Unwrap(err); inner != nil {
		message = inner.Error()
	}
	return types.NewUnhandledError(message, err)
}

func (f *SubmissionFlow) transition(to State) {
	f.mu.Lock()
	from := f.state
	f.state = to
	hooks := f.hooks
	f.mu.Unlock()

	slog.Debug("Submission state changed", "from", from, "to", to)
	for _, hook := range hooks {
		hook(from, to)
	}
}

// ReturnURL is where the provider sends the browser after confirming the payment.
func (f *SubmissionFlow) ReturnURL(briefID string) string {
	q := url.Values{}
	q.Set("brief_id", briefID)
	return f.cfg.Origin + successPath + "?" + q.Encode()
}

func (f *SubmissionFlow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// UIState is Submitting while the submit control is busy.
func (f *SubmissionFlow) UIState() types.UIState {
	return f.loading.State()
}

func (f *SubmissionFlow) Handle() *payment.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handle
}

// Session returns the widget session of the latest attempt that got that far.
func (f *SubmissionFlow) Session() *payment.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

func (f *SubmissionFlow) BriefID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.briefID
}
