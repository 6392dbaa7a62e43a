package flow

type State string

const (
	StateIdle              State = "idle"
	StateSubmittingBrief   State = "submitting_brief"
	StateAwaitingSecret    State = "awaiting_secret"
	StateMountingWidget    State = "mounting_widget"
	StateConfirmingPayment State = "confirming_payment"
	StateFailed            State = "failed"
	StateRedirecting       State = "redirecting"
)

// Terminal reports whether the page is navigating away.
func (s State) Terminal() bool {
	return s == StateRedirecting
}

type TransitionHook func(from, to State)
