package payment

import "context"

type ErrorKind string

const (
	ErrorKindCard       ErrorKind = "card_error"
	ErrorKindValidation ErrorKind = "validation_error"
	ErrorKindAPI        ErrorKind = "api_error"
)

type ErrorInfo struct {
	Kind    ErrorKind `json:"type"`
	Message string    `json:"message"`
}

// UserCorrectable reports whether the provider message is safe to show verbatim.
func (e *ErrorInfo) UserCorrectable() bool {
	return e != nil && (e.Kind == ErrorKindCard || e.Kind == ErrorKindValidation)
}

// ConfirmResult is either a redirect away from the page or an inline error.
type ConfirmResult struct {
	Redirected  bool
	RedirectURL string
	Error       *ErrorInfo
}

type Appearance struct {
	Theme     string            `json:"theme"`
	Variables map[string]string `json:"variables,omitempty"`
}

func DefaultAppearance() Appearance {
	return Appearance{
		Theme: "stripe",
		Variables: map[string]string{
			"colorPrimary": "#4a6cf7",
			"borderRadius": "4px",
		},
	}
}

// Handle is an initialized payment client bound to one publishable key.
type Handle struct {
	ID        string
	PublicKey string
}

// Session binds the payment widget to a single client secret for one attempt.
type Session struct {
	ID           string
	HandleID     string
	ClientSecret string
	Appearance   Appearance
	Container    string
}

type Adapter interface {
	Initialize(publicKey string) (*Handle, error)
	CreateSession(handle *Handle, clientSecret string, appearance Appearance) (*Session, error)
	MountWidget(session *Session, container string) error
	ConfirmPayment(ctx context.Context, session *Session, returnURL string) (ConfirmResult, error)
}
