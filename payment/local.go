package payment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tbxark/briefpay/types"
)

var _ Adapter = (*LocalAdapter)(nil)

var (
	ErrNoHandle       = errors.New("payment client is not initialized")
	ErrNoClientSecret = errors.New("client secret is required")
	ErrNotMounted     = errors.New("payment widget is not mounted")
)

type ConfirmFunc func(ctx context.Context, session *Session, returnURL string) (ConfirmResult, error)

// RedirectOnConfirm always succeeds by redirecting to the return URL.
func RedirectOnConfirm(ctx context.Context, session *Session, returnURL string) (ConfirmResult, error) {
	return ConfirmResult{Redirected: true, RedirectURL: returnURL}, nil
}

// DeclineOnConfirm returns a confirm func that fails inline with the given error.
func DeclineOnConfirm(kind ErrorKind, message string) ConfirmFunc {
	return func(ctx context.Context, session *Session, returnURL string) (ConfirmResult, error) {
		return ConfirmResult{Error: &ErrorInfo{Kind: kind, Message: message}}, nil
	}
}

// LocalAdapter is an in-process payment provider. It never moves money.
type LocalAdapter struct {
	Confirm ConfirmFunc

	mu       sync.Mutex
	sessions []*Session
	mounted  map[string]string
}

func NewLocalAdapter(confirm ConfirmFunc) *LocalAdapter {
	if confirm == nil {
		confirm = RedirectOnConfirm
	}
	return &LocalAdapter{
		Confirm: confirm,
		mounted: make(map[string]string),
	}
}

func (a *LocalAdapter) Initialize(publicKey string) (*Handle, error) {
	publicKey = strings.TrimSpace(publicKey)
	if publicKey == "" {
		return nil, types.NewConfigurationError("Payment system is not configured. Please contact support.", errors.New("publishable key is empty"))
	}
	handle := &Handle{ID: uuid.NewString(), PublicKey: publicKey}
	slog.Debug("Payment client initialized", "handle", handle.ID)
	return handle, nil
}

func (a *LocalAdapter) CreateSession(handle *Handle, clientSecret string, appearance Appearance) (*Session, error) {
	if handle == nil {
		return nil, ErrNoHandle
	}
	if clientSecret == "" {
		return nil, ErrNoClientSecret
	}
	session := &Session{
		ID:           uuid.NewString(),
		HandleID:     handle.ID,
		ClientSecret: clientSecret,
		Appearance:   appearance,
	}
	a.mu.Lock()
	a.sessions = append(a.sessions, session)
	a.mu.Unlock()
	return session, nil
}

func (a *LocalAdapter) MountWidget(session *Session, container string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	session.Container = container
	a.mounted[session.ID] = container
	return nil
}

func (a *LocalAdapter) ConfirmPayment(ctx context.Context, session *Session, returnURL string) (ConfirmResult, error) {
	a.mu.Lock()
	_, ok := a.mounted[session.ID]
	a.mu.Unlock()
	if !ok {
		return ConfirmResult{}, ErrNotMounted
	}
	if err := ctx.Err(); err != nil {
		return ConfirmResult{}, err
	}
	return a.Confirm(ctx, session, returnURL)
}

// Sessions returns every session created so far, oldest first.
func (a *LocalAdapter) Sessions() []*Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*Session(nil), a.sessions...)
}

func (a *LocalAdapter) Mounted(sessionID string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	container, ok := a.mounted[sessionID]
	return container, ok
}
