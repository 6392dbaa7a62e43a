package intake

import (
	"context"
	"sync"

	"github.com/tbxark/briefpay/types"
)

// Draft is the brief being collected in one intake conversation.
type Draft struct {
	Values         types.FormValues `json:"values"`
	LatestQuestion string           `json:"latest_question,omitempty"`
	Ready          bool             `json:"ready"`
	Cancelled      bool             `json:"cancelled"`
}

// Store provides read/write access to drafts using context for routing.
type Store interface {
	Init(ctx context.Context) *Draft
	Read(ctx context.Context) (*Draft, error)
	Write(ctx context.Context, draft *Draft) error
	Remove(ctx context.Context) error
}

type sessionKeyContext struct{}

const defaultSessionKey = "default"

// WithSessionKey sets the routing key for draft storage in the context.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContext{}, key)
}

func SessionKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(sessionKeyContext{}).(string)
	return key, ok
}

func sessionKeyOrDefault(ctx context.Context) string {
	if key, ok := SessionKeyFromContext(ctx); ok && key != "" {
		return key
	}
	return defaultSessionKey
}

type MemoryStore struct {
	mu         sync.RWMutex
	drafts     map[string]*Draft
	customInit func(ctx context.Context) types.FormValues
}

func NewMemoryStore(customInit func(ctx context.Context) types.FormValues) *MemoryStore {
	return &MemoryStore{
		drafts:     make(map[string]*Draft),
		customInit: customInit,
	}
}

func (m *MemoryStore) Init(ctx context.Context) *Draft {
	if m.customInit != nil {
		return &Draft{Values: m.customInit(ctx)}
	}
	return &Draft{}
}

// Read returns a copy of the stored draft, or a fresh one.
func (m *MemoryStore) Read(ctx context.Context) (*Draft, error) {
	m.mu.RLock()
	draft, ok := m.drafts[sessionKeyOrDefault(ctx)]
	m.mu.RUnlock()
	if !ok {
		return m.Init(ctx), nil
	}
	clone := *draft
	return &clone, nil
}

func (m *MemoryStore) Write(ctx context.Context, draft *Draft) error {
	clone := *draft
	m.mu.Lock()
	m.drafts[sessionKeyOrDefault(ctx)] = &clone
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context) error {
	m.mu.Lock()
	delete(m.drafts, sessionKeyOrDefault(ctx))
	m.mu.Unlock()
	return nil
}
