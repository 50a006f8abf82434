package chatmodel

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xdb/pkg/flake"
)

// ErrInvalidChatContext is returned when the context does not carry a ChatContext.
var ErrInvalidChatContext = errors.New("invalid chat context")

// ChatContext is the per-session context of the agent.
// A session is one CLI invocation, or one REPL session in chat mode.
type ChatContext interface {
	GetChatID() string
	// RunID returns the ID of the current run in the session
	RunID() string
	// NextRun starts a new run in the session and returns its ID
	NextRun() string
}

type chatContext struct {
	chatID string
	runID  atomic.Value
}

// NewChatContext returns a new ChatContext,
// if chatID is empty, a new ID is generated.
func NewChatContext(chatID string) ChatContext {
	c := &chatContext{
		chatID: values.StringsCoalesce(chatID, NewChatID()),
	}
	c.runID.Store(NewChatID())
	return c
}

func (c *chatContext) GetChatID() string {
	return c.chatID
}

func (c *chatContext) RunID() string {
	return c.runID.Load().(string)
}

func (c *chatContext) NextRun() string {
	id := NewChatID()
	c.runID.Store(id)
	return id
}

type contextKey int

const (
	keyContext contextKey = iota
)

// WithChatContext returns a new context with ChatContext value
func WithChatContext(ctx context.Context, chatCtx ChatContext) context.Context {
	return context.WithValue(ctx, keyContext, chatCtx)
}

// NewFromContext returns a context with ChatContext,
// the existing ChatContext is preserved.
func NewFromContext(ctx context.Context) context.Context {
	if GetChatContext(ctx) != nil {
		return ctx
	}
	return WithChatContext(ctx, NewChatContext(""))
}

// GetChatContext retrieves the ChatContext from the context
func GetChatContext(ctx context.Context) ChatContext {
	if v, ok := ctx.Value(keyContext).(ChatContext); ok {
		return v
	}
	return nil
}

// GetChatID retrieves the chat ID from the provided context.
// If the context does not contain a ChatContext, it returns an empty string.
func GetChatID(ctx context.Context) string {
	if v := GetChatContext(ctx); v != nil {
		return v.GetChatID()
	}
	return ""
}

// GetChatAndRunID returns chat and run IDs from the context
func GetChatAndRunID(ctx context.Context) (chatID, runID string, err error) {
	v := GetChatContext(ctx)
	if v == nil {
		return "", "", errors.WithStack(ErrInvalidChatContext)
	}
	return v.GetChatID(), v.RunID(), nil
}

// NewChatID generates a new chat ID using the flake ID generator.
func NewChatID() string {
	return strconv.FormatUint(flake.DefaultIDGenerator.NextID(), 10)
}
