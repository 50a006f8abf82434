package chatmodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatContext_Basics(t *testing.T) {
	t.Parallel()
	c := NewChatContext("cid")
	require.NotNil(t, c)
	assert.Equal(t, "cid", c.GetChatID())

	run := c.RunID()
	assert.NotEmpty(t, run)

	next := c.NextRun()
	assert.NotEqual(t, run, next)
	assert.Equal(t, next, c.RunID())
}

func TestNewChatContext_DefaultIDs(t *testing.T) {
	t.Parallel()
	c1 := NewChatContext("")
	c2 := NewChatContext("")
	assert.NotEmpty(t, c1.GetChatID())
	assert.NotEqual(t, c1.GetChatID(), c2.GetChatID())
}

func TestContextPlumbing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Nil(t, GetChatContext(ctx))
	assert.Empty(t, GetChatID(ctx))
	_, _, err := GetChatAndRunID(ctx)
	assert.ErrorIs(t, err, ErrInvalidChatContext)

	c := NewChatContext("x")
	ctx = WithChatContext(ctx, c)
	assert.Equal(t, c, GetChatContext(ctx))
	assert.Equal(t, "x", GetChatID(ctx))

	chat, run, err := GetChatAndRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x", chat)
	assert.Equal(t, c.RunID(), run)

	// NewFromContext preserves context
	assert.Equal(t, c, GetChatContext(NewFromContext(ctx)))
	assert.NotNil(t, GetChatContext(NewFromContext(context.Background())))
}
