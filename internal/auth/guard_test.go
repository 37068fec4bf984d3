package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/store"
)

type fakeTaskGetter struct {
	tasks map[int64]model.Task
}

func (f *fakeTaskGetter) Get(_ context.Context, id int64) (model.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return model.Task{}, store.ErrNotFound
	}
	return t, nil
}

func TestGuard_AuthorizeUserAction(t *testing.T) {
	g := NewGuard(&fakeTaskGetter{})

	assert.True(t, g.AuthorizeUserAction("alice", "alice").Allowed)

	d := g.AuthorizeUserAction("alice", "bob")
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyNotOwner, d.Reason)

	d = g.AuthorizeUserAction("", "bob")
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyNotAuthenticated, d.Reason)
}

func TestGuard_AuthorizeTaskAction(t *testing.T) {
	g := NewGuard(&fakeTaskGetter{tasks: map[int64]model.Task{
		7: {ID: 7, Owner: "alice"},
	}})
	ctx := context.Background()

	d, err := g.AuthorizeTaskAction(ctx, "alice", 7)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = g.AuthorizeTaskAction(ctx, "bob", 7)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyNotOwner, d.Reason)

	d, err = g.AuthorizeTaskAction(ctx, "", 7)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyNotAuthenticated, d.Reason)

	_, err = g.AuthorizeTaskAction(ctx, "alice", 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
