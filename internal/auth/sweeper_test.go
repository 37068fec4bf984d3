package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/tests/testutil"
)

func TestSweeper_RemovesExpiredSessionsOnStart(t *testing.T) {
	st := testutil.NewTestStore(t)
	testutil.SeedUser(t, st, "alice", "unused")

	now := time.Now().UTC()
	require.NoError(t, st.CreateSession(context.Background(), model.Session{
		UserName:  "alice",
		TokenHash: "stale",
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}))

	sessions := NewSessions(st, time.Hour, nil)
	sweeper := NewSweeper(sessions, time.Hour)
	sweeper.Start()
	defer sweeper.Stop()

	assert.Eventually(t, func() bool {
		_, err := st.GetSessionByTokenHash(context.Background(), "stale")
		return err != nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSweeper_StartAndStopAreIdempotent(t *testing.T) {
	st := testutil.NewTestStore(t)
	sweeper := NewSweeper(NewSessions(st, time.Hour, nil), time.Hour)

	sweeper.Start()
	sweeper.Start()
	sweeper.Stop()
	sweeper.Stop()
}
