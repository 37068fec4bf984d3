// Package testutil holds shared helpers for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations
// applied. It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedUser inserts a minimal user so task rows have an owner to
// reference. The account has no password (legacy state) unless hash is
// given.
func SeedUser(t *testing.T, s *store.SQLiteStore, name, hash string) model.User {
	t.Helper()

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	u := model.User{
		Name:               name,
		EmailAddress:       name + "@example.com",
		SummaryPref:        model.SummaryPrefNone,
		TriggerPref:        model.TriggerPrefNone,
		ClosedDisplayCount: 10,
		PasswordHash:       hash,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seeding user %s: %v", name, err)
	}
	return u
}
