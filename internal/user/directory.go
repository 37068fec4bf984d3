// Package user implements the user directory: account creation,
// preference updates, password management, deletion, and the
// inactive-account purge.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/taskcur/taskcur/internal/auth"
	"github.com/taskcur/taskcur/internal/model"
	"github.com/taskcur/taskcur/internal/store"
)

// ErrUserExists reports a signup with an already-taken user name.
var ErrUserExists = errors.New("user name already exists")

// CreateParams carries a signup form. Password is optional; an account
// created without one is a legacy account until a password is set.
type CreateParams struct {
	Name               string
	EmailAddress       string
	SummaryPref        string
	TriggerPref        string
	ClosedDisplayCount int
	Password           string
	PasswordConfirm    string
}

// UpdateParams carries a preference update. The user name itself is
// immutable.
type UpdateParams struct {
	EmailAddress       string
	SummaryPref        string
	TriggerPref        string
	ClosedDisplayCount int
}

// Directory owns all user records.
type Directory struct {
	store      store.Store
	logger     *log.Logger
	purgeAfter time.Duration
	now        func() time.Time
}

// NewDirectory creates a Directory. purgeAfter is how long an account
// with no tasks may sit untouched before PurgeInactive removes it.
func NewDirectory(s store.Store, purgeAfter time.Duration, logger *log.Logger) *Directory {
	if logger == nil {
		logger = log.Default()
	}
	if purgeAfter <= 0 {
		purgeAfter = 365 * 24 * time.Hour
	}
	return &Directory{
		store:      s,
		logger:     logger.With("component", "directory"),
		purgeAfter: purgeAfter,
		now:        time.Now,
	}
}

// Create validates and inserts a new account. The name is trimmed and
// spaces are stripped from the email list before validation, matching
// what the signup form promises.
func (d *Directory) Create(ctx context.Context, p CreateParams) (model.User, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.EmailAddress = strings.ReplaceAll(p.EmailAddress, " ", "")

	if err := model.ValidateUserName(p.Name); err != nil {
		return model.User{}, err
	}
	if err := model.ValidateEmailAddress(p.EmailAddress); err != nil {
		return model.User{}, err
	}
	if err := model.ValidateSummaryPref(p.SummaryPref); err != nil {
		return model.User{}, err
	}
	if err := model.ValidateTriggerPref(p.TriggerPref); err != nil {
		return model.User{}, err
	}
	if err := model.ValidateClosedDisplayCount(p.ClosedDisplayCount); err != nil {
		return model.User{}, err
	}

	if _, err := d.store.GetUser(ctx, p.Name); err == nil {
		return model.User{}, fmt.Errorf("%w: %s", ErrUserExists, p.Name)
	} else if !errors.Is(err, store.ErrNotFound) {
		return model.User{}, err
	}

	var hash string
	if p.Password != "" || p.PasswordConfirm != "" {
		if err := auth.ValidateNewPassword(p.Password, p.PasswordConfirm); err != nil {
			return model.User{}, err
		}
		var err error
		if hash, err = auth.HashPassword(p.Password); err != nil {
			return model.User{}, err
		}
	}

	now := d.now().UTC()
	u := model.User{
		Name:               p.Name,
		EmailAddress:       p.EmailAddress,
		SummaryPref:        p.SummaryPref,
		TriggerPref:        p.TriggerPref,
		ClosedDisplayCount: p.ClosedDisplayCount,
		PasswordHash:       hash,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := d.store.CreateUser(ctx, u); err != nil {
		return model.User{}, err
	}

	d.logger.Info("user created", "user", u.Name)
	return u, nil
}

// Get retrieves a user by name.
func (d *Directory) Get(ctx context.Context, name string) (model.User, error) {
	return d.store.GetUser(ctx, name)
}

// List retrieves all users.
func (d *Directory) List(ctx context.Context) ([]model.User, error) {
	return d.store.GetUsers(ctx)
}

// Update validates and applies a preference update.
func (d *Directory) Update(ctx context.Context, name string, p UpdateParams) (model.User, error) {
	p.EmailAddress = strings.ReplaceAll(p.EmailAddress, " ", "")

	if err := model.ValidateEmailAddress(p.EmailAddress); err != nil {
		return model.User{}, err
	}
	if err := model.ValidateSummaryPref(p.SummaryPref); err != nil {
		return model.User{}, err
	}
	if err := model.ValidateTriggerPref(p.TriggerPref); err != nil {
		return model.User{}, err
	}
	if err := model.ValidateClosedDisplayCount(p.ClosedDisplayCount); err != nil {
		return model.User{}, err
	}

	u, err := d.store.GetUser(ctx, name)
	if err != nil {
		return model.User{}, err
	}

	u.EmailAddress = p.EmailAddress
	u.SummaryPref = p.SummaryPref
	u.TriggerPref = p.TriggerPref
	u.ClosedDisplayCount = p.ClosedDisplayCount
	u.UpdatedAt = d.now().UTC()

	if err := d.store.UpdateUser(ctx, u); err != nil {
		return model.User{}, err
	}

	d.logger.Info("user updated", "user", name)
	return u, nil
}

// SetPassword applies the password policy, hashes the new password,
// and stores the credential.
func (d *Directory) SetPassword(ctx context.Context, name, password, confirm string) error {
	if err := auth.ValidateNewPassword(password, confirm); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := d.store.SetPasswordHash(ctx, name, hash, d.now().UTC()); err != nil {
		return err
	}

	d.logger.Info("password set", "user", name)
	return nil
}

// Delete removes the account. Owned tasks, sessions, and notification
// log entries go with it; the cascade is deliberate so no orphaned
// tasks remain.
func (d *Directory) Delete(ctx context.Context, name string) error {
	if err := d.store.DeleteUser(ctx, name); err != nil {
		return err
	}
	d.logger.Info("user deleted", "user", name)
	return nil
}

// PurgeInactive removes accounts that own no tasks and have been idle
// longer than the configured window. Returns the purged names.
func (d *Directory) PurgeInactive(ctx context.Context) ([]string, error) {
	cutoff := d.now().Add(-d.purgeAfter)
	names, err := d.store.PurgeInactiveUsers(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		d.logger.Info("purged inactive users", "count", len(names))
	}
	return names, nil
}
