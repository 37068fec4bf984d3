package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Summary notification preference values.
const (
	SummaryPrefNone         = "none"
	SummaryPrefWeeklyFriday = "weekly:friday"
)

// Trigger notification preference values.
const (
	TriggerPrefNone  = "none"
	TriggerPrefEmail = "email"
)

// Validation errors for user input.
var (
	ErrInvalidUserName     = errors.New("invalid user name")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrInvalidSummaryPref  = errors.New("invalid summary notification preference")
	ErrInvalidTriggerPref  = errors.New("invalid trigger notification preference")
	ErrInvalidDisplayCount = errors.New("closed task display count must be a positive integer")
)

var (
	userNameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	emailRe    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,7}$`)
)

// User is an account record. The user name is its identity and is
// immutable once created.
type User struct {
	Name string `json:"user_name" db:"user_name"`

	// EmailAddress is a comma-separated list of addresses; every
	// notification goes to the whole list.
	EmailAddress string `json:"email_address" db:"email_address"`

	// SummaryPref is one of the SummaryPref* constants.
	SummaryPref string `json:"summary_pref" db:"summary_pref"`

	// TriggerPref is one of the TriggerPref* constants.
	TriggerPref string `json:"trigger_pref" db:"trigger_pref"`

	// ClosedDisplayCount caps how many closed tasks appear in lists
	// and summaries.
	ClosedDisplayCount int `json:"closed_display_count" db:"closed_display_count"`

	// PasswordHash is empty for legacy accounts that have not set a
	// password yet.
	PasswordHash string `json:"-" db:"password_hash"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EmailList splits the comma-separated address list into individual
// addresses.
func (u User) EmailList() []string {
	parts := strings.Split(u.EmailAddress, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateUserName checks the user name against the allowed pattern
// (letters, digits, underscore, dot, hyphen).
func ValidateUserName(name string) error {
	if !userNameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidUserName, name)
	}
	return nil
}

// ValidateEmailAddress checks a comma-separated list of addresses.
// Every entry must match the email pattern.
func ValidateEmailAddress(list string) error {
	if list == "" {
		return fmt.Errorf("%w: empty", ErrInvalidEmail)
	}
	for _, addr := range strings.Split(list, ",") {
		if !emailRe.MatchString(addr) {
			return fmt.Errorf("%w: %q", ErrInvalidEmail, addr)
		}
	}
	return nil
}

// ValidateSummaryPref checks a summary notification preference value.
func ValidateSummaryPref(pref string) error {
	switch pref {
	case SummaryPrefNone, SummaryPrefWeeklyFriday:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidSummaryPref, pref)
}

// ValidateTriggerPref checks a trigger notification preference value.
func ValidateTriggerPref(pref string) error {
	switch pref {
	case TriggerPrefNone, TriggerPrefEmail:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidTriggerPref, pref)
}

// ValidateClosedDisplayCount checks the closed task display count
// preference.
func ValidateClosedDisplayCount(n int) error {
	if n <= 0 {
		return ErrInvalidDisplayCount
	}
	return nil
}
