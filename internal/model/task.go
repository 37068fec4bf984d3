package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Task status constants. Status is derived from the trigger date on
// create/update: no trigger date means open, a trigger date means
// scheduled. An explicit close wins over both.
const (
	StatusOpen      = "open"
	StatusScheduled = "scheduled"
	StatusClosed    = "closed"
)

// TriggerDateLayout is the calendar-date form trigger dates are entered
// and displayed in.
const TriggerDateLayout = "2006-01-02"

// ErrInvalidDate reports a trigger date that is not a parseable
// calendar date.
var ErrInvalidDate = errors.New("invalid trigger date")

// Task is a single tracked item owned by exactly one user.
type Task struct {
	// ID is assigned by the store on creation.
	ID int64 `json:"id" db:"id"`

	// Owner is the user name the task was created under. It is the
	// only identity allowed to read or mutate the task.
	Owner string `json:"owner" db:"owner"`

	// Title is the short human-readable summary.
	Title string `json:"title" db:"title"`

	// Description is free text. It may contain literal CRLF sequences
	// which are rendered as line breaks.
	Description string `json:"description" db:"description"`

	// TriggerDate is the date the task becomes due. Nil for open and
	// closed tasks.
	TriggerDate *time.Time `json:"trigger_date,omitempty" db:"trigger_date"`

	// Status is one of the Status* constants.
	Status string `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt doubles as the close time once Status is closed.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ParseTriggerDate parses a form-supplied trigger date. An empty or
// blank string is a valid "no trigger" and yields nil. Anything else
// must match TriggerDateLayout.
func ParseTriggerDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(TriggerDateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t = t.UTC()
	return &t, nil
}

// StatusForTrigger returns the status a task takes when created or
// updated with the given trigger date.
func StatusForTrigger(trigger *time.Time) string {
	if trigger != nil {
		return StatusScheduled
	}
	return StatusOpen
}
