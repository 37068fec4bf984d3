package model

import "time"

// Notification kinds.
const (
	NotificationWeeklySummary = "weekly_summary"
	NotificationTaskTrigger   = "task_trigger"
)

// Notification is a record of a single email sent by the dispatcher.
// The log is what makes batch runs auditable: a trigger that fired
// appears here exactly once.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// UserName is the recipient account.
	UserName string `json:"user_name" db:"user_name"`

	// TaskID links a trigger notification to its task. Nil for
	// weekly summaries.
	TaskID *int64 `json:"task_id,omitempty" db:"task_id"`

	// Kind is one of the Notification* constants.
	Kind string `json:"kind" db:"kind"`

	// Subject is the subject line of the sent mail.
	Subject string `json:"subject" db:"subject"`

	// SentAt is when the mail was handed to the transport.
	SentAt time.Time `json:"sent_at" db:"sent_at"`
}
