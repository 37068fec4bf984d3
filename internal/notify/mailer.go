// Package notify implements the notification dispatcher: the weekly
// summary and daily trigger batch jobs, and the SMTP mailer they hand
// their output to.
package notify

import "context"

// Mailer is the boundary to the actual mail transport. The dispatcher
// only ever needs to send one HTML body to one recipient list.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}
