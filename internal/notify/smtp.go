package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/smtp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

// SMTPMailer sends HTML mail through a plain SMTP submission
// endpoint. Messages are assembled with go-message so headers and
// encodings come out well-formed.
type SMTPMailer struct {
	addr     string
	sender   string
	password string
}

// NewSMTPMailer creates a mailer for the given server address
// (host:port) and sender. An empty password skips authentication.
func NewSMTPMailer(addr, sender, password string) *SMTPMailer {
	return &SMTPMailer{addr: addr, sender: sender, password: password}
}

// Send builds a single-part HTML message and submits it.
func (m *SMTPMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return fmt.Errorf("sending %q: empty recipient list", subject)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	toList := make([]*mail.Address, len(to))
	for i, addr := range to {
		toList[i] = &mail.Address{Address: addr}
	}

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Address: m.sender}})
	h.SetAddressList("To", toList)
	h.SetSubject(subject)
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return fmt.Errorf("building message %q: %w", subject, err)
	}
	if _, err := io.WriteString(w, htmlBody); err != nil {
		w.Close()
		return fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing message: %w", err)
	}

	var a smtp.Auth
	if m.password != "" {
		host := m.addr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		a = smtp.PlainAuth("", m.sender, m.password, host)
	}

	if err := smtp.SendMail(m.addr, a, m.sender, to, buf.Bytes()); err != nil {
		return fmt.Errorf("sending %q via %s: %w", subject, m.addr, err)
	}
	return nil
}
