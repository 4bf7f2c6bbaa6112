package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	addr string // host:port
	from string
	auth smtp.Auth
}

// NewSMTPSender builds a sender for the given relay. username may be empty
// for relays that accept unauthenticated submission.
func NewSMTPSender(addr, from, username, password string) (*SMTPSender, error) {
	if addr == "" || from == "" {
		return nil, errors.New("mailer: smtp address and from are required")
	}
	s := &SMTPSender{addr: addr, from: from}
	if username != "" {
		host := addr
		if i := strings.LastIndex(addr, ":"); i >= 0 {
			host = addr[:i]
		}
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s, nil
}

// Send delivers one message. The context is honored only before dialing;
// net/smtp itself does not take a context.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.To == "" {
		return errors.New("mailer: empty recipient")
	}

	data := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		s.from, msg.To, msg.Subject, msg.Body,
	)
	return smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, []byte(data))
}
