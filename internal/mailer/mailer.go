// Package mailer delivers the service's transactional email: signup
// verification links and request-update notifications.
package mailer

import (
	"context"
	"fmt"
	"strings"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer sends messages. Delivery is best-effort for notifications; callers
// decide whether a send failure is fatal.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Noop is the default mailer when no SMTP relay is configured. Sends succeed
// silently.
type Noop struct{}

// Send discards the message.
func (Noop) Send(_ context.Context, _ Message) error { return nil }

// VerificationMessage builds the signup verification email. baseURL is the
// externally reachable root of this service.
func VerificationMessage(to, baseURL, rawToken string) Message {
	link := strings.TrimRight(baseURL, "/") + "/verify?token=" + rawToken
	return Message{
		To:      to,
		Subject: "Verify your email address",
		Body: "Welcome!\n\n" +
			"Please confirm your email address by opening the link below:\n\n" +
			link + "\n\n" +
			"If you did not sign up, you can ignore this message.\n",
	}
}

// RequestUpdateMessage builds the notification sent to both parties when an
// appointment request changes. updater names the side that made the change.
type RequestUpdateInput struct {
	RequestID string
	Updater   string
	Status    string
}

// RequestUpdateMessage builds an update notification for one recipient.
func RequestUpdateMessage(to string, in RequestUpdateInput) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Appointment request %s updated", in.RequestID),
		Body: fmt.Sprintf(
			"Appointment request %s was updated by the %s.\n\nCurrent status: %s\n",
			in.RequestID, in.Updater, in.Status,
		),
	}
}
