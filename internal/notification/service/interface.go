package service

import "context"

// Mail is one outgoing email message.
type Mail struct {
	To      string
	Subject string
	Text    string
}

// MailTransport is the external mail delivery collaborator.
type MailTransport interface {
	// Configured reports whether the transport has the credentials it
	// needs. An unconfigured transport fail-closes the notification cycle.
	Configured() bool
	Send(ctx context.Context, mail Mail) error
}

// SMS is one outgoing text message.
type SMS struct {
	To   string
	Text string
}

// SMSTransport is the external SMS delivery collaborator.
type SMSTransport interface {
	Configured() bool
	Send(ctx context.Context, sms SMS) error
}
