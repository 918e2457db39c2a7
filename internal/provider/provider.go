package provider

import "context"

// EmailSender delivers one rendered email message.
type EmailSender interface {
	Send(ctx context.Context, to string, subject string, htmlBody string) Outcome
}

// SMSSender delivers one rendered SMS message to an E.164 number.
type SMSSender interface {
	Send(ctx context.Context, to string, body string) Outcome
}
