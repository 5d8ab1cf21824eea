// Package notification delivers best-effort booking confirmations. Failures
// here never affect booking correctness.
package notification

import "context"

// Message is a rendered notification with an optional attachment (e.g. an
// ICS invite).
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment []byte
}

// Sender dispatches a message. The engine treats delivery as fire-and-forget
// and does not retry beyond what the sender itself provides.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
