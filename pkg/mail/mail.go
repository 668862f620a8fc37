package mail

import "context"

// Recipient is a named email address.
type Recipient struct {
	Name    string
	Address string
}

// Message is one outbound transactional email.
type Message struct {
	To       []Recipient
	Subject  string
	TextBody string
	HTMLBody string
}

// HasRecipients reports whether the message can be delivered anywhere.
func (m Message) HasRecipients() bool { return len(m.To) > 0 }

// Sender delivers transactional email. Implementations must be safe for
// concurrent use; callers fan out per-recipient sends in parallel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
