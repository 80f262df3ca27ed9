package types

import "time"

// MessageRef identifies a message inside the mail store for the duration of
// one run. For IMAP this is a sequence number in the selected mailbox.
type MessageRef uint32

// InboundMessage is a message fetched from the mail store. Immutable once
// received; the store's processed flag is the only state that changes.
type InboundMessage struct {
	Ref         MessageRef   `json:"ref"`
	MessageID   string       `json:"message_id"`
	Subject     string       `json:"subject"`
	SenderName  string       `json:"sender_name"`
	SenderEmail string       `json:"sender_email"`
	Recipients  []string     `json:"recipients"`
	Date        time.Time    `json:"date"`
	BodyText    string       `json:"body_text,omitempty"`
	BodyHTML    string       `json:"body_html,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Body returns the richest body variant available, preferring HTML.
func (m *InboundMessage) Body() string {
	if m.BodyHTML != "" {
		return m.BodyHTML
	}
	return m.BodyText
}

// Attachment is a non-text MIME part carried verbatim between messages.
type Attachment struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Content  []byte `json:"-"`
}

// OutboundMessage describes a message to be rendered and sent by the
// transport. The planner produces these; it never sends anything itself.
type OutboundMessage struct {
	FromName    string       `json:"from_name"`
	FromAddress string       `json:"from_address"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	BodyHTML    string       `json:"body_html"`
	InReplyTo   string       `json:"in_reply_to,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
