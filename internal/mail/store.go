// Package mail gives the review engine its view of the mail store. The
// mailbox is the database: workflow state is reconstructed on every run
// from the store's processed flag and subject-line tags, so the engine
// only ever talks to the Store and Sender interfaces below.
package mail

import (
	"net/mail"
	"strings"

	"github.com/quinn/mailreview/pkg/types"
)

// Store is the read side of the mail transport.
type Store interface {
	// ListUnprocessed returns refs for messages not yet marked processed,
	// in the store's native enumeration order.
	ListUnprocessed() ([]types.MessageRef, error)

	// Fetch retrieves full message content. As a side effect the store
	// marks the message processed; future ListUnprocessed calls will not
	// return it. Fetching an already-processed ref is a no-op on the flag.
	Fetch(ref types.MessageRef) (*types.InboundMessage, error)

	// SearchProcessedBySubject returns refs of processed messages whose
	// subject contains the given text (a formatted correlation tag).
	SearchProcessedBySubject(tag string) ([]types.MessageRef, error)

	// FetchByMessageID locates a message by its Message-ID header without
	// touching its processed flag. Returns nil, nil when no message
	// matches.
	FetchByMessageID(messageID string) (*types.InboundMessage, error)
}

// Sender is the write side of the mail transport.
type Sender interface {
	Send(msg *types.OutboundMessage) error
}

// ExtractAddress pulls a normalized (lowercased) address out of a raw
// From-style header value. ok is false when no address can be parsed.
func ExtractAddress(header string) (string, bool) {
	addr, err := mail.ParseAddress(header)
	if err != nil {
		return "", false
	}
	return strings.ToLower(addr.Address), true
}
