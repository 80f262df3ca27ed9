package review

import (
	"strings"

	"github.com/quinn/mailreview/pkg/types"
)

// Category is the classification of an inbound message.
type Category int

const (
	// CategoryIgnorable covers messages with no usable sender and messages
	// from the system's own address (auto-replies must not trigger loops).
	CategoryIgnorable Category = iota
	// CategorySubmission is a new piece of content from an author.
	CategorySubmission
	// CategoryReview is a vote from a configured reviewer.
	CategoryReview
)

func (c Category) String() string {
	switch c {
	case CategorySubmission:
		return "submission"
	case CategoryReview:
		return "review"
	default:
		return "ignorable"
	}
}

// Classifier sorts inbound messages by sender address.
type Classifier struct {
	selfAddress string
	reviewers   map[string]struct{}
}

// NewClassifier creates a classifier for the given system address and
// reviewer panel. Addresses are compared case-insensitively.
func NewClassifier(selfAddress string, reviewers []string) *Classifier {
	set := make(map[string]struct{}, len(reviewers))
	for _, r := range reviewers {
		set[normalizeAddress(r)] = struct{}{}
	}
	return &Classifier{
		selfAddress: normalizeAddress(selfAddress),
		reviewers:   set,
	}
}

// Classify decides whether a message is a submission, a review, or neither.
// It has no side effects.
func (c *Classifier) Classify(msg *types.InboundMessage) Category {
	sender := normalizeAddress(msg.SenderEmail)
	if sender == "" {
		return CategoryIgnorable
	}
	if sender == c.selfAddress {
		return CategoryIgnorable
	}
	if _, ok := c.reviewers[sender]; ok {
		return CategoryReview
	}
	return CategorySubmission
}

func normalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
