package review

import (
	"strings"

	"github.com/jaytaylor/html2text"

	"github.com/quinn/mailreview/pkg/types"
)

// VoteDecision is a reviewer's verdict on one submission.
type VoteDecision int

const (
	VoteAccept VoteDecision = iota
	VoteReject
)

func (d VoteDecision) String() string {
	if d == VoteReject {
		return "reject"
	}
	return "accept"
}

// Vote is one reviewer's parsed decision. Votes are never stored; they are
// recomputed from the review messages on every evaluation.
type Vote struct {
	Reviewer string
	Decision VoteDecision
	Feedback string // set only for rejections, may be empty
}

const (
	acceptCommand = "/accept"
	rejectCommand = "/reject"
)

// AnalyzeVote parses a review message for a vote command. HTML bodies are
// flattened to plain text first so a command buried in markup still
// matches. A body with both commands or neither yields ErrAmbiguousVote.
//
// For rejections the feedback is the body text preceding the command; a
// rejection with the command at the very start still counts, with empty
// feedback.
func AnalyzeVote(msg *types.InboundMessage) (Vote, error) {
	text := msg.BodyText
	if msg.BodyHTML != "" {
		flat, err := html2text.FromString(msg.BodyHTML, html2text.Options{TextOnly: true})
		if err != nil {
			flat = msg.BodyHTML
		}
		text = flat
	}

	hasAccept := strings.Contains(text, acceptCommand)
	rejectAt := strings.Index(text, rejectCommand)

	if hasAccept == (rejectAt >= 0) {
		return Vote{}, ErrAmbiguousVote
	}

	if rejectAt >= 0 {
		return Vote{
			Reviewer: msg.SenderEmail,
			Decision: VoteReject,
			Feedback: strings.TrimSpace(text[:rejectAt]),
		}, nil
	}

	return Vote{Reviewer: msg.SenderEmail, Decision: VoteAccept}, nil
}
