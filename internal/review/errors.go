package review

import (
	"errors"
	"fmt"
)

// ErrAmbiguousVote marks a review body carrying both vote commands or
// neither. Such messages are excluded from aggregation and never surfaced
// to authors or reviewers.
var ErrAmbiguousVote = errors.New("review body has both or neither vote command")

// MalformedTokenError reports a subject tag that is missing or cannot be
// reversed into a message identifier. The message is ignored for
// correlation purposes; the batch continues.
type MalformedTokenError struct {
	Subject string
	Token   string
	Err     error
}

func (e *MalformedTokenError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("no correlation tag in subject %q", e.Subject)
	}
	return fmt.Sprintf("malformed correlation token %q: %v", e.Token, e.Err)
}

func (e *MalformedTokenError) Unwrap() error { return e.Err }

// MissingOriginalSubmissionError reports a token that decodes cleanly but
// matches no message in the store. Notification planning for the vote
// cycle is aborted.
type MissingOriginalSubmissionError struct {
	MessageID string
}

func (e *MissingOriginalSubmissionError) Error() string {
	return fmt.Sprintf("original submission %q not found in mail store", e.MessageID)
}
