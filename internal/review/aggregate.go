package review

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/quinn/mailreview/internal/mail"
)

// Aggregator reconstructs the vote set for one submission from the mail
// store. It holds no state of its own; every call re-derives the votes
// from the processed messages carrying the submission's tag.
type Aggregator struct {
	store      mail.Store
	classifier *Classifier
	logger     *logrus.Logger
}

// NewAggregator creates an aggregator over the given store.
func NewAggregator(store mail.Store, classifier *Classifier, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		store:      store,
		classifier: classifier,
		logger:     logger,
	}
}

// Votes returns the distinct reviewer votes for a submission, in the
// store's enumeration order. Non-review messages and unparseable bodies
// are discarded; a reviewer's second message is ignored regardless of its
// decision (first occurrence wins).
func (a *Aggregator) Votes(tok Token) ([]Vote, error) {
	refs, err := a.store.SearchProcessedBySubject(FormatTag(tok))
	if err != nil {
		return nil, fmt.Errorf("failed to search reviews: %w", err)
	}

	var votes []Vote
	seen := make(map[string]struct{})
	for _, ref := range refs {
		msg, err := a.store.Fetch(ref)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch review candidate %d: %w", ref, err)
		}

		if a.classifier.Classify(msg) != CategoryReview {
			continue
		}

		vote, err := AnalyzeVote(msg)
		if err != nil {
			a.logger.WithFields(logrus.Fields{
				"sender": msg.SenderEmail,
				"ref":    ref,
			}).WithError(err).Debug("Excluding review from aggregation")
			continue
		}

		key := normalizeAddress(vote.Reviewer)
		if _, dup := seen[key]; dup {
			a.logger.WithField("sender", msg.SenderEmail).Debug("Ignoring duplicate vote")
			continue
		}
		seen[key] = struct{}{}
		votes = append(votes, vote)
	}

	return votes, nil
}
