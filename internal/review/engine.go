package review

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/quinn/mailreview/internal/config"
	"github.com/quinn/mailreview/internal/journal"
	"github.com/quinn/mailreview/internal/mail"
	"github.com/quinn/mailreview/pkg/types"
)

// Engine drives one polling cycle of the review workflow: list unprocessed
// messages, classify each, forward submissions to the reviewer panel, and
// evaluate votes on reviews. It holds no workflow state between cycles;
// everything is reconstructed from the mail store.
type Engine struct {
	cfg        *config.Config
	store      mail.Store
	sender     mail.Sender
	classifier *Classifier
	aggregator *Aggregator
	planner    *Planner
	journal    *journal.Journal
	logger     *logrus.Logger
}

// NewEngine creates an engine over the given transport. The journal may be
// nil when auditing is disabled.
func NewEngine(cfg *config.Config, store mail.Store, sender mail.Sender, jrnl *journal.Journal, logger *logrus.Logger) *Engine {
	classifier := NewClassifier(cfg.MailAddress, cfg.Reviewers)
	return &Engine{
		cfg:        cfg,
		store:      store,
		sender:     sender,
		classifier: classifier,
		aggregator: NewAggregator(store, classifier, logger),
		planner:    NewPlanner(cfg.MailName, cfg.MailAddress, cfg.Reviewers),
		journal:    jrnl,
		logger:     logger,
	}
}

// RunCycle processes the full unseen-message batch sequentially. A failure
// while processing one message is logged and the loop continues; only a
// failure to list the batch itself aborts the run.
func (e *Engine) RunCycle() error {
	runID := uuid.NewString()
	log := e.logger.WithField("run_id", runID)

	refs, err := e.store.ListUnprocessed()
	if err != nil {
		return fmt.Errorf("failed to list unprocessed messages: %w", err)
	}
	log.WithField("count", len(refs)).Info("Found unseen messages")

	for _, ref := range refs {
		if err := e.processMessage(runID, ref); err != nil {
			log.WithError(err).WithField("ref", ref).Error("Failed to process message")
			continue
		}
	}

	log.Info("Run cycle completed")
	return nil
}

func (e *Engine) processMessage(runID string, ref types.MessageRef) error {
	// Fetching marks the message processed even if everything after this
	// point fails. There is no retry of a lost effect.
	msg, err := e.store.Fetch(ref)
	if err != nil {
		return fmt.Errorf("failed to fetch message: %w", err)
	}

	category := e.classifier.Classify(msg)
	e.logger.WithFields(logrus.Fields{
		"run_id":   runID,
		"sender":   msg.SenderEmail,
		"category": category.String(),
	}).Info("Classified message")

	switch category {
	case CategoryReview:
		return e.onReview(runID, msg)
	case CategorySubmission:
		return e.onSubmission(runID, msg)
	default:
		e.journal.Record(runID, journal.Event{
			MessageID: msg.MessageID,
			Sender:    msg.SenderEmail,
			Category:  category.String(),
		})
		return nil
	}
}

// onSubmission forwards a new submission to the reviewer panel, tagged with
// its correlation token.
func (e *Engine) onSubmission(runID string, msg *types.InboundMessage) error {
	tok := EncodeToken(msg.MessageID)

	e.journal.Record(runID, journal.Event{
		MessageID: msg.MessageID,
		Sender:    msg.SenderEmail,
		Category:  CategorySubmission.String(),
		Token:     string(tok),
		Outcome:   "review_requested",
	})

	request := e.planner.ReviewRequest(msg, tok)
	if err := e.sender.Send(request); err != nil {
		return fmt.Errorf("failed to send review request: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"run_id": runID,
		"token":  tok,
	}).Info("Review request sent")
	return nil
}

// onReview re-aggregates the votes for the review's submission and acts on
// the outcome. The evaluation is memoryless: it is recomputed from the
// store every time a review arrives.
func (e *Engine) onReview(runID string, msg *types.InboundMessage) error {
	tok, ok := ParseTag(msg.Subject)
	if !ok {
		return &MalformedTokenError{Subject: msg.Subject}
	}

	votes, err := e.aggregator.Votes(tok)
	if err != nil {
		return fmt.Errorf("failed to aggregate votes for %s: %w", FormatTag(tok), err)
	}

	decision := Decide(votes, e.cfg.Quorum)
	log := e.logger.WithFields(logrus.Fields{
		"run_id":   runID,
		"token":    tok,
		"votes":    len(votes),
		"required": e.cfg.Quorum,
		"outcome":  decision.Outcome.String(),
	})

	e.journal.Record(runID, journal.Event{
		MessageID: msg.MessageID,
		Sender:    msg.SenderEmail,
		Category:  CategoryReview.String(),
		Token:     string(tok),
		Outcome:   decision.Outcome.String(),
		Detail:    fmt.Sprintf("%d/%d votes", len(votes), e.cfg.Quorum),
	})

	switch decision.Outcome {
	case OutcomeWait:
		log.Info("Waiting for more votes")
		return nil
	case OutcomeIgnoreOverQuorum:
		log.Warn("More votes than required, likely a duplicate delivery; ignoring")
		return nil
	}

	messageID, err := DecodeToken(tok)
	if err != nil {
		return err
	}
	submission, err := e.store.FetchByMessageID(messageID)
	if err != nil {
		return fmt.Errorf("failed to look up original submission: %w", err)
	}
	if submission == nil {
		return &MissingOriginalSubmissionError{MessageID: messageID}
	}

	// Send failures are surfaced to the operator only; there is no retry
	// and the remaining notifications are still attempted.
	for _, out := range e.planner.Plan(decision, submission, tok, votes) {
		if err := e.sender.Send(out); err != nil {
			log.WithError(err).WithField("subject", out.Subject).Error("Failed to send notification")
			continue
		}
		log.WithField("subject", out.Subject).Info("Notification sent")
	}
	return nil
}
