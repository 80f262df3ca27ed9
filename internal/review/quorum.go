package review

// Outcome of one quorum evaluation.
type Outcome int

const (
	// OutcomeWait means fewer votes than the quorum have arrived; nothing
	// happens this cycle and a later run re-evaluates.
	OutcomeWait Outcome = iota
	// OutcomeAccept means all quorum votes were accepts.
	OutcomeAccept
	// OutcomeReject means at least one quorum vote was a reject.
	OutcomeReject
	// OutcomeIgnoreOverQuorum means more votes than the quorum were found,
	// which indicates a duplicate delivery. The submission is left alone;
	// there is no corrective path once this state is reached.
	OutcomeIgnoreOverQuorum
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccept:
		return "accept"
	case OutcomeReject:
		return "reject"
	case OutcomeIgnoreOverQuorum:
		return "ignore_over_quorum"
	default:
		return "wait"
	}
}

// Decision is the verdict derived from one evaluation of a submission's
// votes. Reasons holds the reject feedback texts in vote order; every
// reject vote contributes an entry, even when its feedback is empty.
type Decision struct {
	Outcome Outcome
	Reasons []string
}

// Decide applies the quorum rule to an aggregated vote set. A decision is
// only ever computed when the distinct vote count exactly equals the
// required quorum; the function is memoryless and recomputed on every
// triggering review.
func Decide(votes []Vote, required int) Decision {
	switch {
	case len(votes) < required:
		return Decision{Outcome: OutcomeWait}
	case len(votes) > required:
		return Decision{Outcome: OutcomeIgnoreOverQuorum}
	}

	var reasons []string
	for _, v := range votes {
		if v.Decision == VoteReject {
			reasons = append(reasons, v.Feedback)
		}
	}
	if len(reasons) > 0 {
		return Decision{Outcome: OutcomeReject, Reasons: reasons}
	}
	return Decision{Outcome: OutcomeAccept}
}
