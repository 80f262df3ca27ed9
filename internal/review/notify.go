package review

import (
	"fmt"
	"html"
	"strings"

	"github.com/quinn/mailreview/pkg/types"
)

// Planner turns classifications and decisions into the set of outbound
// messages they imply. It never sends anything; the transport renders and
// delivers whatever it returns.
type Planner struct {
	mailName    string
	mailAddress string
	reviewers   []string
}

// NewPlanner creates a planner for the given system identity and reviewer
// panel.
func NewPlanner(mailName, mailAddress string, reviewers []string) *Planner {
	return &Planner{
		mailName:    mailName,
		mailAddress: mailAddress,
		reviewers:   reviewers,
	}
}

// The vote commands in the instruction copy carry a zero-width non-joiner
// so a reviewer quoting the instructions in a reply does not cast a vote
// by accident.
const reviewRequestTemplate = `<p>Please review the submission below and reply:</p>
<ul>
<li>Reply with /&zwnj;accept to accept it.</li>
<li>Reply with your feedback followed by /&zwnj;reject to reject it.</li>
</ul>
<p>Keep the two "#" marks and the text between them in the subject line, and do not quote this message in your reply.</p>
<hr>
%s
%s`

const acceptedTemplate = `<p>Thank you for your submission. It has passed review and has been forwarded for publication. Note that this does not guarantee it will be published.</p>
<p>Do not reply to this message; a reply is treated as a new submission.</p>
<hr>
%s
%s`

const rejectedTemplate = `<p>Thank you for your submission. It has not passed review. Please revise it according to the feedback below and submit again.</p>
<ul>
%s</ul>
<hr>
%s
%s`

const publicationTemplate = `<p>The submission below has passed review; please complete the publication process.</p>
<p>Reviewers:</p>
<ul>
%s</ul>
<hr>
%s
%s`

// ReviewRequest plans the message sent to the whole reviewer panel when a
// new submission arrives. The subject carries the submission's tag and the
// original attachments are forwarded unchanged.
func (p *Planner) ReviewRequest(sub *types.InboundMessage, tok Token) *types.OutboundMessage {
	return &types.OutboundMessage{
		FromName:    p.mailName,
		FromAddress: p.mailAddress,
		To:          p.reviewers,
		Subject:     "Submission review request " + FormatTag(tok),
		BodyHTML:    fmt.Sprintf(reviewRequestTemplate, quoteHeader(sub), sub.Body()),
		Attachments: sub.Attachments,
	}
}

// Plan produces the notification set for a decision. WAIT and over-quorum
// outcomes plan nothing.
func (p *Planner) Plan(d Decision, sub *types.InboundMessage, tok Token, votes []Vote) []*types.OutboundMessage {
	switch d.Outcome {
	case OutcomeAccept:
		return []*types.OutboundMessage{
			p.acceptanceNotice(sub),
			p.publicationRequest(sub, tok, votes),
		}
	case OutcomeReject:
		return []*types.OutboundMessage{p.rejectionNotice(sub, d.Reasons)}
	default:
		return nil
	}
}

func (p *Planner) acceptanceNotice(sub *types.InboundMessage) *types.OutboundMessage {
	return &types.OutboundMessage{
		FromName:    p.mailName,
		FromAddress: p.mailAddress,
		To:          []string{sub.SenderEmail},
		Subject:     "Your submission was accepted",
		BodyHTML:    fmt.Sprintf(acceptedTemplate, quoteHeader(sub), sub.Body()),
		InReplyTo:   sub.MessageID,
	}
}

func (p *Planner) rejectionNotice(sub *types.InboundMessage, reasons []string) *types.OutboundMessage {
	var items strings.Builder
	for _, reason := range reasons {
		items.WriteString("<li>" + html.EscapeString(reason) + "</li>\n")
	}
	return &types.OutboundMessage{
		FromName:    p.mailName,
		FromAddress: p.mailAddress,
		To:          []string{sub.SenderEmail},
		Subject:     "Your submission was rejected",
		BodyHTML:    fmt.Sprintf(rejectedTemplate, items.String(), quoteHeader(sub), sub.Body()),
		InReplyTo:   sub.MessageID,
	}
}

func (p *Planner) publicationRequest(sub *types.InboundMessage, tok Token, votes []Vote) *types.OutboundMessage {
	var items strings.Builder
	for _, v := range votes {
		items.WriteString("<li>" + html.EscapeString(v.Reviewer) + "</li>\n")
	}
	return &types.OutboundMessage{
		FromName:    p.mailName,
		FromAddress: p.mailAddress,
		To:          p.reviewers,
		Subject:     "Submission publication request " + FormatTag(tok),
		BodyHTML:    fmt.Sprintf(publicationTemplate, items.String(), quoteHeader(sub), sub.Body()),
		Attachments: sub.Attachments,
	}
}

// quoteHeader renders the From/Sent/Subject block quoting the original
// submission.
func quoteHeader(sub *types.InboundMessage) string {
	from := sub.SenderEmail
	if sub.SenderName != "" {
		from = fmt.Sprintf("%s <%s>", sub.SenderName, sub.SenderEmail)
	}
	return fmt.Sprintf("<p><b>From:</b> %s<br>\n<b>Sent:</b> %s<br>\n<b>Subject:</b> %s</p>",
		html.EscapeString(from),
		html.EscapeString(sub.Date.Format("Mon, 2 Jan 2006 15:04:05 -0700")),
		html.EscapeString(sub.Subject))
}
