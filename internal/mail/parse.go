package mail

import (
	"bytes"
	"fmt"
	netmail "net/mail"
	"strings"

	"github.com/jhillyerd/enmime"

	"github.com/quinn/mailreview/pkg/types"
)

// ParseMessage builds an InboundMessage from raw RFC822 bytes.
func ParseMessage(ref types.MessageRef, raw []byte) (*types.InboundMessage, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	msg := &types.InboundMessage{
		Ref:       ref,
		MessageID: strings.TrimSpace(env.GetHeader("Message-Id")),
		Subject:   env.GetHeader("Subject"),
		BodyText:  env.Text,
		BodyHTML:  env.HTML,
	}

	if addrs, err := env.AddressList("From"); err == nil && len(addrs) > 0 {
		msg.SenderName = addrs[0].Name
		msg.SenderEmail = strings.ToLower(addrs[0].Address)
	} else if addr, ok := ExtractAddress(env.GetHeader("From")); ok {
		msg.SenderEmail = addr
	}

	for _, header := range []string{"To", "Cc"} {
		if addrs, err := env.AddressList(header); err == nil {
			for _, a := range addrs {
				msg.Recipients = append(msg.Recipients, a.Address)
			}
		}
	}

	if date, err := netmail.ParseDate(env.GetHeader("Date")); err == nil {
		msg.Date = date
	}

	for _, part := range env.Attachments {
		msg.Attachments = append(msg.Attachments, types.Attachment{
			Filename: part.FileName,
			MimeType: part.ContentType,
			Content:  part.Content,
		})
	}

	return msg, nil
}
