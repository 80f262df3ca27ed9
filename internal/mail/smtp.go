package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	netmail "net/mail"
	"net/smtp"

	"github.com/jhillyerd/enmime"
	"github.com/sirupsen/logrus"

	"github.com/quinn/mailreview/internal/config"
	"github.com/quinn/mailreview/pkg/types"
)

// SMTPSender implements Sender. Each Send dials, delivers, and quits; no
// connection outlives a message.
type SMTPSender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(cfg *config.Config, logger *logrus.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		logger: logger,
	}
}

// Send renders and delivers one outbound message.
func (s *SMTPSender) Send(msg *types.OutboundMessage) error {
	raw, err := RenderMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to render message: %w", err)
	}

	client, err := s.dial()
	if err != nil {
		return err
	}
	defer client.Close()

	var auth smtp.Auth
	if s.cfg.MailPassword != "" {
		auth = smtp.PlainAuth("", s.cfg.MailAddress, s.cfg.MailPassword, s.cfg.SMTPHost)
	}
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(s.cfg.MailAddress); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, to := range msg.To {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", to, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to send data command: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("Message sent")

	return client.Quit()
}

// dial connects to the SMTP server, using implicit TLS on port 465 and
// STARTTLS otherwise.
func (s *SMTPSender) dial() (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	tlsConfig := &tls.Config{ServerName: s.cfg.SMTPHost}

	if s.cfg.SMTPPort == 465 {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create SMTP client: %w", err)
		}
		return client, nil
	}

	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start TLS: %w", err)
	}
	return client, nil
}

// RenderMessage builds the MIME wire form of an outbound message.
func RenderMessage(msg *types.OutboundMessage) ([]byte, error) {
	to := make([]netmail.Address, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, netmail.Address{Address: addr})
	}

	builder := enmime.Builder().
		From(msg.FromName, msg.FromAddress).
		ToAddrs(to).
		Subject(msg.Subject).
		HTML([]byte(msg.BodyHTML))

	if msg.InReplyTo != "" {
		builder = builder.Header("In-Reply-To", msg.InReplyTo)
	}
	for _, att := range msg.Attachments {
		builder = builder.AddAttachment(att.Content, att.MimeType, att.Filename)
	}

	part, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build message: %w", err)
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return buf.Bytes(), nil
}
