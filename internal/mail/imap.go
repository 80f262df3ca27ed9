package mail

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/textproto"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"

	"github.com/quinn/mailreview/internal/config"
	"github.com/quinn/mailreview/pkg/types"
)

const mailbox = "INBOX"

// IMAPStore implements Store against an IMAP mailbox. A store is scoped to
// one run cycle: Connect at the start, Close on every exit path.
type IMAPStore struct {
	cfg       *config.Config
	client    *client.Client
	logger    *logrus.Logger
	connected bool
}

// NewIMAPStore creates an IMAP store (does not connect immediately).
func NewIMAPStore(cfg *config.Config, logger *logrus.Logger) *IMAPStore {
	return &IMAPStore{
		cfg:    cfg,
		logger: logger,
	}
}

// Connect establishes a connection, logs in, and selects the inbox.
func (s *IMAPStore) Connect() error {
	if s.connected && s.client != nil {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.IMAPHost, s.cfg.IMAPPort)

	cl, err := client.DialTLS(addr, &tls.Config{
		ServerName: s.cfg.IMAPHost,
		MinVersion: tls.VersionTLS12,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	s.client = cl

	if err := s.client.Login(s.cfg.MailAddress, s.cfg.MailPassword); err != nil {
		s.logger.WithError(err).Error("Failed to login to IMAP server")
		s.client.Logout() //nolint:errcheck
		s.client = nil
		return fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	if _, err := s.client.Select(mailbox, false); err != nil {
		s.client.Logout() //nolint:errcheck
		s.client = nil
		return fmt.Errorf("failed to select %s: %w", mailbox, err)
	}

	s.connected = true
	s.logger.WithField("host", s.cfg.IMAPHost).Info("Connected to IMAP server")
	return nil
}

// Close logs out and drops the connection.
func (s *IMAPStore) Close() error {
	if s.client != nil {
		if err := s.client.Logout(); err != nil {
			return err
		}
		s.client = nil
		s.connected = false
	}
	return nil
}

// ListUnprocessed returns refs of messages without the \Seen flag, in the
// server's enumeration order.
func (s *IMAPStore) ListUnprocessed() ([]types.MessageRef, error) {
	if err := s.Connect(); err != nil {
		return nil, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	seqs, err := s.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search unseen messages: %w", err)
	}

	return toRefs(seqs), nil
}

// Fetch retrieves full message content. The non-peek body fetch makes the
// server set \Seen, which is the durable processed marker the whole
// workflow relies on.
func (s *IMAPStore) Fetch(ref types.MessageRef) (*types.InboundMessage, error) {
	return s.fetchRef(ref, false)
}

// SearchProcessedBySubject returns refs of \Seen messages whose subject
// contains the given tag text.
func (s *IMAPStore) SearchProcessedBySubject(tag string) ([]types.MessageRef, error) {
	if err := s.Connect(); err != nil {
		return nil, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithFlags = []string{imap.SeenFlag}
	criteria.Header = textproto.MIMEHeader{"Subject": {tag}}

	seqs, err := s.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search by subject: %w", err)
	}

	return toRefs(seqs), nil
}

// FetchByMessageID locates a message by its Message-ID header. The body is
// fetched with peek so the processed flag is left alone.
func (s *IMAPStore) FetchByMessageID(messageID string) (*types.InboundMessage, error) {
	if err := s.Connect(); err != nil {
		return nil, err
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header = textproto.MIMEHeader{"Message-Id": {messageID}}

	seqs, err := s.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search by message id: %w", err)
	}
	if len(seqs) == 0 {
		return nil, nil
	}

	return s.fetchRef(types.MessageRef(seqs[0]), true)
}

func (s *IMAPStore) fetchRef(ref types.MessageRef, peek bool) (*types.InboundMessage, error) {
	if err := s.Connect(); err != nil {
		return nil, err
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uint32(ref))

	section := &imap.BodySectionName{Peek: peek}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)

	go func() {
		done <- s.client.Fetch(seqSet, items, messages)
	}()

	var raw []byte
	for msg := range messages {
		raw = readBody(msg)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch message %d: %w", ref, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("message %d has no body content", ref)
	}

	return ParseMessage(ref, raw)
}

// readBody reads the first literal in the fetch response. The section key
// the server answers with does not always match the one requested, so every
// available section is tried.
func readBody(msg *imap.Message) []byte {
	for _, literal := range msg.Body {
		raw := readLiteral(literal)
		if len(raw) > 0 {
			return raw
		}
	}
	return nil
}

func readLiteral(literal imap.Literal) []byte {
	raw := make([]byte, 0, 8192)
	buf := make([]byte, 1024)
	for {
		n, err := literal.Read(buf)
		if n > 0 {
			raw = append(raw, buf[:n]...)
		}
		if err != nil {
			if err != io.EOF {
				return nil
			}
			break
		}
	}
	return raw
}

func toRefs(seqs []uint32) []types.MessageRef {
	refs := make([]types.MessageRef, 0, len(seqs))
	for _, seq := range seqs {
		refs = append(refs, types.MessageRef(seq))
	}
	return refs
}
