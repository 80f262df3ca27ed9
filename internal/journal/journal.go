package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Journal is a SQLite audit trail of processed messages and decisions, kept
// for operator visibility. Losing it loses nothing but history.
type Journal struct {
	db     *sql.DB
	logger *logrus.Logger
}

// Event is one journal row.
type Event struct {
	MessageID string
	Sender    string
	Category  string
	Token     string
	Outcome   string
	Detail    string
}

// Open opens (or creates) the journal database at the given path.
func Open(dbPath string, logger *logrus.Logger) (*Journal, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	logger.WithField("path", dbPath).Info("Journal opened")
	return &Journal{db: db, logger: logger}, nil
}

// Record appends one event under a run identifier. Journal failures are
// logged but never propagated; the workflow must not stall on its own
// audit trail.
func (j *Journal) Record(runID string, ev Event) {
	if j == nil {
		return
	}
	query := `
		INSERT INTO events (run_id, message_id, sender, category, token, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := j.db.Exec(query, runID, ev.MessageID, ev.Sender, ev.Category, ev.Token, ev.Outcome, ev.Detail); err != nil {
		j.logger.WithError(err).Warn("Failed to record journal event")
	}
}

// Close closes the journal database.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}
