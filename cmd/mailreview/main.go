package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quinn/mailreview/internal/config"
	"github.com/quinn/mailreview/internal/journal"
	"github.com/quinn/mailreview/internal/mail"
	"github.com/quinn/mailreview/internal/review"
)

var version = "dev"

func main() {
	var configPath string
	var interval time.Duration

	rootCmd := &cobra.Command{
		Use:     "mailreview",
		Short:   "Email-driven peer review: collect submissions, gather reviewer votes, send verdicts",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if interval > 0 {
				cfg.Interval = interval
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return run(cfg)
		},
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file (env vars override)")
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", 0, "Poll repeatedly at this interval (default: run once)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("Starting mailreview")

	var jrnl *journal.Journal
	if cfg.JournalPath != "" {
		jrnl, err = journal.Open(cfg.JournalPath, logger)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer jrnl.Close()
	}

	sender := mail.NewSMTPSender(cfg, logger)

	if cfg.Interval <= 0 {
		return runCycle(cfg, sender, jrnl, logger)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		if err := runCycle(cfg, sender, jrnl, logger); err != nil {
			logger.WithError(err).Error("Run cycle failed")
		}

		select {
		case sig := <-sigChan:
			logger.WithField("signal", sig).Info("Received shutdown signal")
			return nil
		case <-ticker.C:
		}
	}
}

// runCycle scopes one IMAP connection to one batch: acquired at the start,
// released on every exit path.
func runCycle(cfg *config.Config, sender mail.Sender, jrnl *journal.Journal, logger *logrus.Logger) error {
	store := mail.NewIMAPStore(cfg, logger)
	if err := store.Connect(); err != nil {
		return err
	}
	defer store.Close()

	engine := review.NewEngine(cfg, store, sender, jrnl, logger)
	return engine.RunCycle()
}
