package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subfetch/internal/config"
	"subfetch/internal/console"
	"subfetch/internal/logging"
	"subfetch/internal/media"
	"subfetch/internal/subtitles"
	"subfetch/internal/subtitles/opensubtitles"
	"subfetch/internal/workflow"
)

type searchOptions struct {
	dir      string
	language string
	output   string
}

func (o *searchOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.dir, "dir", "d", ".", "Directory scanned for video files")
	cmd.Flags().StringVarP(&o.language, "language", "l", "", "Subtitle language tag (overrides index.language)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Directory downloads are written to (overrides paths.download_dir)")
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Start an interactive subtitle search (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, ctx, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func runSearch(cmd *cobra.Command, ctx *commandContext, opts *searchOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	term := console.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())

	language := strings.ToLower(strings.TrimSpace(opts.language))
	if language == "" {
		language = cfg.Index.Language
	}
	client, err := opensubtitles.New(opensubtitles.Config{
		BaseURL:   cfg.Index.BaseURL,
		UserAgent: cfg.Index.UserAgent,
		Language:  language,
		Timeout:   cfg.IndexTimeout(),
		Progress:  term.Progress,
	})
	if err != nil {
		return fmt.Errorf("init index client: %w", err)
	}

	downloadDir, err := resolveOutputDir(cfg, opts.output)
	if err != nil {
		return err
	}

	writer := subtitles.NewWriter(downloadDir, logger)
	sessionOpts := workflow.Options{
		Console:   term,
		Index:     subtitles.NewService(client, logger),
		Finder:    media.NewFinder(cfg.Media.Extensions, logger),
		Saver:     writer,
		MediaRoot: opts.dir,
		Logger:    logger,
	}

	journalPath := "disabled"
	if cfg.Journal.Enabled {
		store, err := openJournalStore(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "download journal unavailable", "journal_open_failed",
				logging.String("path", cfg.Journal.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check journal.path or delete a journal from an older version"),
				logging.String(logging.FieldImpact, "downloads in this session are not recorded"),
			)
		} else {
			defer store.Close()
			journalPath = store.Path()
			sessionOpts.Recorder = newJournalRecorder(store)
		}
	}

	session, err := workflow.New(sessionOpts)
	if err != nil {
		return err
	}

	logger.Info("search session starting",
		logging.String(logging.FieldSessionID, session.ID()),
		logging.String("language", client.Language()),
		logging.String("download_dir", writer.Dir()),
		logging.String("journal", journalPath),
	)

	_, err = session.Run(commandCtx(cmd))
	switch {
	case err == nil, errors.Is(err, console.ErrClosed):
		return nil
	case errors.Is(err, context.Canceled):
		return err
	}
	logging.ErrorWithContext(logger, "search session failed", "session_failed",
		logging.String(logging.FieldSessionID, session.ID()),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the terminal and index connectivity"),
	)
	return err
}

func resolveOutputDir(cfg *config.Config, override string) (string, error) {
	if strings.TrimSpace(override) == "" {
		return cfg.ResolveDownloadDir()
	}
	dir, err := config.ExpandPath(strings.TrimSpace(override))
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	return dir, nil
}
