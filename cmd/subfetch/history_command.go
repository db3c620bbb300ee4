package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"subfetch/internal/console"
	"subfetch/internal/journal"
)

type historyRow struct {
	ID        string   `json:"id"`
	SessionID string   `json:"session_id"`
	Mode      string   `json:"mode"`
	Query     string   `json:"query"`
	FileName  string   `json:"file_name"`
	Language  string   `json:"language,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	SavedPath string   `json:"saved_path,omitempty"`
	Bytes     int64    `json:"bytes"`
	Status    string   `json:"status"`
	Error     string   `json:"error,omitempty"`
	CreatedAt string   `json:"created_at"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var sessionID string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent subtitle downloads from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !journalEnabled(cmd, ctx) {
				return nil
			}
			return ctx.withJournal(func(store *journal.Store) error {
				entries, err := historyEntries(cmd, store, sessionID, limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					rows := make([]historyRow, 0, len(entries))
					for _, e := range entries {
						rows = append(rows, toHistoryRow(e))
					}
					return writeJSON(cmd, rows)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					if id := strings.TrimSpace(sessionID); id != "" {
						fmt.Fprintf(out, "No downloads recorded for session %s\n", id)
					} else {
						fmt.Fprintf(out, "No downloads recorded yet (journal: %s)\n", store.Path())
					}
					return nil
				}
				fmt.Fprintln(out, renderHistoryTable(entries))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show (0 shows all)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Show every entry of one search session (ignores --limit)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.AddCommand(newHistoryClearCommand(ctx))
	return cmd
}

func historyEntries(cmd *cobra.Command, store *journal.Store, sessionID string, limit int) ([]journal.Entry, error) {
	if id := strings.TrimSpace(sessionID); id != "" {
		return store.Session(commandCtx(cmd), id)
	}
	return store.Recent(commandCtx(cmd), limit)
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !journalEnabled(cmd, ctx) {
				return nil
			}
			return ctx.withJournal(func(store *journal.Store) error {
				removed, err := store.Clear(commandCtx(cmd))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d journal entries\n", removed)
				return nil
			})
		},
	}
}

func journalEnabled(cmd *cobra.Command, ctx *commandContext) bool {
	cfg, err := ctx.ensureConfig()
	if err != nil || cfg == nil {
		return false
	}
	if !cfg.Journal.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Download journal is disabled (set journal.enabled = true in the config)")
		return false
	}
	return true
}

func renderHistoryTable(entries []journal.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := e.SavedPath
		if e.Status == journal.StatusFailed {
			detail = e.Error
		}
		rating := "N/A"
		if e.Rating != nil {
			rating = fmt.Sprintf("%.1f", *e.Rating)
		}
		size := "-"
		if e.Bytes > 0 {
			size = humanize.Bytes(uint64(e.Bytes))
		}
		rows = append(rows, []string{
			humanize.Time(e.CreatedAt),
			strings.ToUpper(string(e.Status)),
			e.FileName,
			e.Mode + ": " + e.Query,
			rating,
			size,
			detail,
		})
	}
	return console.RenderTable(
		[]string{"When", "Status", "File Name", "Query", "Rating", "Size", "Path / Error"},
		rows,
		[]console.Alignment{console.AlignLeft, console.AlignLeft, console.AlignLeft, console.AlignLeft, console.AlignRight, console.AlignRight, console.AlignLeft},
	)
}

func toHistoryRow(e journal.Entry) historyRow {
	return historyRow{
		ID:        e.ID,
		SessionID: e.SessionID,
		Mode:      e.Mode,
		Query:     e.Query,
		FileName:  e.FileName,
		Language:  e.Language,
		Rating:    e.Rating,
		SavedPath: e.SavedPath,
		Bytes:     e.Bytes,
		Status:    string(e.Status),
		Error:     e.Error,
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
