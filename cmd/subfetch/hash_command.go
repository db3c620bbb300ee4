package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"subfetch/internal/console"
	"subfetch/internal/moviehash"
)

type hashReport struct {
	Path  string `json:"path"`
	Size  int64  `json:"size"`
	Hash  string `json:"hash,omitempty"`
	Error string `json:"error,omitempty"`
}

func newHashCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "hash <file>...",
		Short:       "Print the movie hash of one or more video files",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			reports := make([]hashReport, 0, len(args))
			failed := 0
			for _, path := range args {
				reports = append(reports, hashFile(path))
				if reports[len(reports)-1].Error != "" {
					failed++
				}
			}

			if jsonOutput {
				if err := writeJSON(cmd, reports); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(reports))
				for _, r := range reports {
					value := r.Hash
					if r.Error != "" {
						value = r.Error
					}
					rows = append(rows, []string{r.Path, sizeLabel(r.Size), value})
				}
				fmt.Fprintln(cmd.OutOrStdout(), console.RenderTable(
					[]string{"File", "Size", "Hash"},
					rows,
					[]console.Alignment{console.AlignLeft, console.AlignRight, console.AlignLeft},
				))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be hashed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func hashFile(path string) hashReport {
	report := hashReport{Path: path}
	hash, size, err := moviehash.ComputeWithSize(path)
	report.Size = size
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Hash = hash.String()
	return report
}

func sizeLabel(size int64) string {
	if size <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(size)) + " (" + strconv.FormatInt(size, 10) + ")"
}
