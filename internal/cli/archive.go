package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowprof/pkg/archive"
	"github.com/matzehuels/flowprof/pkg/cache"
	flowerrors "github.com/matzehuels/flowprof/pkg/errors"
	"github.com/matzehuels/flowprof/pkg/render"
	"github.com/matzehuels/flowprof/pkg/report"
)

var errNoArchive = flowerrors.New(flowerrors.ErrCodeNotFound, "no archive configured (set archive.mongo_uri or FLOWPROF_MONGO_URI)")

// archiveCommand creates the archive command group.
func (c *CLI) archiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "List and re-render archived reports",
	}
	cmd.AddCommand(c.archiveListCommand())
	cmd.AddCommand(c.archiveShowCommand())
	return cmd
}

func (c *CLI) archiveListCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openArchive(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			list, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("Archive is empty")
				return nil
			}
			fmt.Fprintln(stdout, archiveTable(list, time.Now()))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", archive.DefaultListLimit, "maximum number of runs")
	return cmd
}

// archiveTable renders summaries as a bordered table.
func archiveTable(list []archive.Summary, now time.Time) string {
	rows := make([][]string, len(list))
	for i, s := range list {
		rows[i] = []string{
			s.ID,
			formatAge(s.CreatedAt, now),
			s.Title,
			s.LogPath,
			fmt.Sprint(s.Totals.Names),
			report.FormatMs(s.Totals.TotalMappedMs),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Created", "Title", "Log", "Nodes", "Mapped ms").
		Rows(rows...).
		Render()
}

func (c *CLI) archiveShowCommand() *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Render an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			store, err := c.openArchive(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			e, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if e.Report == nil {
				return flowerrors.New(flowerrors.ErrCodeNotFound, "archived run %s has no report body", e.ID)
			}
			data, err := render.Render(cmd.Context(), e.Report, f, render.Options{
				Title:  e.Title,
				Layout: c.config().Layout,
				Logger: c.Logger,
			})
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := writeOutput(output, data); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatJSON), "output format")
	return cmd
}

// hashFile returns the content hash of path, or "" when it cannot be read.
func hashFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
