package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dgnsrekt/paste2audio/internal/library"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:          "list [QUERY]",
	Short:        "List recordings in the temp directory",
	Long:         paragraph(fmt.Sprintf("\n%s the processed recordings in the temp directory, optionally fuzzy-filtered by QUERY.", keyword("List"))),
	Example:      paragraph("paste2audio list\npaste2audio list meeting"),
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logToStderr(debug)

		cfg, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}

		lib := library.New()
		if _, err := lib.Scan(cfg.TempDir); err != nil {
			return fmt.Errorf("unable to scan %s: %w", cfg.TempDir, err)
		}

		var query string
		if len(args) == 1 {
			query = args[0]
		}

		entries := lib.Filter(query)
		if len(entries) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No recordings in", cfg.TempDir) //nolint:errcheck
			return nil
		}

		t := table.New().
			Border(lipgloss.HiddenBorder()).
			Headers("FILE", "LENGTH", "SIZE", "CREATED")
		for _, e := range entries {
			t.Row(
				e.Path,
				e.Duration.Round(time.Second).String(),
				humanize.Bytes(uint64(e.Size)), //nolint:gosec
				humanize.Time(e.Created),
			)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return err //nolint:wrapcheck
	},
}
