package main

import (
	"fmt"

	"github.com/dgnsrekt/paste2audio/internal/library"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cleanCmd = &cobra.Command{
	Use:          "clean",
	Short:        "Delete every file in the temp directory",
	Long:         paragraph(fmt.Sprintf("\n%s segments and recordings left in the temp directory. Subdirectories are kept.", keyword("Delete"))),
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logToStderr(debug)

		cfg, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		n, err := library.SweepDir(cfg.TempDir)
		if err != nil {
			return fmt.Errorf("unable to clean %s: %w", cfg.TempDir, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d file(s) from %s\n", n, cfg.TempDir) //nolint:errcheck
		return nil
	},
}
