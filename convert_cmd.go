package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/paste2audio/internal/clip"
	"github.com/dgnsrekt/paste2audio/internal/convert"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var convertCmd = &cobra.Command{
	Use:   "convert [TEXT]",
	Short: "Convert text to a WAV file without the TUI",
	Long: paragraph(fmt.Sprintf("\n%s text to speech and print the path of the produced file. Text is taken from the arguments, from stdin when it is piped, or from the clipboard.",
		keyword("Convert"))),
	Example:      paragraph("paste2audio convert \"Hello there\"\ncat notes.md | paste2audio convert --strip-markdown\npaste2audio convert --engine piper --speed 1.5x"),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logToStderr(debug)

		cfg, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		text, err := inputText(args, os.Stdin, clip.NewReader(nil))
		if err != nil {
			return err
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := signalContext()
		defer cancel()

		res, err := a.runner.Run(ctx, a.prepare(text), cfg.Speed)
		if err != nil {
			var jobErr *convert.JobError
			if errors.As(err, &jobErr) {
				log.Error("Conversion failed", "job", jobErr.JobID, "stage", jobErr.Stage, "err", jobErr.Err)
			}
			return err //nolint:wrapcheck
		}

		log.Info("Conversion complete",
			"segments", res.Segments,
			"duration", res.Duration.Round(time.Millisecond),
			"size", fileSize(res.Path))
		_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Path)
		return err //nolint:wrapcheck
	},
}

// inputText picks the text to convert: arguments first, then piped stdin,
// then the clipboard.
func inputText(args []string, stdin *os.File, cb *clip.Reader) (string, error) {
	if len(args) > 0 {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return "", convert.ErrEmptyText
		}
		return text, nil
	}

	if stdin != nil && !term.IsTerminal(int(stdin.Fd())) {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read from stdin: %w", err)
		}
		if text := strings.TrimSpace(string(b)); text != "" {
			return text, nil
		}
	}

	text, err := cb.Read()
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return text, nil
}

func fileSize(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(fi.Size())) //nolint:gosec
}
