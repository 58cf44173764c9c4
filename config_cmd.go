package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# speech engine: kokoro, piper, gtts, yandex or mock
engine: "kokoro"
# voice and language code (Kokoro conventions, other engines translate)
voice: "bf_emma"
lang: "b"
# playback tempo: 1x, 1.2x, 1.5x or 1.75x
speed: "1x"
# initial volume, 0-100
volume: 100
# where segments and recordings are written
temp_dir: "data/temp"
# regular expression the text is split on before synthesis
split_pattern: "\\n+"
# strip markdown syntax from the clipboard before conversion
strip_markdown: false
# delete every file in temp_dir on exit
sweep_on_exit: true

# in-memory cache of synthesized chunks, in MB (0 disables)
cache:
  max_size: 64

ffmpeg:
  binary: "ffmpeg"
  timeout: "2m"

kokoro:
  url: "http://localhost:8880"
  model: "kokoro"
  timeout: "60s"

piper:
  binary: "piper"
  # model: "~/.local/share/piper/en_GB-alba-medium.onnx"
  speaker: 0
  length_scale: 1.0
  timeout: "30s"

gtts:
  binary: "gtts-cli"
  slow: false
  timeout: "30s"

# credentials can also come from PASTE2AUDIO_YANDEX_API_KEY and
# PASTE2AUDIO_YANDEX_FOLDER_ID, or a .env file
yandex:
  # api_key: ""
  # folder_id: ""
  voice: "marina"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the paste2audio config file",
	Long:    paragraph(fmt.Sprintf("\n%s the paste2audio config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("paste2audio config\npaste2audio config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("paste2audio", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
