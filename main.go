// Package main provides the entry point for the paste2audio CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/paste2audio/internal/audio"
	"github.com/dgnsrekt/paste2audio/internal/clip"
	"github.com/dgnsrekt/paste2audio/internal/library"
	"github.com/dgnsrekt/paste2audio/internal/synth/engines"
	"github.com/dgnsrekt/paste2audio/ui"
	"github.com/joho/godotenv"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "paste2audio"

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "paste2audio",
		Short: "Turn the text on your clipboard into speech",
		Long: paragraph(
			fmt.Sprintf("\nConvert clipboard text to %s and play it back.", keyword("spoken audio")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := loadSettings(viper.GetViper())
			if err != nil {
				return err
			}
			return runTUI(cfg)
		},
	}
)

func runTUI(cfg settings) error {
	// Read environment to get debugging stuff
	uiCfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	uiCfg.Speed = cfg.Speed
	uiCfg.Volume = cfg.Volume

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.validate(ctx); err != nil {
		log.Warn("Engine check failed, conversions may not work", "err", err)
	}

	dev, err := audio.NewOtoDevice(audio.DefaultDeviceConfig())
	if err != nil {
		return fmt.Errorf("unable to open audio device: %w", err)
	}
	player := audio.NewPlayer(dev)
	defer func() { _ = player.Close() }()

	lib := library.New()
	if !cfg.SweepOnExit {
		if n, err := lib.Scan(cfg.TempDir); err != nil {
			log.Warn("Unable to scan temp dir", "dir", cfg.TempDir, "err", err)
		} else {
			log.Debug("Loaded recordings", "count", n)
		}
	}

	prog := ui.NewProgram(ctx, uiCfg, ui.Deps{
		Clipboard: clip.NewReader(nil),
		Converter: a.runner,
		Player:    player,
		Library:   lib,
		Prepare:   a.prepare,
	})

	go func() {
		err := lib.Watch(ctx, cfg.TempDir, func(path string) {
			prog.Send(ui.LibraryChangedMsg{Path: path})
		})
		if err != nil {
			log.Warn("Not watching temp dir", "err", err)
		}
	}()

	// Run Bubble Tea program
	_, err = prog.Run()
	cancel()
	a.runner.Cancel()

	if cfg.SweepOnExit {
		sweep(cfg.TempDir)
	}
	if err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

func sweep(dir string) {
	n, err := library.SweepDir(dir)
	if err != nil {
		log.Warn("Unable to sweep temp dir", "dir", dir, "err", err)
		return
	}
	log.Debug("Swept temp dir", "dir", dir, "removed", n)
}

// signalContext is canceled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	// engine credentials may live in a local .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("Could not parse .env file", "err", err)
	}

	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug output (headless commands)")
	rootCmd.PersistentFlags().StringP("engine", "e", "", "speech engine ("+strings.Join(engines.Names(), "|")+")")
	rootCmd.PersistentFlags().String("voice", "", "engine voice")
	rootCmd.PersistentFlags().String("lang", "", "engine language code")
	rootCmd.PersistentFlags().StringP("speed", "s", "", "playback tempo (1x, 1.2x, 1.5x, 1.75x)")
	rootCmd.PersistentFlags().Int("volume", 100, "initial volume, 0-100")
	rootCmd.PersistentFlags().String("temp-dir", "", "directory for segments and recordings")
	rootCmd.PersistentFlags().Bool("strip-markdown", false, "strip markdown syntax before conversion")

	// Config bindings
	_ = viper.BindPFlag("engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("voice", rootCmd.PersistentFlags().Lookup("voice"))
	_ = viper.BindPFlag("lang", rootCmd.PersistentFlags().Lookup("lang"))
	_ = viper.BindPFlag("speed", rootCmd.PersistentFlags().Lookup("speed"))
	_ = viper.BindPFlag("volume", rootCmd.PersistentFlags().Lookup("volume"))
	_ = viper.BindPFlag("temp_dir", rootCmd.PersistentFlags().Lookup("temp-dir"))
	_ = viper.BindPFlag("strip_markdown", rootCmd.PersistentFlags().Lookup("strip-markdown"))

	setDefaults(viper.GetViper())

	rootCmd.AddCommand(configCmd, manCmd, convertCmd, listCmd, cleanCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, appName)
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, appName)}, dirs...)
	}

	if c := os.Getenv("PASTE2AUDIO_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName(appName)
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix(appName)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], appName+".yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
