// Command raventerm wires the core library to a real creack/pty-backed
// shell session: it loads session settings, optionally attaches an
// on-screen keyboard, streams stdin to the PTY, and on exit prints a
// plain-text dump of the grid. It deliberately stops short of a GL
// renderer — spec.md names rendering an external collaborator
// specified only as an interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/javanhut/raventerm/internal/config"
	"github.com/javanhut/raventerm/internal/dispatch"
	"github.com/javanhut/raventerm/internal/osk"
	"github.com/javanhut/raventerm/internal/session"
)

var (
	configPath string
	shellPath  string
	cols       int
	rows       int
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "raventerm",
	Short: "A VT/ANSI terminal core with an on-screen-keyboard logical model",
	Long: `raventerm drives a real shell through a pseudo-terminal, feeding its
output through a VT/ANSI parser into a scrollback-backed grid. This
binary has no GL renderer attached; it exists to exercise the core
library end to end and print the resulting screen on exit.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a session config YAML file (default: ~/.config/raventerm/config.yaml)")
	rootCmd.Flags().StringVar(&shellPath, "shell", "", "override the shell to launch")
	rootCmd.Flags().IntVar(&cols, "cols", 0, "override the terminal column count")
	rootCmd.Flags().IntVar(&rows, "rows", 0, "override the terminal row count")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "emit debug-level logs to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "raventerm:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := newLogger(verbose)

	path := configPath
	if path == "" {
		path = config.PathFor()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading session config: %w", err)
	}
	if shellPath != "" {
		cfg.ShellPath = shellPath
	}
	if cols > 0 {
		cfg.Cols = cols
	}
	if rows > 0 {
		cfg.Rows = rows
	}

	sess, err := session.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer sess.Close()

	if cfg.ColorSchemePath != "" {
		if palette, err := config.LoadTheme(cfg.ColorSchemePath); err != nil {
			logger.Debug().Err(err).Str("path", cfg.ColorSchemePath).Msg("failed to load color scheme, using defaults")
		} else {
			*sess.Grid().Palette() = *palette
		}
	}

	oskModel := buildOSK(cfg, logger)

	disp := dispatch.New(sess.Write, sess.Grid(), oskModel)

	stdinDone := make(chan struct{})
	shutdown := make(chan struct{}, 1)
	go streamStdin(sess, disp, stdinDone, shutdown)

loop:
	for !sess.HasExited() {
		select {
		case <-shutdown:
			logger.Info().Msg("exit combo received, shutting down")
			break loop
		case <-stdinDone:
			stdinDone = nil // stdin closed; keep polling for shell exit only
		case <-time.After(100 * time.Millisecond):
		}
	}

	if dir := sess.WorkingDir(); dir != "" {
		fmt.Println("#", dir)
	}
	fmt.Println(sess.Grid().VisibleText())
	return nil
}

// oskToggleByte is Ctrl+T, intercepted rather than forwarded so a
// plain terminal session (no GUI key events) can still exercise the
// Dispatcher's OSK mode cycling end to end.
const oskToggleByte = 0x14

// exitComboByte is Ctrl+Q, intercepted the same way as oskToggleByte.
// This binary has no real Back/Start buttons to report separately —
// it drives both halves of the Dispatcher's exit combo from the one
// byte a plain stdin stream can give us, so the combo's shutdown path
// still gets exercised end to end.
const exitComboByte = 0x11

// streamStdin forwards raw stdin bytes to the PTY, except for
// oskToggleByte and exitComboByte which it routes to the Dispatcher
// instead. Without a real windowing toolkit delivering (Sym, Mods) key
// events, this is the simplest faithful passthrough; a GUI embedder
// would instead call Dispatcher.HandleKey/HandleText/HandleButton per
// event.
func streamStdin(sess *session.Session, disp *dispatch.Dispatcher, done chan<- struct{}, shutdown chan<- struct{}) {
	defer close(done)
	buf := make([]byte, 256)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			start := 0
			for i, b := range chunk {
				if b != oskToggleByte && b != exitComboByte {
					continue
				}
				if i > start {
					if werr := sess.Write(chunk[start:i]); werr != nil {
						return
					}
				}
				switch b {
				case oskToggleByte:
					disp.CycleOSKMode()
				case exitComboByte:
					disp.HandleButton(dispatch.ButtonBack, true)
					if disp.HandleButton(dispatch.ButtonStart, true) {
						shutdown <- struct{}{}
						return
					}
				}
				start = i + 1
			}
			if start < len(chunk) {
				if werr := sess.Write(chunk[start:]); werr != nil {
					return
				}
			}
		}
		if err != nil {
			return
		}
		if sess.HasExited() {
			return
		}
	}
}

func buildOSK(cfg *config.SessionConfig, logger zerolog.Logger) *osk.Model {
	model := osk.New(logger)
	if cfg.LayoutPath != "" {
		layers, err := osk.ParseLayoutFile(cfg.LayoutPath)
		if err != nil {
			logger.Debug().Err(err).Str("path", cfg.LayoutPath).Msg("failed to load OSK layout")
		} else {
			for mask, rows := range layers {
				model.SetLayer(mask, rows)
			}
		}
	}
	for _, ks := range cfg.KeySets {
		if ks.AvailableOnly {
			name := strings.TrimSuffix(filepath.Base(ks.Path), filepath.Ext(ks.Path))
			model.MakeSetAvailable(name, ks.Path)
			continue
		}
		if ks.LoadAtStartup {
			if err := model.AddCustomSet(ks.Path); err != nil {
				logger.Debug().Err(err).Str("path", ks.Path).Msg("failed to load OSK key set")
			}
		}
	}
	return model
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
