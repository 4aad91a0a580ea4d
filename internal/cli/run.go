// Package cli implements the command-line interface and the interactive
// shell of dfm.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/okvist/dfm/internal/config"
	dfmfs "github.com/okvist/dfm/internal/fs"
	"github.com/okvist/dfm/internal/session"
	"github.com/okvist/dfm/internal/state"
)

// Run is the main entry point. Returns exit code.
func Run(out, errOut io.Writer, args []string, env []string) int {
	flags := flag.NewFlagSet("dfm", flag.ContinueOnError)
	flags.SetOutput(&strings.Builder{}) // discard pflag output

	configPath := flags.String("config", "", "path to config file")
	stateDir := flags.String("state-dir", "", "override the state directory")
	verbose := flags.BoolP("verbose", "v", false, "enable debug logging")

	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(out, flags)

			return 0
		}

		fprintln(errOut, "error:", err)

		return 1
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	cfg, sources, err := config.Load(*configPath, env)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if *stateDir != "" {
		cfg.StateDir = *stateDir
	}

	sessCfg, err := cfg.SessionConfig()
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	sess := session.New(sessCfg)
	store := state.New(dfmfs.NewReal(), log, cfg.StateDir)

	store.Load(sess, false)

	if err := repl(sess, store, cfg, sources, out, errOut); err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if err := store.Save(sess); err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	return 0
}

func printUsage(out io.Writer, flags *flag.FlagSet) {
	fprintln(out, "Usage: dfm [flags]")
	fprintln(out)
	fprintln(out, "Interactive dual-pane file manager shell.")
	fprintln(out)
	fprintln(out, "Flags:")

	var buf strings.Builder

	flags.SetOutput(&buf)
	flags.PrintDefaults()
	fprintln(out, strings.TrimRight(buf.String(), "\n"))
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}
