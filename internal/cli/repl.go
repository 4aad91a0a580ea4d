package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/okvist/dfm/internal/config"
	"github.com/okvist/dfm/internal/session"
	"github.com/okvist/dfm/internal/state"
)

// repl runs the interactive shell until quit or EOF. Entered lines feed
// the session's command history, so they persist across runs and seed
// line editing in the next one.
func repl(sess *session.Session, store *state.Store, cfg config.Config,
	sources config.Sources, out, errOut io.Writer,
) error {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()

	line.SetCtrlCAborts(true)

	for _, item := range sess.CmdHist.Items() {
		line.AppendHistory(item)
	}

	if cwd, err := os.Getwd(); err == nil && sess.CurrentView().CurrDir == "" {
		sess.Left.CurrDir = cwd
		sess.Right.CurrDir = cwd
	}

	for {
		input, err := line.Prompt(sess.CurrentView().CurrDir + "> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}

			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		sess.CmdHist.Record(input)
		line.AppendHistory(input)

		quit, err := dispatch(sess, store, cfg, sources, out, input)
		if err != nil {
			fprintln(errOut, "error:", err)
		}

		if quit {
			return nil
		}
	}
}

func dispatch(sess *session.Session, store *state.Store, cfg config.Config,
	sources config.Sources, out io.Writer, input string,
) (bool, error) {
	fields := strings.Fields(input)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "save":
		return false, store.Save(sess)
	case "cd":
		return false, execCd(sess, args)
	case "tab":
		sess.Active = 1 - sess.Active
	case "set":
		for _, arg := range args {
			if err := sess.SetOption(sess.CurrentView(), arg); err != nil {
				return false, err
			}
		}
	case "mark":
		return false, execMark(sess, args)
	case "marks":
		printMarks(sess, out)
	case "bmark":
		return false, execBmark(sess, args)
	case "bmarks":
		printBmarks(sess, out)
	case "yank":
		return false, execYank(sess, args)
	case "regs":
		printRegs(sess, out)
	case "pushd":
		sess.DirStack.Push(session.DirStackEntry{
			LeftDir:   sess.Left.CurrDir,
			LeftFile:  sess.Left.CurrFile,
			RightDir:  sess.Right.CurrDir,
			RightFile: sess.Right.CurrFile,
		})
	case "popd":
		execPopd(sess)
	case "hist":
		for _, item := range sess.CmdHist.Items() {
			fprintln(out, item)
		}
	case "print-config":
		printConfig(cfg, sources, out)
	case "help":
		printHelp(out)
	default:
		return false, fmt.Errorf("unknown command: %s", cmd)
	}

	return false, nil
}

func execCd(sess *session.Session, args []string) error {
	if len(args) == 0 {
		return errors.New("cd: directory required")
	}

	view := sess.CurrentView()

	dir := args[0]
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(view.CurrDir, dir)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("cd: not a directory: %s", dir)
	}

	view.SavePosition()
	view.CurrDir = dir
	view.CurrFile = ""
	view.CurrPos = 0
	view.SaveHistoryEntry(dir, "", 0)

	return nil
}

func execMark(sess *session.Session, args []string) error {
	if len(args) < 2 {
		return errors.New("mark: usage: mark <name> <dir> [file]")
	}

	if len(args[0]) != 1 {
		return session.ErrBadMarkName
	}

	file := ""
	if len(args) > 2 {
		file = args[2]
	}

	return sess.Marks.Set(args[0][0], args[1], file, time.Now())
}

func execBmark(sess *session.Session, args []string) error {
	if len(args) == 0 {
		return errors.New("bmark: usage: bmark <path> [tags]")
	}

	tags := ""
	if len(args) > 1 {
		tags = strings.Join(args[1:], ",")
	}

	sess.Bookmarks.Set(args[0], tags, time.Now())

	return nil
}

func execYank(sess *session.Session, args []string) error {
	if len(args) < 2 {
		return errors.New("yank: usage: yank <register> <file>...")
	}

	if len(args[0]) != 1 {
		return session.ErrBadRegisterName
	}

	for _, file := range args[1:] {
		if err := sess.Registers.Append(args[0][0], file); err != nil {
			return err
		}
	}

	return nil
}

func execPopd(sess *session.Session) {
	entry, ok := sess.DirStack.Pop()
	if !ok {
		return
	}

	sess.Left.CurrDir = entry.LeftDir
	sess.Left.CurrFile = entry.LeftFile
	sess.Right.CurrDir = entry.RightDir
	sess.Right.CurrFile = entry.RightFile
}

func printMarks(sess *session.Session, out io.Writer) {
	for _, name := range sess.Marks.Names() {
		if mark, ok := sess.Marks.Get(name); ok {
			fprintln(out, string(name), mark.Dir, mark.File)
		}
	}
}

func printBmarks(sess *session.Session, out io.Writer) {
	for _, path := range sess.Bookmarks.Paths() {
		if bmark, ok := sess.Bookmarks.Get(path); ok {
			fprintln(out, path, bmark.Tags)
		}
	}
}

func printRegs(sess *session.Session, out io.Writer) {
	for _, name := range sess.Registers.Names() {
		fprintln(out, string(name), strings.Join(sess.Registers.Files(name), " "))
	}
}

func printConfig(cfg config.Config, sources config.Sources, out io.Writer) {
	if formatted, err := config.FormatConfig(cfg); err == nil {
		fprintln(out, formatted)
	}

	if sources.Global != "" {
		fprintln(out, "global config:", sources.Global)
	}

	if sources.Explicit != "" {
		fprintln(out, "explicit config:", sources.Explicit)
	}
}

func printHelp(out io.Writer) {
	fprintln(out, "Commands:")
	fprintln(out, "  cd <dir>                change directory of the active pane")
	fprintln(out, "  tab                     switch the active pane")
	fprintln(out, "  set <option>...         set options, e.g. set nohlsearch history=50")
	fprintln(out, "  mark <name> <dir> [f]   set a mark")
	fprintln(out, "  marks                   list marks")
	fprintln(out, "  bmark <path> [tags]     bookmark a path")
	fprintln(out, "  bmarks                  list bookmarks")
	fprintln(out, "  yank <reg> <file>...    append files to a register")
	fprintln(out, "  regs                    list registers")
	fprintln(out, "  pushd / popd            push or pop the directory pair stack")
	fprintln(out, "  hist                    show command history")
	fprintln(out, "  print-config            show the effective configuration")
	fprintln(out, "  save                    write state now")
	fprintln(out, "  quit                    save state and exit")
}
