package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownOption reports an option name outside the recognized set.
var ErrUnknownOption = errors.New("unknown option")

// GlobalOptions are the global options recognized by the option engine.
type GlobalOptions struct {
	AutoChPos   bool
	Columns     int
	FastRun     bool
	FindPrg     string
	FollowLinks bool
	GrepPrg     string
	History     int
	HLSearch    bool
	IgnoreCase  bool
	IncSearch   bool
	Lines       int
	Shell       string
	SmartCase   bool
	SortNumbers bool
	StatusLine  string
	TimeFmt     string
	Trash       bool
	UndoLevels  int
	ViCmd       string
	WrapScan    bool
}

func defaultGlobalOptions(historyLen int) GlobalOptions {
	return GlobalOptions{
		AutoChPos:  true,
		Columns:    80,
		History:    historyLen,
		IncSearch:  true,
		Lines:      24,
		Shell:      "/bin/sh",
		TimeFmt:    "%m/%d %H:%M",
		Trash:      true,
		UndoLevels: 100,
		ViCmd:      "vim",
		WrapScan:   true,
	}
}

// SetOption applies one flat option string to the session, in one of the
// forms "name", "noname" or "name=value". When view is non-nil, names of
// view-local options bind to it; otherwise only global names are
// recognized. Values have their escaped spaces unescaped.
func (s *Session) SetOption(view *View, arg string) error {
	name, value, valued := strings.Cut(arg, "=")
	if valued {
		return s.setValuedOption(view, name, UnescapeOptValue(value))
	}

	enable := true
	if rest, ok := strings.CutPrefix(name, "no"); ok && s.isBoolOption(rest) {
		name, enable = rest, false
	}

	return s.setBoolOption(view, name, enable)
}

func (s *Session) isBoolOption(name string) bool {
	switch name {
	case "autochpos", "fastrun", "followlinks", "hlsearch", "ignorecase",
		"incsearch", "smartcase", "sortnumbers", "trash", "wrapscan",
		"dotfiles", "lsview", "number":
		return true
	default:
		return false
	}
}

func (s *Session) setBoolOption(view *View, name string, value bool) error {
	switch name {
	case "autochpos":
		s.Opts.AutoChPos = value
	case "fastrun":
		s.Opts.FastRun = value
	case "followlinks":
		s.Opts.FollowLinks = value
	case "hlsearch":
		s.Opts.HLSearch = value
	case "ignorecase":
		s.Opts.IgnoreCase = value
	case "incsearch":
		s.Opts.IncSearch = value
	case "smartcase":
		s.Opts.SmartCase = value
	case "sortnumbers":
		s.Opts.SortNumbers = value
	case "trash":
		s.Opts.Trash = value
	case "wrapscan":
		s.Opts.WrapScan = value
	case "dotfiles":
		if view == nil {
			return fmt.Errorf("%w in global scope: %s", ErrUnknownOption, name)
		}

		view.Opts.DotFiles = value
	case "lsview":
		if view == nil {
			return fmt.Errorf("%w in global scope: %s", ErrUnknownOption, name)
		}

		view.Opts.LsView = value
	case "number":
		if view == nil {
			return fmt.Errorf("%w in global scope: %s", ErrUnknownOption, name)
		}

		view.Opts.Number = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}

	return nil
}

func (s *Session) setValuedOption(view *View, name, value string) error {
	switch name {
	case "columns", "history", "lines", "numberwidth", "undolevels":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("option %s needs a number: %w", name, err)
		}

		return s.setIntOption(view, name, n)
	case "findprg":
		s.Opts.FindPrg = value
	case "grepprg":
		s.Opts.GrepPrg = value
	case "shell":
		s.Opts.Shell = value
	case "statusline":
		s.Opts.StatusLine = value
	case "timefmt":
		s.Opts.TimeFmt = value
	case "vicmd":
		s.Opts.ViCmd = value
	case "previewprg":
		if view == nil {
			return fmt.Errorf("%w in global scope: %s", ErrUnknownOption, name)
		}

		view.Opts.PreviewPrg = value
	case "viewcolumns":
		if view == nil {
			return fmt.Errorf("%w in global scope: %s", ErrUnknownOption, name)
		}

		view.Opts.ViewColumns = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}

	return nil
}

func (s *Session) setIntOption(view *View, name string, n int) error {
	switch name {
	case "columns":
		s.Opts.Columns = n
	case "history":
		s.Opts.History = n
		s.ResizeHistories(n)
	case "lines":
		s.Opts.Lines = n
	case "undolevels":
		s.Opts.UndoLevels = n
	case "numberwidth":
		if view == nil {
			return fmt.Errorf("%w in global scope: %s", ErrUnknownOption, name)
		}

		view.Opts.NumberWidth = n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}

	return nil
}

// GlobalOptionStrings produces the current value of every recognized
// global option as flat strings: booleans as "opt"/"noopt", valued
// options as "key=value" with spaces escaped. The enumeration is fixed
// and exhaustive so a serialized session restores every option.
func (s *Session) GlobalOptionStrings() []string {
	o := s.Opts

	return []string{
		boolOpt("autochpos", o.AutoChPos),
		"columns=" + strconv.Itoa(o.Columns),
		boolOpt("fastrun", o.FastRun),
		"findprg=" + EscapeOptValue(o.FindPrg),
		boolOpt("followlinks", o.FollowLinks),
		"grepprg=" + EscapeOptValue(o.GrepPrg),
		"history=" + strconv.Itoa(o.History),
		boolOpt("hlsearch", o.HLSearch),
		boolOpt("ignorecase", o.IgnoreCase),
		boolOpt("incsearch", o.IncSearch),
		"lines=" + strconv.Itoa(o.Lines),
		"shell=" + EscapeOptValue(o.Shell),
		boolOpt("smartcase", o.SmartCase),
		boolOpt("sortnumbers", o.SortNumbers),
		"statusline=" + EscapeOptValue(o.StatusLine),
		"timefmt=" + EscapeOptValue(o.TimeFmt),
		boolOpt("trash", o.Trash),
		"undolevels=" + strconv.Itoa(o.UndoLevels),
		"vicmd=" + EscapeOptValue(o.ViCmd),
		boolOpt("wrapscan", o.WrapScan),
	}
}

// LocalOptionStrings produces the current value of every recognized
// view-local option of view, in the same flat form.
func (v *View) LocalOptionStrings() []string {
	o := v.Opts

	return []string{
		boolOpt("dotfiles", o.DotFiles),
		boolOpt("lsview", o.LsView),
		boolOpt("number", o.Number),
		"numberwidth=" + strconv.Itoa(o.NumberWidth),
		"previewprg=" + EscapeOptValue(o.PreviewPrg),
		"viewcolumns=" + EscapeOptValue(o.ViewColumns),
	}
}

func boolOpt(name string, value bool) string {
	if value {
		return name
	}

	return "no" + name
}

// EscapeOptValue backslash-escapes spaces and backslashes so option
// strings survive storage in whitespace-separated contexts.
func EscapeOptValue(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\\' {
			b.WriteByte('\\')
		}

		b.WriteByte(s[i])
	}

	return b.String()
}

// UnescapeOptValue reverses [EscapeOptValue].
func UnescapeOptValue(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}

		b.WriteByte(s[i])
	}

	return b.String()
}
