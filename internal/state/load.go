package state

import (
	"log/slog"
	"time"

	"github.com/okvist/dfm/internal/document"
	"github.com/okvist/dfm/internal/session"
)

// loadState applies a document onto live state. Every field access is
// get-if-present: absent or wrong-typed values leave the corresponding
// live field untouched. With reread set, focus and layout fields are
// preserved and only content is refreshed.
func loadState(sess *session.Session, root *document.Value, reread bool, log *slog.Logger) {
	if multiplexer, ok := root.GetBool("use-term-multiplexer"); ok {
		sess.UseTermMultiplexer = multiplexer
	}

	if cs, ok := root.GetString("color-scheme"); ok {
		sess.ColorScheme = cs
	}

	if gtabs, ok := root.GetArray("gtabs"); ok {
		for i := 0; i < gtabs.Len(); i++ {
			if gtab, ok := gtabs.ObjectAt(i); ok {
				loadGTab(sess, gtab, reread, log)
			}
		}
	}

	loadOptions(sess, nil, root, log)
	loadAssocs(sess, root, "assocs", sess.Assocs, log)
	loadAssocs(sess, root, "xassocs", sess.XAssocs, log)
	loadAssocs(sess, root, "viewers", sess.Viewers, log)
	loadCmds(sess, root)
	loadMarks(sess, root, log)
	loadBmarks(sess, root)
	loadRegs(sess, root, log)
	loadDirStack(sess, root)
	loadTrash(sess, root)
	loadHistory(root, "cmd-hist", sess.CmdHist)
	loadHistory(root, "search-hist", sess.SearchHist)
	loadHistory(root, "prompt-hist", sess.PromptHist)
	loadHistory(root, "lfilt-hist", sess.FilterHist)
}

func loadGTab(sess *session.Session, gtab *document.Value, reread bool, log *slog.Logger) {
	if panes, ok := gtab.GetArray("panes"); ok {
		if pane, ok := panes.ObjectAt(session.LeftPane); ok {
			loadPane(sess, pane, sess.Left, reread, log)
		}

		if pane, ok := panes.ObjectAt(session.RightPane); ok {
			loadPane(sess, pane, sess.Right, reread, log)
		}
	}

	if preview, ok := gtab.GetBool("preview"); ok {
		sess.Preview = preview
	}

	splitter, _ := gtab.GetObject("splitter")

	if orientation, ok := splitter.GetString("orientation"); ok {
		sess.SplitVertical = orientation == "v"
	}

	if pos, ok := splitter.GetInt("pos"); ok {
		sess.SplitPos = pos
	}

	// Focus and window expansion survive a state refresh.
	if !reread {
		if active, ok := gtab.GetInt("active-pane"); ok && active == session.RightPane {
			sess.Active = session.RightPane
		}

		if expanded, ok := splitter.GetBool("expanded"); ok {
			sess.SplitExpanded = expanded
		}
	}
}

func loadPane(sess *session.Session, pane *document.Value, view *session.View,
	reread bool, log *slog.Logger,
) {
	ptabs, ok := pane.GetArray("ptabs")
	if !ok {
		return
	}

	for i := 0; i < ptabs.Len(); i++ {
		ptab, ok := ptabs.ObjectAt(i)
		if !ok {
			continue
		}

		loadDHistory(ptab, view, reread)
		loadFilters(ptab, view, log)
		loadOptions(sess, view, ptab, log)

		if sorting, ok := ptab.GetString("sorting"); ok {
			view.SetSortKeys(parseSortSpec(sorting))
		}
	}
}

func loadDHistory(ptab *document.Value, view *session.View, reread bool) {
	lastDir := ""

	if history, ok := ptab.GetArray("history"); ok {
		for i := 0; i < history.Len(); i++ {
			entry, ok := history.ObjectAt(i)
			if !ok {
				continue
			}

			dir, okDir := entry.GetString("dir")
			file, okFile := entry.GetString("file")
			relPos, okPos := entry.GetInt("relpos")

			if !okDir || !okFile || !okPos {
				continue
			}

			if relPos < 0 {
				relPos = 0
			}

			// Capacity differences between save time and load time never
			// drop an entry: grow by one instead.
			if view.HistoryFull() {
				view.SetHistoryCap(view.HistoryCap() + 1)
			}

			view.SaveHistoryEntry(dir, file, relPos)

			lastDir = dir
		}
	}

	if restore, ok := ptab.GetBool("restore-last-location"); ok {
		if restore && !reread && lastDir != "" {
			view.CurrDir = lastDir
		}
	}
}

func loadFilters(ptab *document.Value, view *session.View, log *slog.Logger) {
	filters, ok := ptab.GetObject("filters")
	if !ok {
		return
	}

	if invert, ok := filters.GetBool("invert"); ok {
		view.InvertFilter = invert
	}

	if dot, ok := filters.GetBool("dot"); ok {
		view.DotFilter = dot
	}

	if manual, ok := filters.GetString("manual"); ok {
		setManualFilter(view, manual, log)
	}

	if auto, ok := filters.GetString("auto"); ok {
		matcher, err := session.CompileMatcher(auto)
		if err != nil {
			log.Warn("dropping auto filter", "filter", auto, "error", err)

			matcher = session.MustCompileMatcher("")
		}

		view.AutoFilter = matcher
	}
}

// setManualFilter installs value as the view's manual filter, falling
// back to the always-valid empty filter when the expression does not
// compile.
func setManualFilter(view *session.View, value string, log *slog.Logger) {
	view.PrevManualFilter = value

	matcher, err := session.CompileMatcher(value)
	if err != nil {
		log.Warn("dropping manual filter", "filter", value, "error", err)

		view.PrevManualFilter = ""
		matcher = session.MustCompileMatcher("")
	}

	view.ManualFilter = matcher
}

func loadOptions(sess *session.Session, view *session.View,
	parent *document.Value, log *slog.Logger,
) {
	options, ok := parent.GetArray("options")
	if !ok {
		return
	}

	for i := 0; i < options.Len(); i++ {
		opt, ok := options.StringAt(i)
		if !ok {
			continue
		}

		if err := sess.SetOption(view, opt); err != nil {
			log.Warn("ignoring stored option", "option", opt, "error", err)
		}
	}
}

func loadAssocs(sess *session.Session, root *document.Value, node string,
	list *session.AssocList, log *slog.Logger,
) {
	entries, ok := root.GetArray(node)
	if !ok {
		return
	}

	for i := 0; i < entries.Len(); i++ {
		entry, ok := entries.ObjectAt(i)
		if !ok {
			continue
		}

		matchers, okMatchers := entry.GetString("matchers")
		cmd, okCmd := entry.GetString("cmd")

		if !okMatchers || !okCmd {
			continue
		}

		if _, err := session.CompileMatcher(matchers); err != nil {
			log.Warn("skipping association", "matchers", matchers, "error", err)

			continue
		}

		description, plain := session.DecodeAssocCmd(cmd)
		list.Add(session.Assoc{
			Matchers:    matchers,
			Cmd:         plain,
			Description: description,
		})
	}
}

func loadCmds(sess *session.Session, root *document.Value) {
	cmds, ok := root.GetObject("cmds")
	if !ok {
		return
	}

	for i := 0; i < cmds.Len(); i++ {
		name := cmds.NameAt(i)
		if body, ok := cmds.GetString(name); ok {
			sess.Commands.Set(name, body)
		}
	}
}

func loadMarks(sess *session.Session, root *document.Value, log *slog.Logger) {
	marks, ok := root.GetObject("marks")
	if !ok {
		return
	}

	for i := 0; i < marks.Len(); i++ {
		name := marks.NameAt(i)
		mark := marks.ValueAt(i)

		dir, okDir := mark.GetString("dir")
		file, okFile := mark.GetString("file")
		ts, okTs := mark.GetFloat("ts")

		if !okDir || !okFile || !okTs || name == "" {
			continue
		}

		if err := sess.Marks.Set(name[0], dir, file, time.Unix(int64(ts), 0)); err != nil {
			log.Warn("skipping mark", "name", name, "error", err)
		}
	}
}

func loadBmarks(sess *session.Session, root *document.Value) {
	bmarks, ok := root.GetObject("bmarks")
	if !ok {
		return
	}

	for i := 0; i < bmarks.Len(); i++ {
		path := bmarks.NameAt(i)
		bmark := bmarks.ValueAt(i)

		tags, okTags := bmark.GetString("tags")
		ts, okTs := bmark.GetFloat("ts")

		if okTags && okTs {
			sess.Bookmarks.Set(path, tags, time.Unix(int64(ts), 0))
		}
	}
}

func loadRegs(sess *session.Session, root *document.Value, log *slog.Logger) {
	regs, ok := root.GetObject("regs")
	if !ok {
		return
	}

	for i := 0; i < regs.Len(); i++ {
		name := regs.NameAt(i)
		if name == "" {
			continue
		}

		files := regs.ValueAt(i)
		for j := 0; j < files.Len(); j++ {
			if file, ok := files.StringAt(j); ok {
				if err := sess.Registers.Append(name[0], file); err != nil {
					log.Warn("skipping register", "name", name, "error", err)

					break
				}
			}
		}
	}
}

func loadDirStack(sess *session.Session, root *document.Value) {
	entries, ok := root.GetArray("dir-stack")
	if !ok {
		return
	}

	for i := 0; i < entries.Len(); i++ {
		entry, ok := entries.ObjectAt(i)
		if !ok {
			continue
		}

		leftDir, okLD := entry.GetString("left-dir")
		leftFile, okLF := entry.GetString("left-file")
		rightDir, okRD := entry.GetString("right-dir")
		rightFile, okRF := entry.GetString("right-file")

		if okLD && okLF && okRD && okRF {
			sess.DirStack.Push(session.DirStackEntry{
				LeftDir:   leftDir,
				LeftFile:  leftFile,
				RightDir:  rightDir,
				RightFile: rightFile,
			})
		}
	}
}

func loadTrash(sess *session.Session, root *document.Value) {
	trash, ok := root.GetArray("trash")
	if !ok {
		return
	}

	for i := 0; i < trash.Len(); i++ {
		entry, ok := trash.ObjectAt(i)
		if !ok {
			continue
		}

		trashed, okTrashed := entry.GetString("trashed")
		original, okOriginal := entry.GetString("original")

		if okTrashed && okOriginal {
			sess.Trash.Add(original, trashed)
		}
	}
}

func loadHistory(root *document.Value, node string, hist *session.History) {
	entries, ok := root.GetArray(node)
	if !ok {
		return
	}

	for i := 0; i < entries.Len(); i++ {
		item, ok := entries.StringAt(i)
		if !ok {
			continue
		}

		// Grow rather than drop when the stored history is longer than
		// the configured capacity.
		if hist.Full() {
			hist.SetCapacity(hist.Cap() + 1)
		}

		hist.Record(item)
	}
}
