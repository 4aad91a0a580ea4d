package state

import (
	"github.com/okvist/dfm/internal/document"
	"github.com/okvist/dfm/internal/session"
)

// serializeState captures live state into a fresh document. Each section
// is included only when its persistence-category flag is set; unset
// sections are omitted entirely, which also keeps them out of merge
// scope.
func serializeState(sess *session.Session) *document.Value {
	root := document.NewObject()
	flags := sess.Cfg.Persist

	gtabs := root.AddArray("gtabs")
	storeGTab(sess, gtabs.AppendObject())

	storeTrash(sess, root)

	if flags.Has(session.PersistOptions) {
		options := root.AddArray("options")
		for _, opt := range sess.GlobalOptionStrings() {
			options.AppendString(opt)
		}
	}

	if flags.Has(session.PersistAssocs) {
		storeAssocs(root, "assocs", sess.Assocs)
		storeAssocs(root, "xassocs", sess.XAssocs)
		storeAssocs(root, "viewers", sess.Viewers)
	}

	if flags.Has(session.PersistCommands) {
		storeCmds(sess, root)
	}

	if flags.Has(session.PersistMarks) {
		storeMarks(sess, root)
	}

	if flags.Has(session.PersistBookmarks) {
		storeBmarks(sess, root)
	}

	if flags.Has(session.PersistCmdHist) {
		storeHistory(root, "cmd-hist", sess.CmdHist)
	}

	if flags.Has(session.PersistSearchHist) {
		storeHistory(root, "search-hist", sess.SearchHist)
	}

	if flags.Has(session.PersistPromptHist) {
		storeHistory(root, "prompt-hist", sess.PromptHist)
	}

	if flags.Has(session.PersistFilterHist) {
		storeHistory(root, "lfilt-hist", sess.FilterHist)
	}

	if flags.Has(session.PersistRegisters) {
		storeRegs(sess, root)
	}

	if flags.Has(session.PersistDirStack) {
		storeDirStack(sess, root)
	}

	if flags.Has(session.PersistState) {
		root.SetBool("use-term-multiplexer", sess.UseTermMultiplexer)
	}

	if flags.Has(session.PersistColorScheme) {
		root.SetString("color-scheme", sess.ColorScheme)
	}

	return root
}

func storeGTab(sess *session.Session, gtab *document.Value) {
	panes := gtab.AddArray("panes")
	storeView(sess, panes.AppendObject(), sess.Left)
	storeView(sess, panes.AppendObject(), sess.Right)

	if sess.Cfg.Persist.Has(session.PersistTUI) {
		gtab.SetInt("active-pane", sess.Active)
		gtab.SetBool("preview", sess.Preview)

		splitter := gtab.AddObject("splitter")
		splitter.SetInt("pos", sess.SplitPos)

		orientation := "h"
		if sess.SplitVertical {
			orientation = "v"
		}

		splitter.SetString("orientation", orientation)
		splitter.SetBool("expanded", sess.SplitExpanded)
	}
}

func storeView(sess *session.Session, paneData *document.Value, view *session.View) {
	ptab := paneData.AddArray("ptabs").AppendObject()
	flags := sess.Cfg.Persist

	if flags.Has(session.PersistDHistory) && view.HistoryCap() > 0 {
		storeDHistory(sess, ptab, view)
	}

	if flags.Has(session.PersistState) {
		filters := ptab.AddObject("filters")
		filters.SetBool("invert", view.InvertFilter)
		filters.SetBool("dot", view.DotFilter)
		filters.SetString("manual", view.ManualFilter.Expr())
		filters.SetString("auto", view.AutoFilter.Expr())
	}

	if flags.Has(session.PersistOptions) {
		options := ptab.AddArray("options")
		for _, opt := range view.LocalOptionStrings() {
			options.AppendString(opt)
		}
	}

	if flags.Has(session.PersistTUI) {
		ptab.SetString("sorting", formatSortSpec(view.Sort))
	}
}

func storeDHistory(sess *session.Session, ptab *document.Value, view *session.View) {
	// Flush the current position so the newest entry reflects where the
	// view is right now.
	view.SavePosition()

	history := ptab.AddArray("history")

	for _, e := range view.History() {
		entry := history.AppendObject()
		entry.SetString("dir", e.Dir)
		entry.SetString("file", e.File)
		entry.SetInt("relpos", e.RelPos)
	}

	ptab.SetBool("restore-last-location", sess.Cfg.Persist.Has(session.PersistSaveDirs))
}

func storeHistory(root *document.Value, node string, hist *session.History) {
	if hist.Len() == 0 {
		return
	}

	entries := root.AddArray(node)
	for _, item := range hist.Items() {
		entries.AppendString(item)
	}
}

func storeAssocs(root *document.Value, node string, list *session.AssocList) {
	entries := root.AddArray(node)

	for _, a := range list.Entries() {
		// Synthetic builtin entries never reach the file.
		if a.Cmd == "" || a.Builtin {
			continue
		}

		entry := entries.AppendObject()
		entry.SetString("matchers", a.Matchers)
		entry.SetString("cmd", session.EncodeAssocCmd(a))
	}
}

func storeCmds(sess *session.Session, root *document.Value) {
	cmds := root.AddObject("cmds")

	for _, name := range sess.Commands.Names() {
		if body, ok := sess.Commands.Get(name); ok {
			cmds.SetString(name, body)
		}
	}
}

func storeMarks(sess *session.Session, root *document.Value) {
	marks := root.AddObject("marks")

	for _, name := range sess.Marks.Names() {
		if session.IsSpecialMark(name) {
			continue
		}

		mark, _ := sess.Marks.Get(name)

		entry := marks.AddObject(string(name))
		entry.SetString("dir", mark.Dir)
		entry.SetString("file", mark.File)
		entry.SetFloat("ts", float64(mark.Ts.Unix()))
	}
}

func storeBmarks(sess *session.Session, root *document.Value) {
	bmarks := root.AddObject("bmarks")

	for _, path := range sess.Bookmarks.Paths() {
		bmark, _ := sess.Bookmarks.Get(path)

		entry := bmarks.AddObject(path)
		entry.SetString("tags", bmark.Tags)
		entry.SetFloat("ts", float64(bmark.Ts.Unix()))
	}
}

func storeRegs(sess *session.Session, root *document.Value) {
	regs := root.AddObject("regs")

	for _, name := range sess.Registers.Names() {
		files := regs.AddArray(string(name))
		for _, file := range sess.Registers.Files(name) {
			files.AppendString(file)
		}
	}
}

func storeDirStack(sess *session.Session, root *document.Value) {
	entries := root.AddArray("dir-stack")

	for _, e := range sess.DirStack.Entries() {
		entry := entries.AppendObject()
		entry.SetString("left-dir", e.LeftDir)
		entry.SetString("left-file", e.LeftFile)
		entry.SetString("right-dir", e.RightDir)
		entry.SetString("right-file", e.RightFile)
	}
}

func storeTrash(sess *session.Session, root *document.Value) {
	if sess.Trash.Len() == 0 {
		return
	}

	trash := root.AddArray("trash")

	for _, e := range sess.Trash.Entries() {
		entry := trash.AppendObject()
		entry.SetString("trashed", e.Trashed)
		entry.SetString("original", e.Original)
	}
}
