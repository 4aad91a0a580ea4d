package state

import (
	"time"

	"github.com/okvist/dfm/internal/document"
	"github.com/okvist/dfm/internal/fs"
	"github.com/okvist/dfm/internal/session"
	"github.com/okvist/dfm/internal/trie"
)

// mergeStates folds an admixture document (state written by another
// instance since this one last read the file) into the current document.
// Merging is additive and current-biased: nothing of the current
// instance is lost, admixture data only fills gaps or wins on strictly
// newer timestamps. Sections whose persistence flag is off are not
// touched.
func mergeStates(fsys fs.FS, sess *session.Session,
	current, admixture *document.Value,
) {
	flags := sess.Cfg.Persist

	if flags.Has(session.PersistDHistory) {
		mergeTabs(fsys, sess, current, admixture)
	}

	if flags.Has(session.PersistAssocs) {
		mergeAssocs(sess.Assocs, current, admixture, "assocs")
		mergeAssocs(sess.XAssocs, current, admixture, "xassocs")
		mergeAssocs(sess.Viewers, current, admixture, "viewers")
	}

	if flags.Has(session.PersistCommands) {
		mergeCommands(current, admixture)
	}

	if flags.Has(session.PersistMarks) {
		mergeMarks(sess, current, admixture)
	}

	if flags.Has(session.PersistBookmarks) {
		mergeBmarks(sess, current, admixture)
	}

	if flags.Has(session.PersistCmdHist) {
		mergeHistory(current, admixture, "cmd-hist")
	}

	if flags.Has(session.PersistSearchHist) {
		mergeHistory(current, admixture, "search-hist")
	}

	if flags.Has(session.PersistPromptHist) {
		mergeHistory(current, admixture, "prompt-hist")
	}

	if flags.Has(session.PersistFilterHist) {
		mergeHistory(current, admixture, "lfilt-hist")
	}

	if flags.Has(session.PersistRegisters) {
		mergeRegs(current, admixture)
	}

	if flags.Has(session.PersistDirStack) {
		mergeDirStack(sess, current, admixture)
	}

	mergeTrash(sess, current, admixture)
}

// mergeTabs merges the per-pane directory histories, but only when both
// documents hold exactly one global tab and one pane tab on every side.
// Anything else cannot be paired up one to one and is skipped whole.
func mergeTabs(fsys fs.FS, sess *session.Session, current, admixture *document.Value) {
	curLeft := onlyPtab(current, session.LeftPane)
	curRight := onlyPtab(current, session.RightPane)
	admLeft := onlyPtab(admixture, session.LeftPane)
	admRight := onlyPtab(admixture, session.RightPane)

	if curLeft == nil || curRight == nil || admLeft == nil || admRight == nil {
		return
	}

	mergeDHistory(fsys, sess.Left, curLeft, admLeft)
	mergeDHistory(fsys, sess.Right, curRight, admRight)
}

// onlyPtab digs out the pane tab of the given pane from a state
// document, but only when the document holds exactly one global tab and
// exactly one pane tab on that side.
func onlyPtab(root *document.Value, pane int) *document.Value {
	gtabs, ok := root.GetArray("gtabs")
	if !ok || gtabs.Len() != 1 {
		return nil
	}

	gtab, ok := gtabs.ObjectAt(0)
	if !ok {
		return nil
	}

	panes, ok := gtab.GetArray("panes")
	if !ok {
		return nil
	}

	paneData, ok := panes.ObjectAt(pane)
	if !ok {
		return nil
	}

	ptabs, ok := paneData.GetArray("ptabs")
	if !ok || ptabs.Len() != 1 {
		return nil
	}

	ptab, ok := ptabs.ObjectAt(0)
	if !ok {
		return nil
	}

	return ptab
}

// mergeDHistory prepends directory history entries visited by the other
// instance. Every entry whose directory is unknown to this instance and
// still present on disk is taken; they go ahead of the current entries,
// so the current instance's history always ranks as more recent. The
// load side grows the history instead of dropping overflow. A history
// with no spare capacity at all is left alone.
func mergeDHistory(fsys fs.FS, view *session.View, curPtab, admPtab *document.Value) {
	admHist, ok := admPtab.GetArray("history")
	if !ok || admHist.Len() == 0 {
		return
	}

	if view.HistoryCap()-len(view.History()) <= 0 {
		return
	}

	merged := document.NewArray()

	for i := 0; i < admHist.Len(); i++ {
		entry, ok := admHist.ObjectAt(i)
		if !ok {
			continue
		}

		dir, ok := entry.GetString("dir")
		if !ok || view.HistoryContains(dir) || !isDir(fsys, dir) {
			continue
		}

		merged.Append(entry.Clone())
	}

	if merged.Len() == 0 {
		return
	}

	if curHist, ok := curPtab.GetArray("history"); ok {
		for i := 0; i < curHist.Len(); i++ {
			merged.Append(curHist.Index(i).Clone())
		}
	}

	curPtab.Set("history", merged)
}

func isDir(fsys fs.FS, path string) bool {
	info, err := fsys.Stat(path)

	return err == nil && info.IsDir()
}

// mergeAssocs appends association entries unknown to this instance. A
// pair is known when the live list holds the same matchers with the
// same command.
func mergeAssocs(list *session.AssocList, current, admixture *document.Value, node string) {
	admEntries, ok := admixture.GetArray(node)
	if !ok {
		return
	}

	curEntries, ok := current.GetArray(node)
	if !ok {
		curEntries = current.AddArray(node)
	}

	for i := 0; i < admEntries.Len(); i++ {
		entry, ok := admEntries.ObjectAt(i)
		if !ok {
			continue
		}

		matchers, okMatchers := entry.GetString("matchers")
		cmd, okCmd := entry.GetString("cmd")

		if !okMatchers || !okCmd {
			continue
		}

		if !list.Exists(matchers, cmd) {
			curEntries.Append(entry.Clone())
		}
	}
}

func mergeCommands(current, admixture *document.Value) {
	admCmds, ok := admixture.GetObject("cmds")
	if !ok {
		return
	}

	curCmds, ok := current.GetObject("cmds")
	if !ok {
		curCmds = current.AddObject("cmds")
	}

	for i := 0; i < admCmds.Len(); i++ {
		name := admCmds.NameAt(i)
		if !curCmds.Has(name) {
			curCmds.Set(name, admCmds.ValueAt(i).Clone())
		}
	}
}

// mergeMarks takes over marks the other instance set at a strictly later
// time than this one. Ties favor the current instance.
func mergeMarks(sess *session.Session, current, admixture *document.Value) {
	admMarks, ok := admixture.GetObject("marks")
	if !ok {
		return
	}

	curMarks, ok := current.GetObject("marks")
	if !ok {
		curMarks = current.AddObject("marks")
	}

	for i := 0; i < admMarks.Len(); i++ {
		name := admMarks.NameAt(i)
		mark := admMarks.ValueAt(i)

		ts, ok := mark.GetFloat("ts")
		if !ok || name == "" || !session.IsValidMark(name[0]) ||
			session.IsSpecialMark(name[0]) {
			continue
		}

		if sess.Marks.IsOlderThan(name[0], time.Unix(int64(ts), 0)) {
			curMarks.Set(name, mark.Clone())
		}
	}
}

func mergeBmarks(sess *session.Session, current, admixture *document.Value) {
	admBmarks, ok := admixture.GetObject("bmarks")
	if !ok {
		return
	}

	curBmarks, ok := current.GetObject("bmarks")
	if !ok {
		curBmarks = current.AddObject("bmarks")
	}

	for i := 0; i < admBmarks.Len(); i++ {
		path := admBmarks.NameAt(i)
		bmark := admBmarks.ValueAt(i)

		ts, ok := bmark.GetFloat("ts")
		if !ok {
			continue
		}

		if sess.Bookmarks.IsOlderThan(path, time.Unix(int64(ts), 0)) {
			curBmarks.Set(path, bmark.Clone())
		}
	}
}

// mergeHistory unions a string history. Admixture entries unknown to
// the current document go first so the current instance's entries stay
// the most recent ones.
func mergeHistory(current, admixture *document.Value, node string) {
	admEntries, ok := admixture.GetArray(node)
	if !ok || admEntries.Len() == 0 {
		return
	}

	curEntries, ok := current.GetArray(node)
	if !ok {
		curEntries = current.AddArray(node)
	}

	seen := trie.New()
	for i := 0; i < curEntries.Len(); i++ {
		if item, ok := curEntries.StringAt(i); ok {
			seen.Put(item)
		}
	}

	merged := document.NewArray()

	for i := 0; i < admEntries.Len(); i++ {
		item, ok := admEntries.StringAt(i)
		if !ok || seen.Contains(item) {
			continue
		}

		seen.Put(item)
		merged.AppendString(item)
	}

	for i := 0; i < curEntries.Len(); i++ {
		merged.Append(curEntries.Index(i).Clone())
	}

	current.Set(node, merged)
}

// mergeRegs adopts a foreign register with its full file list, but only
// when the register is absent from the current document. There is no
// intra-register merge.
func mergeRegs(current, admixture *document.Value) {
	admRegs, ok := admixture.GetObject("regs")
	if !ok {
		return
	}

	curRegs, ok := current.GetObject("regs")
	if !ok {
		curRegs = current.AddObject("regs")
	}

	for i := 0; i < admRegs.Len(); i++ {
		name := admRegs.NameAt(i)
		if name == "" || curRegs.Has(name) {
			continue
		}

		curRegs.Set(name, admRegs.ValueAt(i).Clone())
	}
}

// mergeDirStack adopts the other instance's stack wholesale, but only
// when this instance has not touched its own stack since the last load.
func mergeDirStack(sess *session.Session, current, admixture *document.Value) {
	if sess.DirStack.Changed() {
		return
	}

	admStack, ok := admixture.GetArray("dir-stack")
	if !ok || admStack.Len() == 0 {
		return
	}

	current.Set("dir-stack", admStack.Clone())
}

func mergeTrash(sess *session.Session, current, admixture *document.Value) {
	admTrash, ok := admixture.GetArray("trash")
	if !ok {
		return
	}

	var curTrash *document.Value

	for i := 0; i < admTrash.Len(); i++ {
		entry, ok := admTrash.ObjectAt(i)
		if !ok {
			continue
		}

		trashed, okTrashed := entry.GetString("trashed")
		original, okOriginal := entry.GetString("original")

		if !okTrashed || !okOriginal || sess.Trash.Has(original, trashed) {
			continue
		}

		if curTrash == nil {
			if curTrash, ok = current.GetArray("trash"); !ok {
				curTrash = current.AddArray("trash")
			}
		}

		curTrash.Append(entry.Clone())
	}
}
