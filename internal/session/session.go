// Package session models the live state of one running instance: the two
// navigation panes, registries for marks, bookmarks, registers and
// friends, the option engine, and the layout bits the persistence layer
// snapshots.
//
// A [Session] is an explicit context value threaded through the
// persistence code; there are no package-level globals. The session owns
// the durable in-memory truth, documents produced from it are transient
// serialization artifacts.
package session

// Persist is the set of persistence-category flags. Each flag enables
// serialization (and thereby merging) of one section of the state file.
type Persist uint

// Persistence categories.
const (
	PersistOptions Persist = 1 << iota
	PersistAssocs
	PersistCommands
	PersistMarks
	PersistBookmarks
	PersistTUI
	PersistDHistory
	PersistState
	PersistCmdHist
	PersistSearchHist
	PersistPromptHist
	PersistFilterHist
	PersistRegisters
	PersistDirStack
	PersistSaveDirs
	PersistColorScheme
)

// PersistAll enables every category.
const PersistAll = PersistColorScheme<<1 - 1

// Has reports whether flag is included in p.
func (p Persist) Has(flag Persist) bool {
	return p&flag != 0
}

// Config carries the startup knobs the session needs.
type Config struct {
	// StateDir is the directory holding the state files.
	StateDir string

	// TrashDir is the directory trashed files are moved into.
	TrashDir string

	// HistoryLen is the initial capacity of every history.
	HistoryLen int

	// Persist selects which sections the persistence layer writes.
	Persist Persist
}

// Pane indices.
const (
	LeftPane  = 0
	RightPane = 1
)

// Session is the live state of one running instance.
type Session struct {
	Cfg Config

	Left  *View
	Right *View

	// Active is the focused pane, [LeftPane] or [RightPane].
	Active int

	// Layout state.
	Preview       bool
	SplitPos      int
	SplitVertical bool
	SplitExpanded bool

	Opts GlobalOptions

	UseTermMultiplexer bool
	ColorScheme        string

	Marks     *Marks
	Bookmarks *Bookmarks
	Registers *Registers
	DirStack  *DirStack
	Trash     *Trash

	Assocs  *AssocList
	XAssocs *AssocList
	Viewers *AssocList

	Commands *Commands

	CmdHist    *History
	SearchHist *History
	PromptHist *History
	FilterHist *History
}

// New returns a session at compiled-in defaults.
func New(cfg Config) *Session {
	if cfg.HistoryLen <= 0 {
		cfg.HistoryLen = 15
	}

	return &Session{
		Cfg:           cfg,
		Left:          NewView(cfg.HistoryLen),
		Right:         NewView(cfg.HistoryLen),
		SplitPos:      -1,
		SplitVertical: true,
		Opts:          defaultGlobalOptions(cfg.HistoryLen),
		ColorScheme:   "default",
		Marks:         NewMarks(),
		Bookmarks:     NewBookmarks(),
		Registers:     NewRegisters(),
		DirStack:      NewDirStack(),
		Trash:         NewTrash(),
		Assocs:        NewAssocList(),
		XAssocs:       NewAssocList(),
		Viewers:       NewAssocList(),
		Commands:      NewCommands(),
		CmdHist:       NewHistory(cfg.HistoryLen),
		SearchHist:    NewHistory(cfg.HistoryLen),
		PromptHist:    NewHistory(cfg.HistoryLen),
		FilterHist:    NewHistory(cfg.HistoryLen),
	}
}

// View returns the pane with the given index.
func (s *Session) View(pane int) *View {
	if pane == RightPane {
		return s.Right
	}

	return s.Left
}

// CurrentView returns the focused pane.
func (s *Session) CurrentView() *View {
	return s.View(s.Active)
}

// OtherView returns the unfocused pane.
func (s *Session) OtherView() *View {
	return s.View(1 - s.Active)
}

// ResizeHistories rebounds every history of the session, including the
// directory histories of both panes.
func (s *Session) ResizeHistories(capacity int) {
	s.CmdHist.SetCapacity(capacity)
	s.SearchHist.SetCapacity(capacity)
	s.PromptHist.SetCapacity(capacity)
	s.FilterHist.SetCapacity(capacity)
	s.Left.SetHistoryCap(capacity)
	s.Right.SetHistoryCap(capacity)
}
