package session

// Sort key identifiers. A negative identifier sorts the same key in
// descending order; 0 marks an unused slot.
const (
	SortByName = iota + 1
	SortByExt
	SortBySize
	SortByMTime
	SortByATime
	SortByCTime
	SortByType
	SortByPerms
)

// MaxSortKey is the highest recognized sort key identifier; parsed keys
// are clamped to [-MaxSortKey, MaxSortKey].
const MaxSortKey = SortByPerms

// SortKeyCount is the number of sort key slots a view carries.
const SortKeyCount = MaxSortKey

// DefaultSortKey is used when a sort descriptor yields no keys at all.
const DefaultSortKey = SortByName

// HistEntry is one directory-history record: the directory, the file the
// cursor was on, and the cursor's position relative to the top of the
// visible list.
type HistEntry struct {
	Dir    string
	File   string
	RelPos int
}

// ViewOptions are the per-view options recognized by the option engine.
type ViewOptions struct {
	ViewColumns string
	LsView      bool
	Number      bool
	NumberWidth int
	DotFiles    bool
	PreviewPrg  string
}

// View is one navigation pane: its current location, directory history,
// filters, sorting and local options.
type View struct {
	CurrDir  string
	CurrFile string
	CurrPos  int

	history []HistEntry
	histCap int

	DotFilter        bool // hide dot files when set
	InvertFilter     bool
	ManualFilter     *Matcher
	PrevManualFilter string
	AutoFilter       *Matcher

	Sort [SortKeyCount]int8

	Opts ViewOptions
}

// NewView returns a view with default sorting and empty filters.
func NewView(histCapacity int) *View {
	v := &View{
		histCap:      histCapacity,
		ManualFilter: MustCompileMatcher(""),
		AutoFilter:   MustCompileMatcher(""),
		Opts:         ViewOptions{NumberWidth: 4},
	}
	v.Sort[0] = DefaultSortKey

	return v
}

// History returns the directory history oldest to newest. The slice is
// shared; do not mutate.
func (v *View) History() []HistEntry {
	return v.history
}

// HistoryCap returns the directory-history capacity.
func (v *View) HistoryCap() int {
	return v.histCap
}

// SetHistoryCap rebounds the directory history, dropping oldest entries
// if needed.
func (v *View) SetHistoryCap(capacity int) {
	if capacity < 0 {
		capacity = 0
	}

	v.histCap = capacity
	if len(v.history) > capacity {
		v.history = append([]HistEntry(nil), v.history[len(v.history)-capacity:]...)
	}
}

// HistoryFull reports whether adding an entry for a new directory would
// drop the oldest one.
func (v *View) HistoryFull() bool {
	return len(v.history) >= v.histCap
}

// SaveHistoryEntry records a visit. A visit to the directory of the
// newest entry updates that entry in place; otherwise a new entry is
// appended, dropping the oldest when the history is full.
func (v *View) SaveHistoryEntry(dir, file string, relPos int) {
	if dir == "" || v.histCap == 0 {
		return
	}

	if n := len(v.history); n > 0 && v.history[n-1].Dir == dir {
		v.history[n-1].File = file
		v.history[n-1].RelPos = relPos

		return
	}

	if len(v.history) >= v.histCap {
		v.history = v.history[1:]
	}

	v.history = append(v.history, HistEntry{Dir: dir, File: file, RelPos: relPos})
}

// SavePosition flushes the view's current location into its history.
func (v *View) SavePosition() {
	v.SaveHistoryEntry(v.CurrDir, v.CurrFile, v.CurrPos)
}

// HistoryContains reports whether dir already has a history entry.
func (v *View) HistoryContains(dir string) bool {
	for _, e := range v.history {
		if e.Dir == dir {
			return true
		}
	}

	return false
}

// SetSortKeys installs keys as the view's sorting, zero-filling the
// remaining slots. An empty keys list installs the default key.
func (v *View) SetSortKeys(keys []int8) {
	v.Sort = [SortKeyCount]int8{}

	if len(keys) == 0 {
		v.Sort[0] = DefaultSortKey

		return
	}

	copy(v.Sort[:], keys)
}
