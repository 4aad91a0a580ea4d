package session

// DirStackEntry snapshots the location of both panes.
type DirStackEntry struct {
	LeftDir   string
	LeftFile  string
	RightDir  string
	RightFile string
}

// DirStack is the pushd/popd stack of pane locations.
// It tracks mutations so the persistence layer can prove the stack
// untouched since its baseline was frozen.
type DirStack struct {
	entries []DirStackEntry
	changes int
	frozen  int
}

// NewDirStack returns an empty stack.
func NewDirStack() *DirStack {
	return &DirStack{}
}

// Push adds an entry on top of the stack.
func (d *DirStack) Push(e DirStackEntry) {
	d.entries = append(d.entries, e)
	d.changes++
}

// Pop removes and returns the top entry.
func (d *DirStack) Pop() (DirStackEntry, bool) {
	if len(d.entries) == 0 {
		return DirStackEntry{}, false
	}

	top := d.entries[len(d.entries)-1]
	d.entries = d.entries[:len(d.entries)-1]
	d.changes++

	return top, true
}

// Entries returns the stack bottom to top. The slice is shared; do not
// mutate.
func (d *DirStack) Entries() []DirStackEntry {
	return d.entries
}

// Len returns the stack depth.
func (d *DirStack) Len() int {
	return len(d.entries)
}

// Freeze records the current mutation count as the baseline for
// [DirStack.Changed].
func (d *DirStack) Freeze() {
	d.frozen = d.changes
}

// Changed reports whether the stack was mutated since the last
// [DirStack.Freeze].
func (d *DirStack) Changed() bool {
	return d.changes != d.frozen
}
