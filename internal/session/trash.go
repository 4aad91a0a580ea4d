package session

// TrashEntry records one trashed file: where it lives inside the trash
// directory and where it came from.
type TrashEntry struct {
	Trashed  string
	Original string
}

// Trash is the record of trashed files, in trashing order.
type Trash struct {
	entries []TrashEntry
	seen    map[TrashEntry]struct{}
}

// NewTrash returns an empty trash record.
func NewTrash() *Trash {
	return &Trash{seen: map[TrashEntry]struct{}{}}
}

// Add records a trashed file. Duplicate (trashed, original) pairs are
// ignored.
func (t *Trash) Add(original, trashed string) {
	entry := TrashEntry{Trashed: trashed, Original: original}
	if _, ok := t.seen[entry]; ok {
		return
	}

	t.seen[entry] = struct{}{}
	t.entries = append(t.entries, entry)
}

// Has reports whether the exact (trashed, original) pair is recorded.
func (t *Trash) Has(original, trashed string) bool {
	_, ok := t.seen[TrashEntry{Trashed: trashed, Original: original}]

	return ok
}

// Entries returns the record in trashing order. The slice is shared; do
// not mutate.
func (t *Trash) Entries() []TrashEntry {
	return t.entries
}

// Len returns the number of recorded entries.
func (t *Trash) Len() int {
	return len(t.entries)
}
