package session

import (
	"sort"
	"time"
)

// Bookmark tags a path so it can be found by tag later.
type Bookmark struct {
	Tags string // comma-separated tag list, stored opaquely
	Ts   time.Time
}

// Bookmarks is the bookmark registry of a session, keyed by path.
type Bookmarks struct {
	byPath map[string]Bookmark
}

// NewBookmarks returns an empty bookmark registry.
func NewBookmarks() *Bookmarks {
	return &Bookmarks{byPath: map[string]Bookmark{}}
}

// Set stores a bookmark for path, replacing any previous one.
func (b *Bookmarks) Set(path, tags string, ts time.Time) {
	b.byPath[path] = Bookmark{Tags: tags, Ts: ts}
}

// Get returns the bookmark for path.
func (b *Bookmarks) Get(path string) (Bookmark, bool) {
	bm, ok := b.byPath[path]

	return bm, ok
}

// Paths returns all bookmarked paths in a fixed order.
func (b *Bookmarks) Paths() []string {
	paths := make([]string, 0, len(b.byPath))
	for path := range b.byPath {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	return paths
}

// IsOlderThan reports whether the bookmark for path is strictly older
// than ts or absent. Ties favor the existing bookmark.
func (b *Bookmarks) IsOlderThan(path string, ts time.Time) bool {
	bm, ok := b.byPath[path]
	if !ok {
		return true
	}

	return bm.Ts.Before(ts)
}
