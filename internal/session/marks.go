package session

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ValidMarks enumerates every settable mark name.
// The trailing three are special marks maintained by navigation; they are
// settable but never persisted.
const ValidMarks = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"'<>"

const specialMarks = "'<>"

// ErrBadMarkName reports a mark name outside [ValidMarks].
var ErrBadMarkName = errors.New("invalid mark name")

// IsValidMark reports whether name is a recognized mark name.
func IsValidMark(name byte) bool {
	return strings.IndexByte(ValidMarks, name) >= 0
}

// IsSpecialMark reports whether name is one of the navigation-owned marks
// that are never serialized.
func IsSpecialMark(name byte) bool {
	return strings.IndexByte(specialMarks, name) >= 0
}

// Mark is a named location: a directory plus a file inside it.
type Mark struct {
	Dir  string
	File string
	Ts   time.Time
}

// Marks is the mark registry of a session.
type Marks struct {
	byName map[byte]Mark
}

// NewMarks returns an empty mark registry.
func NewMarks() *Marks {
	return &Marks{byName: map[byte]Mark{}}
}

// Set stores a mark under name.
func (m *Marks) Set(name byte, dir, file string, ts time.Time) error {
	if !IsValidMark(name) {
		return ErrBadMarkName
	}

	m.byName[name] = Mark{Dir: dir, File: file, Ts: ts}

	return nil
}

// Get returns the mark stored under name.
func (m *Marks) Get(name byte) (Mark, bool) {
	mark, ok := m.byName[name]

	return mark, ok
}

// Names returns the names of all set marks in a fixed order.
func (m *Marks) Names() []byte {
	names := make([]byte, 0, len(m.byName))
	for name := range m.byName {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

// IsOlderThan reports whether the mark under name is strictly older than
// ts or absent entirely. Equal timestamps count as not older, so on a tie
// the existing mark wins.
func (m *Marks) IsOlderThan(name byte, ts time.Time) bool {
	mark, ok := m.byName[name]
	if !ok {
		return true
	}

	return mark.Ts.Before(ts)
}
