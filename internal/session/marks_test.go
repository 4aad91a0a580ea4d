package session_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okvist/dfm/internal/session"
)

func Test_Marks_RejectName_When_OutsideValidSet(t *testing.T) {
	t.Parallel()

	m := session.NewMarks()

	for _, name := range []byte{'$', ' ', '-', 0} {
		if err := m.Set(name, "/d", "f", time.Now()); !errors.Is(err, session.ErrBadMarkName) {
			t.Errorf("Set(%q) = %v, want ErrBadMarkName", name, err)
		}
	}

	if err := m.Set('a', "/d", "f", time.Now()); err != nil {
		t.Fatalf("Set(a): %v", err)
	}

	if err := m.Set('<', "/d", "f", time.Now()); err != nil {
		t.Fatalf("Set(<): %v", err)
	}

	if !session.IsSpecialMark('<') || session.IsSpecialMark('a') {
		t.Error("special mark classification wrong")
	}
}

// Contract: IsOlderThan decides merge conflicts. Absent marks and
// strictly older marks lose; a timestamp tie keeps the existing mark.
func Test_Marks_IsOlderThan_TiesFavorExisting(t *testing.T) {
	t.Parallel()

	m := session.NewMarks()
	ts := time.Unix(1700000000, 0)

	if !m.IsOlderThan('a', ts) {
		t.Error("absent mark should count as older")
	}

	if err := m.Set('a', "/d", "f", ts); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if m.IsOlderThan('a', ts) {
		t.Error("equal timestamp should not count as older")
	}

	if m.IsOlderThan('a', ts.Add(-time.Second)) {
		t.Error("newer mark counted as older")
	}

	if !m.IsOlderThan('a', ts.Add(time.Second)) {
		t.Error("older mark not counted as older")
	}
}

func Test_Marks_NamesAreSorted(t *testing.T) {
	t.Parallel()

	m := session.NewMarks()
	for _, name := range []byte{'z', 'B', '5', 'a'} {
		if err := m.Set(name, "/d", "", time.Now()); err != nil {
			t.Fatalf("Set(%q): %v", name, err)
		}
	}

	got := string(m.Names())
	if got != "5Baz" {
		t.Fatalf("Names = %q, want %q", got, "5Baz")
	}
}
