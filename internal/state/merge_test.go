package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/okvist/dfm/internal/document"
	"github.com/okvist/dfm/internal/fs"
	"github.com/okvist/dfm/internal/session"
)

func mustParse(t *testing.T, input string) *document.Value {
	t.Helper()

	doc, err := document.Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse(%s): %v", input, err)
	}

	return doc
}

func emptySession(persist session.Persist) *session.Session {
	return session.New(session.Config{HistoryLen: 10, Persist: persist})
}

// Contract: merged history entries unknown to this instance are
// prepended, so the current instance's entries stay ranked as more
// recent. Entries already present are not duplicated.
func Test_MergeHistory_PrependsUnknownEntries(t *testing.T) {
	t.Parallel()

	current := mustParse(t, `{"cmd-hist":["alpha","beta"]}`)
	admixture := mustParse(t, `{"cmd-hist":["beta","gamma"]}`)

	mergeHistory(current, admixture, "cmd-hist")

	hist, _ := current.GetArray("cmd-hist")

	var got []string

	for i := 0; i < hist.Len(); i++ {
		item, _ := hist.StringAt(i)
		got = append(got, item)
	}

	if diff := cmp.Diff([]string{"gamma", "alpha", "beta"}, got); diff != "" {
		t.Fatalf("merged history (-want +got):\n%s", diff)
	}
}

func Test_MergeHistory_CreatesSection_When_CurrentLacksIt(t *testing.T) {
	t.Parallel()

	current := mustParse(t, `{}`)
	admixture := mustParse(t, `{"cmd-hist":["only"]}`)

	mergeHistory(current, admixture, "cmd-hist")

	hist, ok := current.GetArray("cmd-hist")
	if !ok || hist.Len() != 1 {
		t.Fatal("admixture history not adopted into empty current")
	}
}

func Test_MergeHistory_IsIdempotent(t *testing.T) {
	t.Parallel()

	current := mustParse(t, `{"cmd-hist":["alpha"]}`)
	admixture := mustParse(t, `{"cmd-hist":["beta"]}`)

	mergeHistory(current, admixture, "cmd-hist")
	once := current.Clone()

	mergeHistory(current, admixture, "cmd-hist")

	if diff := cmp.Diff(once, current); diff != "" {
		t.Fatalf("second merge changed result (-want +got):\n%s", diff)
	}
}

// Contract: marks resolve by timestamp. Strictly newer foreign marks
// win; ties and older ones keep the current value.
func Test_MergeMarks_NewerTimestampWins(t *testing.T) {
	t.Parallel()

	sess := emptySession(session.PersistAll)
	if err := sess.Marks.Set('a', "/mine", "f", time.Unix(100, 0)); err != nil {
		t.Fatalf("Marks.Set: %v", err)
	}

	if err := sess.Marks.Set('b', "/mine", "f", time.Unix(100, 0)); err != nil {
		t.Fatalf("Marks.Set: %v", err)
	}

	current := mustParse(t,
		`{"marks":{"a":{"dir":"/mine","file":"f","ts":100},"b":{"dir":"/mine","file":"f","ts":100}}}`)
	admixture := mustParse(t,
		`{"marks":{"a":{"dir":"/theirs","file":"g","ts":200},`+
			`"b":{"dir":"/theirs","file":"g","ts":100},`+
			`"c":{"dir":"/new","file":"h","ts":50}}}`)

	mergeMarks(sess, current, admixture)

	marks, _ := current.GetObject("marks")

	markA, _ := marks.GetObject("a")
	if dir, _ := markA.GetString("dir"); dir != "/theirs" {
		t.Errorf("newer foreign mark lost: dir = %q", dir)
	}

	markB, _ := marks.GetObject("b")
	if dir, _ := markB.GetString("dir"); dir != "/mine" {
		t.Errorf("tie did not keep current mark: dir = %q", dir)
	}

	markC, _ := marks.GetObject("c")
	if dir, _ := markC.GetString("dir"); dir != "/new" {
		t.Errorf("absent mark not adopted: dir = %q", dir)
	}
}

func Test_MergeMarks_SkipsSpecialAndInvalidNames(t *testing.T) {
	t.Parallel()

	sess := emptySession(session.PersistAll)
	current := mustParse(t, `{"marks":{}}`)
	admixture := mustParse(t,
		`{"marks":{"<":{"dir":"/sel","file":"f","ts":100},"$":{"dir":"/bad","file":"f","ts":100}}}`)

	mergeMarks(sess, current, admixture)

	marks, _ := current.GetObject("marks")
	if marks.Len() != 0 {
		t.Fatalf("special or invalid marks merged: %s", marks.Marshal())
	}
}

func Test_MergeBmarks_NewerTimestampWins(t *testing.T) {
	t.Parallel()

	sess := emptySession(session.PersistAll)
	sess.Bookmarks.Set("/p", "mine", time.Unix(100, 0))

	current := mustParse(t, `{"bmarks":{"/p":{"tags":"mine","ts":100}}}`)
	admixture := mustParse(t,
		`{"bmarks":{"/p":{"tags":"theirs","ts":200},"/q":{"tags":"new","ts":10}}}`)

	mergeBmarks(sess, current, admixture)

	bmarks, _ := current.GetObject("bmarks")

	bmarkP, _ := bmarks.GetObject("/p")
	if tags, _ := bmarkP.GetString("tags"); tags != "theirs" {
		t.Errorf("newer foreign bookmark lost: tags = %q", tags)
	}

	if !bmarks.Has("/q") {
		t.Error("unknown bookmark not adopted")
	}
}

func Test_MergeAssocs_AppendsUnknownPairsOnly(t *testing.T) {
	t.Parallel()

	sess := emptySession(session.PersistAll)
	sess.Assocs.Add(session.Assoc{Matchers: "*.pdf", Cmd: "zathura %f"})

	current := mustParse(t, `{"assocs":[{"matchers":"*.pdf","cmd":"zathura %f"}]}`)
	admixture := mustParse(t,
		`{"assocs":[{"matchers":"*.pdf","cmd":"zathura %f"},{"matchers":"*.epub","cmd":"mupdf %f"}]}`)

	mergeAssocs(sess.Assocs, current, admixture, "assocs")

	assocs, _ := current.GetArray("assocs")
	if assocs.Len() != 2 {
		t.Fatalf("assocs.Len = %d, want 2", assocs.Len())
	}

	added, _ := assocs.ObjectAt(1)
	if m, _ := added.GetString("matchers"); m != "*.epub" {
		t.Errorf("added matchers = %q", m)
	}
}

func Test_MergeCommands_KeepsCurrentDefinition_When_NameClashes(t *testing.T) {
	t.Parallel()

	current := mustParse(t, `{"cmds":{"pack":"tar -czf %a"}}`)
	admixture := mustParse(t, `{"cmds":{"pack":"zip %a","unpack":"tar -xf %a"}}`)

	mergeCommands(current, admixture)

	cmds, _ := current.GetObject("cmds")

	if body, _ := cmds.GetString("pack"); body != "tar -czf %a" {
		t.Errorf("current command overwritten: %q", body)
	}

	if body, _ := cmds.GetString("unpack"); body != "tar -xf %a" {
		t.Errorf("unknown command not adopted: %q", body)
	}
}

func Test_MergeRegs_AdoptsAbsentRegistersWhole(t *testing.T) {
	t.Parallel()

	current := mustParse(t, `{"regs":{"a":["/mine"]}}`)
	admixture := mustParse(t, `{"regs":{"a":["/theirs"],"b":["/new1","/new2"]}}`)

	mergeRegs(current, admixture)

	regs, _ := current.GetObject("regs")

	regA, _ := regs.GetArray("a")
	if regA.Len() != 1 {
		t.Error("occupied register was touched")
	}

	regB, ok := regs.GetArray("b")
	if !ok || regB.Len() != 2 {
		t.Error("absent register not adopted whole")
	}
}

// Contract: the foreign dir stack replaces ours only while ours is
// untouched since the last load.
func Test_MergeDirStack_RespectsLocalMutations(t *testing.T) {
	t.Parallel()

	admixture := mustParse(t,
		`{"dir-stack":[{"left-dir":"/l","left-file":"f","right-dir":"/r","right-file":"g"}]}`)

	unchanged := emptySession(session.PersistAll)
	current := mustParse(t, `{"dir-stack":[]}`)

	mergeDirStack(unchanged, current, admixture)

	stack, _ := current.GetArray("dir-stack")
	if stack.Len() != 1 {
		t.Error("foreign stack not adopted while local stack unchanged")
	}

	mutated := emptySession(session.PersistAll)
	mutated.DirStack.Push(session.DirStackEntry{LeftDir: "/x"})

	current = mustParse(t, `{"dir-stack":[{"left-dir":"/x","left-file":"","right-dir":"","right-file":""}]}`)

	mergeDirStack(mutated, current, admixture)

	stack, _ = current.GetArray("dir-stack")
	entry, _ := stack.ObjectAt(0)

	if dir, _ := entry.GetString("left-dir"); dir != "/x" {
		t.Error("foreign stack replaced a locally mutated one")
	}
}

func Test_MergeTrash_AppendsUnknownPairs(t *testing.T) {
	t.Parallel()

	sess := emptySession(session.PersistAll)
	sess.Trash.Add("/orig", "/trash/000_orig")

	current := mustParse(t, `{"trash":[{"trashed":"/trash/000_orig","original":"/orig"}]}`)
	admixture := mustParse(t,
		`{"trash":[{"trashed":"/trash/000_orig","original":"/orig"},`+
			`{"trashed":"/trash/001_other","original":"/other"}]}`)

	mergeTrash(sess, current, admixture)

	trash, _ := current.GetArray("trash")
	if trash.Len() != 2 {
		t.Fatalf("trash.Len = %d, want 2", trash.Len())
	}
}

// Contract: foreign directory-history entries are taken only when the
// directory still exists and is unknown to this instance; they rank
// older than every current entry.
func Test_MergeDHistory_PrependsExistingUnknownDirs(t *testing.T) {
	t.Parallel()

	fsys := fs.NewReal()
	base := t.TempDir()

	knownDir := filepath.Join(base, "known")
	newDir := filepath.Join(base, "new")

	for _, dir := range []string{knownDir, newDir} {
		if err := os.Mkdir(dir, 0o700); err != nil {
			t.Fatalf("Mkdir: %v", err)
		}
	}

	goneDir := filepath.Join(base, "gone")

	view := session.NewView(10)
	view.SaveHistoryEntry(knownDir, "f", 0)

	curPtab := mustParse(t,
		`{"history":[{"dir":"`+knownDir+`","file":"f","relpos":0}]}`)
	admPtab := mustParse(t,
		`{"history":[{"dir":"`+newDir+`","file":"g","relpos":1},`+
			`{"dir":"`+knownDir+`","file":"x","relpos":2},`+
			`{"dir":"`+goneDir+`","file":"y","relpos":3}]}`)

	mergeDHistory(fsys, view, curPtab, admPtab)

	hist, _ := curPtab.GetArray("history")
	if hist.Len() != 2 {
		t.Fatalf("hist.Len = %d, want 2", hist.Len())
	}

	first, _ := hist.ObjectAt(0)
	if dir, _ := first.GetString("dir"); dir != newDir {
		t.Errorf("first entry = %q, want foreign dir prepended", dir)
	}

	second, _ := hist.ObjectAt(1)
	if dir, _ := second.GetString("dir"); dir != knownDir {
		t.Errorf("second entry = %q, want current entry after foreign ones", dir)
	}
}

// Contract: every qualifying foreign entry is taken, even when that
// pushes the merged history past the configured capacity. The load side
// grows the history rather than dropping entries.
func Test_MergeDHistory_TakesAllForeignEntries_When_CapacityTight(t *testing.T) {
	t.Parallel()

	fsys := fs.NewReal()
	base := t.TempDir()

	foreignOne := filepath.Join(base, "one")
	foreignTwo := filepath.Join(base, "two")

	for _, dir := range []string{foreignOne, foreignTwo} {
		if err := os.Mkdir(dir, 0o700); err != nil {
			t.Fatalf("Mkdir: %v", err)
		}
	}

	view := session.NewView(3)
	view.SaveHistoryEntry("/a", "f", 0)
	view.SaveHistoryEntry("/b", "g", 0)

	curPtab := mustParse(t,
		`{"history":[{"dir":"/a","file":"f","relpos":0},`+
			`{"dir":"/b","file":"g","relpos":0}]}`)
	admPtab := mustParse(t,
		`{"history":[{"dir":"`+foreignOne+`","file":"x","relpos":0},`+
			`{"dir":"`+foreignTwo+`","file":"y","relpos":0}]}`)

	mergeDHistory(fsys, view, curPtab, admPtab)

	hist, _ := curPtab.GetArray("history")
	if hist.Len() != 4 {
		t.Fatalf("hist.Len = %d, want all 4 entries kept", hist.Len())
	}

	first, _ := hist.ObjectAt(0)
	if dir, _ := first.GetString("dir"); dir != foreignOne {
		t.Errorf("first entry = %q, want foreign entries prepended", dir)
	}
}

func Test_MergeDHistory_SkipsMerge_When_HistoryFull(t *testing.T) {
	t.Parallel()

	fsys := fs.NewReal()
	dir := t.TempDir()

	view := session.NewView(1)
	view.SaveHistoryEntry("/somewhere", "f", 0)

	curPtab := mustParse(t, `{"history":[{"dir":"/somewhere","file":"f","relpos":0}]}`)
	admPtab := mustParse(t, `{"history":[{"dir":"`+dir+`","file":"g","relpos":0}]}`)

	mergeDHistory(fsys, view, curPtab, admPtab)

	hist, _ := curPtab.GetArray("history")
	if hist.Len() != 1 {
		t.Fatalf("hist.Len = %d, want untouched history", hist.Len())
	}
}

// Contract: pane histories are merged only when both documents hold
// exactly one global tab and one pane tab per side. Multi-tab layouts
// cannot be paired up, so they are left alone.
func Test_MergeTabs_SkipsHistory_When_EitherSideHasMultipleTabs(t *testing.T) {
	t.Parallel()

	fsys := fs.NewReal()

	foreign := filepath.Join(t.TempDir(), "foreign")
	if err := os.Mkdir(foreign, 0o700); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	singlePane := `{"ptabs":[{"history":[{"dir":"/a","file":"f","relpos":0}]}]}`
	foreignPane := `{"ptabs":[{"history":[{"dir":"` + foreign + `","file":"g","relpos":0}]}]}`

	cases := []struct {
		name      string
		current   string
		admixture string
	}{
		{
			name:      "two gtabs in admixture",
			current:   `{"gtabs":[{"panes":[` + singlePane + `,` + singlePane + `]}]}`,
			admixture: `{"gtabs":[{"panes":[` + foreignPane + `,` + foreignPane + `]},{"panes":[]}]}`,
		},
		{
			name:      "two gtabs in current",
			current:   `{"gtabs":[{"panes":[` + singlePane + `,` + singlePane + `]},{"panes":[]}]}`,
			admixture: `{"gtabs":[{"panes":[` + foreignPane + `,` + foreignPane + `]}]}`,
		},
		{
			name:    "two ptabs in admixture",
			current: `{"gtabs":[{"panes":[` + singlePane + `,` + singlePane + `]}]}`,
			admixture: `{"gtabs":[{"panes":[{"ptabs":[{"history":[{"dir":"` + foreign +
				`","file":"g","relpos":0}]},{"history":[]}]},` + foreignPane + `]}]}`,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sess := emptySession(session.PersistAll)
			sess.Left.SaveHistoryEntry("/a", "f", 0)
			sess.Right.SaveHistoryEntry("/a", "f", 0)

			current := mustParse(t, tc.current)
			admixture := mustParse(t, tc.admixture)

			mergeTabs(fsys, sess, current, admixture)

			gtabs, _ := current.GetArray("gtabs")
			gtab, _ := gtabs.ObjectAt(0)
			panes, _ := gtab.GetArray("panes")

			for pane := session.LeftPane; pane <= session.RightPane; pane++ {
				paneData, ok := panes.ObjectAt(pane)
				if !ok {
					continue
				}

				ptabs, _ := paneData.GetArray("ptabs")
				ptab, _ := ptabs.ObjectAt(0)
				hist, _ := ptab.GetArray("history")

				if hist.Len() != 1 {
					t.Errorf("pane %d history merged across tab layouts", pane)
				}
			}
		})
	}
}

// Contract: sections whose persistence flag is off are not merged even
// when the admixture carries them.
func Test_MergeStates_SkipsSections_When_FlagsUnset(t *testing.T) {
	t.Parallel()

	sess := emptySession(session.PersistMarks)

	current := mustParse(t, `{"marks":{}}`)
	admixture := mustParse(t,
		`{"marks":{"a":{"dir":"/d","file":"f","ts":100}},"cmd-hist":["foreign"],`+
			`"cmds":{"x":"y"},"regs":{"a":["/f"]}}`)

	mergeStates(fs.NewReal(), sess, current, admixture)

	marks, _ := current.GetObject("marks")
	if !marks.Has("a") {
		t.Error("flagged section not merged")
	}

	for _, section := range []string{"cmd-hist", "cmds", "regs"} {
		if current.Has(section) {
			t.Errorf("unflagged section %q merged", section)
		}
	}
}
