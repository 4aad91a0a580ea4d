package state

import (
	"bufio"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/okvist/dfm/internal/document"
	"github.com/okvist/dfm/internal/fs"
	"github.com/okvist/dfm/internal/session"
)

// Record tags of the legacy line-oriented state format. Each logical line
// is a tag character followed by the value; some tags consume one or more
// continuation lines.
const (
	legacyComment     = '#'
	legacyOption      = '='
	legacyAssoc       = '.'
	legacyXAssoc      = 'x'
	legacyViewer      = ','
	legacyCommand     = '!'
	legacyMark        = '\''
	legacyBookmark    = 'b'
	legacyActiveView  = 'a'
	legacyQuickView   = 'q'
	legacyWinCount    = 'v'
	legacySplitOrient = 'o'
	legacySplitPos    = 'm'
	legacyLeftSort    = 'l'
	legacyRightSort   = 'r'
	legacyLeftHist    = 'd'
	legacyRightHist   = 'D'
	legacyCmdHist     = ':'
	legacySearchHist  = '/'
	legacyPromptHist  = 'p'
	legacyFilterHist  = 'f'
	legacyDirStack    = 'S'
	legacyTrash       = 't'
	legacyRegister    = '"'
	legacyLeftFilt    = 'F'
	legacyRightFilt   = 'R'
	legacyLeftInv     = 'i'
	legacyRightInv    = 'I'
	legacyUseScreen   = 's'
	legacyColorScheme = 'c'
	legacyLeftProp    = '['
	legacyRightProp   = ']'
)

// Sub-tags of pane property records ('[' and ']').
const (
	propDotFilter  = '.'
	propAutoFilter = 'a'
)

// legacySkeleton pre-builds every section of the document the adapter can
// fill, fixing member order up front the way the serializer does.
type legacySkeleton struct {
	root *document.Value

	options  *document.Value
	assocs   *document.Value
	xassocs  *document.Value
	viewers  *document.Value
	cmds     *document.Value
	marks    *document.Value
	bmarks   *document.Value
	cmdHist  *document.Value
	srchHist *document.Value
	prmtHist *document.Value
	filtHist *document.Value
	dirStack *document.Value
	trash    *document.Value
	regs     *document.Value

	gtab     *document.Value
	splitter *document.Value

	ptabs    [2]*document.Value
	history  [2]*document.Value
	filters  [2]*document.Value
	ptabOpts [2]*document.Value
}

func newLegacySkeleton() *legacySkeleton {
	s := &legacySkeleton{root: document.NewObject()}

	s.options = s.root.AddArray("options")
	s.assocs = s.root.AddArray("assocs")
	s.xassocs = s.root.AddArray("xassocs")
	s.viewers = s.root.AddArray("viewers")
	s.cmds = s.root.AddObject("cmds")
	s.marks = s.root.AddObject("marks")
	s.bmarks = s.root.AddObject("bmarks")
	s.cmdHist = s.root.AddArray("cmd-hist")
	s.srchHist = s.root.AddArray("search-hist")
	s.prmtHist = s.root.AddArray("prompt-hist")
	s.filtHist = s.root.AddArray("lfilt-hist")
	s.dirStack = s.root.AddArray("dir-stack")
	s.trash = s.root.AddArray("trash")
	s.regs = s.root.AddObject("regs")

	gtabs := s.root.AddArray("gtabs")
	s.gtab = gtabs.AppendObject()
	s.splitter = s.gtab.AddObject("splitter")

	panes := s.gtab.AddArray("panes")
	for i := 0; i < 2; i++ {
		pane := panes.AppendObject()
		s.ptabs[i] = pane.AddArray("ptabs").AppendObject()
		s.history[i] = s.ptabs[i].AddArray("history")
		s.filters[i] = s.ptabs[i].AddObject("filters")
		s.ptabOpts[i] = s.ptabs[i].AddArray("options")
	}

	return s
}

// readLegacyFile parses the legacy line-oriented state file into an
// equivalent document. Malformed or truncated multi-line records are
// dropped silently and parsing continues. Returns nil if the file cannot
// be opened.
func readLegacyFile(fsys fs.FS, path, trashDir string) *document.Value {
	f, err := fsys.Open(path)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	s := newLegacySkeleton()
	r := &lineReader{sc: bufio.NewScanner(f)}

	for {
		line, ok := r.next()
		if !ok {
			break
		}

		if line == "" || line[0] == legacyComment {
			continue
		}

		readLegacyRecord(s, r, fsys, trashDir, line[0], line[1:])
	}

	return s.root
}

func readLegacyRecord(s *legacySkeleton, r *lineReader, fsys fs.FS,
	trashDir string, tag byte, val string,
) {
	switch tag {
	case legacyOption:
		switch {
		case strings.HasPrefix(val, "["):
			s.ptabOpts[session.LeftPane].AppendString(val[1:])
		case strings.HasPrefix(val, "]"):
			s.ptabOpts[session.RightPane].AppendString(val[1:])
		default:
			s.options.AppendString(val)
		}
	case legacyAssoc, legacyXAssoc, legacyViewer:
		readLegacyAssoc(s, r, tag, val)
	case legacyCommand:
		if body, ok := r.next(); ok {
			s.cmds.SetString(val, body)
		}
	case legacyMark:
		readLegacyMark(s, r, val)
	case legacyBookmark:
		readLegacyBookmark(s, r, val)
	case legacyActiveView:
		pane := session.LeftPane
		if !strings.HasPrefix(val, "l") {
			pane = session.RightPane
		}

		s.gtab.SetInt("active-pane", pane)
	case legacyQuickView:
		s.gtab.SetBool("preview", atoiLoose(val) != 0)
	case legacyWinCount:
		s.splitter.SetBool("expanded", atoiLoose(val) == 1)
	case legacySplitOrient:
		orientation := "h"
		if strings.HasPrefix(val, "v") {
			orientation = "v"
		}

		s.splitter.SetString("orientation", orientation)
	case legacySplitPos:
		s.splitter.SetInt("pos", atoiLoose(val))
	case legacyLeftSort:
		s.ptabs[session.LeftPane].SetString("sorting", val)
	case legacyRightSort:
		s.ptabs[session.RightPane].SetString("sorting", val)
	case legacyLeftHist:
		readLegacyHistEntry(s, r, session.LeftPane, val)
	case legacyRightHist:
		readLegacyHistEntry(s, r, session.RightPane, val)
	case legacyCmdHist:
		s.cmdHist.AppendString(val)
	case legacySearchHist:
		s.srchHist.AppendString(val)
	case legacyPromptHist:
		s.prmtHist.AppendString(val)
	case legacyFilterHist:
		s.filtHist.AppendString(val)
	case legacyDirStack:
		readLegacyDirStack(s, r, val)
	case legacyTrash:
		if original, ok := r.next(); ok {
			entry := s.trash.AppendObject()
			entry.SetString("trashed", legacyTrashPath(fsys, trashDir, val))
			entry.SetString("original", original)
		}
	case legacyRegister:
		readLegacyRegister(s, val)
	case legacyLeftFilt:
		s.filters[session.LeftPane].SetString("manual", val)
	case legacyRightFilt:
		s.filters[session.RightPane].SetString("manual", val)
	case legacyLeftInv:
		s.filters[session.LeftPane].SetBool("invert", atoiLoose(val) != 0)
	case legacyRightInv:
		s.filters[session.RightPane].SetBool("invert", atoiLoose(val) != 0)
	case legacyUseScreen:
		s.root.SetBool("use-term-multiplexer", atoiLoose(val) != 0)
	case legacyColorScheme:
		s.root.SetString("color-scheme", val)
	case legacyLeftProp:
		readLegacyPaneProp(s, session.LeftPane, val)
	case legacyRightProp:
		readLegacyPaneProp(s, session.RightPane, val)
	}
}

func readLegacyAssoc(s *legacySkeleton, r *lineReader, tag byte, matchers string) {
	cmd, ok := r.next()
	if !ok {
		return
	}

	// Old files carry synthetic builtin associations; those must not
	// resurface as user entries.
	if tag != legacyViewer && strings.HasSuffix(cmd, "}"+session.BuiltinCmd) {
		return
	}

	var list *document.Value

	switch tag {
	case legacyAssoc:
		list = s.assocs
	case legacyXAssoc:
		list = s.xassocs
	default:
		list = s.viewers
	}

	entry := list.AppendObject()
	entry.SetString("matchers", matchers)
	entry.SetString("cmd", cmd)
}

func readLegacyMark(s *legacySkeleton, r *lineReader, val string) {
	if val == "" {
		return
	}

	dir, ok := r.next()
	if !ok {
		return
	}

	file, ok := r.next()
	if !ok {
		return
	}

	ts, ok := r.optionalNumber()
	if !ok {
		ts = int(time.Now().Unix())
	}

	mark := s.marks.AddObject(val[:1])
	mark.SetString("dir", dir)
	mark.SetString("file", file)
	mark.SetFloat("ts", float64(ts))
}

func readLegacyBookmark(s *legacySkeleton, r *lineReader, path string) {
	tags, ok := r.next()
	if !ok {
		return
	}

	tsLine, ok := r.next()
	if !ok {
		return
	}

	ts, err := strconv.ParseInt(tsLine, 10, 64)
	if err != nil {
		return
	}

	bmark := s.bmarks.AddObject(path)
	bmark.SetString("tags", tags)
	bmark.SetFloat("ts", float64(ts))
}

func readLegacyHistEntry(s *legacySkeleton, r *lineReader, pane int, dir string) {
	if dir == "" {
		s.ptabs[pane].SetBool("restore-last-location", true)

		return
	}

	file, ok := r.next()
	if !ok {
		return
	}

	relPos, ok := r.optionalNumber()
	if !ok {
		relPos = -1
	}

	entry := s.history[pane].AppendObject()
	entry.SetString("dir", dir)
	entry.SetString("file", file)
	entry.SetInt("relpos", relPos)
}

func readLegacyDirStack(s *legacySkeleton, r *lineReader, leftDir string) {
	leftFile, ok := r.next()
	if !ok {
		return
	}

	rightDirLine, ok := r.next()
	if !ok {
		return
	}

	rightFile, ok := r.next()
	if !ok {
		return
	}

	// The third line carries one leading marker character before the
	// directory.
	rightDir := ""
	if len(rightDirLine) > 0 {
		rightDir = rightDirLine[1:]
	}

	entry := s.dirStack.AppendObject()
	entry.SetString("left-dir", leftDir)
	entry.SetString("left-file", leftFile)
	entry.SetString("right-dir", rightDir)
	entry.SetString("right-file", rightFile)
}

func readLegacyRegister(s *legacySkeleton, val string) {
	if val == "" || !session.IsValidRegister(val[0]) {
		return
	}

	name := val[:1]

	files, ok := s.regs.GetArray(name)
	if !ok {
		files = s.regs.AddArray(name)
	}

	files.AppendString(val[1:])
}

func readLegacyPaneProp(s *legacySkeleton, pane int, val string) {
	if val == "" {
		return
	}

	switch val[0] {
	case propDotFilter:
		s.filters[pane].SetBool("dot", atoiLoose(val[1:]) != 0)
	case propAutoFilter:
		s.filters[pane].SetString("auto", val[1:])
	}
}

// legacyTrashPath resolves a relative trashed path against the trash
// directory, but only when that directory is writable and the resolved
// file actually exists; otherwise the stored value is kept verbatim.
func legacyTrashPath(fsys fs.FS, trashDir, trashed string) string {
	if filepath.IsAbs(trashed) || !dirWritable(fsys, trashDir) {
		return trashed
	}

	full := filepath.Join(trashDir, trashed)
	if ok, err := fsys.Exists(full); err == nil && ok {
		return full
	}

	return trashed
}

func dirWritable(fsys fs.FS, dir string) bool {
	info, err := fsys.Stat(dir)

	return err == nil && info.IsDir() && info.Mode().Perm()&0o200 != 0
}

// lineReader yields logical lines with leading whitespace stripped and
// supports one line of lookahead for optional trailing-number records.
type lineReader struct {
	sc      *bufio.Scanner
	peeked  string
	hasPeek bool
}

func (r *lineReader) next() (string, bool) {
	if r.hasPeek {
		r.hasPeek = false

		return r.peeked, true
	}

	if !r.sc.Scan() {
		return "", false
	}

	return strings.TrimLeft(r.sc.Text(), " \t"), true
}

func (r *lineReader) peek() (string, bool) {
	if !r.hasPeek {
		line, ok := r.next()
		if !ok {
			return "", false
		}

		r.peeked = line
		r.hasPeek = true
	}

	return r.peeked, true
}

// optionalNumber consumes the next line only if it is entirely a signed
// decimal number, returning it. Otherwise the line is left for the next
// record.
func (r *lineReader) optionalNumber() (int, bool) {
	line, ok := r.peek()
	if !ok || line == "" {
		return 0, false
	}

	if c := line[0]; c != '-' && c != '+' && (c < '0' || c > '9') {
		return 0, false
	}

	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, false
	}

	r.hasPeek = false

	return n, true
}

func atoiLoose(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))

	return n
}
