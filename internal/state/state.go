// Package state persists session state across runs. It owns the state
// file pair under the state directory: the primary JSON-with-comments
// file and the legacy line-oriented file kept for migration.
//
// Saving never takes a lock. The store remembers a fingerprint of the
// state file from the last read or write; when another instance wrote
// the file in between, the foreign content is merged in before the new
// file is moved into place atomically.
package state

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okvist/dfm/internal/document"
	"github.com/okvist/dfm/internal/fs"
	"github.com/okvist/dfm/internal/session"
)

// State file names inside the state directory.
const (
	InfoFile   = "dfminfo.json"
	LegacyFile = "dfminfo"
)

var (
	// ErrWriteStateFile means the temporary state file could not be
	// written.
	ErrWriteStateFile = errors.New("cannot write state file")

	// ErrCommitStateFile means the written state file could not be moved
	// into place.
	ErrCommitStateFile = errors.New("cannot commit state file")
)

// Store reads and writes the state files of one state directory.
type Store struct {
	fsys fs.FS
	log  *slog.Logger
	dir  string

	// mon is the fingerprint of the state file as of the last load or
	// save. Zero when the file has not been seen yet, which makes every
	// later comparison read as "changed".
	mon fs.Fingerprint
}

// New returns a store over the given state directory.
func New(fsys fs.FS, log *slog.Logger, dir string) *Store {
	return &Store{
		fsys: fsys,
		log:  log,
		dir:  dir,
	}
}

func (s *Store) infoPath() string {
	return filepath.Join(s.dir, InfoFile)
}

func (s *Store) legacyPath() string {
	return filepath.Join(s.dir, LegacyFile)
}

// Load reads the state file into the session. A missing or unreadable
// file leaves the session at its defaults; malformed pieces inside the
// file are skipped. When the primary file is absent the legacy file is
// read instead. With reread set, focus and layout are preserved and
// only content is refreshed.
func (s *Store) Load(sess *session.Session, reread bool) {
	var doc *document.Value

	data, err := s.fsys.ReadFile(s.infoPath())
	if err == nil {
		doc, err = document.Parse(data)
		if err != nil {
			s.log.Warn("discarding malformed state file",
				"path", s.infoPath(), "error", err)
		}
	}

	if doc == nil {
		doc = readLegacyFile(s.fsys, s.legacyPath(), sess.Cfg.TrashDir)
	}

	if doc != nil {
		loadState(sess, doc, reread, s.log)
	}

	if fp, err := s.fsys.Fingerprint(s.infoPath()); err == nil {
		s.mon = fp
	} else {
		s.mon = fs.Fingerprint{}
	}

	sess.DirStack.Freeze()
}

// Save writes the session's state to the state file. The new content is
// prepared in a temporary file next to the target and moved into place
// with a rename, so readers never observe a partial file. When the
// state file changed since this store last read or wrote it, the
// foreign content is merged in first; merge failures degrade to a plain
// overwrite rather than blocking the save.
func (s *Store) Save(sess *session.Session) error {
	if err := s.fsys.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteStateFile, err)
	}

	infoPath := s.infoPath()
	tmpPath := infoPath + "_" + strconv.Itoa(os.Getpid())

	snapshot := false

	if exists, _ := s.fsys.Exists(infoPath); exists {
		if err := s.fsys.CopyFile(infoPath, tmpPath); err != nil {
			s.log.Warn("cannot snapshot state file, skipping merge",
				"path", infoPath, "error", err)
		} else {
			snapshot = true
		}
	}

	doc := serializeState(sess)

	if snapshot && s.stateFileChanged(infoPath) {
		s.mergeSnapshot(sess, doc, tmpPath)
	}

	data := append(doc.Marshal(), '\n')

	if err := s.fsys.WriteFile(tmpPath, data, 0o600); err != nil {
		_ = s.fsys.Remove(tmpPath)

		return fmt.Errorf("%w: %v", ErrWriteStateFile, err)
	}

	// Fingerprint the temp file before the rename: rename preserves
	// size and mtime, and afterwards another instance could already
	// have replaced the target.
	if fp, err := s.fsys.Fingerprint(tmpPath); err == nil {
		s.mon = fp
	} else {
		s.mon = fs.Fingerprint{}
	}

	if err := s.fsys.Rename(tmpPath, infoPath); err != nil {
		s.log.Error("cannot commit state file",
			"path", infoPath, "error", err)
		_ = s.fsys.Remove(tmpPath)

		return fmt.Errorf("%w: %v", ErrCommitStateFile, err)
	}

	return nil
}

// stateFileChanged reports whether the state file no longer matches the
// fingerprint from the last load or save. Errors count as changed.
func (s *Store) stateFileChanged(path string) bool {
	cur, err := s.fsys.Fingerprint(path)

	return err != nil || !cur.Equal(s.mon)
}

// mergeSnapshot parses the snapshot of the foreign state file and folds
// it into doc. A snapshot that fails to parse is logged and ignored.
func (s *Store) mergeSnapshot(sess *session.Session, doc *document.Value, tmpPath string) {
	data, err := s.fsys.ReadFile(tmpPath)
	if err != nil {
		s.log.Warn("cannot read state snapshot, skipping merge",
			"path", tmpPath, "error", err)

		return
	}

	admixture, err := document.Parse(data)
	if err != nil {
		s.log.Warn("malformed state snapshot, skipping merge",
			"path", tmpPath, "error", err)

		return
	}

	mergeStates(s.fsys, sess, doc, admixture)
}
