// Package fs provides the filesystem seam the persistence layer works
// through, plus the file-modification fingerprint primitive used to
// detect concurrent writers of the shared state file.
//
// [Real] is the production implementation over the [os] package. Tests
// substitute stubs to inject failures on individual operations.
package fs

import (
	"io"
	"os"
)

// File represents an open file descriptor.
// Satisfied by [os.File]; usable with [bufio], [io] and friends.
type File interface {
	io.ReadWriteCloser
	io.Seeker

	// Stat returns the [os.FileInfo] for this file. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync].
	Sync() error
}

// FS defines the filesystem operations the state store performs.
type FS interface {
	// Open opens a file for reading. See [os.Open].
	Open(path string) (File, error)

	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a named file, creating it if necessary.
	// Not atomic; used for temp files the caller renames itself.
	WriteFile(path string, data []byte, perm os.FileMode) error

	// WriteFileAtomic writes data to a file via temp file + rename so a
	// crash never leaves a partial file behind.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// CopyFile copies the contents of src over dst, replacing dst.
	CopyFile(src, dst string) error

	// MkdirAll creates a directory and all parents. See [os.MkdirAll].
	MkdirAll(path string, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Exists reports whether a file or directory exists.
	// Returns (false, nil) if not found, (false, err) on other errors.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory. See [os.Remove].
	Remove(path string) error

	// Rename moves a file. Atomic on the same filesystem. See [os.Rename].
	Rename(oldpath, newpath string) error

	// Fingerprint derives the modification fingerprint of a file.
	Fingerprint(path string) (Fingerprint, error)
}

// Fingerprint is an opaque, comparable token derived from a file's
// modification state. Two fingerprints of the same path compare equal
// exactly when the file was not replaced or rewritten in between.
//
// The zero Fingerprint compares unequal to every other fingerprint,
// including another zero one, so a failed or missing baseline always
// reads as "changed".
type Fingerprint struct {
	taken   bool
	size    int64
	modTime int64
}

// FingerprintOf derives a fingerprint from already-obtained file info.
func FingerprintOf(info os.FileInfo) Fingerprint {
	return Fingerprint{
		taken:   true,
		size:    info.Size(),
		modTime: info.ModTime().UnixNano(),
	}
}

// Equal reports whether both fingerprints were taken and match.
func (f Fingerprint) Equal(o Fingerprint) bool {
	return f.taken && o.taken && f.size == o.size && f.modTime == o.modTime
}

// Compile-time interface checks.
var _ File = (*os.File)(nil)
