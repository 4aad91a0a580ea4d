package session

import (
	"errors"
	"strings"
)

// ValidRegisters enumerates every register name.
const ValidRegisters = `"_abcdefghijklmnopqrstuvwxyz0123456789`

// ErrBadRegisterName reports a register name outside [ValidRegisters].
var ErrBadRegisterName = errors.New("invalid register name")

// IsValidRegister reports whether name is a recognized register name.
func IsValidRegister(name byte) bool {
	return strings.IndexByte(ValidRegisters, name) >= 0
}

// Registers holds named ordered lists of file paths.
type Registers struct {
	files map[byte][]string
}

// NewRegisters returns an empty register set.
func NewRegisters() *Registers {
	return &Registers{files: map[byte][]string{}}
}

// Append adds path to the end of the named register.
func (r *Registers) Append(name byte, path string) error {
	if !IsValidRegister(name) {
		return ErrBadRegisterName
	}

	r.files[name] = append(r.files[name], path)

	return nil
}

// Files returns the paths in the named register in insertion order.
// The slice is shared; do not mutate.
func (r *Registers) Files(name byte) []string {
	return r.files[name]
}

// Names returns the names of non-empty registers in [ValidRegisters]
// order.
func (r *Registers) Names() []byte {
	var names []byte

	for i := 0; i < len(ValidRegisters); i++ {
		name := ValidRegisters[i]
		if len(r.files[name]) > 0 {
			names = append(names, name)
		}
	}

	return names
}

// Clear empties the named register.
func (r *Registers) Clear(name byte) {
	delete(r.files, name)
}
