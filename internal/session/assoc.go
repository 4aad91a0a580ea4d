package session

import "strings"

// BuiltinCmd is the reserved command marker for associations synthesized
// by the program itself. Such entries are never persisted and legacy
// files that contain them are filtered on read.
const BuiltinCmd = "dfm"

// Assoc associates a matcher expression with a command.
type Assoc struct {
	Matchers    string
	Cmd         string
	Description string
	Builtin     bool
}

// AssocList is one of the three association tables: file-type programs,
// x-type programs, or viewers.
type AssocList struct {
	entries []Assoc
}

// NewAssocList returns an empty association table.
func NewAssocList() *AssocList {
	return &AssocList{}
}

// Add appends an association.
func (l *AssocList) Add(a Assoc) {
	l.entries = append(l.entries, a)
}

// Entries returns the table in registration order. The slice is shared;
// do not mutate.
func (l *AssocList) Entries() []Assoc {
	return l.entries
}

// Exists reports whether the table already holds an entry whose matchers
// and stored command form equal the given pair. storedCmd is in the wire
// encoding produced by [EncodeAssocCmd].
func (l *AssocList) Exists(matchers, storedCmd string) bool {
	for _, a := range l.entries {
		if a.Matchers == matchers && EncodeAssocCmd(a) == storedCmd {
			return true
		}
	}

	return false
}

// EncodeAssocCmd renders the stored command form of an association:
// literal commas in the command are doubled and a non-empty description
// is prefixed as "{description}".
func EncodeAssocCmd(a Assoc) string {
	cmd := strings.ReplaceAll(a.Cmd, ",", ",,")
	if a.Description == "" {
		return cmd
	}

	return "{" + a.Description + "}" + cmd
}

// DecodeAssocCmd splits a stored command form back into description and
// command, undoubling commas.
func DecodeAssocCmd(stored string) (description, cmd string) {
	if strings.HasPrefix(stored, "{") {
		if end := strings.Index(stored, "}"); end >= 0 {
			description = stored[1:end]
			stored = stored[end+1:]
		}
	}

	return description, strings.ReplaceAll(stored, ",,", ",")
}
