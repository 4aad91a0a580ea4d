package state

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/okvist/dfm/internal/session"
)

// parseSortSpec turns a serialized sort descriptor like "1,-2,3" into a
// list of sort keys. Tokens are separated by commas or whitespace; each
// accepted key is clamped to [-MaxSortKey, MaxSortKey]. Parsing stops at
// the first unparseable token or once every slot is filled. An empty
// result is left to the caller to default.
func parseSortSpec(spec string) []int8 {
	tokens := strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	var keys []int8

	for _, tok := range tokens {
		if len(keys) == session.SortKeyCount {
			break
		}

		n, err := strconv.Atoi(tok)
		if err != nil {
			break
		}

		if n > session.MaxSortKey {
			n = session.MaxSortKey
		} else if n < -session.MaxSortKey {
			n = -session.MaxSortKey
		}

		keys = append(keys, int8(n))
	}

	return keys
}

// formatSortSpec renders the view's sort keys as a comma-joined
// descriptor, stopping at the first unused slot.
func formatSortSpec(sort [session.SortKeyCount]int8) string {
	var parts []string

	for _, key := range sort {
		if key == 0 || key > session.MaxSortKey || key < -session.MaxSortKey {
			break
		}

		parts = append(parts, strconv.Itoa(int(key)))
	}

	return strings.Join(parts, ",")
}
