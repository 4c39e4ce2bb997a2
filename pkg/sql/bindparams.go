package sql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dynasql/dynasql/pkg/params"
)

// markerRegex matches :name bind markers in rendered SQL. Marker names start
// with a letter or underscore followed by word characters. A leading colon
// pair (::) is a cast, not a marker.
var markerRegex = regexp.MustCompile(`(^|[^:]):([a-zA-Z_]\w*)`)

// FilterBindParameters narrows a parameter set to the values that should be
// bound at execution time: the name must literally appear as a substring of
// the final SQL text, and the value must not be a boolean (booleans are
// consumed by conditional branching, never bound).
//
// Substring matching can conflate a short parameter name with an unrelated
// identifier containing it (e.g. "id" inside "valid"); that looseness is
// intentional and matches how cache keys and templates treat names.
func FilterBindParameters(sqlText string, supplied map[string]params.Value) map[string]params.Value {
	bound := make(map[string]params.Value)
	for name, value := range supplied {
		if value.Kind() == params.KindBoolean {
			continue
		}
		if strings.Contains(sqlText, name) {
			bound[name] = value
		}
	}
	return bound
}

// RewriteNamedMarkers replaces :name markers with positional $N placeholders
// and returns the ordered bind values. Repeated markers reuse the same
// position. Markers with no supplied value are left intact so the database
// reports the mismatch instead of silently binding NULL.
func RewriteNamedMarkers(sqlText string, bound map[string]params.Value) (string, []any) {
	var ordered []any
	positions := make(map[string]int)

	rewritten := markerRegex.ReplaceAllStringFunc(sqlText, func(match string) string {
		sub := markerRegex.FindStringSubmatch(match)
		prefix, name := sub[1], sub[2]

		value, ok := bound[name]
		if !ok {
			return match
		}

		pos, seen := positions[name]
		if !seen {
			ordered = append(ordered, value.Bind())
			pos = len(ordered)
			positions[name] = pos
		}
		return fmt.Sprintf("%s$%d", prefix, pos)
	})

	return rewritten, ordered
}
