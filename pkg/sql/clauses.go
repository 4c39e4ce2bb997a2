// Package sql provides the SQL text transformations of the query engine:
// dynamic GROUP BY / ORDER BY clause splicing, conditional template
// rendering, and bind-parameter utilities.
package sql

import "strings"

// SortField is one entry of a dynamic ORDER BY specification.
type SortField struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// normalizeDirection maps anything that is not exactly DESC
// (case-insensitive) to ASC.
func normalizeDirection(dir string) string {
	switch strings.ToUpper(strings.TrimSpace(dir)) {
	case "DESC":
		return "DESC"
	case "ASC":
		return "ASC"
	default:
		return "ASC"
	}
}

// span is a half-open byte range [start, end) within template text.
type span struct {
	start int
	end   int
}

func spanContaining(spans []span, idx int) (span, bool) {
	for _, s := range spans {
		if idx >= s.start && idx < s.end {
			return s, true
		}
	}
	return span{}, false
}

// tagSpans returns the ranges of {% ... %} tags in text. An unterminated tag
// extends to the end of input; the renderer reports it as an error later.
func tagSpans(text string) []span {
	var spans []span
	for from := 0; ; {
		open := strings.Index(text[from:], tagOpen)
		if open < 0 {
			return spans
		}
		open += from
		rel := strings.Index(text[open:], tagClose)
		if rel < 0 {
			return append(spans, span{open, len(text)})
		}
		end := open + rel + len(tagClose)
		spans = append(spans, span{open, end})
		from = end
	}
}

// blockSpans returns the ranges of outermost {% if %}...{% endif %} blocks,
// opening tag through closing tag inclusive.
func blockSpans(text string) []span {
	var spans []span
	depth := 0
	start := 0
	for _, t := range tagSpans(text) {
		tag := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text[t.start:t.end], tagOpen), tagClose))
		switch {
		case tag == "if" || strings.HasPrefix(tag, "if "):
			if depth == 0 {
				start = t.start
			}
			depth++
		case tag == "endif":
			if depth > 0 {
				depth--
				if depth == 0 {
					spans = append(spans, span{start, t.end})
				}
			}
		}
	}
	return spans
}

// blockStart widens a cut point to the start of the conditional block
// containing idx, so splices never separate an {% if %} from its {% endif %}.
// Outside every block it is idx itself.
func blockStart(blocks []span, idx int) int {
	if s, ok := spanContaining(blocks, idx); ok {
		return s.start
	}
	return idx
}

// equalFoldASCII reports whether a and b match byte for byte ignoring ASCII
// case. Unlike ToUpper it cannot change byte offsets for non-ASCII runes.
func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// keywordIndex returns the index of the first case-insensitive occurrence of
// keyword in text at or after from, or -1. Occurrences inside {% ... %} tags
// (such as a parameter named limit) are not keywords and are skipped.
func keywordIndex(text, keyword string, from int, tags []span) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(keyword) <= len(text); i++ {
		if !equalFoldASCII(text[i:i+len(keyword)], keyword) {
			continue
		}
		if t, ok := spanContaining(tags, i); ok {
			i = t.end - 1
			continue
		}
		return i
	}
	return -1
}

// InjectGroupBy splices a GROUP BY clause into raw template text. An existing
// GROUP BY clause is replaced, keeping any trailing HAVING segment and ORDER
// BY tail from the original text; otherwise the clause is inserted before
// ORDER BY, or appended. Cut points inside an {% if %} block widen to the
// whole block, so conditional HAVING or LIMIT fragments survive intact.
//
// This is first-occurrence textual splicing. Templates are assumed to carry
// at most one top-level GROUP BY / HAVING / ORDER BY sequence; the same
// keywords inside subqueries or string literals can be spliced incorrectly.
func InjectGroupBy(text string, fields []string) string {
	if len(fields) == 0 {
		return text
	}
	clause := "GROUP BY " + strings.Join(fields, ", ")
	tags := tagSpans(text)
	blocks := blockSpans(text)

	idxGroup := keywordIndex(text, "GROUP BY", 0, tags)
	if idxGroup < 0 {
		idxOrder := keywordIndex(text, "ORDER BY", 0, tags)
		if idxOrder < 0 {
			return strings.TrimRight(text, " \t\n") + " " + clause
		}
		cut := blockStart(blocks, idxOrder)
		return strings.TrimRight(text[:cut], " \t\n") + " " + clause + " " + text[cut:]
	}

	idxHaving := keywordIndex(text, "HAVING", idxGroup, tags)
	idxOrder := keywordIndex(text, "ORDER BY", idxGroup, tags)

	orderCut := -1
	if idxOrder >= 0 {
		orderCut = blockStart(blocks, idxOrder)
	}

	result := text[:blockStart(blocks, idxGroup)] + clause

	if idxHaving >= 0 {
		start := blockStart(blocks, idxHaving)
		end := len(text)
		if idxOrder > idxHaving {
			end = orderCut
		}
		if end > start {
			result += " " + strings.TrimRight(text[start:end], " \t\n")
		}
	}
	if idxOrder >= 0 {
		result += " " + text[orderCut:]
	}
	return result
}

// InjectOrderBy splices an ORDER BY clause into raw template text. An
// existing ORDER BY clause is replaced up to any LIMIT, which is reattached;
// otherwise the clause is appended. Directions normalize to ASC unless DESC.
//
// Same textual-splicing caveats as InjectGroupBy, including the block-whole
// widening of cut points.
func InjectOrderBy(text string, sort []SortField) string {
	if len(sort) == 0 {
		return text
	}

	parts := make([]string, 0, len(sort))
	for _, s := range sort {
		parts = append(parts, s.Field+" "+normalizeDirection(s.Direction))
	}
	clause := "ORDER BY " + strings.Join(parts, ", ")
	tags := tagSpans(text)
	blocks := blockSpans(text)

	idxOrder := keywordIndex(text, "ORDER BY", 0, tags)
	if idxOrder < 0 {
		return strings.TrimRight(text, " \t\n") + " " + clause
	}

	orderCut := blockStart(blocks, idxOrder)
	result := text[:orderCut] + clause

	if idxLimit := keywordIndex(text, "LIMIT", idxOrder, tags); idxLimit >= 0 {
		if cut := blockStart(blocks, idxLimit); cut > orderCut {
			result += " " + text[cut:]
		}
	}
	return result
}
