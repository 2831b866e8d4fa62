package textmatch

import "strings"

type span struct{ start, end int }

func isClauseBreak(r rune) bool {
	switch r {
	case '.', ',', ';', '!', '?', '\n', '•', '|':
		return true
	}
	return false
}

func clauses(s string) []span {
	out := make([]span, 0, 8)
	start := 0
	for i, r := range s {
		if isClauseBreak(r) {
			out = append(out, span{start, i})
			start = i + len(string(r))
		}
	}
	return append(out, span{start, len(s)})
}

// StripFrom removes, within each clause, everything from the first marker
// to the end of the clause. It returns the remaining text and the removed
// fragments.
func (t Text) StripFrom(markers []string) (Text, []string) {
	return t.strip(markers, false)
}

// StripClauses removes every clause that contains a marker.
func (t Text) StripClauses(markers []string) (Text, []string) {
	return t.strip(markers, true)
}

func (t Text) strip(markers []string, whole bool) (Text, []string) {
	if t.s == "" || len(markers) == 0 {
		return t, nil
	}

	var b strings.Builder
	b.Grow(len(t.s))
	removed := make([]string, 0)
	prev := 0
	for _, c := range clauses(t.s) {
		b.WriteString(t.s[prev:c.start])
		prev = c.end

		clause := Text{s: t.s[c.start:c.end]}
		cut := -1
		for _, m := range markers {
			if i := clause.Index(m); i >= 0 && (cut < 0 || i < cut) {
				cut = i
			}
		}
		switch {
		case cut < 0:
			b.WriteString(clause.s)
		case whole:
			removed = append(removed, strings.TrimSpace(clause.s))
		default:
			b.WriteString(clause.s[:cut])
			removed = append(removed, strings.TrimSpace(clause.s[cut:]))
		}
	}
	b.WriteString(t.s[prev:])
	return Text{s: b.String()}, removed
}
