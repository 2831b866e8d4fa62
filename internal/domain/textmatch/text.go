// Package textmatch implements the case-insensitive, word-boundary phrase
// matching shared by the keyword matcher and the classifiers.
package textmatch

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Text is a lowercased, umlaut-folded, whitespace-collapsed view of free
// text.
type Text struct {
	s string
}

func NewText(parts ...string) Text {
	return Text{s: Normalize(strings.Join(parts, " \n"))}
}

// umlautFolder maps German umlauts and sharp s to their ASCII spellings so
// "Führung" and "Fuehrung" compare equal.
var umlautFolder = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")

// Normalize lowercases s, folds umlauts and collapses runs of spaces and
// tabs. Line breaks are kept as clause boundaries.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = umlautFolder.Replace(strings.ToLower(s))

	b := strings.Builder{}
	b.Grow(len(s))
	pendingSpace := false
	pendingBreak := false
	for _, r := range s {
		if r == '\n' || r == '\r' {
			pendingBreak = true
			continue
		}
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if b.Len() > 0 {
			switch {
			case pendingBreak:
				b.WriteByte('\n')
			case pendingSpace:
				b.WriteByte(' ')
			}
		}
		pendingSpace, pendingBreak = false, false
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizePhrase is Normalize with line breaks folded into spaces.
func NormalizePhrase(s string) string {
	return strings.ReplaceAll(Normalize(s), "\n", " ")
}

func (t Text) String() string { return t.s }

func (t Text) Empty() bool { return t.s == "" }

// Index returns the byte offset of the first whole-word occurrence of
// phrase, or -1.
func (t Text) Index(phrase string) int {
	p := NormalizePhrase(phrase)
	if p == "" || t.s == "" {
		return -1
	}
	return indexFrom(t.s, p, 0)
}

func (t Text) Contains(phrase string) bool {
	return t.Index(phrase) >= 0
}

// Count returns the number of non-overlapping whole-word occurrences.
func (t Text) Count(phrase string) int {
	p := NormalizePhrase(phrase)
	if p == "" || t.s == "" {
		return 0
	}
	n := 0
	for from := 0; ; {
		i := indexFrom(t.s, p, from)
		if i < 0 {
			return n
		}
		n++
		from = i + len(p)
	}
}

// Matches returns the phrases found in t, deduplicated, in list order.
func (t Text) Matches(phrases []string) []string {
	out := make([]string, 0)
	seen := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		key := NormalizePhrase(p)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		if t.Contains(key) {
			seen[key] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// CountAll sums occurrences of every distinct phrase.
func (t Text) CountAll(phrases []string) int {
	total := 0
	seen := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		key := NormalizePhrase(p)
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		seen[key] = struct{}{}
		total += t.Count(key)
	}
	return total
}

// ContainsAny reports whether any phrase occurs.
func (t Text) ContainsAny(phrases []string) bool {
	for _, p := range phrases {
		if t.Contains(p) {
			return true
		}
	}
	return false
}

func indexFrom(s, p string, from int) int {
	needStart := isWordRune(firstRune(p))
	needEnd := isWordRune(lastRune(p))
	for from <= len(s) {
		i := strings.Index(s[from:], p)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(p)
		okStart := !needStart || i == 0 || !isWordRune(lastRune(s[:i]))
		okEnd := !needEnd || end == len(s) || !isWordRune(firstRune(s[end:]))
		if okStart && okEnd {
			return i
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		from = i + size
	}
	return -1
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}
