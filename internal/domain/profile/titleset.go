package profile

import "strings"

// TitleSet is an insertion-ordered set of canonical job titles compared
// case-insensitively. nil and empty differ: nil means "never written".
type TitleSet []string

func NewTitleSet(titles ...string) TitleSet {
	out := TitleSet{}
	for _, t := range titles {
		out = out.Add(t)
	}
	return out
}

func (s TitleSet) Add(title string) TitleSet {
	title = strings.TrimSpace(title)
	if title == "" || s.Contains(title) {
		return s
	}
	return append(s, title)
}

func (s TitleSet) Contains(title string) bool {
	title = strings.TrimSpace(title)
	for _, t := range s {
		if strings.EqualFold(t, title) {
			return true
		}
	}
	return false
}

func (s TitleSet) Intersects(other TitleSet) bool {
	for _, t := range s {
		if other.Contains(t) {
			return true
		}
	}
	return false
}

// Equal reports set equality, ignoring order and case.
func (s TitleSet) Equal(other TitleSet) bool {
	if len(s) != len(other) {
		return false
	}
	for _, t := range s {
		if !other.Contains(t) {
			return false
		}
	}
	return true
}
