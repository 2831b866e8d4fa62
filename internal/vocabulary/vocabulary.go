// Package vocabulary holds the static tables the classifiers read: category
// keywords, the postal-prefix city table, the ordered title table and the
// role keyword lists. Tables are data; the classifiers receive them at
// construction time.
package vocabulary

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"hotlist/internal/domain/textmatch"
)

type Vocabulary struct {
	Categories CategoryVocabulary `json:"categories"`
	Geography  Geography          `json:"geography"`
	Titles     []TitleRule        `json:"titles"`
	Roles      RoleVocabulary     `json:"roles"`
}

type CategoryVocabulary struct {
	Finance     []string `json:"finance"`
	Engineering []string `json:"engineering"`
}

type Geography struct {
	PostalPrefixLength int               `json:"postal_prefix_length"`
	PostalCities       map[string]string `json:"postal_cities"`
	CityAliases        map[string]string `json:"city_aliases"`
}

// TitleRule maps a keyword found anywhere in a position text to a canonical
// title. Rules are evaluated in order; the first hit wins.
type TitleRule struct {
	Keyword string `json:"keyword"`
	Title   string `json:"title"`
}

type RoleVocabulary struct {
	LeadershipTitles     []string `json:"leadership_titles"`
	LeadershipActivities []string `json:"leadership_activities"`
	StatementCreation    []string `json:"statement_creation"`
	AssistMarkers        []string `json:"assist_markers"`
	Certification        []string `json:"certification"`
	Bookkeeping          []string `json:"bookkeeping"`
	Payables             []string `json:"payables"`
	Receivables          []string `json:"receivables"`
	Payroll              []string `json:"payroll"`
	TaxClerk             []string `json:"tax_clerk"`
	NiceToHave           []string `json:"nice_to_have"`
	// ReportingLines mark clauses naming a superior, which are not
	// leadership evidence.
	ReportingLines []string `json:"reporting_lines"`
}

var ErrInvalid = errors.New("invalid vocabulary")

// Validate enforces the invariants the JSON schema cannot: postal keys match
// the prefix length, and no title keyword is shadowed by a more generic
// keyword listed before it.
func (v Vocabulary) Validate() error {
	n := v.Geography.PostalPrefixLength
	if n < 1 || n > 5 {
		return fmt.Errorf("%w: postal_prefix_length %d out of range 1..5", ErrInvalid, n)
	}
	for prefix := range v.Geography.PostalCities {
		if len(prefix) != n || !digitsOnly(prefix) {
			return fmt.Errorf("%w: postal prefix %q must be %d digits", ErrInvalid, prefix, n)
		}
	}

	for i, r := range v.Titles {
		if strings.TrimSpace(r.Keyword) == "" || strings.TrimSpace(r.Title) == "" {
			return fmt.Errorf("%w: title rule %d is empty", ErrInvalid, i)
		}
	}
	for i := range v.Titles {
		generic := textmatch.NormalizePhrase(v.Titles[i].Keyword)
		for j := i + 1; j < len(v.Titles); j++ {
			specific := textmatch.NormalizePhrase(v.Titles[j].Keyword)
			if specific != generic && strings.Contains(specific, generic) {
				return fmt.Errorf("%w: title keyword %q at %d shadows %q at %d", ErrInvalid, generic, i, specific, j)
			}
		}
	}
	return nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
