package category

import (
	"strings"
	"unicode"

	"hotlist/internal/domain/profile"
	"hotlist/internal/domain/textmatch"
	"hotlist/internal/vocabulary"
)

type Classifier struct {
	finance     []string
	engineering []string
	prefixLen   int
	postal      map[string]string
	aliases     map[string]string
	titles      []vocabulary.TitleRule
}

func NewClassifier(v vocabulary.Vocabulary) *Classifier {
	aliases := make(map[string]string, len(v.Geography.CityAliases))
	for k, city := range v.Geography.CityAliases {
		aliases[textmatch.NormalizePhrase(k)] = city
	}
	titles := make([]vocabulary.TitleRule, 0, len(v.Titles))
	for _, r := range v.Titles {
		titles = append(titles, vocabulary.TitleRule{
			Keyword: textmatch.NormalizePhrase(r.Keyword),
			Title:   strings.TrimSpace(r.Title),
		})
	}
	return &Classifier{
		finance:     v.Categories.Finance,
		engineering: v.Categories.Engineering,
		prefixLen:   v.Geography.PostalPrefixLength,
		postal:      v.Geography.PostalCities,
		aliases:     aliases,
		titles:      titles,
	}
}

type CategoryResult struct {
	Category profile.Category
	Keywords []string
}

// DetectCategory counts distinct vocabulary hits per category. A tie with at
// least one hit goes to FINANCE; no hits yields OTHER.
func (c *Classifier) DetectCategory(text string) CategoryResult {
	t := textmatch.NewText(text)
	if t.Empty() {
		return CategoryResult{Category: profile.CategoryOther, Keywords: []string{}}
	}

	fin := t.Matches(c.finance)
	eng := t.Matches(c.engineering)

	switch {
	case len(fin) == 0 && len(eng) == 0:
		return CategoryResult{Category: profile.CategoryOther, Keywords: []string{}}
	case len(fin) >= len(eng):
		return CategoryResult{Category: profile.CategoryFinance, Keywords: fin}
	default:
		return CategoryResult{Category: profile.CategoryEngineering, Keywords: eng}
	}
}

// ResolveCity prefers an explicit city, normalized through the alias table.
// Otherwise the postal code prefix is looked up. Unmapped input yields nil.
func (c *Classifier) ResolveCity(postalCode, cityField string) *string {
	if city := strings.TrimSpace(cityField); city != "" {
		if canonical, ok := c.aliases[textmatch.NormalizePhrase(city)]; ok {
			return &canonical
		}
		return &city
	}

	digits := leadingDigits(postalCode)
	if c.prefixLen <= 0 || len(digits) < c.prefixLen {
		return nil
	}
	city, ok := c.postal[digits[:c.prefixLen]]
	if !ok {
		return nil
	}
	return &city
}

// NormalizeJobTitle returns the canonical title of the first table rule
// whose keyword occurs in positionText, or nil.
func (c *Classifier) NormalizeJobTitle(positionText string) *string {
	lower := textmatch.NormalizePhrase(positionText)
	if lower == "" {
		return nil
	}
	for _, r := range c.titles {
		if r.Keyword != "" && strings.Contains(lower, r.Keyword) {
			title := r.Title
			return &title
		}
	}
	return nil
}

// Titles normalizes every position title into one ordered set.
func (c *Classifier) Titles(positions ...string) profile.TitleSet {
	out := profile.TitleSet{}
	for _, p := range positions {
		if t := c.NormalizeJobTitle(p); t != nil {
			out = out.Add(*t)
		}
	}
	return out
}

func leadingDigits(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	for i, r := range s {
		if !unicode.IsDigit(r) {
			break
		}
		end = i + 1
	}
	return s[:end]
}
