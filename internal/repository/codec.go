package repository

import (
	"encoding/json"
	"time"

	"hotlist/internal/domain/profile"
)

// JSONB columns are bound as text and scanned as raw bytes so both the pgx
// and the lib/pq driver handle them the same way.

func jsonArg(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func stringsArg(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	return jsonArg(v)
}

// nullableStringsArg keeps nil as SQL NULL.
func nullableStringsArg(v []string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s, err := jsonArg(v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func decodeStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeWorkHistory(raw []byte) ([]profile.WorkEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out []profile.WorkEntry
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// classificationColumns is the shared column list of candidates and jobs.
const classificationColumns = `category, resolved_city, titles, legacy_title, roles, primary_role,
	is_leadership, role_confidence, role_reasoning, classified_at`

type classificationRow struct {
	category     *string
	resolvedCity *string
	titles       []byte
	legacyTitle  *string
	roles        []byte
	primaryRole  *string
	isLeadership bool
	confidence   *float64
	reasoning    *string
	classifiedAt *time.Time
}

func (r *classificationRow) dest() []any {
	return []any{
		&r.category, &r.resolvedCity, &r.titles, &r.legacyTitle, &r.roles, &r.primaryRole,
		&r.isLeadership, &r.confidence, &r.reasoning, &r.classifiedAt,
	}
}

func (r *classificationRow) classification() (profile.Classification, error) {
	c := profile.Classification{
		ResolvedCity:   r.resolvedCity,
		LegacyTitle:    r.legacyTitle,
		PrimaryRole:    r.primaryRole,
		IsLeadership:   r.isLeadership,
		RoleConfidence: r.confidence,
		RoleReasoning:  r.reasoning,
		ClassifiedAt:   r.classifiedAt,
	}
	if r.category != nil {
		if cat, ok := profile.ParseCategory(*r.category); ok {
			c.Category = &cat
		}
	}
	titles, err := decodeStrings(r.titles)
	if err != nil {
		return c, err
	}
	if r.titles != nil {
		c.Titles = profile.NewTitleSet(titles...)
	}
	roles, err := decodeStrings(r.roles)
	if err != nil {
		return c, err
	}
	c.Roles = roles
	return c, nil
}

// classificationArgs renders the update arguments in column order.
func classificationArgs(c profile.Classification) ([]any, error) {
	var category *string
	if c.Category != nil {
		s := string(*c.Category)
		category = &s
	}
	var titles []string
	if c.Titles != nil {
		titles = []string(c.Titles)
	}
	titlesArg, err := nullableStringsArg(titles)
	if err != nil {
		return nil, err
	}
	rolesArg, err := nullableStringsArg(c.Roles)
	if err != nil {
		return nil, err
	}
	return []any{
		category, c.ResolvedCity, titlesArg, c.LegacyTitle, rolesArg, c.PrimaryRole,
		c.IsLeadership, c.RoleConfidence, c.RoleReasoning, c.ClassifiedAt,
	}, nil
}

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

