package profile

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryFinance     Category = "FINANCE"
	CategoryEngineering Category = "ENGINEERING"
	CategoryOther       Category = "OTHER"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryFinance, CategoryEngineering, CategoryOther:
		return true
	}
	return false
}

func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.Valid()
}

type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// NewCoordinate returns nil unless both components are present.
func NewCoordinate(lat, lon *float64) *Coordinate {
	if lat == nil || lon == nil {
		return nil
	}
	return &Coordinate{Latitude: *lat, Longitude: *lon}
}

type WorkEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Company     string `json:"company,omitempty"`
}

// Classification holds the derived fields written by the classifiers.
// A nil Category means the entity has not been classified yet.
type Classification struct {
	Category       *Category
	ResolvedCity   *string
	Titles         TitleSet
	LegacyTitle    *string
	Roles          []string
	PrimaryRole    *string
	IsLeadership   bool
	RoleConfidence *float64
	RoleReasoning  *string
	ClassifiedAt   *time.Time
}

// EffectiveTitles falls back to the legacy single title when no title set
// was ever written.
func (c Classification) EffectiveTitles() TitleSet {
	if c.Titles != nil {
		return c.Titles
	}
	if c.LegacyTitle != nil && strings.TrimSpace(*c.LegacyTitle) != "" {
		return TitleSet{strings.TrimSpace(*c.LegacyTitle)}
	}
	return nil
}
