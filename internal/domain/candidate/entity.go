package candidate

import (
	"strings"
	"time"

	"hotlist/internal/domain/profile"

	"github.com/google/uuid"
)

// Candidate is a person in the CRM. WorkHistory is ordered most recent first.
type Candidate struct {
	ID                  uuid.UUID
	FullName            string
	CurrentTitle        string
	Skills              []string
	WorkHistory         []profile.WorkEntry
	Education           []string
	ContinuingEducation []string
	PostalCode          string
	City                string
	Coordinate          *profile.Coordinate
	Hidden              bool
	Classification      profile.Classification
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ProfileText is the free text the category classifier reads.
func (c Candidate) ProfileText() string {
	parts := make([]string, 0, 2+len(c.Skills)+2*len(c.WorkHistory))
	parts = append(parts, c.CurrentTitle)
	parts = append(parts, c.Skills...)
	for _, w := range c.WorkHistory {
		parts = append(parts, w.Title, w.Description)
	}
	parts = append(parts, c.Education...)
	parts = append(parts, c.ContinuingEducation...)
	return joinNonEmpty(parts)
}

// HeldTitles lists the raw titles of the current and past positions.
func (c Candidate) HeldTitles() []string {
	out := make([]string, 0, 1+len(c.WorkHistory))
	if t := strings.TrimSpace(c.CurrentTitle); t != "" {
		out = append(out, t)
	}
	for _, w := range c.WorkHistory {
		if t := strings.TrimSpace(w.Title); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func joinNonEmpty(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" \n")
		}
		b.WriteString(p)
	}
	return b.String()
}
