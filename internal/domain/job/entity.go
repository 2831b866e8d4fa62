package job

import (
	"strings"
	"time"

	"hotlist/internal/domain/profile"

	"github.com/google/uuid"
)

// Job is an open position at a client company. DeletedAt marks soft deletion.
type Job struct {
	ID             uuid.UUID
	Title          string
	Description    string
	Company        string
	PostalCode     string
	City           string
	Coordinate     *profile.Coordinate
	DeletedAt      *time.Time
	Classification profile.Classification
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (j Job) Deleted() bool {
	return j.DeletedAt != nil
}

// Text is the posting text matched against candidate skills.
func (j Job) Text() string {
	title := strings.TrimSpace(j.Title)
	desc := strings.TrimSpace(j.Description)
	switch {
	case title == "":
		return desc
	case desc == "":
		return title
	}
	return title + " \n" + desc
}
