package match

import (
	"time"

	"github.com/google/uuid"
)

// Match links one job and one candidate. Fields prefixed AI are owned by the
// external assessment step; once AICheckedAt is set the geo and keyword
// fields are frozen.
type Match struct {
	ID              uuid.UUID
	JobID           uuid.UUID
	CandidateID     uuid.UUID
	DistanceKm      float64
	KeywordScore    float64
	MatchedKeywords []string
	PreScore        *float64
	AIScore         *float64
	AIExplanation   *string
	AICheckedAt     *time.Time
	Status          Status
	Stale           bool
	StaleReason     *string
	StaleSince      *time.Time
	PlacedAt        *time.Time
	PlacedNotes     *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (m Match) AIChecked() bool {
	return m.AICheckedAt != nil
}

// EntityKind names the owner side of a match.
type EntityKind string

const (
	EntityCandidate EntityKind = "candidate"
	EntityJob       EntityKind = "job"
)

type EntityRef struct {
	Kind EntityKind
	ID   uuid.UUID
}

func CandidateRef(id uuid.UUID) EntityRef { return EntityRef{Kind: EntityCandidate, ID: id} }

func JobRef(id uuid.UUID) EntityRef { return EntityRef{Kind: EntityJob, ID: id} }
