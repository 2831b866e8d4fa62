package prescore

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"hotlist/internal/domain/candidate"
	"hotlist/internal/domain/job"
	"hotlist/internal/domain/match"
	"hotlist/internal/domain/profile"
)

const DefaultGoodMatchThreshold = 50.0

var (
	ErrWeightsSum  = errors.New("pre-score weights must sum to 100")
	ErrThresholds  = errors.New("far distance threshold must exceed near threshold")
	ErrNegativeArg = errors.New("pre-score weights and thresholds must not be negative")
)

type Weights struct {
	Category float64
	City     float64
	Title    float64
	Keyword  float64
	Distance float64
}

func DefaultWeights() Weights {
	return Weights{Category: 15, City: 15, Title: 20, Keyword: 30, Distance: 20}
}

func (w Weights) Sum() float64 {
	return w.Category + w.City + w.Title + w.Keyword + w.Distance
}

type Thresholds struct {
	NearKm    float64
	FarKm     float64
	GoodMatch float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{NearKm: 5, FarKm: 30, GoodMatch: DefaultGoodMatchThreshold}
}

// Breakdown is the per-factor contribution; Total is their sum.
type Breakdown struct {
	Category float64
	City     float64
	Title    float64
	Keyword  float64
	Distance float64
	Total    float64
}

// Inputs are the signals for one candidate/job pair. Nil pointers mean the
// signal is unknown and contributes nothing.
type Inputs struct {
	CandidateCategory *profile.Category
	JobCategory       *profile.Category
	CandidateCity     *string
	JobCity           *string
	CandidateTitles   profile.TitleSet
	JobTitles         profile.TitleSet
	KeywordRatio      *float64
	DistanceKm        *float64
}

type Calculator struct {
	w Weights
	t Thresholds
}

func NewCalculator(w Weights, t Thresholds) (*Calculator, error) {
	if w.Category < 0 || w.City < 0 || w.Title < 0 || w.Keyword < 0 || w.Distance < 0 || t.NearKm < 0 {
		return nil, ErrNegativeArg
	}
	if math.Abs(w.Sum()-100) > 1e-9 {
		return nil, fmt.Errorf("%w: got %.2f", ErrWeightsSum, w.Sum())
	}
	if t.FarKm <= t.NearKm {
		return nil, ErrThresholds
	}
	return &Calculator{w: w, t: t}, nil
}

func (c *Calculator) Weights() Weights { return c.w }

func (c *Calculator) Thresholds() Thresholds { return c.t }

func (c *Calculator) Calculate(in Inputs) Breakdown {
	var b Breakdown

	if in.CandidateCategory != nil && in.JobCategory != nil && *in.CandidateCategory == *in.JobCategory {
		b.Category = c.w.Category
	}

	if in.CandidateCity != nil && in.JobCity != nil {
		cc := strings.TrimSpace(*in.CandidateCity)
		jc := strings.TrimSpace(*in.JobCity)
		if cc != "" && strings.EqualFold(cc, jc) {
			b.City = c.w.City
		}
	}

	if in.CandidateTitles.Intersects(in.JobTitles) {
		b.Title = c.w.Title
	}

	if in.KeywordRatio != nil {
		b.Keyword = c.w.Keyword * clamp01(*in.KeywordRatio)
	}

	if in.DistanceKm != nil {
		b.Distance = c.w.Distance * c.distanceFactor(*in.DistanceKm)
	}

	b.Total = clamp(b.Category+b.City+b.Title+b.Keyword+b.Distance, 0, 100)
	return b
}

// CalculateMatch scores a persisted match from both entities' classification.
func (c *Calculator) CalculateMatch(cand candidate.Candidate, j job.Job, m match.Match) Breakdown {
	ratio := m.KeywordScore
	dist := m.DistanceKm
	return c.Calculate(Inputs{
		CandidateCategory: cand.Classification.Category,
		JobCategory:       j.Classification.Category,
		CandidateCity:     cand.Classification.ResolvedCity,
		JobCity:           j.Classification.ResolvedCity,
		CandidateTitles:   cand.Classification.EffectiveTitles(),
		JobTitles:         j.Classification.EffectiveTitles(),
		KeywordRatio:      &ratio,
		DistanceKm:        &dist,
	})
}

func (c *Calculator) IsGoodMatch(total float64) bool {
	return total >= c.t.GoodMatch
}

// distanceFactor is 1 up to NearKm, decays linearly to 0 at FarKm.
func (c *Calculator) distanceFactor(d float64) float64 {
	switch {
	case d < 0:
		return 0
	case d <= c.t.NearKm:
		return 1
	case d >= c.t.FarKm:
		return 0
	}
	return (c.t.FarKm - d) / (c.t.FarKm - c.t.NearKm)
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
