package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"

	"hotlist/internal/infrastructure/cache"
)

type matchListCacheKeyInput struct {
	JobID           string   `json:"job_id"`
	CandidateID     string   `json:"candidate_id"`
	Statuses        []string `json:"statuses"`
	StaleOnly       bool     `json:"stale_only"`
	MinKeywordScore *float64 `json:"min_keyword_score"`
	MinPreScore     *float64 `json:"min_pre_score"`
	AIChecked       *bool    `json:"ai_checked"`
	Sort            string   `json:"sort"`
	Desc            bool     `json:"desc"`
	Limit           int      `json:"limit"`
	Offset          int      `json:"offset"`
}

// MatchListCacheKey hashes the normalized query. Parameters that select the
// same rows produce the same key.
func MatchListCacheKey(q normalizedMatchQuery) string {
	in := matchListCacheKeyInput{
		StaleOnly:       q.filter.StaleOnly,
		MinKeywordScore: q.filter.MinKeywordScore,
		MinPreScore:     q.filter.MinPreScore,
		AIChecked:       q.filter.AIChecked,
		Sort:            string(q.sort.Field),
		Desc:            q.sort.Desc,
		Limit:           q.limit,
		Offset:          q.offset,
	}
	if q.filter.JobID != nil {
		in.JobID = q.filter.JobID.String()
	}
	if q.filter.CandidateID != nil {
		in.CandidateID = q.filter.CandidateID.String()
	}
	for _, s := range q.filter.Statuses {
		in.Statuses = append(in.Statuses, string(s))
	}
	slices.Sort(in.Statuses)
	in.Statuses = slices.Compact(in.Statuses)

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return cache.MatchListPrefix + hex.EncodeToString(sum[:])
}
