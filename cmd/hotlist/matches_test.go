package main

import (
	"testing"

	"hotlist/internal/domain/match"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetListFlags(t *testing.T) {
	t.Helper()
	listJobID, listCandidateID = "", ""
	listStatuses = nil
	listStaleOnly, listGoodOnly = false, false
	listMinKeyword, listMinPre = 0, 0
	listAIChecked, listSort = "", ""
	listLimit, listOffset = 0, 0
	matchesListCmd.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
}

func parseList(t *testing.T, args ...string) error {
	t.Helper()
	resetListFlags(t)
	t.Cleanup(func() { resetListFlags(t) })
	return matchesListCmd.Flags().Parse(args)
}

func TestListParams_Defaults(t *testing.T) {
	require.NoError(t, parseList(t))

	p, err := listParams(matchesListCmd)
	require.NoError(t, err)
	assert.Nil(t, p.JobID)
	assert.Nil(t, p.CandidateID)
	assert.Nil(t, p.MinKeywordScore)
	assert.Nil(t, p.MinPreScore)
	assert.Nil(t, p.AIChecked)
	assert.Empty(t, p.Statuses)
}

func TestListParams_Filters(t *testing.T) {
	jobID := uuid.New()
	require.NoError(t, parseList(t,
		"--job", jobID.String(),
		"--status", "new", "--status", "ai_checked",
		"--min-keyword", "0",
		"--ai-checked", "No",
		"--sort", "distance:asc",
		"--limit", "20",
	))

	p, err := listParams(matchesListCmd)
	require.NoError(t, err)
	require.NotNil(t, p.JobID)
	assert.Equal(t, jobID, *p.JobID)
	assert.Equal(t, []match.Status{match.StatusNew, match.StatusAIChecked}, p.Statuses)
	require.NotNil(t, p.MinKeywordScore)
	assert.Zero(t, *p.MinKeywordScore)
	assert.Nil(t, p.MinPreScore)
	require.NotNil(t, p.AIChecked)
	assert.False(t, *p.AIChecked)
	assert.Equal(t, "distance:asc", p.Sort)
	assert.Equal(t, 20, p.Limit)
}

func TestListParams_Rejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad job id", []string{"--job", "nope"}},
		{"bad candidate id", []string{"--candidate", "42"}},
		{"unknown status", []string{"--status", "archived"}},
		{"bad ai filter", []string{"--ai-checked", "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, parseList(t, tt.args...))
			_, err := listParams(matchesListCmd)
			assert.Error(t, err)
		})
	}
}

func TestStaleRef(t *testing.T) {
	t.Cleanup(func() { staleCandidateID, staleJobID = "", "" })
	id := uuid.New()

	staleCandidateID, staleJobID = id.String(), ""
	ref, err := staleRef()
	require.NoError(t, err)
	assert.Equal(t, match.CandidateRef(id), ref)

	staleCandidateID, staleJobID = "", id.String()
	ref, err = staleRef()
	require.NoError(t, err)
	assert.Equal(t, match.JobRef(id), ref)

	staleJobID = "not-a-uuid"
	_, err = staleRef()
	assert.Error(t, err)
}

func TestPrintMatch_NotFound(t *testing.T) {
	assert.ErrorIs(t, printMatch(matchesStatusCmd, nil, nil), errMatchNotFound)
}
