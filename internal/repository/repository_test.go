package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"hotlist/internal/database/sqlstd"
	"hotlist/internal/domain/geo"
	"hotlist/internal/domain/match"
	"hotlist/internal/domain/profile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlstd.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = sqldb.Close()
	})
	return sqlstd.New(sqldb), mock
}

var classificationCols = []string{
	"category", "resolved_city", "titles", "legacy_title", "roles", "primary_role",
	"is_leadership", "role_confidence", "role_reasoning", "classified_at",
}

func candidateCols(extra ...string) []string {
	cols := []string{
		"id", "full_name", "current_title", "skills", "work_history", "education", "continuing_education",
		"postal_code", "city", "latitude", "longitude", "hidden",
	}
	cols = append(cols, classificationCols...)
	cols = append(cols, "created_at", "updated_at")
	return append(cols, extra...)
}

func jobCols(extra ...string) []string {
	cols := []string{"id", "title", "description", "company", "postal_code", "city", "latitude", "longitude", "deleted_at"}
	cols = append(cols, classificationCols...)
	cols = append(cols, "created_at", "updated_at")
	return append(cols, extra...)
}

func matchCols(extra ...string) []string {
	cols := []string{
		"id", "job_id", "candidate_id", "distance_km", "keyword_score", "matched_keywords", "pre_score",
		"ai_score", "ai_explanation", "ai_checked_at", "status", "stale", "stale_reason", "stale_since",
		"placed_at", "placed_notes", "created_at", "updated_at",
	}
	return append(cols, extra...)
}

var fixedTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCandidateRepository_FindByID(t *testing.T) {
	db, mock := newMock(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM candidates WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(candidateCols()).AddRow(
			id.String(), "Anna Schmidt", "Finanzbuchhalterin",
			`["SAP","DATEV"]`, `[{"title":"Finanzbuchhalterin","description":"Kontierung"}]`,
			`["Bachelor BWL"]`, `[]`,
			"10115", "", 52.52, 13.40, false,
			"FINANCE", "Berlin", `["Finanzbuchhalter"]`, nil, `["FINANZBUCHHALTER"]`, "FINANZBUCHHALTER",
			false, 0.6, "bookkeeping", fixedTime,
			fixedTime, fixedTime,
		))

	c, err := NewPostgresCandidateRepository(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, id, c.ID)
	assert.Equal(t, []string{"SAP", "DATEV"}, c.Skills)
	require.Len(t, c.WorkHistory, 1)
	assert.Equal(t, "Kontierung", c.WorkHistory[0].Description)
	require.NotNil(t, c.Coordinate)
	assert.InDelta(t, 13.40, c.Coordinate.Longitude, 1e-9)

	require.NotNil(t, c.Classification.Category)
	assert.Equal(t, profile.CategoryFinance, *c.Classification.Category)
	assert.Equal(t, profile.TitleSet{"Finanzbuchhalter"}, c.Classification.Titles)
	assert.Equal(t, []string{"FINANZBUCHHALTER"}, c.Classification.Roles)
	assert.Nil(t, c.Classification.LegacyTitle)
}

func TestCandidateRepository_FindByIDMissing(t *testing.T) {
	db, mock := newMock(t)
	id := uuid.New()

	mock.ExpectQuery("FROM candidates WHERE id").WithArgs(id).WillReturnError(sql.ErrNoRows)

	c, err := NewPostgresCandidateRepository(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCandidateRepository_FindByIDsEmptySkipsQuery(t *testing.T) {
	db, _ := newMock(t)
	out, err := NewPostgresCandidateRepository(db).FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCandidateRepository_UpdateClassification(t *testing.T) {
	db, mock := newMock(t)
	id := uuid.New()
	cat := profile.CategoryEngineering
	city := "München"

	mock.ExpectExec("UPDATE candidates SET").
		WithArgs(id, "ENGINEERING", city, `["Mechatroniker"]`, nil, nil, nil,
			false, nil, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := NewPostgresCandidateRepository(db).UpdateClassification(context.Background(), id, profile.Classification{
		Category:     &cat,
		ResolvedCity: &city,
		Titles:       profile.TitleSet{"Mechatroniker"},
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestJobRepository_ListActiveGeocodedIDs(t *testing.T) {
	db, mock := newMock(t)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT id FROM jobs\\s+WHERE deleted_at IS NULL AND latitude IS NOT NULL").
		WithArgs(uuid.Nil, 200).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(a.String()).AddRow(b.String()))

	ids, err := NewPostgresJobRepository(db).ListActiveGeocodedIDs(context.Background(), uuid.Nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)
}

func TestJobRepository_FindByIDKeepsLegacyTitle(t *testing.T) {
	db, mock := newMock(t)
	id := uuid.New()

	mock.ExpectQuery("FROM jobs WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(jobCols()).AddRow(
			id.String(), "Buchhalter (m/w/d)", "Kontierung", "ACME", "60311", "", 50.11, 8.68, nil,
			"FINANCE", "Frankfurt am Main", nil, "Buchhalter", nil, nil,
			false, nil, nil, nil,
			fixedTime, fixedTime,
		))

	j, err := NewPostgresJobRepository(db).FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, j)
	assert.False(t, j.Deleted())
	assert.Nil(t, j.Classification.Titles)
	assert.Equal(t, profile.TitleSet{"Buchhalter"}, j.Classification.EffectiveTitles())
}

func TestMatchRepository_UpsertOutcomes(t *testing.T) {
	jobID, candID := uuid.New(), uuid.New()
	pre := 85.0
	scores := MatchScores{
		JobID:           jobID,
		CandidateID:     candID,
		DistanceKm:      3.2,
		KeywordScore:    0.5,
		MatchedKeywords: []string{"SAP"},
		PreScore:        &pre,
	}

	tests := []struct {
		name     string
		rows     *sqlmock.Rows
		expected UpsertOutcome
	}{
		{"insert", sqlmock.NewRows([]string{"id", "inserted"}).AddRow(uuid.NewString(), true), OutcomeCreated},
		{"update", sqlmock.NewRows([]string{"id", "inserted"}).AddRow(uuid.NewString(), false), OutcomeUpdated},
		{"ai checked", sqlmock.NewRows([]string{"id", "inserted"}), OutcomeSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectQuery("INSERT INTO matches .+ ON CONFLICT \\(job_id, candidate_id\\) DO UPDATE SET .+ WHERE matches.ai_checked_at IS NULL AND matches.status = 'NEW'").
				WithArgs(sqlmock.AnyArg(), jobID, candID, 3.2, 0.5, `["SAP"]`, 85.0, fixedTime).
				WillReturnRows(tt.rows)

			got, err := NewPostgresMatchRepository(db).Upsert(context.Background(), scores, fixedTime)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMatchRepository_MarkStale(t *testing.T) {
	db, mock := newMock(t)
	jobID := uuid.New()

	mock.ExpectExec("UPDATE matches SET stale = true, stale_reason = \\$2, stale_since = \\$3, updated_at = \\$3\\s+WHERE job_id = \\$1 AND stale = false").
		WithArgs(jobID, "address_changed", fixedTime).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewPostgresMatchRepository(db).MarkStale(context.Background(), match.JobRef(jobID), "address_changed", fixedTime)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestMatchRepository_MarkStaleUnknownKind(t *testing.T) {
	db, _ := newMock(t)
	_, err := NewPostgresMatchRepository(db).MarkStale(context.Background(),
		match.EntityRef{Kind: "company", ID: uuid.New()}, "x", fixedTime)
	assert.Error(t, err)
}

func TestMatchRepository_HiddenCandidateCleanupKeepsReviewedRows(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec("DELETE FROM matches m USING candidates c\\s+WHERE m.candidate_id = c.id AND c.hidden = true\\s+AND m.status = 'NEW' AND m.ai_checked_at IS NULL").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := NewPostgresMatchRepository(db).DeleteUncheckedForHiddenCandidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMatchRepository_UpdateStatusIsConditional(t *testing.T) {
	db, mock := newMock(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE matches SET status = \\$3, updated_at = \\$4 WHERE id = \\$1 AND status = \\$2").
		WithArgs(id, "AI_CHECKED", "PRESENTED", fixedTime).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := NewPostgresMatchRepository(db).UpdateStatus(context.Background(), id, match.StatusAIChecked, match.StatusPresented, fixedTime)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchRepository_ListAppliesFilterAndSort(t *testing.T) {
	db, mock := newMock(t)
	jobID := uuid.New()
	minScore := 50.0
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ COUNT\\(\\*\\) OVER\\(\\) AS total FROM matches WHERE job_id = \\$1 AND status IN .+ AND stale = true AND pre_score >= \\$3 ORDER BY distance_km ASC NULLS LAST, id ASC LIMIT \\$4 OFFSET \\$5").
		WithArgs(jobID, `["NEW","AI_CHECKED"]`, 50.0, 10, 20).
		WillReturnRows(sqlmock.NewRows(matchCols("total")).AddRow(
			id.String(), jobID.String(), uuid.NewString(), 4.0, 0.5, `["SAP"]`, 72.5,
			nil, nil, nil, "NEW", true, "address_changed", fixedTime,
			nil, nil, fixedTime, fixedTime, int64(21),
		))

	page, err := NewPostgresMatchRepository(db).List(context.Background(), MatchFilter{
		JobID:       &jobID,
		Statuses:    []match.Status{match.StatusNew, match.StatusAIChecked},
		StaleOnly:   true,
		MinPreScore: &minScore,
	}, MatchSort{Field: SortDistance}, 10, 20)
	require.NoError(t, err)

	assert.Equal(t, 21, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, id, page.Items[0].ID)
	assert.Equal(t, match.StatusNew, page.Items[0].Status)
	assert.Equal(t, []string{"SAP"}, page.Items[0].MatchedKeywords)
	require.NotNil(t, page.Items[0].StaleReason)
	assert.Equal(t, "address_changed", *page.Items[0].StaleReason)
}

func TestMatchRepository_ListPastTheEndCountsSeparately(t *testing.T) {
	db, mock := newMock(t)
	candID := uuid.New()

	mock.ExpectQuery("SELECT .+ COUNT\\(\\*\\) OVER\\(\\) AS total FROM matches WHERE candidate_id = \\$1 ORDER BY .+ LIMIT \\$2 OFFSET \\$3").
		WithArgs(candID, 50, 100).
		WillReturnRows(sqlmock.NewRows(matchCols("total")))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM matches WHERE candidate_id = \\$1").
		WithArgs(candID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(37)))

	page, err := NewPostgresMatchRepository(db).List(context.Background(),
		MatchFilter{CandidateID: &candID}, DefaultMatchSort(), 50, 100)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 37, page.Total)
}

func TestParseMatchSort(t *testing.T) {
	s, err := ParseMatchSort("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMatchSort(), s)

	s, err = ParseMatchSort("distance")
	require.NoError(t, err)
	assert.Equal(t, MatchSort{Field: SortDistance}, s)

	s, err = ParseMatchSort("keyword_score:asc")
	require.NoError(t, err)
	assert.Equal(t, MatchSort{Field: SortKeywordScore}, s)

	_, err = ParseMatchSort("salary")
	assert.Error(t, err)
	_, err = ParseMatchSort("distance:sideways")
	assert.Error(t, err)
}

func TestPostgresGeoIndex_CandidatesWithin(t *testing.T) {
	db, mock := newMock(t)
	id := uuid.New()
	center := profile.Coordinate{Latitude: 52.52, Longitude: 13.40}

	mock.ExpectQuery("FROM candidates\\s+WHERE hidden = false AND latitude IS NOT NULL AND longitude IS NOT NULL AND latitude BETWEEN \\$4 AND \\$5 AND longitude BETWEEN \\$6 AND \\$7.+WHERE distance_km <= \\$3\\s+ORDER BY distance_km ASC").
		WithArgs(52.52, 13.40, 30.0, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(candidateCols("distance_km")).AddRow(
			id.String(), "Jonas", "Mechatroniker", `["SPS"]`, `[]`, `[]`, `[]`,
			"14467", "", 52.39, 13.06, false,
			nil, nil, nil, nil, nil, nil, false, nil, nil, nil,
			fixedTime, fixedTime, 26.9,
		))

	hits, err := NewPostgresGeoIndex(db).CandidatesWithin(context.Background(), center, 30)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].Candidate.ID)
	assert.InDelta(t, 26.9, hits[0].DistanceKm, 1e-9)
	assert.Nil(t, hits[0].Candidate.Classification.Category)
}

func TestPostgresGeoIndex_JobsWithinAcrossAntimeridian(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM jobs\\s+WHERE deleted_at IS NULL .+ \\(longitude >= \\$6 OR longitude <= \\$7\\)").
		WillReturnRows(sqlmock.NewRows(jobCols("distance_km")))

	hits, err := NewPostgresGeoIndex(db).JobsWithin(context.Background(), profile.Coordinate{Latitude: -17.7, Longitude: 179.9}, 50)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestBoxFilterWrapsLongitudes(t *testing.T) {
	_, args := boxFilter(geo.BoundingBox{MinLat: -18, MaxLat: -17, MinLon: 179.5, MaxLon: 180.5})
	require.Len(t, args, 4)
	assert.InDelta(t, 179.5, args[2].(float64), 1e-9)
	assert.InDelta(t, -179.5, args[3].(float64), 1e-9)
}
