package sqlstd

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_ExecReturnsRowsAffected(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()

	mock.ExpectExec("DELETE FROM matches").WithArgs("job-1").WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := New(sqldb).Exec(context.Background(), "DELETE FROM matches WHERE job_id = $1", "job-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_QueryIteratesRows(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()

	mock.ExpectQuery("SELECT id FROM jobs").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a").AddRow("b"))

	rows, err := New(sqldb).Query(context.Background(), "SELECT id FROM jobs")
	require.NoError(t, err)
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestDB_TransactionCommit(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqldb.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE matches").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := New(sqldb).Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, "UPDATE matches SET stale = true")
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_NilHandle(t *testing.T) {
	var d *DB
	_, err := d.Exec(context.Background(), "SELECT 1")
	assert.Error(t, err)
	assert.Error(t, d.QueryRow(context.Background(), "SELECT 1").Scan())
}
