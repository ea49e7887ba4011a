package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction(t *testing.T) {
	t.Parallel()

	fnErr := errors.New("insert failed")
	infraErr := errors.New("connection reset")

	tests := []struct {
		name   string
		expect func(m sqlmock.Sqlmock)
		fn     TxFn
		check  func(t *testing.T, err error)
	}{
		{
			name: "commit on success",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectCommit()
			},
			fn:    func(context.Context, *sql.Tx) error { return nil },
			check: func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name: "rollback on error",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectRollback()
			},
			fn:    func(context.Context, *sql.Tx) error { return fnErr },
			check: func(t *testing.T, err error) { assert.Equal(t, fnErr, err) },
		},
		{
			name: "begin fails",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin().WillReturnError(infraErr)
			},
			fn: func(context.Context, *sql.Tx) error { return nil },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, infraErr)
				assert.Contains(t, err.Error(), "failed to begin transaction")
			},
		},
		{
			name: "commit fails",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectCommit().WillReturnError(infraErr)
			},
			fn: func(context.Context, *sql.Tx) error { return nil },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, infraErr)
				assert.ErrorIs(t, err, ErrTransactionFailed)
			},
		},
		{
			name: "rollback fails",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectRollback().WillReturnError(infraErr)
			},
			fn: func(context.Context, *sql.Tx) error { return fnErr },
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, fnErr)
				assert.ErrorIs(t, err, ErrTransactionFailed)
				assert.Contains(t, err.Error(), infraErr.Error())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.expect(mock)
			tt.check(t, RunInTransaction(context.Background(), db, tt.fn))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInTransactionPanicRollsBack(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "boom", func() {
		_ = RunInTransaction(context.Background(), db, func(context.Context, *sql.Tx) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}
