package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDBConfigDriverAndDSN(t *testing.T) {
	local := DBConfig{Local: true, SQLitePath: "temp.db"}
	assert.Equal(t, DriverSQLite, local.Driver())
	assert.Contains(t, local.DSN(), "file:temp.db?")
	assert.Equal(t, "sqlite:temp.db", local.String())

	remote := DBConfig{Host: "db", Port: "3306", User: "app", Password: "s3cret", Name: "titanic_db"}
	assert.Equal(t, DriverMySQL, remote.Driver())
	assert.Contains(t, remote.DSN(), "app:s3cret@tcp(db:3306)/titanic_db?")
	assert.Contains(t, remote.DSN(), "parseTime=true")
	assert.NotContains(t, remote.String(), "s3cret")
}

func TestWaitForDB_RetriesThenSucceeds(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing()

	err = waitForDB(context.Background(), db, 5, time.Millisecond, discardLogger())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitForDB_GivesUpAfterAttempts(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 5; i++ {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	}

	err = waitForDB(context.Background(), db, 5, time.Millisecond, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitForDB_StopsOnCancel(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = waitForDB(ctx, db, 5, time.Hour, discardLogger())
	assert.Error(t, err)
}

func TestWaitForDB_NonPositiveDelay(t *testing.T) {
	for _, delay := range []time.Duration{0, -time.Second} {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectPing()

		require.NotPanics(t, func() {
			err = waitForDB(context.Background(), db, 3, delay, discardLogger())
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}
