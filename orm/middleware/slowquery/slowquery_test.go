package slowquery

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/startdusk/go-orm/orm"
)

func TestSlowQuery(t *testing.T) {
	cases := []struct {
		name      string
		threshold time.Duration
		delay     time.Duration
		wantLog   bool
	}{
		{
			name:      "slow",
			threshold: 10 * time.Millisecond,
			delay:     50 * time.Millisecond,
			wantLog:   true,
		},
		{
			name:      "fast",
			threshold: time.Second,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var query string
			m := NewMiddlewareBuilder(c.threshold).LogFunc(func(q string, duration time.Duration) {
				query = q
				assert.Greater(t, duration, c.threshold)
			})

			mockDB, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer mockDB.Close()
			db, err := orm.OpenDB(mockDB, orm.DBWithDialect(orm.DialectSQLite), orm.DBWithMiddlewares(m.Build()))
			require.NoError(t, err)

			mock.ExpectExec("UPDATE .*").WillDelayFor(c.delay).WillReturnResult(sqlmock.NewResult(0, 1))
			res := orm.NewUpdater[TestModel](db).Set(orm.Assign("Age", 18)).
				Where(orm.C("ID").Eq(1)).Exec(context.Background())
			require.NoError(t, res.Err())

			if c.wantLog {
				assert.Equal(t, "UPDATE `test_model` SET `age`=? WHERE `id` = ?;", query)
				return
			}
			assert.Equal(t, "", query)
		})
	}
}

func TestSlowQuery_Logger(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	m := NewMiddlewareBuilder(time.Millisecond).Logger(zap.New(core))

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db, err := orm.OpenDB(mockDB, orm.DBWithDialect(orm.DialectSQLite), orm.DBWithMiddlewares(m.Build()))
	require.NoError(t, err)

	mock.ExpectExec("DELETE .*").WillDelayFor(20 * time.Millisecond).WillReturnResult(sqlmock.NewResult(0, 1))
	res := orm.NewDeleter[TestModel](db).Where(orm.C("ID").Eq(1)).Exec(context.Background())
	require.NoError(t, res.Err())

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "orm: slow query", entries[0].Message)
	assert.Equal(t, "DELETE FROM `test_model` WHERE `id` = ?;", entries[0].ContextMap()["sql"])
}

type TestModel struct {
	ID        int64
	FirstName string
	Age       int8
	LastName  *sql.NullString
}
