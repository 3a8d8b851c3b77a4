package orm

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/startdusk/go-orm/orm/internal/errs"
)

func TestDeleter_Build(t *testing.T) {
	db, _ := mockDB(t)
	pg, _ := mockDB(t, DBWithDialect(DialectPostgreSQL))
	cases := []struct {
		name      string
		d         QueryBuilder
		wantErr   error
		wantQuery *Query
	}{
		{
			name: "delete all",
			d:    NewDeleter[TestModel](db),
			wantQuery: &Query{
				SQL: "DELETE FROM `test_model`;",
			},
		},
		{
			name: "where",
			d:    NewDeleter[TestModel](db).Where(C("ID").Eq(1), C("Age").Gt(18)),
			wantQuery: &Query{
				SQL:  "DELETE FROM `test_model` WHERE (`id` = ?) AND (`age` > ?);",
				Args: []any{1, 18},
			},
		},
		{
			name: "postgres",
			d:    NewDeleter[TestModel](pg).Where(C("ID").In(1, 2)),
			wantQuery: &Query{
				SQL:  `DELETE FROM "test_model" WHERE "id" IN ($1,$2);`,
				Args: []any{1, 2},
			},
		},
		{
			name:    "invalid column",
			d:       NewDeleter[TestModel](db).Where(C("XXX").Eq(1)),
			wantErr: errs.NewErrUnknownField("XXX"),
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q, err := c.d.Build()
			assert.Equal(t, c.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, c.wantQuery, q)
		})
	}
}

func TestDeleter_Exec(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectExec("DELETE FROM `test_model` WHERE `id` = ?;").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res := NewDeleter[TestModel](db).Where(C("ID").Eq(1)).Exec(context.Background())
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
