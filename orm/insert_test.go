package orm

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/startdusk/go-orm/orm/internal/errs"
)

type AutoModel struct {
	ID   int64 `orm:"primary_key,generated"`
	Name string
}

// Seed 没有任何标签, id 被推断为主键, 由数据库生成
type Seed struct {
	ID   int64
	Name string
}

type NoKeyModel struct {
	Name string
	Age  int
}

func newTestModel() *TestModel {
	return &TestModel{
		ID:        1,
		FirstName: "Tom",
		Age:       18,
		LastName:  &sql.NullString{String: "Jerry", Valid: true},
	}
}

func TestInserter_Build(t *testing.T) {
	db, _ := mockDB(t)
	cases := []struct {
		name      string
		i         QueryBuilder
		wantErr   error
		wantQuery *Query
	}{
		{
			name:    "insert zero row",
			i:       NewInserter[TestModel](db).Values(),
			wantErr: errs.ErrInsertZeroRows,
		},
		{
			name:    "nil record",
			i:       NewInserter[TestModel](db).Values(newTestModel(), nil),
			wantErr: errs.ErrNilRecord,
		},
		{
			name: "insert single row",
			i:    NewInserter[TestModel](db).Values(newTestModel()),
			wantQuery: &Query{
				SQL:  "INSERT INTO `test_model`(`id`,`first_name`,`age`,`last_name`) VALUES (?,?,?,?);",
				Args: []any{int64(1), "Tom", int8(18), &sql.NullString{String: "Jerry", Valid: true}},
			},
		},
		{
			name: "insert multiple rows",
			i: NewInserter[TestModel](db).Values(newTestModel(), &TestModel{
				ID:        2,
				FirstName: "Ben",
				Age:       19,
			}),
			wantQuery: &Query{
				SQL: "INSERT INTO `test_model`(`id`,`first_name`,`age`,`last_name`) VALUES (?,?,?,?),(?,?,?,?);",
				Args: []any{
					int64(1), "Tom", int8(18), &sql.NullString{String: "Jerry", Valid: true},
					int64(2), "Ben", int8(19), (*sql.NullString)(nil),
				},
			},
		},
		{
			name: "specify columns",
			i:    NewInserter[TestModel](db).Columns("FirstName", "Age").Values(newTestModel()),
			wantQuery: &Query{
				SQL:  "INSERT INTO `test_model`(`first_name`,`age`) VALUES (?,?);",
				Args: []any{"Tom", int8(18)},
			},
		},
		{
			name:    "invalid column",
			i:       NewInserter[TestModel](db).Columns("FirstName", "XXX").Values(newTestModel()),
			wantErr: errs.NewErrUnknownField("XXX"),
		},
		{
			name: "generated column",
			i:    NewInserter[AutoModel](db).Values(&AutoModel{Name: "apple"}),
			wantQuery: &Query{
				SQL:  "INSERT INTO `auto_model`(`name`) VALUES (?);",
				Args: []any{"apple"},
			},
		},
		{
			name: "integer primary key",
			i:    NewInserter[Fruit](db).Values(&Fruit{Name: "apple"}, &Fruit{Name: "banana"}),
			wantQuery: &Query{
				SQL:  "INSERT INTO `fruits`(`name`) VALUES (?),(?);",
				Args: []any{"apple", "banana"},
			},
		},
		{
			name: "inferred primary key",
			i:    NewInserter[Seed](db).Values(&Seed{ID: 7, Name: "apple"}),
			wantQuery: &Query{
				SQL:  "INSERT INTO `seed`(`name`) VALUES (?);",
				Args: []any{"apple"},
			},
		},
		{
			name: "generated column in specified columns",
			i:    NewInserter[Fruit](db).Columns("ID", "Name").Values(&Fruit{ID: 9, Name: "apple"}),
			wantQuery: &Query{
				SQL:  "INSERT INTO `fruits`(`id`,`name`) VALUES (?,?);",
				Args: []any{int64(9), "apple"},
			},
		},
		{
			name: "upsert",
			i: NewInserter[TestModel](db).Values(newTestModel()).
				Upsert().Update(Assign("FirstName", "Ben"), C("Age")),
			wantQuery: &Query{
				SQL: "INSERT INTO `test_model`(`id`,`first_name`,`age`,`last_name`) VALUES (?,?,?,?) " +
					"ON DUPLICATE KEY UPDATE `first_name`=?,`age`=VALUES(`age`);",
				Args: []any{int64(1), "Tom", int8(18), &sql.NullString{String: "Jerry", Valid: true}, "Ben"},
			},
		},
		{
			name:    "upsert invalid column",
			i:       NewInserter[TestModel](db).Values(newTestModel()).Upsert().Update(C("XXX")),
			wantErr: errs.NewErrUnknownField("XXX"),
		},
		{
			name:    "returning not supported",
			i:       NewInserter[TestModel](db).Values(newTestModel()).Returning(),
			wantErr: errs.ErrNoReturning,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q, err := c.i.Build()
			assert.Equal(t, c.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, c.wantQuery, q)
		})
	}
}

func TestInserter_SQLite_Upsert(t *testing.T) {
	db, _ := mockDB(t, DBWithDialect(DialectSQLite))
	cases := []struct {
		name      string
		i         QueryBuilder
		wantErr   error
		wantQuery *Query
	}{
		{
			name: "upsert",
			i: NewInserter[TestModel](db).Values(newTestModel()).
				Upsert().ConflictColumns("ID").Update(Assign("FirstName", "Ben"), Assign("Age", 17)),
			wantQuery: &Query{
				SQL: "INSERT INTO `test_model`(`id`,`first_name`,`age`,`last_name`) VALUES (?,?,?,?) ON CONFLICT(`id`) DO UPDATE SET `first_name`=?,`age`=?;",
				Args: []any{
					int64(1), "Tom", int8(18), &sql.NullString{String: "Jerry", Valid: true},
					"Ben", 17,
				},
			},
		},
		{
			name: "upsert use insert value",
			i: NewInserter[TestModel](db).Values(newTestModel()).
				Upsert().Update(C("FirstName"), C("Age")),
			wantQuery: &Query{
				SQL: "INSERT INTO `test_model`(`id`,`first_name`,`age`,`last_name`) VALUES (?,?,?,?) ON CONFLICT(`id`) DO UPDATE SET `first_name`=excluded.`first_name`,`age`=excluded.`age`;",
				Args: []any{
					int64(1), "Tom", int8(18), &sql.NullString{String: "Jerry", Valid: true},
				},
			},
		},
		{
			name: "upsert returning",
			i: NewInserter[TestModel](db).Values(newTestModel()).
				Upsert().Update(C("Age")).Returning(),
			wantQuery: &Query{
				SQL: "INSERT INTO `test_model`(`id`,`first_name`,`age`,`last_name`) VALUES (?,?,?,?) ON CONFLICT(`id`) DO UPDATE SET `age`=excluded.`age` RETURNING `id`,`first_name`,`age`,`last_name`;",
				Args: []any{
					int64(1), "Tom", int8(18), &sql.NullString{String: "Jerry", Valid: true},
				},
			},
		},
		{
			name:    "no primary key",
			i:       NewInserter[NoKeyModel](db).Values(&NoKeyModel{Name: "Tom"}).Upsert().Update(C("Age")),
			wantErr: errs.ErrNoPrimaryKey,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q, err := c.i.Build()
			assert.Equal(t, c.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, c.wantQuery, q)
		})
	}
}

func TestInserter_PostgreSQL(t *testing.T) {
	db, _ := mockDB(t, DBWithDialect(DialectPostgreSQL))
	cases := []struct {
		name      string
		i         QueryBuilder
		wantQuery *Query
	}{
		{
			name: "returning",
			i:    NewInserter[AutoModel](db).Values(&AutoModel{Name: "apple"}, &AutoModel{Name: "pear"}).Returning(),
			wantQuery: &Query{
				SQL:  `INSERT INTO "auto_model"("name") VALUES ($1),($2) RETURNING "id","name";`,
				Args: []any{"apple", "pear"},
			},
		},
		{
			name: "upsert conflict columns",
			i: NewInserter[TestModel](db).Values(newTestModel()).
				Upsert().ConflictColumns("FirstName", "LastName").Update(Assign("Age", 20)),
			wantQuery: &Query{
				SQL: `INSERT INTO "test_model"("id","first_name","age","last_name") VALUES ($1,$2,$3,$4) ` +
					`ON CONFLICT("first_name","last_name") DO UPDATE SET "age"=$5;`,
				Args: []any{int64(1), "Tom", int8(18), &sql.NullString{String: "Jerry", Valid: true}, 20},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q, err := c.i.Build()
			require.NoError(t, err)
			assert.Equal(t, c.wantQuery, q)
		})
	}
}

func TestInserter_Exec(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectExec("INSERT INTO `auto_model`(`name`) VALUES (?),(?);").
		WithArgs("apple", "pear").
		WillReturnResult(sqlmock.NewResult(10, 2))

	res := NewInserter[AutoModel](db).Values(&AutoModel{Name: "apple"}, &AutoModel{Name: "pear"}).
		Exec(context.Background())
	require.NoError(t, res.Err())
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	assert.Equal(t, int64(10), id)

	res = NewInserter[AutoModel](db).Exec(context.Background())
	assert.Equal(t, errs.ErrInsertZeroRows, res.Err())
	_, err = res.RowsAffected()
	assert.Equal(t, errs.ErrInsertZeroRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInserter_GetMulti(t *testing.T) {
	db, mock := mockDB(t, DBWithDialect(DialectPostgreSQL))
	mock.ExpectQuery(`INSERT INTO "auto_model"("name") VALUES ($1),($2) RETURNING "id","name";`).
		WithArgs("apple", "pear").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "apple").AddRow(2, "pear"))

	res, err := NewInserter[AutoModel](db).Values(&AutoModel{Name: "apple"}, &AutoModel{Name: "pear"}).
		GetMulti(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []*AutoModel{{ID: 1, Name: "apple"}, {ID: 2, Name: "pear"}}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}
