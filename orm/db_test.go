package orm

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type TestModel struct {
	ID        int64 `orm:"primary_key,assigned"`
	FirstName string
	Age       int8
	LastName  *sql.NullString
}

// mockDB 基于 sqlmock 的 DB, 默认是 MySQL 方言
func mockDB(t *testing.T, opts ...DBOption) (*DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	db, err := OpenDB(sqlDB, opts...)
	require.NoError(t, err)
	return db, mock
}

// memoryDB 临时目录下的 SQLite 数据库, 测试结束之后自动删除
func memoryDB(t *testing.T, opts ...DBOption) *DB {
	db, err := Open("sqlite://"+filepath.Join(t.TempDir(), "orm.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestDB_DoTx(t *testing.T) {
	bizErr := errors.New("biz error")
	cases := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		fn      func(ctx context.Context, tx *Tx) error
		wantErr error
		check   func(t *testing.T, err error)
	}{
		{
			name: "commit",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM `test_model` WHERE `id` = ?;").
					WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			fn: func(ctx context.Context, tx *Tx) error {
				return NewDeleter[TestModel](tx).Where(C("ID").Eq(1)).Exec(ctx).Err()
			},
		},
		{
			name: "rollback",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(ctx context.Context, tx *Tx) error {
				return bizErr
			},
			wantErr: bizErr,
		},
		{
			name: "rollback failed",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(errors.New("rollback failed"))
			},
			fn: func(ctx context.Context, tx *Tx) error {
				return bizErr
			},
			wantErr: bizErr,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "rollback failed")
			},
		},
		{
			name: "commit failed",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(io.ErrUnexpectedEOF)
			},
			fn: func(ctx context.Context, tx *Tx) error {
				return nil
			},
			wantErr: ErrConnection,
			check: func(t *testing.T, err error) {
				var opErr *OpError
				require.True(t, errors.As(err, &opErr))
				assert.Equal(t, "COMMIT", opErr.Op)
			},
		},
		{
			name: "begin failed",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(io.ErrUnexpectedEOF)
			},
			fn: func(ctx context.Context, tx *Tx) error {
				return nil
			},
			wantErr: ErrConnection,
			check: func(t *testing.T, err error) {
				var opErr *OpError
				require.True(t, errors.As(err, &opErr))
				assert.Equal(t, "BEGIN", opErr.Op)
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			db, mock := mockDB(t)
			c.mock(mock)
			err := db.DoTx(context.Background(), c.fn, nil)
			if c.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, c.wantErr)
			}
			if c.check != nil {
				c.check(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDB_DoTx_Panic(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	assert.Panics(t, func() {
		_ = db.DoTx(context.Background(), func(ctx context.Context, tx *Tx) error {
			panic("boom")
		}, nil)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_DoTx_RollbackLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	db, mock := mockDB(t, DBWithLogger(zap.New(core)))
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(io.ErrUnexpectedEOF)
	err := db.DoTx(context.Background(), func(ctx context.Context, tx *Tx) error {
		return errors.New("biz error")
	}, nil)
	require.Error(t, err)
	entries := logs.FilterMessage("orm: rollback failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, false, entries[0].ContextMap()["panicked"])
}

func TestDB_ErrorClassify(t *testing.T) {
	cases := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		run     func(ctx context.Context, db *DB) error
		wantErr error
		wantOp  string
	}{
		{
			name: "duplicate key",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO `test_model`(`id`,`first_name`,`age`,`last_name`) VALUES (?,?,?,?);").
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"})
			},
			run: func(ctx context.Context, db *DB) error {
				return NewInserter[TestModel](db).Values(&TestModel{ID: 1}).Exec(ctx).Err()
			},
			wantErr: ErrConstraint,
			wantOp:  TypeInsert,
		},
		{
			name: "broken connection",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT `id`,`first_name`,`age`,`last_name` FROM `test_model`;").
					WillReturnError(io.ErrUnexpectedEOF)
			},
			run: func(ctx context.Context, db *DB) error {
				_, err := NewSelector[TestModel](db).GetMulti(ctx)
				return err
			},
			wantErr: ErrConnection,
			wantOp:  TypeSelect,
		},
		{
			name: "decode",
			mock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "first_name", "age", "last_name"}).
					AddRow("1", "Tom", "abc", nil)
				mock.ExpectQuery("SELECT `id`,`first_name`,`age`,`last_name` FROM `test_model` WHERE `id` = ?;").
					WillReturnRows(rows)
			},
			run: func(ctx context.Context, db *DB) error {
				_, err := NewSelector[TestModel](db).Where(C("ID").Eq(1)).Get(ctx)
				return err
			},
			wantErr: ErrDecode,
			wantOp:  TypeSelect,
		},
		{
			name: "missing column",
			mock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "first_name"}).AddRow("1", "Tom")
				mock.ExpectQuery("SELECT `id`,`first_name`,`age`,`last_name` FROM `test_model`;").
					WillReturnRows(rows)
			},
			run: func(ctx context.Context, db *DB) error {
				_, err := NewSelector[TestModel](db).GetMulti(ctx)
				return err
			},
			wantErr: ErrDecode,
			wantOp:  TypeSelect,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			db, mock := mockDB(t)
			c.mock(mock)
			err := c.run(context.Background(), db)
			assert.ErrorIs(t, err, c.wantErr)
			var opErr *OpError
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, c.wantOp, opErr.Op)
			assert.Equal(t, "test_model", opErr.Table)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDB_DriverErrorKept(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectExec("DELETE FROM `test_model` WHERE `id` = ?;").
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "foreign key constraint fails"})
	err := NewDeleter[TestModel](db).Where(C("ID").Eq(1)).Exec(context.Background()).Err()
	assert.ErrorIs(t, err, ErrConstraint)
	var myErr *mysql.MySQLError
	require.True(t, errors.As(err, &myErr))
	assert.Equal(t, uint16(1451), myErr.Number)
}

func TestDB_ContextCanceled(t *testing.T) {
	db, mock := mockDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSelector[TestModel](db).Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Conn(t *testing.T) {
	db, mock := mockDB(t)
	ctx := context.Background()
	conn, err := db.Conn(ctx)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "first_name", "age", "last_name"}).
		AddRow("1", "Tom", "18", "Jerry")
	mock.ExpectQuery("SELECT `id`,`first_name`,`age`,`last_name` FROM `test_model` WHERE `id` = ?;").
		WithArgs(1).WillReturnRows(rows)
	res, err := NewSelector[TestModel](conn).Where(C("ID").Eq(1)).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, &TestModel{
		ID:        1,
		FirstName: "Tom",
		Age:       18,
		LastName:  &sql.NullString{String: "Jerry", Valid: true},
	}, res)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `test_model` SET `age`=? WHERE `id` = ?;").
		WithArgs(19, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	err = conn.DoTx(ctx, func(ctx context.Context, tx *Tx) error {
		return NewUpdater[TestModel](tx).Set(Assign("Age", 19)).Where(C("ID").Eq(1)).Exec(ctx).Err()
	}, nil)
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_Middlewares(t *testing.T) {
	var trace []string
	record := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, qc *QueryContext) *QueryResult {
				trace = append(trace, name+" before")
				res := next(ctx, qc)
				trace = append(trace, name+" after")
				return res
			}
		}
	}
	// 直接返回, 不会发出语句
	intercept := func(next Handler) Handler {
		return func(ctx context.Context, qc *QueryContext) *QueryResult {
			trace = append(trace, "intercept "+qc.Type+" "+qc.Model.TableName)
			return &QueryResult{}
		}
	}
	db, mock := mockDB(t, DBWithMiddlewares(record("first"), record("second"), intercept))
	res := NewDeleter[TestModel](db).Where(C("ID").Eq(1)).Exec(context.Background())
	require.NoError(t, res.Err())
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
	assert.Equal(t, []string{
		"first before",
		"second before",
		"intercept DELETE test_model",
		"second after",
		"first after",
	}, trace)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_UseReflect(t *testing.T) {
	db, mock := mockDB(t, DBUseReflect())
	rows := sqlmock.NewRows([]string{"id", "first_name", "age", "last_name"}).
		AddRow("1", "Tom", "18", nil).
		AddRow("2", "Jerry", "20", "Mouse")
	mock.ExpectQuery("SELECT `id`,`first_name`,`age`,`last_name` FROM `test_model` ORDER BY `id` ASC;").
		WillReturnRows(rows)
	res, err := NewSelector[TestModel](db).OrderBy(Asc("ID")).GetMulti(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []*TestModel{
		{ID: 1, FirstName: "Tom", Age: 18},
		{ID: 2, FirstName: "Jerry", Age: 20, LastName: &sql.NullString{String: "Mouse", Valid: true}},
	}, res)
}
