package orm

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/startdusk/go-orm/orm/internal/errs"
	"github.com/startdusk/go-orm/orm/internal/valuer"
	"github.com/startdusk/go-orm/orm/model"
)

var (
	_ Session = &DB{}
)

type DBOption func(db *DB)

// DB 是 sql.DB 的装饰器, 并发安全
type DB struct {
	core
	db *sql.DB
}

// Open 根据 URI 选择驱动和方言, 打开之后会 ping 一次
// URI 不合法或者连不上数据库, 返回的错误都是 ErrConnection
func Open(uri string, opts ...DBOption) (*DB, error) {
	return OpenContext(context.Background(), uri, opts...)
}

func OpenContext(ctx context.Context, uri string, opts ...DBOption) (*DB, error) {
	t, err := parseURI(uri)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(t.driver, t.dsn)
	if err != nil {
		return nil, errs.NewErrConnection(err)
	}

	// URI 决定默认的方言, 用户传入的 option 可以覆盖
	opts = append([]DBOption{DBWithDialect(t.dialect)}, opts...)
	newDB, err := OpenDB(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errs.NewErrConnection(err)
	}
	newDB.logger.Info("orm: database opened",
		zap.String("driver", t.driver), zap.String("dialect", t.dialect.Name()))
	return newDB, nil
}

// OpenDB 包装已经打开的 sql.DB, 不会 ping
func OpenDB(db *sql.DB, opts ...DBOption) (*DB, error) {
	newDB := &DB{
		core: core{
			r:       model.NewRegistry(),
			creator: valuer.NewUnsafeValue,
			dialect: DialectMySQL,
			logger:  zap.NewNop(),
		},
		db: db,
	}

	for _, opt := range opts {
		opt(newDB)
	}

	return newDB, nil
}

func MustOpenDB(db *sql.DB, opts ...DBOption) *DB {
	newDB, err := OpenDB(db, opts...)
	if err != nil {
		panic(err)
	}
	return newDB
}

func MustOpen(uri string, opts ...DBOption) *DB {
	newDB, err := Open(uri, opts...)
	if err != nil {
		panic(err)
	}
	return newDB
}

func DBUseReflect() DBOption {
	return func(db *DB) {
		db.creator = valuer.NewReflectValue
	}
}

func DBWithRegistry(r model.Registry) DBOption {
	return func(db *DB) {
		db.r = r
	}
}

func DBWithDialect(dialect Dialect) DBOption {
	return func(db *DB) {
		db.dialect = dialect
	}
}

func DBWithMiddlewares(mdls ...Middleware) DBOption {
	return func(db *DB) {
		db.mdls = append(db.mdls, mdls...)
	}
}

func DBWithLogger(logger *zap.Logger) DBOption {
	return func(db *DB) {
		if logger != nil {
			db.logger = logger
		}
	}
}

// DBWithConnPool 设置 sql.DB 自带的连接池, 0 保持 database/sql 的默认值
func DBWithConnPool(maxOpen, maxIdle int, maxLifetime, maxIdleTime time.Duration) DBOption {
	return func(db *DB) {
		if maxOpen > 0 {
			db.db.SetMaxOpenConns(maxOpen)
		}
		if maxIdle > 0 {
			db.db.SetMaxIdleConns(maxIdle)
		}
		if maxLifetime > 0 {
			db.db.SetConnMaxLifetime(maxLifetime)
		}
		if maxIdleTime > 0 {
			db.db.SetConnMaxIdleTime(maxIdleTime)
		}
	}
}

// Stats 返回 sql.DB 连接池的统计信息
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// Registry 返回元数据注册中心, 用户可以在使用之前显式注册模型
func (db *DB) Registry() model.Registry {
	return db.r
}

func (db *DB) Dialect() Dialect {
	return db.dialect
}

func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, errs.NewOpError("BEGIN", "", errs.Classify(err))
	}
	return &Tx{core: db.core, tx: tx}, nil
}

// DoTx 在事务里面执行 fn, fn 返回错误或者 panic 都会回滚, 否则提交
func (db *DB) DoTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error, opts *sql.TxOptions) error {
	return doTx(ctx, db, fn, opts)
}

// Conn 从连接池里面拿出一个连接, 用完之后必须 Close 归还
func (db *DB) Conn(ctx context.Context) (*Conn, error) {
	conn, err := db.db.Conn(ctx)
	if err != nil {
		return nil, errs.NewOpError("CONN", "", errs.Classify(err))
	}
	return &Conn{core: db.core, conn: conn}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.db.PingContext(ctx); err != nil {
		return errs.NewErrConnection(err)
	}
	return nil
}

func (db *DB) Close() error {
	err := db.db.Close()
	db.logger.Info("orm: database closed", zap.Error(err))
	return err
}

func (db *DB) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

func (db *DB) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

func (db *DB) getCore() core {
	return db.core
}
