package orm

import (
	"context"
	"database/sql"

	"github.com/startdusk/go-orm/orm/internal/errs"
)

var (
	_ Session = &Conn{}
)

// Conn 独占一个数据库连接, 不能被多个 goroutine 同时使用
// 同一个连接上的会话状态(比如 SET 语句, 临时表)对后续语句可见
type Conn struct {
	core
	conn *sql.Conn
}

func (c *Conn) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := c.conn.BeginTx(ctx, opts)
	if err != nil {
		return nil, errs.NewOpError("BEGIN", "", errs.Classify(err))
	}
	return &Tx{core: c.core, tx: tx}, nil
}

func (c *Conn) DoTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error, opts *sql.TxOptions) error {
	return doTx(ctx, c, fn, opts)
}

func (c *Conn) Ping(ctx context.Context) error {
	if err := c.conn.PingContext(ctx); err != nil {
		return errs.NewErrConnection(err)
	}
	return nil
}

// Close 把连接还给 sql.DB 的连接池
func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.conn.QueryContext(ctx, query, args...)
}

func (c *Conn) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.conn.ExecContext(ctx, query, args...)
}

func (c *Conn) getCore() core {
	return c.core
}
