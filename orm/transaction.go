package orm

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/startdusk/go-orm/orm/internal/errs"
)

var (
	_ Session = &Tx{}
)

// Session 代表一个抽象的概念, 即会话
// 它可以是 DB, 也可以是独占一个连接的 Conn, 或者是事务 Tx
type Session interface {
	getCore() core
	queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	execContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// txBeginner 可以开启事务的会话
type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error)
}

type Tx struct {
	core
	tx *sql.Tx
}

func (t *Tx) getCore() core {
	return t.core
}

func (t *Tx) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *Tx) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// RollbackIfNotCommit 尝试回滚, 如果此时事务已经提交了, 或者被回滚掉了, 那么
// 就会得到sql.ErrTxDone错误, 这时候忽略这个错误就好
func (t *Tx) RollbackIfNotCommit() error {
	err := t.tx.Rollback()
	if !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// doTx 在事务里面执行 fn, fn 返回错误或者 panic 都会回滚, 否则提交
func doTx(ctx context.Context, b txBeginner, fn func(ctx context.Context, tx *Tx) error, opts *sql.TxOptions) (err error) {
	tx, err := b.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	panicked := true
	defer func() {
		if panicked || err != nil {
			rbErr := tx.Rollback()
			if rbErr == nil {
				return
			}
			tx.logger.Error("orm: rollback failed",
				zap.Error(rbErr), zap.NamedError("cause", err), zap.Bool("panicked", panicked))
			err = errs.NewErrFailedToRollbackTx(err, rbErr, panicked)
			return
		}
		if cmErr := tx.Commit(); cmErr != nil {
			err = errs.NewOpError("COMMIT", "", errs.Classify(cmErr))
		}
	}()
	err = fn(ctx, tx)
	// 执行过程中没有发生panic, 则标志位置为false
	panicked = false
	return err
}
