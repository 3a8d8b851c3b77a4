package orm

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/startdusk/go-orm/orm/internal/errs"
	"github.com/startdusk/go-orm/orm/internal/valuer"
	"github.com/startdusk/go-orm/orm/model"
)

type core struct {
	model   *model.Model
	dialect Dialect
	creator valuer.Creator
	r       model.Registry
	logger  *zap.Logger

	mdls []Middleware
}

// wrap 把 middleware 套在 root 外面, 第一个 middleware 在最外层
func (c core) wrap(root Handler) Handler {
	for i := len(c.mdls) - 1; i >= 0; i-- {
		root = c.mdls[i](root)
	}
	return root
}

func get[T any](ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	var root Handler = func(ctx context.Context, qc *QueryContext) *QueryResult {
		return getHandler[T](ctx, sess, c, qc)
	}
	return c.wrap(root)(ctx, qc)
}

func getMulti[T any](ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	var root Handler = func(ctx context.Context, qc *QueryContext) *QueryResult {
		return getMultiHandler[T](ctx, sess, c, qc)
	}
	return c.wrap(root)(ctx, qc)
}

func exec(ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	var root Handler = func(ctx context.Context, qc *QueryContext) *QueryResult {
		return execHandler(ctx, sess, c, qc)
	}
	return c.wrap(root)(ctx, qc)
}

func getHandler[T any](ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	q, err := qc.Builder.Build()
	if err != nil {
		return &QueryResult{Err: err}
	}

	rows, err := sess.queryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return &QueryResult{Err: opError(qc, err)}
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return &QueryResult{Err: opError(qc, err)}
		}
		// 返回要和sql包语义一致
		return &QueryResult{Err: ErrNoRows}
	}

	entity := new(T)
	// 接口定义好之后, 就两件事情, 一个是利用新接口的方法改造上层
	// 一个是提供不同的实现
	val := c.creator(qc.Model, entity)
	if err = val.SetColumns(rows); err != nil {
		return &QueryResult{Err: opError(qc, err)}
	}
	return &QueryResult{Result: entity}
}

func getMultiHandler[T any](ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	q, err := qc.Builder.Build()
	if err != nil {
		return &QueryResult{Err: err}
	}

	rows, err := sess.queryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return &QueryResult{Err: opError(qc, err)}
	}
	defer rows.Close()

	res := make([]*T, 0, 8)
	for rows.Next() {
		entity := new(T)
		val := c.creator(qc.Model, entity)
		if err = val.SetColumns(rows); err != nil {
			return &QueryResult{Err: opError(qc, err)}
		}
		res = append(res, entity)
	}
	if err = rows.Err(); err != nil {
		return &QueryResult{Err: opError(qc, err)}
	}
	return &QueryResult{Result: res}
}

func execHandler(ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	q, err := qc.Builder.Build()
	if err != nil {
		return &QueryResult{Err: err}
	}
	res, err := sess.execContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return &QueryResult{Err: opError(qc, err)}
	}
	return &QueryResult{Result: res}
}

// opError 给驱动返回的错误分类, 并带上语句类型和表名
func opError(qc *QueryContext, err error) error {
	var table string
	if qc.Model != nil {
		table = qc.Model.TableName
	}
	return errs.NewOpError(qc.Type, table, errs.Classify(err))
}

// toResult 把 QueryResult 转成 Exec 的返回值
func toResult(qr *QueryResult) Result {
	var res sql.Result
	if val, ok := qr.Result.(sql.Result); ok {
		res = val
	}
	return Result{res: res, err: qr.Err}
}

func toEntity[T any](qr *QueryResult) (*T, error) {
	var t *T
	if val, ok := qr.Result.(*T); ok {
		t = val
	}
	return t, qr.Err
}

func toEntities[T any](qr *QueryResult) ([]*T, error) {
	var ts []*T
	if val, ok := qr.Result.([]*T); ok {
		ts = val
	}
	return ts, qr.Err
}
