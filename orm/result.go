package orm

import "database/sql"

var _ sql.Result = Result{}

// Result 把构造语句的错误和执行的结果放在一起
// 调用方可以先判断 Err, 也可以直接调用 RowsAffected
type Result struct {
	err error
	res sql.Result
}

func (r Result) Err() error {
	return r.err
}

func (r Result) LastInsertId() (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	// 被 middleware 拦截了, 没有真的执行
	if r.res == nil {
		return 0, nil
	}
	return r.res.LastInsertId()
}

func (r Result) RowsAffected() (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.res == nil {
		return 0, nil
	}
	return r.res.RowsAffected()
}
