package errs

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// MySQL 中代表约束失败的错误码
// 1048 列不能为 NULL, 1062 唯一键冲突, 1216/1217/1451/1452 外键, 3819 CHECK 约束
var mysqlConstraintNumbers = map[uint16]struct{}{
	1048: {},
	1062: {},
	1216: {},
	1217: {},
	1451: {},
	1452: {},
	3819: {},
}

// Classify 把驱动返回的错误归类到 ErrConstraint 或者 ErrConnection
// 原始的驱动错误保留在错误链上, 调用方依旧可以 errors.As 拿到 *mysql.MySQLError 之类的错误
// 无法归类的错误原样返回
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrConstraint) || errors.Is(err, ErrConnection) ||
		errors.Is(err, ErrDecode) || errors.Is(err, ErrConfiguration) {
		return err
	}
	if isConstraint(err) {
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	}
	if isConnection(err) {
		return NewErrConnection(err)
	}
	return err
}

func isConstraint(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		_, ok := mysqlConstraintNumbers[myErr.Number]
		return ok
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "23"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

func isConnection(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "08"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrCantOpen || liteErr.Code == sqlite3.ErrIoErr
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
