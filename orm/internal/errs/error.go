package errs

import (
	"errors"
	"fmt"
	"reflect"
)

// 错误分类. 所有具体错误都包装了其中一种, 调用方用 errors.Is 判断类别
var (
	// ErrConfiguration 元数据声明错误, 在注册模型或构造语句时发现, 不会发出任何网络请求
	ErrConfiguration = errors.New("orm: configuration error")
	// ErrDecode 把行转换成结构体失败
	ErrDecode = errors.New("orm: decode error")
	// ErrConnection 连接/传输层失败
	ErrConnection = errors.New("orm: connection error")
	// ErrConstraint 数据库拒绝了语句, 比如唯一键冲突, 外键约束
	ErrConstraint = errors.New("orm: constraint violation")
	// ErrNotFound UPDATE 或 DELETE 没有匹配到任何行
	ErrNotFound = errors.New("orm: no rows matched")
)

var (
	ErrPointerOnly      = fmt.Errorf("%w: only a pointer to a struct is supported", ErrConfiguration)
	ErrNoColumns        = fmt.Errorf("%w: model has no column fields", ErrConfiguration)
	ErrNoPrimaryKey     = fmt.Errorf("%w: model has no primary key", ErrConfiguration)
	ErrInsertZeroRows   = fmt.Errorf("%w: insert zero rows", ErrConfiguration)
	ErrNoUpdatedColumns = fmt.Errorf("%w: no columns to update", ErrConfiguration)
	ErrNoRowsToDelete   = fmt.Errorf("%w: no rows to delete", ErrConfiguration)
	ErrNilRecord        = fmt.Errorf("%w: record is nil", ErrConfiguration)
	ErrNoReturning      = fmt.Errorf("%w: dialect does not support RETURNING", ErrConfiguration)

	// ErrNoRows 和 sql.ErrNoRows 语义一致, 查询没有数据
	ErrNoRows = errors.New("orm: no rows in result set")
)

func NewErrUnsupportedExpressionType(expr any) error {
	return fmt.Errorf("%w: unsupported expression %v", ErrConfiguration, expr)
}

func NewErrUnknownField(name string) error {
	return fmt.Errorf("%w: unknown field %s", ErrConfiguration, name)
}

func NewErrInvalidTagContent(pair string) error {
	return fmt.Errorf("%w: invalid tag content %s", ErrConfiguration, pair)
}

func NewErrUnsupportedAssignable(expr any) error {
	return fmt.Errorf("%w: unsupported assignable %v", ErrConfiguration, expr)
}

func NewErrConflictingTableName(a, b string) error {
	return fmt.Errorf("%w: conflicting table names %q and %q", ErrConfiguration, a, b)
}

func NewErrUnsupportedColumnType(field string, typ reflect.Type) error {
	return fmt.Errorf("%w: field %s of type %s cannot be a column", ErrConfiguration, field, typ)
}

func NewErrUnsupportedPrimaryKey(field string, typ reflect.Type) error {
	return fmt.Errorf("%w: field %s of type %s cannot be a primary key", ErrConfiguration, field, typ)
}

func NewErrDuplicateColumn(col string) error {
	return fmt.Errorf("%w: duplicate column %s", ErrConfiguration, col)
}

func NewErrModelRegistered(typ reflect.Type) error {
	return fmt.Errorf("%w: model %s is already registered", ErrConfiguration, typ)
}

func NewErrKeyCount(want, got int) error {
	return fmt.Errorf("%w: primary key has %d columns, got %d values", ErrConfiguration, want, got)
}

func NewErrMissingColumn(col string) error {
	return fmt.Errorf("%w: column %s is missing from the row", ErrDecode, col)
}

func NewErrDecode(err error) error {
	return fmt.Errorf("%w: %w", ErrDecode, err)
}

func NewErrConnection(err error) error {
	return fmt.Errorf("%w: %w", ErrConnection, err)
}

func NewErrInvalidURI(uri string, reason string) error {
	return fmt.Errorf("%w: invalid uri %q: %s", ErrConnection, uri, reason)
}

func NewErrFailedToRollbackTx(bizErr error, rbErr error, panicked bool) error {
	return fmt.Errorf("orm: rollback failed, business error: %w, rollback error: %v, panicked: %t",
		bizErr, rbErr, panicked)
}

// OpError 带上了出错的操作和表名
type OpError struct {
	Op    string
	Table string
	Err   error
}

func NewOpError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Table: table, Err: err}
}

func (e *OpError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("orm: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("orm: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
