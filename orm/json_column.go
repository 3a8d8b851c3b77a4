package orm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/startdusk/go-orm/orm/internal/errs"
)

// JSONColumn 把任意类型以 JSON 的形式存进一列
// Valid 为 false 的时候写入 NULL, 读到 NULL 的时候 Valid 为 false
type JSONColumn[T any] struct {
	Val   T
	Valid bool
}

func NewJSONColumn[T any](val T) JSONColumn[T] {
	return JSONColumn[T]{Val: val, Valid: true}
}

func (j JSONColumn[T]) Value() (driver.Value, error) {
	if !j.Valid {
		return nil, nil
	}
	return json.Marshal(j.Val)
}

func (j *JSONColumn[T]) Scan(src any) error {
	var bs []byte
	switch data := src.(type) {
	case string:
		bs = []byte(data)
	case []byte:
		bs = data
	case nil:
		var zero T
		j.Val, j.Valid = zero, false
		return nil
	default:
		return errs.NewErrDecode(fmt.Errorf("json column: unsupported source type %T", src))
	}
	var val T
	if err := json.Unmarshal(bs, &val); err != nil {
		return errs.NewErrDecode(err)
	}
	j.Val, j.Valid = val, true
	return nil
}
