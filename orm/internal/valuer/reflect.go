package valuer

import (
	"database/sql"
	"reflect"

	"github.com/startdusk/go-orm/orm/internal/errs"
	"github.com/startdusk/go-orm/orm/model"
)

type reflectValue struct {
	model *model.Model

	// val 对应 泛型 T 的指针
	val reflect.Value
}

// 确保类型变更 我们能得到通知
var _ Creator = NewReflectValue

func NewReflectValue(model *model.Model, val any) Value {
	return reflectValue{
		model: model,
		val:   reflect.ValueOf(val).Elem(),
	}
}

func (r reflectValue) Field(name string) (any, error) {
	fd, ok := r.model.FieldMap[name]
	if !ok {
		return nil, errs.NewErrUnknownField(name)
	}
	return r.val.Field(fd.Index).Interface(), nil
}

func (r reflectValue) SetColumns(rows *sql.Rows) error {
	// 获取 查询的 columns
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	fds, err := checkColumns(r.model, columns)
	if err != nil {
		return err
	}

	// 利用 columns 来解决 select 的列顺序 和 列字段类型的问题
	vals := make([]any, len(columns))
	valElems := make([]reflect.Value, len(columns))
	for i, fd := range fds {
		if fd == nil {
			vals[i] = discard{}
			continue
		}
		// 反射创建一个实例, 得到的是字段类型的指针
		// 例如: fd.Type = int类型, 那么 val 就是 *int类型, 所以需要 取Elem() 获取它的实例
		val := reflect.New(fd.Type)
		vals[i] = scanDest(val.Elem())
		valElems[i] = val.Elem()
	}

	if err := rows.Scan(vals...); err != nil {
		return errs.NewErrDecode(err)
	}

	// scan 全部成功之后再写回结构体, 失败的时候不会留下一半的数据
	for i, fd := range fds {
		if fd == nil {
			continue
		}
		r.val.Field(fd.Index).Set(valElems[i])
	}
	return nil
}
