package valuer

import (
	"database/sql"
	"reflect"
	"unsafe"

	"github.com/startdusk/go-orm/orm/internal/errs"
	"github.com/startdusk/go-orm/orm/model"
)

type unsafeValue struct {
	model *model.Model

	// 结构体的起始地址
	address unsafe.Pointer
}

// 确保类型变更 我们能得到通知
var _ Creator = NewUnsafeValue

func NewUnsafeValue(model *model.Model, val any) Value {
	return unsafeValue{
		model:   model,
		address: reflect.ValueOf(val).UnsafePointer(),
	}
}

func (u unsafeValue) Field(name string) (any, error) {
	fd, ok := u.model.FieldMap[name]
	if !ok {
		return nil, errs.NewErrUnknownField(name)
	}
	// 字段地址 = 起始地址 + 偏移量
	fdAddress := unsafe.Pointer(uintptr(u.address) + fd.Offset)
	return reflect.NewAt(fd.Type, fdAddress).Elem().Interface(), nil
}

func (u unsafeValue) SetColumns(rows *sql.Rows) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	fds, err := checkColumns(u.model, columns)
	if err != nil {
		return err
	}

	vals := make([]any, len(columns))
	for i, fd := range fds {
		if fd == nil {
			vals[i] = discard{}
			continue
		}
		fdAddress := unsafe.Pointer(uintptr(u.address) + fd.Offset)
		// 反射在特定的地址上, 创建一个特定类型的实例
		vals[i] = scanDest(reflect.NewAt(fd.Type, fdAddress).Elem())
	}

	// 因为直接拿到了字段的地址, 所以 scan 就已经是对对象的字段赋值
	if err := rows.Scan(vals...); err != nil {
		return errs.NewErrDecode(err)
	}
	return nil
}
