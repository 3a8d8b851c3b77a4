package model

import (
	"database/sql"
	"database/sql/driver"
	"reflect"
	"strings"
	"time"
)

var (
	valuerType  = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
)

// isColumnType 判断字段类型能不能映射成一列
// 基本类型, []byte, time.Time, 实现了 driver.Valuer 或 sql.Scanner 的类型, 以及它们的一级指针
func isColumnType(typ reflect.Type) bool {
	if typ.Implements(valuerType) || reflect.PointerTo(typ).Implements(scannerType) {
		return true
	}
	if typ == timeType {
		return true
	}
	switch typ.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Slice:
		return typ.Elem().Kind() == reflect.Uint8
	case reflect.Ptr:
		elem := typ.Elem()
		return elem.Kind() != reflect.Ptr && isColumnType(elem)
	}
	return false
}

// isNullable 指针和 sql.NullXXX 都可以存 NULL
func isNullable(typ reflect.Type) bool {
	if typ.Kind() == reflect.Ptr {
		return true
	}
	return typ.PkgPath() == "database/sql" && strings.HasPrefix(typ.Name(), "Null")
}
