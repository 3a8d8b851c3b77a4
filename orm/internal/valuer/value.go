package valuer

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/startdusk/go-orm/orm/internal/errs"
	"github.com/startdusk/go-orm/orm/model"
)

// Value 是对结构体实例的内部抽象
type Value interface {
	// Field 返回字段对应的值
	Field(name string) (any, error)
	// SetColumns 把当前行的数据写到结构体上
	// 结果集里多出来的列会被忽略, 缺少非空字段对应的列会返回 errs.ErrDecode
	SetColumns(rows *sql.Rows) error
}

type Creator func(model *model.Model, entity any) Value

// checkColumns 找出结果集里每一列对应的字段, 多出来的列对应 nil
func checkColumns(m *model.Model, columns []string) ([]*model.Field, error) {
	fds := make([]*model.Field, len(columns))
	seen := make(map[string]struct{}, len(columns))
	for i, colName := range columns {
		fd, ok := m.ColumnMap[colName]
		if !ok {
			continue
		}
		fds[i] = fd
		seen[colName] = struct{}{}
	}
	for _, fd := range m.Fields {
		if _, ok := seen[fd.ColName]; ok || fd.Nullable {
			continue
		}
		return nil, errs.NewErrMissingColumn(fd.ColName)
	}
	return fds, nil
}

// discard 用来接收不认识的列
type discard struct{}

func (discard) Scan(any) error {
	return nil
}

var scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()

// scanDest 返回 Scan 用的目标, dst 必须是可以 Set 的字段
// 浮点数字段要自己检查精度, database/sql 会把 float64 静默地截断成 float32
func scanDest(dst reflect.Value) any {
	typ := dst.Type()
	if reflect.PointerTo(typ).Implements(scannerType) {
		return dst.Addr().Interface()
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	switch typ.Kind() {
	case reflect.Float32, reflect.Float64:
		return floatScanner{dst: dst}
	default:
		return dst.Addr().Interface()
	}
}

// floatScanner 只接受能够精确表示成目标类型的值
type floatScanner struct {
	dst reflect.Value
}

func (s floatScanner) Scan(src any) error {
	typ := s.dst.Type()
	if src == nil {
		if typ.Kind() != reflect.Ptr {
			return fmt.Errorf("converting NULL to %s is unsupported", typ)
		}
		s.dst.Set(reflect.Zero(typ))
		return nil
	}
	elem := typ
	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}
	f, err := exactFloat(src, elem.Kind() == reflect.Float32)
	if err != nil {
		return fmt.Errorf("converting %T %v to %s: %w", src, src, typ, err)
	}
	if typ.Kind() == reflect.Ptr {
		p := reflect.New(elem)
		p.Elem().SetFloat(f)
		s.dst.Set(p)
		return nil
	}
	s.dst.SetFloat(f)
	return nil
}

var errInexact = errors.New("value cannot be represented exactly")

func exactFloat(src any, is32 bool) (float64, error) {
	var f float64
	switch v := src.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int64:
		f = float64(v)
		// 2^63 转回 int64 是未定义的, 先排除掉
		if f >= math.MaxInt64 || int64(f) != v {
			return 0, errInexact
		}
	case []byte:
		return parseFloat(string(v), is32)
	case string:
		return parseFloat(v, is32)
	default:
		return 0, fmt.Errorf("unsupported source type %T", src)
	}
	if is32 && float64(float32(f)) != f {
		return 0, errInexact
	}
	return f, nil
}

// parseFloat 文本协议返回的是十进制字符串, 整数按照整数的规则检查精度
func parseFloat(s string, is32 bool) (float64, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return exactFloat(i, is32)
	}
	bitSize := 64
	if is32 {
		bitSize = 32
	}
	return strconv.ParseFloat(s, bitSize)
}
