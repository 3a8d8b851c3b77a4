package model

import (
	"reflect"

	"github.com/startdusk/go-orm/orm/internal/errs"
)

// 我们支持的全部标签上的 key 都放在这里
// 方便用户查找, 和我们后期维护
const (
	tagORMName       = "orm"
	tagKeyColumn     = "column"
	tagKeyTable      = "table"
	tagKeyPrimaryKey = "primary_key"
	tagKeyGenerated  = "generated"
	tagKeyAssigned   = "assigned"
	tagIgnore        = "-"
)

// Model 是结构体映射到数据库表之后的元数据
// 注册完成之后就不会再被修改, 可以被并发读
type Model struct {
	// TableName 结构体对应的表名
	TableName string
	// Fields 按照结构体里字段声明的顺序排列, 所有语句里列的顺序都以它为准
	Fields []*Field
	// FieldMap Go 字段名 => 字段
	FieldMap map[string]*Field
	// ColumnMap 列名 => 字段
	ColumnMap map[string]*Field
	// PrimaryKeys 主键列, 按声明顺序排列
	PrimaryKeys []*Field
}

// Field 字段相关的属性
type Field struct {
	// ColName 列名
	ColName string
	// GoName Go 结构体里的字段名
	GoName string
	Type   reflect.Type
	// Offset 相对于对象起始地址的字段偏移量
	Offset uintptr
	// Index 字段在结构体里的下标
	Index int

	PrimaryKey bool
	// Generated 代表这个列的值由数据库生成, 比如自增主键, INSERT 的时候不会带上它
	// 单列的整数主键默认就是数据库生成的
	Generated bool
	// Assigned 主键的值由应用自己指定, 不会被默认当作数据库生成
	Assigned bool
	// Nullable 指针类型或者 sql.NullXXX 类型, 允许 NULL, 也允许在结果集里缺失
	Nullable bool
}

// HasPrimaryKey 是否声明了主键
func (m *Model) HasPrimaryKey() bool {
	return len(m.PrimaryKeys) > 0
}

// InsertFields 返回 INSERT 需要的列, 排除掉数据库生成的列
func (m *Model) InsertFields() []*Field {
	res := make([]*Field, 0, len(m.Fields))
	for _, fd := range m.Fields {
		if fd.Generated {
			continue
		}
		res = append(res, fd)
	}
	return res
}

// UpdateFields 返回 UPDATE 需要 SET 的列, 也就是所有非主键列
func (m *Model) UpdateFields() []*Field {
	res := make([]*Field, 0, len(m.Fields))
	for _, fd := range m.Fields {
		if fd.PrimaryKey {
			continue
		}
		res = append(res, fd)
	}
	return res
}

// TableName 用户实现这个接口来返回自定义的表名
type TableName interface {
	TableName() string
}

// Option 在注册的时候修改元数据
// 相当于不依赖标签, 显式地声明元数据
type Option func(m *Model) error

func WithTableName(tableName string) Option {
	return func(m *Model) error {
		m.TableName = tableName
		return nil
	}
}

func WithColumnName(field, colName string) Option {
	return func(m *Model) error {
		fd, ok := m.FieldMap[field]
		if !ok {
			return errs.NewErrUnknownField(field)
		}
		fd.ColName = colName
		return nil
	}
}

// WithPrimaryKey 把指定的字段声明为主键, 会覆盖标签和默认推断的主键
func WithPrimaryKey(fields ...string) Option {
	return func(m *Model) error {
		for _, fd := range m.Fields {
			fd.PrimaryKey = false
		}
		for _, name := range fields {
			fd, ok := m.FieldMap[name]
			if !ok {
				return errs.NewErrUnknownField(name)
			}
			fd.PrimaryKey = true
		}
		return nil
	}
}

// WithAssigned 声明主键的值由应用指定, 等价于标签 orm:"primary_key,assigned"
func WithAssigned(fields ...string) Option {
	return func(m *Model) error {
		for _, name := range fields {
			fd, ok := m.FieldMap[name]
			if !ok {
				return errs.NewErrUnknownField(name)
			}
			fd.Assigned = true
			fd.Generated = false
		}
		return nil
	}
}

// WithGenerated 声明哪些字段由数据库生成
func WithGenerated(fields ...string) Option {
	return func(m *Model) error {
		for _, name := range fields {
			fd, ok := m.FieldMap[name]
			if !ok {
				return errs.NewErrUnknownField(name)
			}
			fd.Generated = true
		}
		return nil
	}
}
