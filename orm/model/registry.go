package model

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/startdusk/go-orm/orm/internal/errs"
)

// Registry 元数据注册中心
type Registry interface {
	// Get 查找元数据, 找不到就解析并缓存起来
	Get(val any) (*Model, error)
	// Register 显式注册元数据, 必须在第一次使用这个类型之前调用
	Register(val any, opts ...Option) (*Model, error)
}

// registry 代表元数据的注册中心
type registry struct {
	// 为什么要用 reflect.Type 作为 key
	// 因为有同名结构体但表名不一样的需求
	// 如: buyer 下的 User 和 seller 下的 User
	models map[reflect.Type]*Model

	// 也可以使用 sync.Map, 但 sync.Map 有覆盖的问题
	// 使用读写锁 double check, 保证同一个类型只会有一份元数据
	lock sync.RWMutex
}

func NewRegistry() Registry {
	return &registry{
		// 一个项目如果超过64张表, 说明需要拆分了
		models: make(map[reflect.Type]*Model, 64),
	}
}

func (r *registry) Get(val any) (*Model, error) {
	typ := reflect.TypeOf(val)
	r.lock.RLock()
	m, ok := r.models[typ]
	r.lock.RUnlock()
	if ok {
		return m, nil
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	// double check 写法, 保证不重复创建对象
	m, ok = r.models[typ]
	if ok {
		return m, nil
	}

	m, err := r.parseModel(val)
	if err != nil {
		return nil, err
	}
	m.inferGenerated()
	r.models[typ] = m
	return m, nil
}

func (r *registry) Register(val any, opts ...Option) (*Model, error) {
	m, err := r.parseModel(val)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err = opt(m); err != nil {
			return nil, err
		}
	}
	// option 可能修改了列名和主键, 需要重新建立索引
	if err = m.reindex(); err != nil {
		return nil, err
	}
	m.inferGenerated()

	typ := reflect.TypeOf(val)
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.models[typ]; ok {
		return nil, errs.NewErrModelRegistered(typ)
	}
	r.models[typ] = m
	return m, nil
}

// parseModel 只支持输入指向结构体的一级指针
// 标签格式 orm:"column=first_name,primary_key,generated"
func (r *registry) parseModel(val any) (*Model, error) {
	typ := reflect.TypeOf(val)
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return nil, errs.ErrPointerOnly
	}
	typ = typ.Elem()

	numField := typ.NumField()
	m := &Model{
		Fields:   make([]*Field, 0, numField),
		FieldMap: make(map[string]*Field, numField),
	}

	var tagTable string
	for i := 0; i < numField; i++ {
		fd := typ.Field(i)
		tags, err := r.parseTag(fd.Tag)
		if err != nil {
			return nil, err
		}

		// _ struct{} `orm:"table=fruits"` 只用来声明表名
		if fd.Name == "_" {
			name := tags[tagKeyTable]
			if name == "" {
				continue
			}
			if tagTable != "" && tagTable != name {
				return nil, errs.NewErrConflictingTableName(tagTable, name)
			}
			tagTable = name
			continue
		}
		if !fd.IsExported() {
			continue
		}
		if _, ignore := tags[tagIgnore]; ignore {
			continue
		}
		if !isColumnType(fd.Type) {
			return nil, errs.NewErrUnsupportedColumnType(fd.Name, fd.Type)
		}

		colName := tags[tagKeyColumn]
		if colName == "" {
			colName = underscoreName(fd.Name)
		}
		_, pk := tags[tagKeyPrimaryKey]
		_, generated := tags[tagKeyGenerated]
		_, assigned := tags[tagKeyAssigned]
		if generated && assigned {
			return nil, errs.NewErrInvalidTagContent(tagKeyGenerated + "," + tagKeyAssigned)
		}
		field := &Field{
			ColName:    colName,
			GoName:     fd.Name,
			Type:       fd.Type,
			Offset:     fd.Offset,
			Index:      i,
			PrimaryKey: pk,
			Generated:  generated,
			Assigned:   assigned,
			Nullable:   isNullable(fd.Type),
		}
		m.Fields = append(m.Fields, field)
		m.FieldMap[fd.Name] = field
	}

	if len(m.Fields) == 0 {
		return nil, errs.ErrNoColumns
	}

	var tableName string
	if tn, ok := val.(TableName); ok {
		tableName = tn.TableName()
	}
	if tableName != "" && tagTable != "" && tableName != tagTable {
		return nil, errs.NewErrConflictingTableName(tagTable, tableName)
	}
	if tableName == "" {
		tableName = tagTable
	}
	if tableName == "" {
		tableName = underscoreName(typ.Name())
	}
	m.TableName = tableName

	if err := m.reindex(); err != nil {
		return nil, err
	}

	// 没有声明主键的时候, 名为 id 的列就是主键
	if !m.HasPrimaryKey() {
		if fd, ok := m.ColumnMap["id"]; ok && !fd.Nullable {
			fd.PrimaryKey = true
			m.PrimaryKeys = []*Field{fd}
		}
	}
	return m, nil
}

// inferGenerated 单列的整数主键, 没有声明 assigned 的时候由数据库生成
// 比如 MySQL 的 AUTO_INCREMENT, SQLite 的 INTEGER PRIMARY KEY
// 联合主键和其它类型的主键 (uuid, 字符串) 都要求应用自己赋值
func (m *Model) inferGenerated() {
	if len(m.PrimaryKeys) != 1 {
		return
	}
	pk := m.PrimaryKeys[0]
	if pk.Assigned {
		return
	}
	switch pk.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		pk.Generated = true
	}
}

// reindex 重建 ColumnMap 和 PrimaryKeys, 并校验列名和主键类型
func (m *Model) reindex() error {
	m.ColumnMap = make(map[string]*Field, len(m.Fields))
	m.PrimaryKeys = nil
	for _, fd := range m.Fields {
		if _, ok := m.ColumnMap[fd.ColName]; ok {
			return errs.NewErrDuplicateColumn(fd.ColName)
		}
		m.ColumnMap[fd.ColName] = fd
		if fd.PrimaryKey {
			if fd.Nullable {
				return errs.NewErrUnsupportedPrimaryKey(fd.GoName, fd.Type)
			}
			m.PrimaryKeys = append(m.PrimaryKeys, fd)
		}
	}
	return nil
}

func (r *registry) parseTag(tag reflect.StructTag) (map[string]string, error) {
	ormTag, ok := tag.Lookup(tagORMName)
	if !ok || ormTag == "" {
		// 返回空 map, 调用方不需要判断 nil
		return map[string]string{}, nil
	}
	pairs := strings.Split(ormTag, ",")
	tags := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		segs := strings.Split(pair, "=")
		switch len(segs) {
		case 1:
			// 只有 key 的标记
			switch segs[0] {
			case tagKeyPrimaryKey, tagKeyGenerated, tagKeyAssigned, tagIgnore:
				tags[segs[0]] = ""
			default:
				return nil, errs.NewErrInvalidTagContent(pair)
			}
		case 2:
			// 只有 column 和 table 可以带值, primary_key=false 这种也是错的
			switch segs[0] {
			case tagKeyColumn, tagKeyTable:
				tags[segs[0]] = strings.Trim(segs[1], `"`)
			default:
				return nil, errs.NewErrInvalidTagContent(pair)
			}
		default:
			return nil, errs.NewErrInvalidTagContent(pair)
		}
	}
	return tags, nil
}

// underscoreName 驼峰转下划线
// FirstName => first_name, UserID => user_id, HTTPServer => http_server
func underscoreName(name string) string {
	runes := []rune(name)
	buf := make([]rune, 0, len(runes)+4)
	for i, v := range runes {
		if !unicode.IsUpper(v) {
			buf = append(buf, v)
			continue
		}
		if i > 0 && runes[i-1] != '_' {
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !prevUpper || nextLower {
				buf = append(buf, '_')
			}
		}
		buf = append(buf, unicode.ToLower(v))
	}
	return string(buf)
}
