package orm

import (
	"context"

	"github.com/startdusk/go-orm/orm/internal/errs"
	"github.com/startdusk/go-orm/orm/model"
)

type UpsertBuilder[T any] struct {
	i               *Inserter[T]
	conflictColumns []string
}

type Upsert struct {
	assigns         []Assignable
	conflictColumns []string
}

// ConflictColumns 只有 SQLite 和 PostgreSQL 用得上, 不指定就是主键
func (o *UpsertBuilder[T]) ConflictColumns(cols ...string) *UpsertBuilder[T] {
	o.conflictColumns = cols
	return o
}

func (o *UpsertBuilder[T]) Update(assigns ...Assignable) *Inserter[T] {
	o.i.upsert = &Upsert{
		assigns:         assigns,
		conflictColumns: o.conflictColumns,
	}
	return o.i
}

type Inserter[T any] struct {
	builder

	// INSERT 语句要插入的值的结构体的列表
	values []*T

	// INSERT 语句要插入的指定的列
	columns []string

	upsert *Upsert

	returning bool

	sess Session
}

func NewInserter[T any](sess Session) *Inserter[T] {
	return &Inserter[T]{
		builder: newBuilder(sess.getCore()),
		sess:    sess,
	}
}

func (i *Inserter[T]) Upsert() *UpsertBuilder[T] {
	return &UpsertBuilder[T]{
		i: i,
	}
}

// Columns 指定插入的列
func (i *Inserter[T]) Columns(cols ...string) *Inserter[T] {
	i.columns = cols
	return i
}

// Values 指定插入的数据
func (i *Inserter[T]) Values(vals ...*T) *Inserter[T] {
	i.values = vals
	return i
}

// Returning 让数据库把插入之后的整行数据返回来, 包括数据库生成的列
func (i *Inserter[T]) Returning() *Inserter[T] {
	i.returning = true
	return i
}

func (i *Inserter[T]) Build() (*Query, error) {
	i.reset()
	if len(i.values) == 0 {
		return nil, errs.ErrInsertZeroRows
	}
	m, err := i.initModel(new(T))
	if err != nil {
		return nil, err
	}
	if i.returning && !i.dialect.supportReturning() {
		return nil, errs.ErrNoReturning
	}

	i.sb.WriteString("INSERT INTO ")
	// 拿到元数据, 拼接表名
	i.quote(m.TableName)

	// 一定要显式指定列的顺序, 不然我们不知道数据库中默认的顺序
	// 默认是除了数据库生成的列以外的全部列
	fields := m.InsertFields()
	if len(i.columns) > 0 {
		fields = make([]*model.Field, 0, len(i.columns))
		for _, fd := range i.columns {
			fdMeta, ok := m.FieldMap[fd]
			if !ok {
				return nil, errs.NewErrUnknownField(fd)
			}
			fields = append(fields, fdMeta)
		}
	}

	i.sb.WriteByte('(')
	for idx, field := range fields {
		if idx > 0 {
			i.sb.WriteByte(',')
		}
		i.quote(field.ColName)
	}
	i.sb.WriteByte(')')
	i.sb.WriteString(" VALUES ")
	i.args = make([]any, 0, len(i.values)*len(fields))
	for valIdx, entity := range i.values {
		if entity == nil {
			return nil, errs.ErrNilRecord
		}
		if valIdx > 0 {
			i.sb.WriteByte(',')
		}
		i.sb.WriteByte('(')
		val := i.creator(m, entity)
		for idx, field := range fields {
			if idx > 0 {
				i.sb.WriteByte(',')
			}
			// 读取结构体的参数
			arg, err := val.Field(field.GoName)
			if err != nil {
				return nil, err
			}
			i.parameter(arg)
		}
		i.sb.WriteByte(')')
	}

	if i.upsert != nil {
		if err = i.dialect.buildUpsert(&i.builder, i.upsert); err != nil {
			return nil, err
		}
	}

	if i.returning {
		i.buildReturning()
	}

	i.sb.WriteByte(';')

	return &Query{
		SQL:  i.sb.String(),
		Args: i.args,
	}, nil
}

func (i *Inserter[T]) Exec(ctx context.Context) Result {
	m, err := i.initModel(new(T))
	if err != nil {
		return Result{err: err}
	}
	res := exec(ctx, i.sess, i.core, &QueryContext{
		Type:    TypeInsert,
		Builder: i,
		Model:   m,
	})
	return toResult(res)
}

// Get 插入并返回第一行, 需要方言支持 RETURNING
func (i *Inserter[T]) Get(ctx context.Context) (*T, error) {
	m, err := i.initModel(new(T))
	if err != nil {
		return nil, err
	}
	i.returning = true
	res := get[T](ctx, i.sess, i.core, &QueryContext{
		Type:    TypeInsert,
		Builder: i,
		Model:   m,
	})
	return toEntity[T](res)
}

// GetMulti 插入并按顺序返回所有行, 需要方言支持 RETURNING
func (i *Inserter[T]) GetMulti(ctx context.Context) ([]*T, error) {
	m, err := i.initModel(new(T))
	if err != nil {
		return nil, err
	}
	i.returning = true
	res := getMulti[T](ctx, i.sess, i.core, &QueryContext{
		Type:    TypeInsert,
		Builder: i,
		Model:   m,
	})
	return toEntities[T](res)
}
