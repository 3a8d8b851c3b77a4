package orm

import (
	"context"

	"github.com/startdusk/go-orm/orm/internal/errs"
	"github.com/startdusk/go-orm/orm/internal/valuer"
	"github.com/startdusk/go-orm/orm/model"
)

// Updater 构造 UPDATE 语句
type Updater[T any] struct {
	builder
	val       *T
	assigns   []Assignable
	where     []Predicate
	returning bool

	sess Session
}

func NewUpdater[T any](sess Session) *Updater[T] {
	return &Updater[T]{
		builder: newBuilder(sess.getCore()),
		sess:    sess,
	}
}

// Update 指定用来更新的数据
func (u *Updater[T]) Update(val *T) *Updater[T] {
	u.val = val
	return u
}

// Set 指定要更新的列, 不指定的时候更新所有的非主键列
// C("Name") 代表用 Update 传入的数据更新, Assign("Name", "Tom") 代表用指定的值更新
func (u *Updater[T]) Set(assigns ...Assignable) *Updater[T] {
	u.assigns = assigns
	return u
}

func (u *Updater[T]) Where(where ...Predicate) *Updater[T] {
	u.where = where
	return u
}

// Returning 让数据库把更新之后的整行数据返回来
func (u *Updater[T]) Returning() *Updater[T] {
	u.returning = true
	return u
}

func (u *Updater[T]) Build() (*Query, error) {
	u.reset()
	m, err := u.initModel(new(T))
	if err != nil {
		return nil, err
	}
	if u.returning && !u.dialect.supportReturning() {
		return nil, errs.ErrNoReturning
	}

	assigns := u.assigns
	if len(assigns) == 0 {
		if u.val == nil {
			return nil, errs.ErrNoUpdatedColumns
		}
		assigns = defaultAssigns(m)
	}
	if len(assigns) == 0 {
		return nil, errs.ErrNoUpdatedColumns
	}

	var val valuer.Value
	if u.val != nil {
		val = u.creator(m, u.val)
	}

	u.sb.WriteString("UPDATE ")
	u.quote(m.TableName)
	u.sb.WriteString(" SET ")
	for idx, assign := range assigns {
		if idx > 0 {
			u.sb.WriteByte(',')
		}
		switch a := assign.(type) {
		case Column:
			if val == nil {
				return nil, errs.ErrNilRecord
			}
			if err = u.buildColumn(a.name); err != nil {
				return nil, err
			}
			arg, err := val.Field(a.name)
			if err != nil {
				return nil, err
			}
			u.sb.WriteByte('=')
			u.parameter(arg)
		case Assignment:
			if err = u.buildColumn(a.col); err != nil {
				return nil, err
			}
			u.sb.WriteByte('=')
			u.parameter(a.val)
		default:
			return nil, errs.NewErrUnsupportedAssignable(assign)
		}
	}

	if len(u.where) > 0 {
		u.sb.WriteString(" WHERE ")
		if err = u.buildPredicates(u.where); err != nil {
			return nil, err
		}
	}

	if u.returning {
		u.buildReturning()
	}

	u.sb.WriteByte(';')
	return &Query{
		SQL:  u.sb.String(),
		Args: u.args,
	}, nil
}

// defaultAssigns 所有非主键列, 按声明顺序排列
func defaultAssigns(m *model.Model) []Assignable {
	fds := m.UpdateFields()
	res := make([]Assignable, 0, len(fds))
	for _, fd := range fds {
		res = append(res, C(fd.GoName))
	}
	return res
}

func (u *Updater[T]) Exec(ctx context.Context) Result {
	m, err := u.initModel(new(T))
	if err != nil {
		return Result{err: err}
	}
	res := exec(ctx, u.sess, u.core, &QueryContext{
		Type:    TypeUpdate,
		Builder: u,
		Model:   m,
	})
	return toResult(res)
}

// Get 更新并返回更新之后的第一行, 需要方言支持 RETURNING
// 没有匹配到任何行的时候返回 ErrNoRows
func (u *Updater[T]) Get(ctx context.Context) (*T, error) {
	m, err := u.initModel(new(T))
	if err != nil {
		return nil, err
	}
	u.returning = true
	res := get[T](ctx, u.sess, u.core, &QueryContext{
		Type:    TypeUpdate,
		Builder: u,
		Model:   m,
	})
	return toEntity[T](res)
}
