package orm

import (
	"context"
)

// Deleter 构造 DELETE 语句
type Deleter[T any] struct {
	builder
	where []Predicate

	sess Session
}

func NewDeleter[T any](sess Session) *Deleter[T] {
	return &Deleter[T]{
		builder: newBuilder(sess.getCore()),
		sess:    sess,
	}
}

func (d *Deleter[T]) Where(where ...Predicate) *Deleter[T] {
	d.where = where
	return d
}

func (d *Deleter[T]) Build() (*Query, error) {
	d.reset()
	m, err := d.initModel(new(T))
	if err != nil {
		return nil, err
	}
	d.sb.WriteString("DELETE FROM ")
	d.quote(m.TableName)
	if len(d.where) > 0 {
		d.sb.WriteString(" WHERE ")
		if err = d.buildPredicates(d.where); err != nil {
			return nil, err
		}
	}
	d.sb.WriteByte(';')
	return &Query{
		SQL:  d.sb.String(),
		Args: d.args,
	}, nil
}

func (d *Deleter[T]) Exec(ctx context.Context) Result {
	m, err := d.initModel(new(T))
	if err != nil {
		return Result{err: err}
	}
	res := exec(ctx, d.sess, d.core, &QueryContext{
		Type:    TypeDelete,
		Builder: d,
		Model:   m,
	})
	return toResult(res)
}
