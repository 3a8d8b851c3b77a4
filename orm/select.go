package orm

import (
	"context"
)

// OrderBy 排序条件
type OrderBy struct {
	col   string
	order string
}

func Asc(col string) OrderBy {
	return OrderBy{col: col, order: "ASC"}
}

func Desc(col string) OrderBy {
	return OrderBy{col: col, order: "DESC"}
}

// Selector 构造 SELECT 语句
// 查询的列总是元数据里面的全部列, 按声明顺序排列, 这样结果一定能解析回 T
type Selector[T any] struct {
	builder
	where   []Predicate
	orderBy []OrderBy
	limit   int
	offset  int

	sess Session
}

func NewSelector[T any](sess Session) *Selector[T] {
	return &Selector[T]{
		builder: newBuilder(sess.getCore()),
		sess:    sess,
	}
}

func (s *Selector[T]) Where(where ...Predicate) *Selector[T] {
	s.where = where
	return s
}

func (s *Selector[T]) OrderBy(orderBy ...OrderBy) *Selector[T] {
	s.orderBy = orderBy
	return s
}

func (s *Selector[T]) Limit(limit int) *Selector[T] {
	s.limit = limit
	return s
}

func (s *Selector[T]) Offset(offset int) *Selector[T] {
	s.offset = offset
	return s
}

func (s *Selector[T]) Build() (*Query, error) {
	s.reset()
	if _, err := s.initModel(new(T)); err != nil {
		return nil, err
	}

	s.sb.WriteString("SELECT ")
	s.buildAllColumns()
	s.sb.WriteString(" FROM ")
	s.quote(s.model.TableName)

	if len(s.where) > 0 {
		s.sb.WriteString(" WHERE ")
		if err := s.buildPredicates(s.where); err != nil {
			return nil, err
		}
	}

	if len(s.orderBy) > 0 {
		s.sb.WriteString(" ORDER BY ")
		for i, ob := range s.orderBy {
			if i > 0 {
				s.sb.WriteByte(',')
			}
			if err := s.buildColumn(ob.col); err != nil {
				return nil, err
			}
			s.sb.WriteByte(' ')
			s.sb.WriteString(ob.order)
		}
	}

	if s.limit > 0 {
		s.sb.WriteString(" LIMIT ")
		s.parameter(s.limit)
	}
	if s.offset > 0 {
		s.sb.WriteString(" OFFSET ")
		s.parameter(s.offset)
	}

	s.sb.WriteByte(';')
	return &Query{
		SQL:  s.sb.String(),
		Args: s.args,
	}, nil
}

// Get 返回第一行, 没有数据的时候返回 ErrNoRows
func (s *Selector[T]) Get(ctx context.Context) (*T, error) {
	m, err := s.initModel(new(T))
	if err != nil {
		return nil, err
	}
	res := get[T](ctx, s.sess, s.core, &QueryContext{
		Type:    TypeSelect,
		Builder: s,
		Model:   m,
	})
	return toEntity[T](res)
}

// GetMulti 返回所有行, 没有数据的时候返回空切片
func (s *Selector[T]) GetMulti(ctx context.Context) ([]*T, error) {
	m, err := s.initModel(new(T))
	if err != nil {
		return nil, err
	}
	res := getMulti[T](ctx, s.sess, s.core, &QueryContext{
		Type:    TypeSelect,
		Builder: s,
		Model:   m,
	})
	return toEntities[T](res)
}
