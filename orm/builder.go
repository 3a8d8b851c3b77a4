package orm

import (
	"strings"

	"github.com/startdusk/go-orm/orm/internal/errs"
	"github.com/startdusk/go-orm/orm/model"
)

type builder struct {
	core
	sb     strings.Builder
	args   []any
	quoter byte
}

func newBuilder(c core) builder {
	return builder{
		core:   c,
		quoter: c.dialect.quoter(),
	}
}

// reset 清空上一次构造的结果, 保证 Build 可以被 middleware 重复调用
func (b *builder) reset() {
	b.sb.Reset()
	b.args = nil
}

// initModel 拿到 entity 对应的元数据, 只会解析一次
func (b *builder) initModel(entity any) (*model.Model, error) {
	if b.model != nil {
		return b.model, nil
	}
	m, err := b.r.Get(entity)
	if err != nil {
		return nil, err
	}
	b.model = m
	return m, nil
}

// buildColumn 构造列, name 是 Go 结构体的字段名
func (b *builder) buildColumn(name string) error {
	fd, ok := b.model.FieldMap[name]
	if !ok {
		return errs.NewErrUnknownField(name)
	}
	b.quote(fd.ColName)
	return nil
}

// quote 给表名列名加引号, 名字里面的引号要转义成两个
func (b *builder) quote(name string) {
	b.sb.WriteByte(b.quoter)
	if strings.IndexByte(name, b.quoter) >= 0 {
		q := string(b.quoter)
		name = strings.ReplaceAll(name, q, q+q)
	}
	b.sb.WriteString(name)
	b.sb.WriteByte(b.quoter)
}

// parameter 加入参数, 并写入方言对应的占位符
func (b *builder) parameter(val any) {
	b.addArgs(val)
	b.sb.WriteString(b.dialect.placeholder(len(b.args)))
}

// buildRaw 原生表达式里的 ? 按顺序替换成方言的占位符
// PostgreSQL 要求 $n 和整条语句里的参数位置一一对应
func (b *builder) buildRaw(exp RawExpr) {
	raw, args := exp.raw, exp.args
	for len(args) > 0 {
		idx := strings.IndexByte(raw, '?')
		if idx < 0 {
			break
		}
		b.sb.WriteString(raw[:idx])
		b.parameter(args[0])
		raw, args = raw[idx+1:], args[1:]
	}
	b.sb.WriteString(raw)
	// 占位符比参数少, 剩下的参数照样交给驱动
	b.addArgs(args...)
}

func (b *builder) addArgs(args ...any) {
	if len(args) == 0 {
		return
	}
	if b.args == nil {
		// 很少有查询能够超过8个参数
		// INSERT除外
		b.args = make([]any, 0, 8)
	}
	b.args = append(b.args, args...)
}

// buildPredicates 多个条件之间用 AND 连接
func (b *builder) buildPredicates(ps []Predicate) error {
	p := ps[0]
	for i := 1; i < len(ps); i++ {
		p = p.And(ps[i])
	}
	return b.buildExpression(p)
}

func (b *builder) buildExpression(expr Expression) error {
	switch exp := expr.(type) {
	case Predicate: // 代表一个查询条件
		// 注意: 生成的SQL中, 处理加空格, 加标点符号的问题会让代码很难看, 但这是必须的
		_, lok := exp.left.(Predicate)
		if lok {
			b.sb.WriteByte('(')
		}
		if err := b.buildExpression(exp.left); err != nil {
			return err
		}
		if lok {
			b.sb.WriteByte(')')
		}

		if exp.op != "" {
			if exp.left != nil {
				b.sb.WriteByte(' ')
			}
			b.sb.WriteString(exp.op.String())
			b.sb.WriteByte(' ')
		}

		_, rok := exp.right.(Predicate)
		if rok {
			b.sb.WriteByte('(')
		}
		if err := b.buildExpression(exp.right); err != nil {
			return err
		}
		if rok {
			b.sb.WriteByte(')')
		}
	case Column: // 代表列名, 直接拼接列名
		return b.buildColumn(exp.name)
	case RawExpr:
		b.sb.WriteByte('(')
		b.buildRaw(exp)
		b.sb.WriteByte(')')
	case value: // 代表参数, 加入参数列表
		b.parameter(exp.val)
	case values:
		// IN () 在大多数数据库里面是语法错误, 空集合什么都匹配不到
		if len(exp.vals) == 0 {
			b.sb.WriteString("(NULL)")
			return nil
		}
		b.sb.WriteByte('(')
		for i, val := range exp.vals {
			if i > 0 {
				b.sb.WriteByte(',')
			}
			b.parameter(val)
		}
		b.sb.WriteByte(')')
	case nil:
		return nil
	default:
		return errs.NewErrUnsupportedExpressionType(expr)
	}
	return nil
}

// buildReturning RETURNING 所有的列, 顺序和元数据一致
func (b *builder) buildReturning() {
	b.sb.WriteString(" RETURNING ")
	b.buildAllColumns()
}

func (b *builder) buildAllColumns() {
	for i, fd := range b.model.Fields {
		if i > 0 {
			b.sb.WriteByte(',')
		}
		b.quote(fd.ColName)
	}
}
