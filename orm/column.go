package orm

func (Column) expr()   {}
func (Column) assign() {}

// Column 代表一列, name 是 Go 结构体的字段名, 而不是数据库的列名
type Column struct {
	name string
}

func (c Column) Gt(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opGt,
		right: value{val: arg},
	}
}

func (c Column) Lt(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opLt,
		right: value{val: arg},
	}
}

func (c Column) Eq(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opEq,
		right: value{val: arg},
	}
}

// In C("id").In(1, 2, 3) => id IN (1, 2, 3)
func (c Column) In(args ...any) Predicate {
	return Predicate{
		left:  c,
		op:    opIn,
		right: values{vals: args},
	}
}
