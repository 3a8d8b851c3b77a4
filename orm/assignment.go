package orm

// Assignable 可以出现在 UPDATE 的 SET 后面
// Column 代表用结构体里面的值更新这一列, Assignment 代表用指定的值更新这一列
type Assignable interface {
	assign()
}

type Assignment struct {
	col string
	val any
}

func (Assignment) assign() {}

func Assign(col string, val any) Assignment {
	return Assignment{
		col: col,
		val: val,
	}
}
