package orm

import (
	"strconv"

	"github.com/startdusk/go-orm/orm/internal/errs"
)

var (
	DialectMySQL      Dialect = &mysqlDialect{}
	DialectPostgreSQL Dialect = &postgreDialect{}
	DialectSQLite     Dialect = &sqliteDialect{}
)

// DialectOf 根据名字找方言, 找不到返回 false
func DialectOf(name string) (Dialect, bool) {
	switch name {
	case "mysql":
		return DialectMySQL, true
	case "postgres", "postgresql":
		return DialectPostgreSQL, true
	case "sqlite", "sqlite3":
		return DialectSQLite, true
	}
	return nil, false
}

type Dialect interface {
	Name() string

	// quoter 就是为了解决引号问题
	// MySQL 反引号 `
	// PostgreSQL 是双引号
	quoter() byte

	// placeholder 第 n 个参数的占位符, n 从 1 开始
	placeholder(n int) string

	// supportReturning 是否支持 INSERT/UPDATE ... RETURNING
	supportReturning() bool

	buildUpsert(b *builder, odk *Upsert) error
}

type standardSQL struct{}

func (d standardSQL) quoter() byte {
	return '"'
}

func (d standardSQL) placeholder(int) string {
	return "?"
}

func (d standardSQL) supportReturning() bool {
	return false
}

func (d standardSQL) buildUpsert(*builder, *Upsert) error {
	return nil
}

type mysqlDialect struct {
	standardSQL
}

func (d mysqlDialect) Name() string {
	return "mysql"
}

func (d mysqlDialect) quoter() byte {
	return '`'
}

func (d mysqlDialect) buildUpsert(b *builder, odk *Upsert) error {
	b.sb.WriteString(" ON DUPLICATE KEY UPDATE ")
	for idx, assign := range odk.assigns {
		if idx > 0 {
			b.sb.WriteByte(',')
		}
		switch a := assign.(type) {
		case Assignment:
			if err := b.buildColumn(a.col); err != nil {
				return err
			}
			b.sb.WriteByte('=')
			b.parameter(a.val)
		case Column:
			fd, ok := b.model.FieldMap[a.name]
			if !ok {
				return errs.NewErrUnknownField(a.name)
			}
			b.quote(fd.ColName)
			b.sb.WriteString("=VALUES(")
			b.quote(fd.ColName)
			b.sb.WriteByte(')')
		default:
			return errs.NewErrUnsupportedAssignable(assign)
		}
	}
	return nil
}

type sqliteDialect struct {
	standardSQL
}

func (d sqliteDialect) Name() string {
	return "sqlite"
}

func (d sqliteDialect) quoter() byte {
	return '`'
}

func (d sqliteDialect) supportReturning() bool {
	return true
}

func (d sqliteDialect) buildUpsert(b *builder, odk *Upsert) error {
	return buildOnConflict(b, odk)
}

type postgreDialect struct {
	standardSQL
}

func (d postgreDialect) Name() string {
	return "postgres"
}

func (d postgreDialect) placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (d postgreDialect) supportReturning() bool {
	return true
}

func (d postgreDialect) buildUpsert(b *builder, odk *Upsert) error {
	return buildOnConflict(b, odk)
}

// buildOnConflict SQLite 和 PostgreSQL 的 ON CONFLICT 语法
// 没有指定冲突列的时候, 用主键作为冲突列
func buildOnConflict(b *builder, odk *Upsert) error {
	b.sb.WriteString(" ON CONFLICT(")
	if len(odk.conflictColumns) == 0 {
		if !b.model.HasPrimaryKey() {
			return errs.ErrNoPrimaryKey
		}
		for i, fd := range b.model.PrimaryKeys {
			if i > 0 {
				b.sb.WriteByte(',')
			}
			b.quote(fd.ColName)
		}
	}
	for i, col := range odk.conflictColumns {
		if i > 0 {
			b.sb.WriteByte(',')
		}
		if err := b.buildColumn(col); err != nil {
			return err
		}
	}
	b.sb.WriteString(") DO UPDATE SET ")
	for idx, assign := range odk.assigns {
		if idx > 0 {
			b.sb.WriteByte(',')
		}
		switch a := assign.(type) {
		case Assignment:
			if err := b.buildColumn(a.col); err != nil {
				return err
			}
			b.sb.WriteByte('=')
			b.parameter(a.val)
		case Column:
			fd, ok := b.model.FieldMap[a.name]
			if !ok {
				return errs.NewErrUnknownField(a.name)
			}
			b.quote(fd.ColName)
			b.sb.WriteString("=excluded.")
			b.quote(fd.ColName)
		default:
			return errs.NewErrUnsupportedAssignable(assign)
		}
	}
	return nil
}
