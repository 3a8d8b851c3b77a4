package orm

import (
	"context"

	"github.com/startdusk/go-orm/orm/model"
)

// 语句类型, 放在 QueryContext.Type 里面
const (
	TypeSelect = "SELECT"
	TypeInsert = "INSERT"
	TypeUpdate = "UPDATE"
	TypeDelete = "DELETE"
	TypeRaw    = "RAW"
)

type QueryContext struct {
	// Type 声明查询类型 即 SELECT, UPDATE, DELETE, INSERT 和 RAW
	Type string

	// Builder 使用的时候, 大多数情况下你需要转换到具体的类型才能篡改查询
	// Build 可以重复调用, 每次都会得到相同的结果
	Builder QueryBuilder

	// Model 语句对应的元数据
	Model *model.Model
}

type Middleware func(next Handler) Handler

type Handler func(ctx context.Context, qc *QueryContext) *QueryResult

type QueryResult struct {
	// Result 在不同的查询里面, 类型是不同的
	// Get 里面, 这会是单个结果 *T
	// GetMulti 里面, 这会是一个切片 []*T
	// 其他情况下, 它是 sql.Result 类型
	Result any
	Err    error
}
