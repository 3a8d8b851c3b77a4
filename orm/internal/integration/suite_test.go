//go:build integration

package integration

import (
	"context"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/startdusk/go-orm/orm"
	"github.com/startdusk/go-orm/orm/internal/test"
)

// Suite 连接真实的数据库, 数据库由 docker 启动
type Suite struct {
	suite.Suite

	uri string
	db  *orm.DB
}

func (s *Suite) SetupSuite() {
	db, err := orm.Open(s.uri)
	require.NoError(s.T(), err)
	s.db = db
	ctx := context.Background()
	for _, ddl := range []string{test.SimpleStructMySQL, test.FruitMySQL} {
		require.NoError(s.T(), orm.RawQuery[any](db, ddl).Exec(ctx).Err())
	}
}

func (s *Suite) TearDownSuite() {
	_ = s.db.Close()
}
