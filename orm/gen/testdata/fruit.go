package testdata

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/startdusk/go-orm/orm"
)

type Fruit struct {
	_       struct{} `orm:"table=fruits"`
	ID      int64    `orm:"primary_key,generated"`
	Name    string
	Color   *sql.NullString
	Picked  time.Time
	Batch   uuid.UUID
	Tags    orm.JSONColumn[[]string]
	Picture []byte

	weight  int
	Skipped string            `orm:"-"`
	Extra   map[string]string `orm:"-"`
}

type Basket interface {
	Put(f Fruit)
}

type Pair[T any] struct {
	Left  T
	Right T
}

func (f Fruit) String() string {
	return fmt.Sprintf("%d-%s", f.ID, f.Name)
}
