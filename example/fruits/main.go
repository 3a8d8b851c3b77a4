package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/startdusk/go-orm/orm"
	"github.com/startdusk/go-orm/orm/config"
)

type Fruit struct {
	_    struct{} `orm:"table=fruits"`
	ID   int64    `orm:"primary_key"`
	Name string
}

const fruitsDDL = "CREATE TABLE IF NOT EXISTS `fruits` (" +
	"`id` INTEGER PRIMARY KEY AUTOINCREMENT,`name` TEXT NOT NULL UNIQUE)"

const defaultConfig = `
log:
  level: info
  development: true
query_log:
  enabled: true
  log_args: true
guard:
  safe_dml: true
cache:
  type: local
  expiration: 1m
`

func main() {
	path := flag.String("config", "", "配置文件, 为空的时候使用临时目录里的 sqlite")
	flag.Parse()

	// os.Exit 不会执行 defer, 所以所有的清理都放在 start 里面
	if err := start(*path); err != nil {
		fmt.Fprintln(os.Stderr, "fruits:", err)
		os.Exit(1)
	}
}

func start(path string) (err error) {
	cfg, cleanup, err := loadConfig(path)
	if err != nil {
		return err
	}
	defer cleanup()

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()
	db, err := cfg.Open(ctx)
	if err != nil {
		logger.Error("open database", zap.Error(err))
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err = run(ctx, db, cfg, logger); err != nil {
		logger.Error("fruits", zap.Error(err))
	}
	return err
}

// loadConfig 没有指定配置文件的时候, 数据库放在临时目录里, 退出的时候删掉
func loadConfig(path string) (*config.Config, func(), error) {
	if path != "" {
		cfg, err := config.Load(path)
		return cfg, func() {}, err
	}
	dir, err := os.MkdirTemp("", "fruits")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = os.RemoveAll(dir)
	}
	cfg, err := config.Parse([]byte(fmt.Sprintf("uri: sqlite://%s\n%s",
		filepath.Join(dir, "fruits.db"), defaultConfig)))
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return cfg, cleanup, nil
}

func run(ctx context.Context, db *orm.DB, cfg *config.Config, logger *zap.Logger) error {
	if err := orm.RawQuery[any](db, fruitsDDL).Exec(ctx).Err(); err != nil {
		return err
	}
	opts, err := cfg.RepositoryOptions()
	if err != nil {
		return err
	}
	repo := orm.NewRepository[Fruit](db, opts...)

	apple, err := repo.Create(ctx, &Fruit{Name: "apple"})
	if err != nil {
		return err
	}
	logger.Info("created", zap.Int64("id", apple.ID), zap.String("name", apple.Name))

	if _, err = repo.CreateMany(ctx, &Fruit{Name: "banana"}, &Fruit{Name: "cherry"}); err != nil {
		return err
	}

	apple.Name = "green apple"
	if _, err = repo.Update(ctx, apple); err != nil {
		return err
	}
	got, err := repo.Read(ctx, apple.ID)
	if err != nil {
		return err
	}
	logger.Info("read", zap.Int64("id", got.ID), zap.String("name", got.Name))

	if err = repo.Delete(ctx, apple.ID); err != nil {
		return err
	}
	fruits, err := repo.ReadAll(ctx)
	if err != nil {
		return err
	}
	for _, f := range fruits {
		logger.Info("remaining", zap.Int64("id", f.ID), zap.String("name", f.Name))
	}
	return nil
}
