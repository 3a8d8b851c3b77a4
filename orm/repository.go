package orm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/startdusk/go-orm/cache"
	"github.com/startdusk/go-orm/orm/internal/errs"
	"github.com/startdusk/go-orm/orm/model"
)

// errRecordAbsent 回源的时候数据不存在, 不写缓存
var errRecordAbsent = errors.New("orm: record absent")

type repositoryConfig struct {
	cache      cache.Cache
	expiration time.Duration
}

type RepositoryOption func(cfg *repositoryConfig)

// RepositoryWithCache 按主键读取的时候先查缓存, 缓存里面存的是各列的值组成的 JSON 数组
// Update 和 Delete 会删除对应的缓存
func RepositoryWithCache(c cache.Cache, expiration time.Duration) RepositoryOption {
	return func(cfg *repositoryConfig) {
		cfg.cache = c
		cfg.expiration = expiration
	}
}

// Repository 以记录为单位的增删改查
// 按主键操作的方法, 主键的值按照元数据里主键的顺序传入
type Repository[T any] struct {
	sess  Session
	cache *cache.ReadThroughCache
}

func NewRepository[T any](sess Session, opts ...RepositoryOption) *Repository[T] {
	cfg := &repositoryConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	r := &Repository[T]{sess: sess}
	if cfg.cache != nil {
		r.cache = &cache.ReadThroughCache{
			Cache:      cfg.cache,
			Expiration: cfg.expiration,
		}
	}
	return r
}

func (r *Repository[T]) model() (*model.Model, error) {
	return r.sess.getCore().r.Get(new(T))
}

// Create 插入一条记录, 返回数据库里面的那一行, 包括数据库生成的列
func (r *Repository[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, errs.ErrNilRecord
	}
	c := r.sess.getCore()
	if c.dialect.supportReturning() {
		return NewInserter[T](r.sess).Values(entity).Get(ctx)
	}

	m, err := r.model()
	if err != nil {
		return nil, err
	}
	res := NewInserter[T](r.sess).Values(entity).Exec(ctx)
	if err = res.Err(); err != nil {
		return nil, err
	}
	// 没有主键就没办法读回来, 只能返回输入的拷贝
	if !m.HasPrimaryKey() {
		cp := *entity
		return &cp, nil
	}
	keys, err := r.insertedKeys(c, m, entity, res)
	if err != nil {
		return nil, err
	}
	t, err := r.readByKey(ctx, keys)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errs.NewOpError(TypeSelect, m.TableName, errs.ErrNotFound)
	}
	return t, nil
}

// insertedKeys 自增主键从 LastInsertId 拿, 其余的主键就是记录里面的值
func (r *Repository[T]) insertedKeys(c core, m *model.Model, entity *T, res Result) ([]any, error) {
	val := c.creator(m, entity)
	keys := make([]any, len(m.PrimaryKeys))
	for i, pk := range m.PrimaryKeys {
		if pk.Generated && len(m.PrimaryKeys) == 1 {
			id, err := res.LastInsertId()
			if err != nil {
				return nil, errs.NewOpError(TypeInsert, m.TableName, errs.Classify(err))
			}
			keys[i] = id
			continue
		}
		key, err := val.Field(pk.GoName)
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}
	return keys, nil
}

// CreateMany 支持 RETURNING 的方言用一条语句插入, 否则在事务里面逐条插入
func (r *Repository[T]) CreateMany(ctx context.Context, entities ...*T) ([]*T, error) {
	if len(entities) == 0 {
		return []*T{}, nil
	}
	if r.sess.getCore().dialect.supportReturning() {
		return NewInserter[T](r.sess).Values(entities...).GetMulti(ctx)
	}

	res := make([]*T, 0, len(entities))
	err := r.inTx(ctx, func(ctx context.Context, sess Session) error {
		repo := NewRepository[T](sess)
		for _, entity := range entities {
			t, err := repo.Create(ctx, entity)
			if err != nil {
				return err
			}
			res = append(res, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Read 按主键读取, 找不到的时候返回 nil, nil
func (r *Repository[T]) Read(ctx context.Context, keys ...any) (*T, error) {
	m, err := r.model()
	if err != nil {
		return nil, err
	}
	if err = checkKeys(m, keys); err != nil {
		return nil, err
	}
	if r.cache != nil {
		return r.readCached(ctx, m, keys)
	}
	return r.readByKey(ctx, keys)
}

func (r *Repository[T]) readByKey(ctx context.Context, keys []any) (*T, error) {
	m, err := r.model()
	if err != nil {
		return nil, err
	}
	t, err := NewSelector[T](r.sess).Where(keyPredicates(m, keys)...).Get(ctx)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *Repository[T]) readCached(ctx context.Context, m *model.Model, keys []any) (*T, error) {
	key := cacheKey(m, keys)
	val, err := r.cache.GetWith(ctx, key, func(ctx context.Context) (any, error) {
		t, err := r.readByKey(ctx, keys)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, errRecordAbsent
		}
		return r.encodeRecord(m, t)
	})
	switch {
	case errors.Is(err, errRecordAbsent):
		return nil, nil
	case errors.Is(err, cache.ErrFailedToRefreshCache):
		// 数据已经从数据库拿到了, 只是没写进缓存
		r.sess.getCore().logger.Warn("orm: refresh cache failed", zap.String("key", key), zap.Error(err))
	case err != nil:
		return nil, err
	}

	var data []byte
	switch v := val.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil, errs.NewErrDecode(fmt.Errorf("unexpected cached value %T", val))
	}
	return decodeRecord[T](m, data)
}

// encodeRecord 缓存里存的是按元数据字段顺序排列的列值
// 不经过结构体本身的 json 标签, 保证从缓存读出来的和从数据库读出来的一致
func (r *Repository[T]) encodeRecord(m *model.Model, t *T) ([]byte, error) {
	val := r.sess.getCore().creator(m, t)
	cols := make([]any, 0, len(m.Fields))
	for _, fd := range m.Fields {
		v, err := val.Field(fd.GoName)
		if err != nil {
			return nil, err
		}
		cols = append(cols, v)
	}
	return json.Marshal(cols)
}

func decodeRecord[T any](m *model.Model, data []byte) (*T, error) {
	var cols []json.RawMessage
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, errs.NewErrDecode(err)
	}
	if len(cols) != len(m.Fields) {
		return nil, errs.NewErrDecode(fmt.Errorf("cached record has %d columns, want %d", len(cols), len(m.Fields)))
	}
	t := new(T)
	entity := reflect.ValueOf(t).Elem()
	for i, fd := range m.Fields {
		fv := reflect.New(fd.Type)
		if err := json.Unmarshal(cols[i], fv.Interface()); err != nil {
			return nil, errs.NewErrDecode(fmt.Errorf("column %s: %w", fd.ColName, err))
		}
		entity.Field(fd.Index).Set(fv.Elem())
	}
	return t, nil
}

// ReadAll 读取整张表, 表是空的时候返回空切片
func (r *Repository[T]) ReadAll(ctx context.Context) ([]*T, error) {
	return NewSelector[T](r.sess).GetMulti(ctx)
}

// Update 按主键更新所有非主键列, 没有匹配到任何行返回 ErrNotFound
func (r *Repository[T]) Update(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, errs.ErrNilRecord
	}
	m, err := r.model()
	if err != nil {
		return nil, err
	}
	keys, err := r.recordKeys(m, entity)
	if err != nil {
		return nil, err
	}

	var res *T
	u := NewUpdater[T](r.sess).Update(entity).Where(keyPredicates(m, keys)...)
	if r.sess.getCore().dialect.supportReturning() {
		res, err = u.Get(ctx)
		if errors.Is(err, ErrNoRows) {
			return nil, errs.NewOpError(TypeUpdate, m.TableName, errs.ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
	} else {
		if err = affectedAny(u.Exec(ctx), TypeUpdate, m); err != nil {
			return nil, err
		}
		cp := *entity
		res = &cp
	}
	r.invalidate(ctx, m, keys)
	return res, nil
}

// UpdateMany 在事务里面逐条更新, 任何一条失败都会回滚
func (r *Repository[T]) UpdateMany(ctx context.Context, entities ...*T) ([]*T, error) {
	if len(entities) == 0 {
		return []*T{}, nil
	}
	m, err := r.model()
	if err != nil {
		return nil, err
	}
	res := make([]*T, 0, len(entities))
	err = r.inTx(ctx, func(ctx context.Context, sess Session) error {
		repo := NewRepository[T](sess)
		for _, entity := range entities {
			t, err := repo.Update(ctx, entity)
			if err != nil {
				return err
			}
			res = append(res, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, entity := range entities {
		if keys, err := r.recordKeys(m, entity); err == nil {
			r.invalidate(ctx, m, keys)
		}
	}
	return res, nil
}

// Delete 按主键删除, 没有匹配到任何行返回 ErrNotFound
func (r *Repository[T]) Delete(ctx context.Context, keys ...any) error {
	m, err := r.model()
	if err != nil {
		return err
	}
	if err = checkKeys(m, keys); err != nil {
		return err
	}
	res := NewDeleter[T](r.sess).Where(keyPredicates(m, keys)...).Exec(ctx)
	if err = affectedAny(res, TypeDelete, m); err != nil {
		return err
	}
	r.invalidate(ctx, m, keys)
	return nil
}

// DeleteMany 用一条语句删除多条记录, 返回被删除的行数
func (r *Repository[T]) DeleteMany(ctx context.Context, entities ...*T) (int64, error) {
	if len(entities) == 0 {
		return 0, nil
	}
	m, err := r.model()
	if err != nil {
		return 0, err
	}

	allKeys := make([][]any, 0, len(entities))
	var where Predicate
	for i, entity := range entities {
		if entity == nil {
			return 0, errs.ErrNilRecord
		}
		keys, err := r.recordKeys(m, entity)
		if err != nil {
			return 0, err
		}
		allKeys = append(allKeys, keys)
		ps := keyPredicates(m, keys)
		p := ps[0]
		for _, pk := range ps[1:] {
			p = p.And(pk)
		}
		if i == 0 {
			where = p
			continue
		}
		where = where.Or(p)
	}

	n, err := NewDeleter[T](r.sess).Where(where).Exec(ctx).RowsAffected()
	if err != nil {
		return 0, err
	}
	for _, keys := range allKeys {
		r.invalidate(ctx, m, keys)
	}
	return n, nil
}

// recordKeys 从记录里面取出主键的值
func (r *Repository[T]) recordKeys(m *model.Model, entity *T) ([]any, error) {
	if !m.HasPrimaryKey() {
		return nil, errs.ErrNoPrimaryKey
	}
	val := r.sess.getCore().creator(m, entity)
	keys := make([]any, 0, len(m.PrimaryKeys))
	for _, pk := range m.PrimaryKeys {
		key, err := val.Field(pk.GoName)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// inTx 已经在事务里面就直接执行, 否则开启一个新的事务
func (r *Repository[T]) inTx(ctx context.Context, fn func(ctx context.Context, sess Session) error) error {
	b, ok := r.sess.(txBeginner)
	if !ok {
		return fn(ctx, r.sess)
	}
	return doTx(ctx, b, func(ctx context.Context, tx *Tx) error {
		return fn(ctx, tx)
	}, nil)
}

func (r *Repository[T]) invalidate(ctx context.Context, m *model.Model, keys []any) {
	if r.cache == nil {
		return
	}
	key := cacheKey(m, keys)
	if err := r.cache.Delete(ctx, key); err != nil {
		r.sess.getCore().logger.Warn("orm: invalidate cache failed", zap.String("key", key), zap.Error(err))
	}
}

func checkKeys(m *model.Model, keys []any) error {
	if !m.HasPrimaryKey() {
		return errs.ErrNoPrimaryKey
	}
	if len(keys) != len(m.PrimaryKeys) {
		return errs.NewErrKeyCount(len(m.PrimaryKeys), len(keys))
	}
	return nil
}

func keyPredicates(m *model.Model, keys []any) []Predicate {
	ps := make([]Predicate, 0, len(keys))
	for i, pk := range m.PrimaryKeys {
		ps = append(ps, C(pk.GoName).Eq(keys[i]))
	}
	return ps
}

// affectedAny 没有匹配到任何行的时候返回 ErrNotFound
func affectedAny(res Result, typ string, m *model.Model) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.NewOpError(typ, m.TableName, errs.ErrNotFound)
	}
	return nil
}

// cacheKey orm:表名:主键1:主键2
func cacheKey(m *model.Model, keys []any) string {
	var sb strings.Builder
	sb.WriteString("orm:")
	sb.WriteString(m.TableName)
	for _, key := range keys {
		sb.WriteByte(':')
		_, _ = fmt.Fprint(&sb, key)
	}
	return sb.String()
}
