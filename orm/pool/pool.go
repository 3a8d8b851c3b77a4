package pool

import (
	"context"
	"errors"
	"time"

	"github.com/silenceper/pool"
	"go.uber.org/zap"

	"github.com/startdusk/go-orm/orm"
)

// ErrClosed 连接池已经被 Release 了
var ErrClosed = pool.ErrClosed

type Config struct {
	// InitialCap 创建连接池的时候就建立的连接数
	InitialCap int `yaml:"initial_cap" json:"initial_cap"`
	// MaxCap 同时存在的连接上限, 超过之后 Get 会等待别人归还
	MaxCap int `yaml:"max_cap" json:"max_cap"`
	// MaxIdle 空闲连接上限, 多出来的连接归还的时候直接关闭
	MaxIdle int `yaml:"max_idle" json:"max_idle"`
	// IdleTimeout 空闲太久的连接会被丢弃
	IdleTimeout time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	// ConnectTimeout 建立连接和检查连接的超时时间
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
}

func DefaultConfig() Config {
	return Config{
		InitialCap:     0,
		MaxCap:         30,
		MaxIdle:        10,
		IdleTimeout:    time.Minute,
		ConnectTimeout: 3 * time.Second,
	}
}

type Option func(p *Pool)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Pool 缓存 orm.Conn, 每个 Conn 独占一个数据库连接
// 适合需要连接级别状态的场景, 比如 SET 语句或者临时表
// 从池子里面拿出来的 Conn 同一时间只能被一个 goroutine 使用
type Pool struct {
	p      pool.Pool
	logger *zap.Logger
}

func New(db *orm.DB, cfg Config, opts ...Option) (*Pool, error) {
	res := &Pool{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(res)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ConnectTimeout
	}
	p, err := pool.NewChannelPool(&pool.Config{
		InitialCap:  cfg.InitialCap,
		MaxCap:      cfg.MaxCap,
		MaxIdle:     cfg.MaxIdle,
		IdleTimeout: cfg.IdleTimeout,
		Factory: func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return db.Conn(ctx)
		},
		Close: func(c any) error {
			return c.(*orm.Conn).Close()
		},
		Ping: func(c any) error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return c.(*orm.Conn).Ping(ctx)
		},
	})
	if err != nil {
		return nil, err
	}
	res.p = p
	return res, nil
}

type getResult struct {
	val any
	err error
}

// Get 拿一个连接, 池子满了的时候会等待, 直到有连接被归还或者 ctx 过期
func (p *Pool) Get(ctx context.Context) (*orm.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := make(chan getResult, 1)
	go func() {
		val, err := p.p.Get()
		ch <- getResult{val: val, err: err}
	}()
	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		return res.val.(*orm.Conn), nil
	case <-ctx.Done():
		// 等到的连接没人要了, 还回去
		go func() {
			res := <-ch
			if res.err == nil {
				if err := p.p.Put(res.val); err != nil {
					p.logger.Warn("orm: put conn back failed", zap.Error(err))
				}
			}
		}()
		return nil, ctx.Err()
	}
}

// Put 归还连接
func (p *Pool) Put(c *orm.Conn) error {
	if c == nil {
		return errors.New("orm: conn is nil")
	}
	return p.p.Put(c)
}

// Discard 连接已经不能用了, 比如执行过程中出现了 ErrConnection, 直接关闭, 不再放回池子
func (p *Pool) Discard(c *orm.Conn) error {
	if c == nil {
		return nil
	}
	err := p.p.Close(c)
	if err != nil {
		p.logger.Warn("orm: discard conn failed", zap.Error(err))
	}
	return err
}

// Do 拿一个连接执行 fn, 结束之后归还
// fn 返回的错误是 ErrConnection 的时候, 连接会被丢弃
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context, c *orm.Conn) error) error {
	c, err := p.Get(ctx)
	if err != nil {
		return err
	}
	err = fn(ctx, c)
	if errors.Is(err, orm.ErrConnection) {
		_ = p.Discard(c)
		return err
	}
	if putErr := p.Put(c); putErr != nil {
		p.logger.Warn("orm: put conn back failed", zap.Error(putErr))
	}
	return err
}

// Release 关闭所有空闲连接, 之后 Get 会返回 ErrClosed
// 已经被拿出去的连接, 归还的时候会被关闭
func (p *Pool) Release() {
	p.p.Release()
	p.logger.Info("orm: conn pool released")
}

// Len 空闲连接的数量
func (p *Pool) Len() int {
	return p.p.Len()
}
