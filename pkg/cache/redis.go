package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Connect 连接 Redis 并 Ping，addr 为空返回 nil, nil
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       0,
		PoolSize: 50,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis 连接失败 (%s): %w", addr, err)
	}
	return rdb, nil
}

// ==================== 对象缓存 ====================

// Store JSON 对象缓存，rdb 为 nil 时所有操作为空操作
type Store struct {
	rdb *redis.Client
}

// NewStore 创建缓存
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Enabled 是否连接了 Redis
func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}

// GetObject 读取对象，未命中返回 false
func (s *Store) GetObject(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	val, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetObject 写入对象
func (s *Store) SetObject(ctx context.Context, key string, obj any, exp time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, raw, exp).Err()
}

// Delete 删除 key
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// ==================== 分布式锁 ====================

// ErrLocked 锁被其他实例持有
var ErrLocked = errors.New("lock held by another instance")

// Locker 多副本单次触发锁，rdb 为 nil 时直接执行
type Locker struct {
	client *redislock.Client
}

// NewLocker 创建锁客户端
func NewLocker(rdb *redis.Client) *Locker {
	if rdb == nil {
		return &Locker{}
	}
	return &Locker{client: redislock.New(rdb)}
}

// WithLock 获取锁后执行 fn，拿不到锁返回 ErrLocked
func (l *Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	if l == nil || l.client == nil {
		return fn(ctx)
	}

	lock, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return ErrLocked
	}
	if err != nil {
		return fmt.Errorf("获取锁失败 %s: %w", key, err)
	}
	defer func() {
		_ = lock.Release(context.Background())
	}()

	return fn(ctx)
}
