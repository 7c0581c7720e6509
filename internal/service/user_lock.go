package service

import (
	"context"
	"errors"
	"fmt"
	"learnhub_backend/pkg/logger"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserLocker 串行化同一用户的成就事件，不同用户之间互不影响
type UserLocker interface {
	Lock(ctx context.Context, userID uint) (unlock func(), err error)
}

// LocalUserLocker 进程内的按用户互斥锁，单实例部署时使用
type LocalUserLocker struct {
	mu    sync.Mutex
	locks map[uint]*userLock
}

type userLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalUserLocker() *LocalUserLocker {
	return &LocalUserLocker{locks: make(map[uint]*userLock)}
}

func (l *LocalUserLocker) Lock(ctx context.Context, userID uint) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &userLock{ch: make(chan struct{}, 1)}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(userID, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.ch
			l.release(userID, entry)
		})
	}, nil
}

func (l *LocalUserLocker) release(userID uint, entry *userLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, userID)
	}
}

var ErrLockTimeout = errors.New("timed out waiting for user lock")

// 只删除自己持有的锁
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisUserLocker 基于 SET NX 的分布式锁，多实例部署时使用
type RedisUserLocker struct {
	Client *redis.Client
	TTL    time.Duration
	// 获取锁失败后的重试间隔
	RetryInterval time.Duration
	// 最长等待时间
	WaitTimeout time.Duration
}

func NewRedisUserLocker(client *redis.Client, ttl time.Duration) *RedisUserLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisUserLocker{
		Client:        client,
		TTL:           ttl,
		RetryInterval: 25 * time.Millisecond,
		WaitTimeout:   ttl,
	}
}

func lockKey(userID uint) string {
	return fmt.Sprintf("learnhub:achievement:lock:%d", userID)
}

func (l *RedisUserLocker) Lock(ctx context.Context, userID uint) (func(), error) {
	key := lockKey(userID)
	token := uuid.NewString()

	deadline := time.Now().Add(l.WaitTimeout)
	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire user lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.RetryInterval):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 解锁不跟随请求 ctx，请求取消后仍需释放
			if err := unlockScript.Run(context.Background(), l.Client, []string{key}, token).Err(); err != nil {
				logger.Log.Warn("Failed to release user lock, held until TTL",
					zap.Uint("user_id", userID),
					zap.Duration("ttl", l.TTL),
					zap.Error(err),
				)
			}
		})
	}, nil
}
