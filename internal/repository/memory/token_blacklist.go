package memory

import (
	"sync"
	"time"
)

// tokenBlacklist 进程内的令牌黑名单
// 没有配置Redis时的降级实现，进程重启后黑名单清空
type tokenBlacklist struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
}

// NewTokenBlacklist 创建一个进程内令牌黑名单
func NewTokenBlacklist() *tokenBlacklist {
	b := &tokenBlacklist{tokens: make(map[string]time.Time)}
	go b.sweep()
	return b
}

// Add 将令牌加入黑名单
func (b *tokenBlacklist) Add(token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	b.tokens[token] = time.Now().Add(ttl)
	b.mu.Unlock()
	return nil
}

// Contains 检查令牌是否在黑名单中
func (b *tokenBlacklist) Contains(token string) (bool, error) {
	b.mu.RLock()
	expiry, ok := b.tokens[token]
	b.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		b.mu.Lock()
		delete(b.tokens, token)
		b.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// sweep 定期清理已过期的条目
func (b *tokenBlacklist) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	for range ticker.C {
		now := time.Now()
		b.mu.Lock()
		for token, expiry := range b.tokens {
			if now.After(expiry) {
				delete(b.tokens, token)
			}
		}
		b.mu.Unlock()
	}
}
