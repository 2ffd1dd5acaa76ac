package redis

import (
	"time"

	"github.com/go-redis/redis"
)

// tokenBlacklist 基于Redis实现已注销令牌的存储
// 键在令牌自然过期后由Redis自动清理
type tokenBlacklist struct {
	client *redis.Client
}

// NewTokenBlacklist 创建一个基于Redis的令牌黑名单
func NewTokenBlacklist(client *redis.Client) *tokenBlacklist {
	return &tokenBlacklist{client}
}

const blacklistPrefix = "token:blacklist:"

// Add 将令牌加入黑名单，ttl为令牌的剩余有效期
func (b *tokenBlacklist) Add(token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(blacklistPrefix+token, "1", ttl).Err()
}

// Contains 检查令牌是否在黑名单中
func (b *tokenBlacklist) Contains(token string) (bool, error) {
	_, err := b.client.Get(blacklistPrefix + token).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// NewClient 创建并校验一个Redis连接
func NewClient(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping().Err(); err != nil {
		return nil, err
	}
	return client, nil
}
