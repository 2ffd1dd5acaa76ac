package interfaces

import "time"

// TokenBlacklist 接口定义了已注销令牌的存储
type TokenBlacklist interface {
	Add(token string, ttl time.Duration) error
	Contains(token string) (bool, error)
}
