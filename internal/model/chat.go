package model

import "time"

// Chat 结构体表示会话文档
// 单聊（IsGroup=false）的 Admins 集合在任意时刻都等于 Participants 集合
type Chat struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	IsGroup      bool      `json:"is_group"`
	Admins       []string  `json:"admins"`
	Participants []string  `json:"participants"`
	Messages     []string  `json:"messages"`
	LastMessage  string    `json:"last_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsParticipant 判断用户是否是会话成员
func (c *Chat) IsParticipant(userID string) bool {
	return ContainsID(c.Participants, userID)
}

// IsAdmin 判断用户是否拥有管理员身份
// 单聊的管理员集合与成员集合恒等，因此直接以成员身份为准
func (c *Chat) IsAdmin(userID string) bool {
	if c.IsGroup {
		return ContainsID(c.Admins, userID)
	}
	return ContainsID(c.Participants, userID)
}
