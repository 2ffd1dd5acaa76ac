package model

import "time"

// User 结构体表示用户文档
// 关注关系、收藏和会话成员关系都以ID数组的形式冗余存储在文档上
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Email        string    `json:"email,omitempty"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // 密码哈希不应在JSON中暴露
	Posts        []string  `json:"posts"`
	Comments     []string  `json:"comments"`
	SavedPosts   []string  `json:"saved_posts"`
	Chats        []string  `json:"chats"`
	Followers    []string  `json:"followers"`
	Following    []string  `json:"following"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName 返回用户的展示名称，没有名字时退回用户名
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}
