package model

import "time"

// Post 结构体表示帖子文档
// likes 是单向边：点赞者的ID只记录在帖子上，用户文档不保存反向引用
// saves 与 User.SavedPosts 构成双向镜像边
type Post struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Edited    bool      `json:"edited"`
	Comments  []string  `json:"comments"`
	Likes     []string  `json:"likes"`
	Saves     []string  `json:"saves"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
