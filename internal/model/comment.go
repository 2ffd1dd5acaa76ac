package model

import "time"

// Comment 结构体表示评论文档
// 回复评论（Reply=true）与父评论共享同一个 Post，
// 但只能通过父评论的 Replies 数组到达，不会出现在 Post.Comments 中
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Post      string    `json:"post"`
	Text      string    `json:"text"`
	Edited    bool      `json:"edited"`
	Reply     bool      `json:"reply"`
	Likes     []string  `json:"likes"`
	Replies   []string  `json:"replies"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
