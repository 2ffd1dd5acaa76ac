package model

import "time"

// Message 结构体表示消息文档
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Chat      string    `json:"chat"`
	Text      string    `json:"text"`
	Edited    bool      `json:"edited"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
