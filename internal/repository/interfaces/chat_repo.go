package interfaces

import "github.com/hcissey0/flux-backend/internal/model"

// ChatRepository 接口定义了会话仓库应该实现的方法
type ChatRepository interface {
	Create(chat *model.Chat) error
	FindByID(id string) (*model.Chat, error)
	FindByIDs(ids []string) ([]*model.Chat, error)
	FindAll() ([]*model.Chat, error)
	Update(chat *model.Chat) error
	Delete(id string) error
}
