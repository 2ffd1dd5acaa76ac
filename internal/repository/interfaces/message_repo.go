package interfaces

import "github.com/hcissey0/flux-backend/internal/model"

// MessageRepository 接口定义了消息仓库应该实现的方法
type MessageRepository interface {
	Create(message *model.Message) error
	FindByID(id string) (*model.Message, error)
	FindByIDs(ids []string) ([]*model.Message, error)
	FindAll() ([]*model.Message, error)
	Update(message *model.Message) error
	Delete(id string) error
}
