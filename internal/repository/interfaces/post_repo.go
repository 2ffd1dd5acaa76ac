package interfaces

import "github.com/hcissey0/flux-backend/internal/model"

// PostRepository 接口定义了帖子仓库应该实现的方法
type PostRepository interface {
	Create(post *model.Post) error
	FindByID(id string) (*model.Post, error)
	FindByIDs(ids []string) ([]*model.Post, error)
	FindAll() ([]*model.Post, error)
	Update(post *model.Post) error
	Delete(id string) error
}
