package interfaces

import "github.com/hcissey0/flux-backend/internal/model"

// CommentRepository 接口定义了评论仓库应该实现的方法
type CommentRepository interface {
	Create(comment *model.Comment) error
	FindByID(id string) (*model.Comment, error)
	FindByIDs(ids []string) ([]*model.Comment, error)
	FindAll() ([]*model.Comment, error)
	Update(comment *model.Comment) error
	Delete(id string) error
}
