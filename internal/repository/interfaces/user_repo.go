package interfaces

import "github.com/hcissey0/flux-backend/internal/model"

// UserRepository 接口定义了用户仓库应该实现的方法
// 查找方法在文档不存在时返回 (nil, nil)
type UserRepository interface {
	Create(user *model.User) error
	FindByID(id string) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	FindByIDs(ids []string) ([]*model.User, error)
	FindAll() ([]*model.User, error)
	Update(user *model.User) error
	Delete(id string) error
}
