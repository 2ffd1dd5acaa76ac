package service

import (
	"github.com/google/uuid"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/model"
	"github.com/hcissey0/flux-backend/internal/repository/interfaces"
	"github.com/hcissey0/flux-backend/internal/util"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService 处理用户注册、凭证验证和资料读取
type UserService struct {
	userRepo  interfaces.UserRepository
	postRepo  interfaces.PostRepository
	chatRepo  interfaces.ChatRepository
	blacklist interfaces.TokenBlacklist
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(
	userRepo interfaces.UserRepository,
	postRepo interfaces.PostRepository,
	chatRepo interfaces.ChatRepository,
	blacklist interfaces.TokenBlacklist,
) *UserService {
	return &UserService{userRepo, postRepo, chatRepo, blacklist}
}

// RegisterInput 定义注册所需的字段
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Username  string
	Password  string
}

// Register 注册新用户，用户名必须唯一
func (s *UserService) Register(input RegisterInput) (*model.User, error) {
	existing, err := s.userRepo.FindByUsername(input.Username)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to check username", err)
	}
	if existing != nil {
		return nil, errors.New(errors.ErrResourceExists, "Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternal, "Failed to hash password", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: string(hash),
		Posts:        []string{},
		Comments:     []string{},
		SavedPosts:   []string{},
		Chats:        []string{},
		Followers:    []string{},
		Following:    []string{},
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to create user", err)
	}

	util.Logger.Info("新用户注册成功", zap.String("username", user.Username))
	return user, nil
}

// Connect 验证用户名密码并签发JWT令牌
func (s *UserService) Connect(username, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if user == nil {
		return "", nil, errors.New(errors.ErrInvalidCredentials, "Invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errors.New(errors.ErrInvalidCredentials, "Invalid username or password")
	}

	token, err := util.GenerateToken(user.ID)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrInternal, "Failed to generate token", err)
	}

	return token, user, nil
}

// Logout 将令牌加入黑名单直至其自然过期
func (s *UserService) Logout(token string) error {
	ttl := util.TokenTTL(token)
	if err := s.blacklist.Add(token, ttl); err != nil {
		return errors.Wrap(errors.ErrInternal, "Failed to revoke token", err)
	}
	return nil
}

// IsTokenRevoked 检查令牌是否已被注销
func (s *UserService) IsTokenRevoked(token string) (bool, error) {
	revoked, err := s.blacklist.Contains(token)
	if err != nil {
		// 黑名单存储不可用时放行令牌本身的校验，但记录告警
		util.Logger.Warn("令牌黑名单查询失败", zap.Error(err))
		return false, nil
	}
	return revoked, nil
}

// GetUserByID 通过ID获取用户
func (s *UserService) GetUserByID(id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "User not found")
	}
	return user, nil
}

// ListUsers 返回全部用户
func (s *UserService) ListUsers() ([]*model.User, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load users", err)
	}
	return users, nil
}

// UpdateInput 定义资料更新可修改的字段，零值字段保持不变
type UpdateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UpdateUser 更新用户资料，仅本人可操作
func (s *UserService) UpdateUser(actorID, userID string, input UpdateInput) (*model.User, error) {
	if actorID != userID {
		return nil, errors.New(errors.ErrUnauthorized, "You can only update your own profile")
	}
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInternal, "Failed to hash password", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to update user", err)
	}
	return user, nil
}

// DeleteUser 删除账号，仅本人可操作
func (s *UserService) DeleteUser(actorID, userID string) error {
	if actorID != userID {
		return errors.New(errors.ErrUnauthorized, "You can only delete your own account")
	}
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(user.ID); err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to delete user", err)
	}
	util.Logger.Info("用户账号已删除", zap.String("username", user.Username))
	return nil
}

// GetUserPosts 返回用户发布的帖子
func (s *UserService) GetUserPosts(userID string) ([]*model.Post, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.FindByIDs(user.Posts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load posts", err)
	}
	return posts, nil
}

// GetFollowers 返回用户的粉丝列表
func (s *UserService) GetFollowers(userID string) ([]*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(user.Followers)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load followers", err)
	}
	return users, nil
}

// GetFollowing 返回用户关注的人
func (s *UserService) GetFollowing(userID string) ([]*model.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(user.Following)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load following", err)
	}
	return users, nil
}

// GetSavedPosts 返回用户收藏的帖子
func (s *UserService) GetSavedPosts(userID string) ([]*model.Post, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.FindByIDs(user.SavedPosts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load saved posts", err)
	}
	return posts, nil
}

// GetUserChats 返回用户加入的会话
func (s *UserService) GetUserChats(userID string) ([]*model.Chat, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	chats, err := s.chatRepo.FindByIDs(user.Chats)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load chats", err)
	}
	return chats, nil
}
