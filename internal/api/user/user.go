package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/service"
	"github.com/hcissey0/flux-backend/internal/util"
	"go.uber.org/zap"
)

// UserHandler 处理用户资源的HTTP请求
type UserHandler struct {
	userService         *service.UserService
	relationshipService *service.RelationshipService
}

// NewUserHandler 创建一个新的 UserHandler 实例
func NewUserHandler(userService *service.UserService, relationshipService *service.RelationshipService) *UserHandler {
	return &UserHandler{userService, relationshipService}
}

// CreateUser 处理用户注册请求
func (h *UserHandler) CreateUser(c *gin.Context) {
	var registerData struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email" binding:"omitempty,email"`
		Username  string `json:"username" binding:"required,notblank"`
		Password  string `json:"password" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&registerData); err != nil {
		util.Logger.Warn("注册失败，无效的请求数据", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid request data", err))
		return
	}

	user, err := h.userService.Register(service.RegisterInput{
		FirstName: registerData.FirstName,
		LastName:  registerData.LastName,
		Email:     registerData.Email,
		Username:  registerData.Username,
		Password:  registerData.Password,
	})
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// ListUsers 返回全部用户
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// GetUser 返回单个用户
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUser 更新用户资料
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var updateData struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email" binding:"omitempty,email"`
		Password  string `json:"password" binding:"omitempty,min=8"`
	}

	if err := c.ShouldBindJSON(&updateData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid request data", err))
		return
	}

	user, err := h.userService.UpdateUser(c.GetString("user_id"), c.Param("id"), service.UpdateInput{
		FirstName: updateData.FirstName,
		LastName:  updateData.LastName,
		Email:     updateData.Email,
		Password:  updateData.Password,
	})
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser 删除账号
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.GetString("user_id"), c.Param("id")); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// ToggleFollow 切换对目标用户的关注
func (h *UserHandler) ToggleFollow(c *gin.Context) {
	followed, target, err := h.relationshipService.ToggleFollow(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"followed": followed,
		"user":     target,
	})
}

// GetUserPosts 返回用户发布的帖子
func (h *UserHandler) GetUserPosts(c *gin.Context) {
	posts, err := h.userService.GetUserPosts(c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetFollowers 返回用户的粉丝
func (h *UserHandler) GetFollowers(c *gin.Context) {
	users, err := h.userService.GetFollowers(c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": users})
}

// GetFollowing 返回用户关注的人
func (h *UserHandler) GetFollowing(c *gin.Context) {
	users, err := h.userService.GetFollowing(c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": users})
}
