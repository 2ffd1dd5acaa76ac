package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/service"
	"github.com/hcissey0/flux-backend/internal/util"
	"go.uber.org/zap"
)

// AuthHandler 处理与认证相关的HTTP请求
type AuthHandler struct {
	userService *service.UserService
}

// NewAuthHandler 创建一个新的 AuthHandler 实例
func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService}
}

// Connect 用Basic凭证换取Bearer令牌
func (h *AuthHandler) Connect(c *gin.Context) {
	username, password, ok := c.Request.BasicAuth()
	if !ok {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}

	token, user, err := h.userService.Connect(username, password)
	if err != nil {
		util.Logger.Warn("登录失败", zap.String("username", username))
		errors.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout 注销当前令牌
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString("token")
	if err := h.userService.Logout(token); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me 返回当前用户
func (h *AuthHandler) Me(c *gin.Context) {
	user, exists := c.Get("current_user")
	if !exists {
		errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// MePosts 返回当前用户发布的帖子
func (h *AuthHandler) MePosts(c *gin.Context) {
	posts, err := h.userService.GetUserPosts(c.GetString("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// MeChats 返回当前用户加入的会话
func (h *AuthHandler) MeChats(c *gin.Context) {
	chats, err := h.userService.GetUserChats(c.GetString("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// MeFollowers 返回当前用户的粉丝
func (h *AuthHandler) MeFollowers(c *gin.Context) {
	users, err := h.userService.GetFollowers(c.GetString("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": users})
}

// MeFollowing 返回当前用户关注的人
func (h *AuthHandler) MeFollowing(c *gin.Context) {
	users, err := h.userService.GetFollowing(c.GetString("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": users})
}

// MeSaved 返回当前用户收藏的帖子
func (h *AuthHandler) MeSaved(c *gin.Context) {
	posts, err := h.userService.GetSavedPosts(c.GetString("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved_posts": posts})
}
