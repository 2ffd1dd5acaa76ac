package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/service"
)

// ChatHandler 处理会话资源的HTTP请求
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler 实例
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService}
}

// CreateChat 创建会话
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var body struct {
		Name           string   `json:"name"`
		IsGroup        bool     `json:"is_group"`
		ParticipantIDs []string `json:"participant_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid request data", err))
		return
	}

	chat, err := h.chatService.CreateChat(c.GetString("user_id"), body.Name, body.IsGroup, body.ParticipantIDs)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat": chat})
}

// ListChats 返回当前用户加入的会话
func (h *ChatHandler) ListChats(c *gin.Context) {
	chats, err := h.chatService.ListUserChats(c.GetString("user_id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// GetChat 返回单个会话
func (h *ChatHandler) GetChat(c *gin.Context) {
	chat, err := h.chatService.GetChat(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// UpdateChat 重命名会话
func (h *ChatHandler) UpdateChat(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required,notblank"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid request data", err))
		return
	}

	chat, err := h.chatService.UpdateChat(c.GetString("user_id"), c.Param("id"), body.Name)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// DeleteChat 删除会话
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	if err := h.chatService.DeleteChat(c.GetString("user_id"), c.Param("id")); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chat deleted"})
}

// PostMessage 在会话中发送消息
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var body struct {
		Text string `json:"text" binding:"required,notblank"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid request data", err))
		return
	}

	message, err := h.chatService.PostMessage(c.GetString("user_id"), c.Param("id"), body.Text)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// ListMessages 返回会话内的消息
func (h *ChatHandler) ListMessages(c *gin.Context) {
	messages, err := h.chatService.ListMessages(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// ToggleParticipant 按用户名切换群聊成员
func (h *ChatHandler) ToggleParticipant(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required,notblank"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid request data", err))
		return
	}

	added, chat, err := h.chatService.ToggleParticipant(c.GetString("user_id"), c.Param("id"), body.Username)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"added": added,
		"chat":  chat,
	})
}

// ListParticipants 返回会话成员
func (h *ChatHandler) ListParticipants(c *gin.Context) {
	users, err := h.chatService.ListParticipants(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": users})
}
