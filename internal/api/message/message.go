package message

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/service"
)

// MessageHandler 处理消息资源的HTTP请求
// 消息的创建挂在会话路由下，这里只有读取、编辑和删除
type MessageHandler struct {
	messageService *service.MessageService
}

// NewMessageHandler 创建一个新的 MessageHandler 实例
func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService}
}

// ListMessages 返回全部消息
func (h *MessageHandler) ListMessages(c *gin.Context) {
	messages, err := h.messageService.ListMessages()
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GetMessage 返回单条消息
func (h *MessageHandler) GetMessage(c *gin.Context) {
	message, err := h.messageService.GetMessage(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// UpdateMessage 更新消息正文
func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	var body struct {
		Text string `json:"text" binding:"required,notblank"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid request data", err))
		return
	}

	message, err := h.messageService.UpdateMessage(c.GetString("user_id"), c.Param("id"), body.Text)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// DeleteMessage 删除消息
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	if err := h.messageService.DeleteMessage(c.GetString("user_id"), c.Param("id")); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}
