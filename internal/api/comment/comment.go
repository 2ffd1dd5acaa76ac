package comment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/service"
)

// CommentHandler 处理评论资源的HTTP请求
type CommentHandler struct {
	threadService       *service.ThreadService
	relationshipService *service.RelationshipService
}

// NewCommentHandler 创建一个新的 CommentHandler 实例
func NewCommentHandler(threadService *service.ThreadService, relationshipService *service.RelationshipService) *CommentHandler {
	return &CommentHandler{threadService, relationshipService}
}

type textBody struct {
	Text string `json:"text" binding:"required,notblank"`
}

// ListComments 返回全部评论
func (h *CommentHandler) ListComments(c *gin.Context) {
	comments, err := h.threadService.ListComments()
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// GetComment 返回单条评论
func (h *CommentHandler) GetComment(c *gin.Context) {
	comment, err := h.threadService.GetComment(c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// UpdateComment 更新评论正文
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	var body textBody
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid request data", err))
		return
	}

	comment, err := h.threadService.UpdateComment(c.GetString("user_id"), c.Param("id"), body.Text)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
}

// DeleteComment 删除评论
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	if err := h.threadService.DeleteComment(c.GetString("user_id"), c.Param("id")); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// ToggleLike 切换评论点赞
func (h *CommentHandler) ToggleLike(c *gin.Context) {
	liked, comment, err := h.relationshipService.ToggleCommentLike(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"liked":   liked,
		"comment": comment,
	})
}

// ListLikes 返回点赞了评论的用户
func (h *CommentHandler) ListLikes(c *gin.Context) {
	users, err := h.threadService.ListLikes(c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Reply 回复一条评论
func (h *CommentHandler) Reply(c *gin.Context) {
	var body textBody
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid request data", err))
		return
	}

	reply, err := h.threadService.ReplyToComment(c.GetString("user_id"), c.Param("id"), body.Text)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": reply})
}

// ListReplies 返回评论的回复
func (h *CommentHandler) ListReplies(c *gin.Context) {
	replies, err := h.threadService.ListReplies(c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": replies})
}
