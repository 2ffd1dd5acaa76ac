package post

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/service"
)

// PostHandler 处理帖子资源的HTTP请求
type PostHandler struct {
	postService         *service.PostService
	relationshipService *service.RelationshipService
	threadService       *service.ThreadService
}

// NewPostHandler 创建一个新的 PostHandler 实例
func NewPostHandler(
	postService *service.PostService,
	relationshipService *service.RelationshipService,
	threadService *service.ThreadService,
) *PostHandler {
	return &PostHandler{postService, relationshipService, threadService}
}

type textBody struct {
	Text string `json:"text" binding:"required,notblank"`
}

// CreatePost 发布帖子
func (h *PostHandler) CreatePost(c *gin.Context) {
	var body textBody
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid request data", err))
		return
	}

	post, err := h.postService.CreatePost(c.GetString("user_id"), body.Text)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// ListPosts 返回全部帖子
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.postService.ListPosts()
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetPost 返回单个帖子
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPost(c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// UpdatePost 更新帖子正文
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var body textBody
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid request data", err))
		return
	}

	post, err := h.postService.UpdatePost(c.GetString("user_id"), c.Param("id"), body.Text)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeletePost 删除帖子
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postService.DeletePost(c.GetString("user_id"), c.Param("id")); err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// ToggleLike 切换帖子点赞
func (h *PostHandler) ToggleLike(c *gin.Context) {
	liked, post, err := h.relationshipService.TogglePostLike(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"liked": liked,
		"post":  post,
	})
}

// ListLikes 返回点赞了帖子的用户
func (h *PostHandler) ListLikes(c *gin.Context) {
	users, err := h.postService.ListLikes(c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ToggleSave 切换帖子收藏
func (h *PostHandler) ToggleSave(c *gin.Context) {
	saved, post, err := h.relationshipService.ToggleSave(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"saved": saved,
		"post":  post,
	})
}

// ListSaves 返回收藏了帖子的用户
func (h *PostHandler) ListSaves(c *gin.Context) {
	users, err := h.postService.ListSaves(c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// CreateComment 在帖子下发表评论
func (h *PostHandler) CreateComment(c *gin.Context) {
	var body textBody
	if err := c.ShouldBindJSON(&body); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "Invalid request data", err))
		return
	}

	comment, err := h.threadService.CreateComment(c.GetString("user_id"), c.Param("id"), body.Text)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// ListComments 返回帖子的顶层评论
func (h *PostHandler) ListComments(c *gin.Context) {
	comments, err := h.postService.ListComments(c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
