package service

import (
	"github.com/google/uuid"
	"github.com/hcissey0/flux-backend/internal/common"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/model"
	"github.com/hcissey0/flux-backend/internal/repository/interfaces"
	"github.com/hcissey0/flux-backend/internal/util"
	"go.uber.org/zap"
)

// PostService 管理帖子的生命周期
type PostService struct {
	postRepo    interfaces.PostRepository
	userRepo    interfaces.UserRepository
	commentRepo interfaces.CommentRepository
}

// NewPostService 创建一个新的 PostService 实例
func NewPostService(
	postRepo interfaces.PostRepository,
	userRepo interfaces.UserRepository,
	commentRepo interfaces.CommentRepository,
) *PostService {
	return &PostService{postRepo, userRepo, commentRepo}
}

// CreatePost 创建帖子并链入作者的 posts 数组
func (s *PostService) CreatePost(authorID, text string) (*model.Post, error) {
	author, err := s.userRepo.FindByID(authorID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if author == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "User not found")
	}

	post := &model.Post{
		ID:     uuid.NewString(),
		Author: authorID,
		Text:   text,
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to create post", err)
	}

	author.Posts, _ = model.AddID(author.Posts, post.ID)
	if err := common.WithRetry(func() error {
		return s.userRepo.Update(author)
	}, common.MirrorWriteRetries); err != nil {
		if rbErr := common.WithRetry(func() error {
			return s.postRepo.Delete(post.ID)
		}, common.MirrorWriteRetries); rbErr != nil {
			util.Logger.Error("游离帖子清理失败",
				zap.String("post", post.ID),
				zap.Error(rbErr))
		}
		return nil, errors.Wrap(errors.ErrConsistency, "Failed to create post", err)
	}

	return post, nil
}

// GetPost 获取单个帖子
func (s *PostService) GetPost(postID string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load post", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "Post not found")
	}
	return post, nil
}

// ListPosts 按创建时间倒序返回全部帖子
func (s *PostService) ListPosts() ([]*model.Post, error) {
	posts, err := s.postRepo.FindAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load posts", err)
	}
	return posts, nil
}

// UpdatePost 更新帖子正文，仅作者可操作，更新后标记 edited
func (s *PostService) UpdatePost(actorID, postID, text string) (*model.Post, error) {
	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}
	if post.Author != actorID {
		return nil, errors.New(errors.ErrUnauthorized, "You are not the author of this post")
	}
	post.Text = text
	post.Edited = true
	if err := s.postRepo.Update(post); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to update post", err)
	}
	return post, nil
}

// DeletePost 删除帖子，仅作者可操作
// 帖子的评论文档一并清理，作者文档摘除帖子引用
func (s *PostService) DeletePost(actorID, postID string) error {
	post, err := s.GetPost(postID)
	if err != nil {
		return err
	}
	if post.Author != actorID {
		return errors.New(errors.ErrUnauthorized, "You are not the author of this post")
	}

	author, err := s.userRepo.FindByID(post.Author)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if author != nil {
		author.Posts, _ = model.RemoveID(author.Posts, post.ID)
		if err := common.WithRetry(func() error {
			return s.userRepo.Update(author)
		}, common.MirrorWriteRetries); err != nil {
			return errors.Wrap(errors.ErrConsistency, "Failed to delete post", err)
		}
	}

	for _, commentID := range post.Comments {
		if err := s.commentRepo.Delete(commentID); err != nil {
			util.Logger.Warn("帖子评论清理失败",
				zap.String("post", post.ID),
				zap.String("comment", commentID),
				zap.Error(err))
		}
	}

	if err := common.WithRetry(func() error {
		return s.postRepo.Delete(post.ID)
	}, common.MirrorWriteRetries); err != nil {
		return errors.Wrap(errors.ErrConsistency, "Failed to delete post", err)
	}
	return nil
}

// ListLikes 返回点赞了帖子的用户
func (s *PostService) ListLikes(postID string) ([]*model.User, error) {
	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(post.Likes)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load users", err)
	}
	return users, nil
}

// ListSaves 返回收藏了帖子的用户
func (s *PostService) ListSaves(postID string) ([]*model.User, error) {
	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(post.Saves)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load users", err)
	}
	return users, nil
}

// ListComments 返回帖子的顶层评论
func (s *PostService) ListComments(postID string) ([]*model.Comment, error) {
	post, err := s.GetPost(postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.FindByIDs(post.Comments)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load comments", err)
	}
	return comments, nil
}
