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

// ThreadService 管理评论与回复的树状结构
// 回复与父评论指向同一个帖子，但只挂在父评论的 replies 下，
// 不会出现在帖子的 comments 数组里
type ThreadService struct {
	commentRepo interfaces.CommentRepository
	postRepo    interfaces.PostRepository
	userRepo    interfaces.UserRepository
	locks       *common.EdgeLocks
}

// NewThreadService 创建一个新的 ThreadService 实例
func NewThreadService(
	commentRepo interfaces.CommentRepository,
	postRepo interfaces.PostRepository,
	userRepo interfaces.UserRepository,
	locks *common.EdgeLocks,
) *ThreadService {
	return &ThreadService{commentRepo, postRepo, userRepo, locks}
}

// CreateComment 在帖子下创建顶层评论
// 评论文档先落盘，再链入 post.Comments 与 author.Comments
func (s *ThreadService) CreateComment(authorID, postID, text string) (*model.Comment, error) {
	unlock := s.locks.Lock(common.Key("post-comment", authorID, postID))
	defer unlock()

	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load post", err)
	}
	if post == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "Post not found")
	}
	author, err := s.userRepo.FindByID(authorID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if author == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "User not found")
	}

	comment := &model.Comment{
		ID:     uuid.NewString(),
		Author: authorID,
		Post:   postID,
		Text:   text,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to create comment", err)
	}

	post.Comments, _ = model.AddID(post.Comments, comment.ID)
	if err := common.WithRetry(func() error {
		return s.postRepo.Update(post)
	}, common.MirrorWriteRetries); err != nil {
		s.discardComment(comment.ID)
		return nil, errors.Wrap(errors.ErrConsistency, "Failed to create comment", err)
	}

	author.Comments, _ = model.AddID(author.Comments, comment.ID)
	if err := common.WithRetry(func() error {
		return s.userRepo.Update(author)
	}, common.MirrorWriteRetries); err != nil {
		post.Comments, _ = model.RemoveID(post.Comments, comment.ID)
		if rbErr := common.WithRetry(func() error {
			return s.postRepo.Update(post)
		}, common.MirrorWriteRetries); rbErr != nil {
			util.Logger.Error("评论链接回滚失败，帖子残留评论引用",
				zap.String("post", postID),
				zap.String("comment", comment.ID),
				zap.Error(rbErr))
		}
		s.discardComment(comment.ID)
		return nil, errors.Wrap(errors.ErrConsistency, "Failed to create comment", err)
	}

	return comment, nil
}

// ReplyToComment 回复一条评论
// 回复继承父评论的帖子引用，只链入 parent.Replies 与 author.Comments
func (s *ThreadService) ReplyToComment(authorID, parentID, text string) (*model.Comment, error) {
	unlock := s.locks.Lock(common.Key("comment-reply", authorID, parentID))
	defer unlock()

	parent, err := s.commentRepo.FindByID(parentID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load comment", err)
	}
	if parent == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "Comment not found")
	}
	author, err := s.userRepo.FindByID(authorID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if author == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "User not found")
	}

	reply := &model.Comment{
		ID:     uuid.NewString(),
		Author: authorID,
		Post:   parent.Post,
		Text:   text,
		Reply:  true,
	}
	if err := s.commentRepo.Create(reply); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to create reply", err)
	}

	parent.Replies, _ = model.AddID(parent.Replies, reply.ID)
	if err := common.WithRetry(func() error {
		return s.commentRepo.Update(parent)
	}, common.MirrorWriteRetries); err != nil {
		s.discardComment(reply.ID)
		return nil, errors.Wrap(errors.ErrConsistency, "Failed to create reply", err)
	}

	author.Comments, _ = model.AddID(author.Comments, reply.ID)
	if err := common.WithRetry(func() error {
		return s.userRepo.Update(author)
	}, common.MirrorWriteRetries); err != nil {
		parent.Replies, _ = model.RemoveID(parent.Replies, reply.ID)
		if rbErr := common.WithRetry(func() error {
			return s.commentRepo.Update(parent)
		}, common.MirrorWriteRetries); rbErr != nil {
			util.Logger.Error("回复链接回滚失败，父评论残留回复引用",
				zap.String("parent", parentID),
				zap.String("reply", reply.ID),
				zap.Error(rbErr))
		}
		s.discardComment(reply.ID)
		return nil, errors.Wrap(errors.ErrConsistency, "Failed to create reply", err)
	}

	return reply, nil
}

// discardComment 清理链接失败后游离的评论文档
func (s *ThreadService) discardComment(commentID string) {
	if err := common.WithRetry(func() error {
		return s.commentRepo.Delete(commentID)
	}, common.MirrorWriteRetries); err != nil {
		util.Logger.Error("游离评论清理失败",
			zap.String("comment", commentID),
			zap.Error(err))
	}
}

// GetComment 获取单条评论
func (s *ThreadService) GetComment(commentID string) (*model.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load comment", err)
	}
	if comment == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "Comment not found")
	}
	return comment, nil
}

// ListComments 返回全部评论
func (s *ThreadService) ListComments() ([]*model.Comment, error) {
	comments, err := s.commentRepo.FindAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load comments", err)
	}
	return comments, nil
}

// ListReplies 返回某条评论的全部回复
func (s *ThreadService) ListReplies(commentID string) ([]*model.Comment, error) {
	parent, err := s.GetComment(commentID)
	if err != nil {
		return nil, err
	}
	replies, err := s.commentRepo.FindByIDs(parent.Replies)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load replies", err)
	}
	return replies, nil
}

// ListLikes 返回点赞了某条评论的用户
func (s *ThreadService) ListLikes(commentID string) ([]*model.User, error) {
	comment, err := s.GetComment(commentID)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(comment.Likes)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load users", err)
	}
	return users, nil
}

// UpdateComment 更新评论正文，仅作者可操作，更新后标记 edited
func (s *ThreadService) UpdateComment(actorID, commentID, text string) (*model.Comment, error) {
	comment, err := s.GetComment(commentID)
	if err != nil {
		return nil, err
	}
	if comment.Author != actorID {
		return nil, errors.New(errors.ErrUnauthorized, "You are not the author of this comment")
	}
	comment.Text = text
	comment.Edited = true
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to update comment", err)
	}
	return comment, nil
}

// DeleteComment 删除评论，仅作者可操作
// 顶层评论同时从帖子上摘除；回复的父引用由读取端按缺失跳过
func (s *ThreadService) DeleteComment(actorID, commentID string) error {
	comment, err := s.GetComment(commentID)
	if err != nil {
		return err
	}
	if comment.Author != actorID {
		return errors.New(errors.ErrUnauthorized, "You are not the author of this comment")
	}

	if !comment.Reply {
		post, err := s.postRepo.FindByID(comment.Post)
		if err != nil {
			return errors.Wrap(errors.ErrDatabase, "Failed to load post", err)
		}
		if post != nil {
			post.Comments, _ = model.RemoveID(post.Comments, comment.ID)
			if err := common.WithRetry(func() error {
				return s.postRepo.Update(post)
			}, common.MirrorWriteRetries); err != nil {
				return errors.Wrap(errors.ErrConsistency, "Failed to delete comment", err)
			}
		}
	}

	author, err := s.userRepo.FindByID(comment.Author)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if author != nil {
		author.Comments, _ = model.RemoveID(author.Comments, comment.ID)
		if err := common.WithRetry(func() error {
			return s.userRepo.Update(author)
		}, common.MirrorWriteRetries); err != nil {
			return errors.Wrap(errors.ErrConsistency, "Failed to delete comment", err)
		}
	}

	if err := common.WithRetry(func() error {
		return s.commentRepo.Delete(comment.ID)
	}, common.MirrorWriteRetries); err != nil {
		return errors.Wrap(errors.ErrConsistency, "Failed to delete comment", err)
	}
	return nil
}
