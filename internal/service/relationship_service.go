package service

import (
	"github.com/hcissey0/flux-backend/internal/common"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/model"
	"github.com/hcissey0/flux-backend/internal/repository/interfaces"
	"github.com/hcissey0/flux-backend/internal/util"
	"go.uber.org/zap"
)

// RelationshipService 维护文档间镜像边的一致性
// 所有切换操作先按逻辑边加锁，再按"先写主文档、后写镜像文档"的顺序落盘，
// 镜像写入失败时回滚主文档，绝不在镜像写入悬空时报告成功
type RelationshipService struct {
	userRepo    interfaces.UserRepository
	postRepo    interfaces.PostRepository
	commentRepo interfaces.CommentRepository
	locks       *common.EdgeLocks
}

// NewRelationshipService 创建一个新的 RelationshipService 实例
func NewRelationshipService(
	userRepo interfaces.UserRepository,
	postRepo interfaces.PostRepository,
	commentRepo interfaces.CommentRepository,
	locks *common.EdgeLocks,
) *RelationshipService {
	return &RelationshipService{userRepo, postRepo, commentRepo, locks}
}

// toggleEdge 是通用的双向边切换原语
// 主集合中不存在该ID时同时插入两侧并返回 true，存在时同时删除并返回 false
// 纯函数：只计算新状态，写集由调用方执行
func toggleEdge(ownerSet []string, ownerID string, mirrorSet []string, mirrorID string) (newOwner, newMirror []string, added bool) {
	if model.ContainsID(ownerSet, ownerID) {
		newOwner, _ = model.RemoveID(ownerSet, ownerID)
		newMirror, _ = model.RemoveID(mirrorSet, mirrorID)
		return newOwner, newMirror, false
	}
	newOwner, _ = model.AddID(ownerSet, ownerID)
	newMirror, _ = model.AddID(mirrorSet, mirrorID)
	return newOwner, newMirror, true
}

// ToggleFollow 切换关注关系
// target.Followers 与 follower.Following 构成一条镜像边
func (s *RelationshipService) ToggleFollow(followerID, targetID string) (bool, *model.User, error) {
	if followerID == targetID {
		return false, nil, errors.New(errors.ErrBadRequest, "You cannot follow yourself")
	}

	unlock := s.locks.Lock(common.Key("follow", followerID, targetID))
	defer unlock()

	follower, err := s.userRepo.FindByID(followerID)
	if err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if follower == nil {
		return false, nil, errors.New(errors.ErrResourceNotFound, "User not found")
	}
	target, err := s.userRepo.FindByID(targetID)
	if err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if target == nil {
		return false, nil, errors.New(errors.ErrResourceNotFound, "User not found")
	}

	prevFollowing := model.CloneIDs(follower.Following)
	var followed bool
	follower.Following, target.Followers, followed = toggleEdge(follower.Following, target.ID, target.Followers, follower.ID)

	// 先写主文档
	if err := common.WithRetry(func() error {
		return s.userRepo.Update(follower)
	}, common.MirrorWriteRetries); err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to update follow state", err)
	}

	// 再写镜像文档，失败则补偿回滚主文档
	if err := common.WithRetry(func() error {
		return s.userRepo.Update(target)
	}, common.MirrorWriteRetries); err != nil {
		follower.Following = prevFollowing
		if rbErr := common.WithRetry(func() error {
			return s.userRepo.Update(follower)
		}, common.MirrorWriteRetries); rbErr != nil {
			util.Logger.Error("关注边回滚失败，镜像状态不一致",
				zap.String("follower", followerID),
				zap.String("target", targetID),
				zap.Error(rbErr))
			return false, nil, errors.Wrap(errors.ErrConsistency, "Failed to complete follow operation", rbErr)
		}
		return false, nil, errors.Wrap(errors.ErrConsistency, "Failed to complete follow operation", err)
	}

	return followed, target, nil
}

// TogglePostLike 切换帖子点赞
// 点赞是单向边：只记录在帖子文档上，用户文档不保存反向引用
func (s *RelationshipService) TogglePostLike(userID, postID string) (bool, *model.Post, error) {
	unlock := s.locks.Lock(common.Key("post-like", userID, postID))
	defer unlock()

	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to load post", err)
	}
	if post == nil {
		return false, nil, errors.New(errors.ErrResourceNotFound, "Post not found")
	}

	var liked bool
	if model.ContainsID(post.Likes, userID) {
		post.Likes, _ = model.RemoveID(post.Likes, userID)
	} else {
		post.Likes, liked = model.AddID(post.Likes, userID)
	}

	if err := common.WithRetry(func() error {
		return s.postRepo.Update(post)
	}, common.MirrorWriteRetries); err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to update like state", err)
	}

	return liked, post, nil
}

// ToggleCommentLike 切换评论点赞，语义与帖子点赞一致
func (s *RelationshipService) ToggleCommentLike(userID, commentID string) (bool, *model.Comment, error) {
	unlock := s.locks.Lock(common.Key("comment-like", userID, commentID))
	defer unlock()

	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to load comment", err)
	}
	if comment == nil {
		return false, nil, errors.New(errors.ErrResourceNotFound, "Comment not found")
	}

	var liked bool
	if model.ContainsID(comment.Likes, userID) {
		comment.Likes, _ = model.RemoveID(comment.Likes, userID)
	} else {
		comment.Likes, liked = model.AddID(comment.Likes, userID)
	}

	if err := common.WithRetry(func() error {
		return s.commentRepo.Update(comment)
	}, common.MirrorWriteRetries); err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to update like state", err)
	}

	return liked, comment, nil
}

// ToggleSave 切换帖子收藏
// user.SavedPosts 与 post.Saves 构成一条镜像边
func (s *RelationshipService) ToggleSave(userID, postID string) (bool, *model.Post, error) {
	unlock := s.locks.Lock(common.Key("save", userID, postID))
	defer unlock()

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if user == nil {
		return false, nil, errors.New(errors.ErrResourceNotFound, "User not found")
	}
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to load post", err)
	}
	if post == nil {
		return false, nil, errors.New(errors.ErrResourceNotFound, "Post not found")
	}

	prevSaved := model.CloneIDs(user.SavedPosts)
	var saved bool
	user.SavedPosts, post.Saves, saved = toggleEdge(user.SavedPosts, post.ID, post.Saves, user.ID)

	if err := common.WithRetry(func() error {
		return s.userRepo.Update(user)
	}, common.MirrorWriteRetries); err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to update save state", err)
	}

	if err := common.WithRetry(func() error {
		return s.postRepo.Update(post)
	}, common.MirrorWriteRetries); err != nil {
		user.SavedPosts = prevSaved
		if rbErr := common.WithRetry(func() error {
			return s.userRepo.Update(user)
		}, common.MirrorWriteRetries); rbErr != nil {
			util.Logger.Error("收藏边回滚失败，镜像状态不一致",
				zap.String("user", userID),
				zap.String("post", postID),
				zap.Error(rbErr))
			return false, nil, errors.Wrap(errors.ErrConsistency, "Failed to complete save operation", rbErr)
		}
		return false, nil, errors.Wrap(errors.ErrConsistency, "Failed to complete save operation", err)
	}

	return saved, post, nil
}
