package service

import (
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/model"
	"github.com/hcissey0/flux-backend/internal/repository/interfaces"
	"golang.org/x/sync/errgroup"
)

// OverviewService 并发拉取全部集合的快照，仅供调试模式下的开发端点使用
type OverviewService struct {
	userRepo    interfaces.UserRepository
	postRepo    interfaces.PostRepository
	commentRepo interfaces.CommentRepository
	chatRepo    interfaces.ChatRepository
	messageRepo interfaces.MessageRepository
}

// NewOverviewService 创建一个新的 OverviewService 实例
func NewOverviewService(
	userRepo interfaces.UserRepository,
	postRepo interfaces.PostRepository,
	commentRepo interfaces.CommentRepository,
	chatRepo interfaces.ChatRepository,
	messageRepo interfaces.MessageRepository,
) *OverviewService {
	return &OverviewService{userRepo, postRepo, commentRepo, chatRepo, messageRepo}
}

// Snapshot 定义五个集合的完整快照
type Snapshot struct {
	Users    []*model.User    `json:"users"`
	Posts    []*model.Post    `json:"posts"`
	Comments []*model.Comment `json:"comments"`
	Chats    []*model.Chat    `json:"chats"`
	Messages []*model.Message `json:"messages"`
}

// Collect 并发读取五个集合，任一读取失败则整体失败
func (s *OverviewService) Collect() (*Snapshot, error) {
	var snapshot Snapshot
	var g errgroup.Group

	g.Go(func() error {
		var err error
		snapshot.Users, err = s.userRepo.FindAll()
		return err
	})
	g.Go(func() error {
		var err error
		snapshot.Posts, err = s.postRepo.FindAll()
		return err
	})
	g.Go(func() error {
		var err error
		snapshot.Comments, err = s.commentRepo.FindAll()
		return err
	})
	g.Go(func() error {
		var err error
		snapshot.Chats, err = s.chatRepo.FindAll()
		return err
	})
	g.Go(func() error {
		var err error
		snapshot.Messages, err = s.messageRepo.FindAll()
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to collect snapshot", err)
	}
	return &snapshot, nil
}
