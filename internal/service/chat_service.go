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

// ChatService 管理会话的生命周期：创建、成员变更、自动删除
// 成员集合与各成员文档上的 chats 数组互为镜像，
// admins 与 participants 同时变空的瞬间会话被隐式删除
type ChatService struct {
	chatRepo    interfaces.ChatRepository
	userRepo    interfaces.UserRepository
	messageRepo interfaces.MessageRepository
	locks       *common.EdgeLocks
}

// NewChatService 创建一个新的 ChatService 实例
func NewChatService(
	chatRepo interfaces.ChatRepository,
	userRepo interfaces.UserRepository,
	messageRepo interfaces.MessageRepository,
	locks *common.EdgeLocks,
) *ChatService {
	return &ChatService{chatRepo, userRepo, messageRepo, locks}
}

// CreateChat 创建会话
// 群聊必须有名称；单聊必须指定至少一个非创建者的成员，
// 且单聊的管理员集合与成员集合保持恒等
func (s *ChatService) CreateChat(creatorID, name string, isGroup bool, participantIDs []string) (*model.Chat, error) {
	if isGroup && name == "" {
		return nil, errors.New(errors.ErrValidation, "Group chat requires a name")
	}
	if !isGroup {
		if len(participantIDs) == 0 {
			return nil, errors.New(errors.ErrValidation, "Chat requires at least one participant")
		}
		if model.ContainsID(participantIDs, creatorID) {
			return nil, errors.New(errors.ErrBadRequest, "You cannot create a chat with yourself")
		}
	}

	creator, err := s.userRepo.FindByID(creatorID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if creator == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "User not found")
	}

	resolved, err := s.userRepo.FindByIDs(participantIDs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load participants", err)
	}
	if len(resolved) == 0 {
		return nil, errors.New(errors.ErrResourceNotFound, "No participants found")
	}

	// 创建者不作为普通成员重复处理
	participants := make([]*model.User, 0, len(resolved))
	for _, p := range resolved {
		if p.ID != creator.ID {
			participants = append(participants, p)
		}
	}

	chat := &model.Chat{
		ID:           uuid.NewString(),
		IsGroup:      isGroup,
		Admins:       []string{creator.ID},
		Participants: []string{creator.ID},
		Messages:     []string{},
	}
	creator.Chats, _ = model.AddID(creator.Chats, chat.ID)

	for _, p := range participants {
		chat.Participants, _ = model.AddID(chat.Participants, p.ID)
		if !isGroup {
			chat.Admins, _ = model.AddID(chat.Admins, p.ID)
		}
		p.Chats, _ = model.AddID(p.Chats, chat.ID)
	}

	if isGroup {
		chat.Name = name
	} else {
		chat.Name = participants[0].DisplayName()
	}

	if err := s.chatRepo.Create(chat); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to create chat", err)
	}

	// 会话文档已落盘，逐个写回成员文档；任一失败则整体补偿
	written := make([]*model.User, 0, len(participants)+1)
	for _, u := range append([]*model.User{creator}, participants...) {
		if err := common.WithRetry(func() error {
			return s.userRepo.Update(u)
		}, common.MirrorWriteRetries); err != nil {
			s.rollbackChatCreation(chat, written)
			return nil, errors.Wrap(errors.ErrConsistency, "Failed to create chat", err)
		}
		written = append(written, u)
	}

	return chat, nil
}

// rollbackChatCreation 补偿创建失败：摘除已写入成员的会话引用并删除会话文档
func (s *ChatService) rollbackChatCreation(chat *model.Chat, written []*model.User) {
	for _, u := range written {
		u.Chats, _ = model.RemoveID(u.Chats, chat.ID)
		if err := common.WithRetry(func() error {
			return s.userRepo.Update(u)
		}, common.MirrorWriteRetries); err != nil {
			util.Logger.Error("会话创建回滚失败，成员文档残留会话引用",
				zap.String("chat", chat.ID),
				zap.String("user", u.ID),
				zap.Error(err))
		}
	}
	if err := common.WithRetry(func() error {
		return s.chatRepo.Delete(chat.ID)
	}, common.MirrorWriteRetries); err != nil {
		util.Logger.Error("会话创建回滚失败，会话文档残留",
			zap.String("chat", chat.ID),
			zap.Error(err))
	}
}

// ToggleParticipant 切换群聊成员
// 目标不在成员中则加入，已在成员中则移出（同时摘除其管理员身份）
// 切换后管理员与成员同时为空时，会话被删除而不是持久化
func (s *ChatService) ToggleParticipant(actorID, chatID, targetUsername string) (bool, *model.Chat, error) {
	target, err := s.userRepo.FindByUsername(targetUsername)
	if err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if target == nil {
		return false, nil, errors.New(errors.ErrResourceNotFound, "User not found")
	}

	unlock := s.locks.Lock(common.Key("chat-member", chatID, target.ID))
	defer unlock()

	// 加锁后重新读取双方文档，保证读到上一次切换写完后的状态
	chat, err := s.chatRepo.FindByID(chatID)
	if err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to load chat", err)
	}
	if chat == nil {
		return false, nil, errors.New(errors.ErrResourceNotFound, "Chat not found")
	}
	if !chat.IsGroup {
		return false, nil, errors.New(errors.ErrBadRequest, "Chat is not a group chat")
	}
	if !chat.IsAdmin(actorID) {
		return false, nil, errors.New(errors.ErrUnauthorized, "You are not an admin of this chat")
	}
	target, err = s.userRepo.FindByID(target.ID)
	if err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if target == nil {
		return false, nil, errors.New(errors.ErrResourceNotFound, "User not found")
	}

	added := !model.ContainsID(chat.Participants, target.ID)
	prevChats := model.CloneIDs(target.Chats)
	if added {
		chat.Participants, _ = model.AddID(chat.Participants, target.ID)
		target.Chats, _ = model.AddID(target.Chats, chat.ID)
	} else {
		chat.Participants, _ = model.RemoveID(chat.Participants, target.ID)
		chat.Admins, _ = model.RemoveID(chat.Admins, target.ID)
		target.Chats, _ = model.RemoveID(target.Chats, chat.ID)
	}

	// 成员与管理员同时清空：删除会话而不是写回
	if len(chat.Admins) == 0 && len(chat.Participants) == 0 {
		if err := common.WithRetry(func() error {
			return s.userRepo.Update(target)
		}, common.MirrorWriteRetries); err != nil {
			return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to update chat membership", err)
		}
		if err := common.WithRetry(func() error {
			return s.chatRepo.Delete(chat.ID)
		}, common.MirrorWriteRetries); err != nil {
			target.Chats = prevChats
			if rbErr := common.WithRetry(func() error {
				return s.userRepo.Update(target)
			}, common.MirrorWriteRetries); rbErr != nil {
				util.Logger.Error("会话删除回滚失败，镜像状态不一致",
					zap.String("chat", chat.ID),
					zap.String("user", target.ID),
					zap.Error(rbErr))
				return false, nil, errors.Wrap(errors.ErrConsistency, "Failed to update chat membership", rbErr)
			}
			return false, nil, errors.Wrap(errors.ErrConsistency, "Failed to update chat membership", err)
		}
		return added, chat, nil
	}

	if err := common.WithRetry(func() error {
		return s.chatRepo.Update(chat)
	}, common.MirrorWriteRetries); err != nil {
		return false, nil, errors.Wrap(errors.ErrDatabase, "Failed to update chat membership", err)
	}

	if err := common.WithRetry(func() error {
		return s.userRepo.Update(target)
	}, common.MirrorWriteRetries); err != nil {
		// 补偿：把会话文档恢复到切换前的成员状态
		if added {
			chat.Participants, _ = model.RemoveID(chat.Participants, target.ID)
		} else {
			chat.Participants, _ = model.AddID(chat.Participants, target.ID)
			chat.Admins, _ = model.AddID(chat.Admins, target.ID)
		}
		if rbErr := common.WithRetry(func() error {
			return s.chatRepo.Update(chat)
		}, common.MirrorWriteRetries); rbErr != nil {
			util.Logger.Error("成员切换回滚失败，镜像状态不一致",
				zap.String("chat", chat.ID),
				zap.String("user", target.ID),
				zap.Error(rbErr))
			return false, nil, errors.Wrap(errors.ErrConsistency, "Failed to update chat membership", rbErr)
		}
		return false, nil, errors.Wrap(errors.ErrConsistency, "Failed to update chat membership", err)
	}

	return added, chat, nil
}

// GetChat 获取会话详情，仅成员可见
func (s *ChatService) GetChat(actorID, chatID string) (*model.Chat, error) {
	chat, err := s.chatRepo.FindByID(chatID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load chat", err)
	}
	if chat == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "Chat not found")
	}
	if !chat.IsParticipant(actorID) {
		return nil, errors.New(errors.ErrUnauthorized, "You are not in this chat")
	}
	return chat, nil
}

// UpdateChat 重命名会话，仅管理员可操作
func (s *ChatService) UpdateChat(actorID, chatID, name string) (*model.Chat, error) {
	if name == "" {
		return nil, errors.New(errors.ErrValidation, "Chat name cannot be empty")
	}
	chat, err := s.chatRepo.FindByID(chatID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load chat", err)
	}
	if chat == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "Chat not found")
	}
	if !chat.IsAdmin(actorID) {
		return nil, errors.New(errors.ErrUnauthorized, "You are not an admin of this chat")
	}
	chat.Name = name
	if err := s.chatRepo.Update(chat); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to update chat", err)
	}
	return chat, nil
}

// DeleteChat 显式删除会话：摘除所有成员的会话引用并清理消息
func (s *ChatService) DeleteChat(actorID, chatID string) error {
	chat, err := s.chatRepo.FindByID(chatID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to load chat", err)
	}
	if chat == nil {
		return errors.New(errors.ErrResourceNotFound, "Chat not found")
	}
	if !chat.IsAdmin(actorID) {
		return errors.New(errors.ErrUnauthorized, "You are not an admin of this chat")
	}

	members, err := s.userRepo.FindByIDs(chat.Participants)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to load participants", err)
	}
	for _, u := range members {
		u.Chats, _ = model.RemoveID(u.Chats, chat.ID)
		if err := common.WithRetry(func() error {
			return s.userRepo.Update(u)
		}, common.MirrorWriteRetries); err != nil {
			return errors.Wrap(errors.ErrConsistency, "Failed to delete chat", err)
		}
	}
	for _, msgID := range chat.Messages {
		if err := s.messageRepo.Delete(msgID); err != nil {
			util.Logger.Warn("会话消息清理失败",
				zap.String("chat", chat.ID),
				zap.String("message", msgID),
				zap.Error(err))
		}
	}
	if err := common.WithRetry(func() error {
		return s.chatRepo.Delete(chat.ID)
	}, common.MirrorWriteRetries); err != nil {
		return errors.Wrap(errors.ErrConsistency, "Failed to delete chat", err)
	}
	return nil
}

// PostMessage 在会话中发送消息，仅成员可发送
// 消息文档先落盘，再把ID追加到会话并刷新最近消息
func (s *ChatService) PostMessage(actorID, chatID, text string) (*model.Message, error) {
	unlock := s.locks.Lock(common.KeyN("chat-messages", chatID))
	defer unlock()

	chat, err := s.chatRepo.FindByID(chatID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load chat", err)
	}
	if chat == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "Chat not found")
	}
	if !chat.IsParticipant(actorID) {
		return nil, errors.New(errors.ErrUnauthorized, "You are not in this chat")
	}

	message := &model.Message{
		ID:     uuid.NewString(),
		Author: actorID,
		Chat:   chatID,
		Text:   text,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to create message", err)
	}

	chat.Messages, _ = model.AddID(chat.Messages, message.ID)
	chat.LastMessage = text
	if err := common.WithRetry(func() error {
		return s.chatRepo.Update(chat)
	}, common.MirrorWriteRetries); err != nil {
		if rbErr := common.WithRetry(func() error {
			return s.messageRepo.Delete(message.ID)
		}, common.MirrorWriteRetries); rbErr != nil {
			util.Logger.Error("消息写入回滚失败，消息文档游离",
				zap.String("chat", chatID),
				zap.String("message", message.ID),
				zap.Error(rbErr))
			return nil, errors.Wrap(errors.ErrConsistency, "Failed to post message", rbErr)
		}
		return nil, errors.Wrap(errors.ErrConsistency, "Failed to post message", err)
	}

	return message, nil
}

// ListMessages 返回会话内的全部消息，仅成员可见
func (s *ChatService) ListMessages(actorID, chatID string) ([]*model.Message, error) {
	chat, err := s.GetChat(actorID, chatID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.FindByIDs(chat.Messages)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load messages", err)
	}
	return messages, nil
}

// ListParticipants 返回会话成员列表，仅成员可见
func (s *ChatService) ListParticipants(actorID, chatID string) ([]*model.User, error) {
	chat, err := s.GetChat(actorID, chatID)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(chat.Participants)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load participants", err)
	}
	return users, nil
}

// ListUserChats 返回用户加入的全部会话
func (s *ChatService) ListUserChats(userID string) ([]*model.Chat, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load user", err)
	}
	if user == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "User not found")
	}
	chats, err := s.chatRepo.FindByIDs(user.Chats)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load chats", err)
	}
	return chats, nil
}
