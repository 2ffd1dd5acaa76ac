package service

import (
	"github.com/hcissey0/flux-backend/internal/common"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/model"
	"github.com/hcissey0/flux-backend/internal/repository/interfaces"
)

// MessageService 管理消息文档
// 消息的创建走 ChatService.PostMessage，这里只负责读取、编辑和删除
type MessageService struct {
	messageRepo interfaces.MessageRepository
	chatRepo    interfaces.ChatRepository
	locks       *common.EdgeLocks
}

// NewMessageService 创建一个新的 MessageService 实例
func NewMessageService(
	messageRepo interfaces.MessageRepository,
	chatRepo interfaces.ChatRepository,
	locks *common.EdgeLocks,
) *MessageService {
	return &MessageService{messageRepo, chatRepo, locks}
}

// GetMessage 获取单条消息，仅所在会话的成员可见
func (s *MessageService) GetMessage(actorID, messageID string) (*model.Message, error) {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load message", err)
	}
	if message == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "Message not found")
	}

	chat, err := s.chatRepo.FindByID(message.Chat)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load chat", err)
	}
	if chat != nil && !chat.IsParticipant(actorID) {
		return nil, errors.New(errors.ErrUnauthorized, "You are not in this chat")
	}
	return message, nil
}

// ListMessages 返回全部消息
func (s *MessageService) ListMessages() ([]*model.Message, error) {
	messages, err := s.messageRepo.FindAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load messages", err)
	}
	return messages, nil
}

// UpdateMessage 更新消息正文，仅作者可操作，更新后标记 edited
func (s *MessageService) UpdateMessage(actorID, messageID, text string) (*model.Message, error) {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to load message", err)
	}
	if message == nil {
		return nil, errors.New(errors.ErrResourceNotFound, "Message not found")
	}
	if message.Author != actorID {
		return nil, errors.New(errors.ErrUnauthorized, "You are not the author of this message")
	}

	message.Text = text
	message.Edited = true
	if err := s.messageRepo.Update(message); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, "Failed to update message", err)
	}
	return message, nil
}

// DeleteMessage 删除消息，仅作者可操作
// 消息ID同时从会话的 messages 数组中摘除
func (s *MessageService) DeleteMessage(actorID, messageID string) error {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to load message", err)
	}
	if message == nil {
		return errors.New(errors.ErrResourceNotFound, "Message not found")
	}
	if message.Author != actorID {
		return errors.New(errors.ErrUnauthorized, "You are not the author of this message")
	}

	unlock := s.locks.Lock(common.KeyN("chat-messages", message.Chat))
	defer unlock()

	chat, err := s.chatRepo.FindByID(message.Chat)
	if err != nil {
		return errors.Wrap(errors.ErrDatabase, "Failed to load chat", err)
	}
	if chat != nil {
		chat.Messages, _ = model.RemoveID(chat.Messages, message.ID)
		if err := common.WithRetry(func() error {
			return s.chatRepo.Update(chat)
		}, common.MirrorWriteRetries); err != nil {
			return errors.Wrap(errors.ErrConsistency, "Failed to delete message", err)
		}
	}

	if err := common.WithRetry(func() error {
		return s.messageRepo.Delete(message.ID)
	}, common.MirrorWriteRetries); err != nil {
		return errors.Wrap(errors.ErrConsistency, "Failed to delete message", err)
	}
	return nil
}
