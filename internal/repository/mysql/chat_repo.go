package mysql

import (
	"database/sql"
	"time"

	"github.com/hcissey0/flux-backend/internal/model"
)

// chatRepository 实现了 ChatRepository 接口
type chatRepository struct {
	db *sql.DB
}

// NewChatRepository 创建一个新的 chatRepository 实例
func NewChatRepository(db *sql.DB) *chatRepository {
	return &chatRepository{db}
}

const chatColumns = `id, name, is_group, admins, participants, messages, last_message, created_at, updated_at`

// Create 创建一个新会话
func (r *chatRepository) Create(chat *model.Chat) error {
	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	admins, err := marshalIDs(chat.Admins)
	if err != nil {
		return err
	}
	participants, err := marshalIDs(chat.Participants)
	if err != nil {
		return err
	}
	messages, err := marshalIDs(chat.Messages)
	if err != nil {
		return err
	}

	query := `INSERT INTO chats (` + chatColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		chat.ID, chat.Name, chat.IsGroup, admins, participants, messages,
		chat.LastMessage, chat.CreatedAt, chat.UpdatedAt)
	return err
}

func scanChat(scan func(dest ...interface{}) error) (*model.Chat, error) {
	var chat model.Chat
	var admins, participants, messages []byte
	err := scan(
		&chat.ID, &chat.Name, &chat.IsGroup, &admins, &participants, &messages,
		&chat.LastMessage, &chat.CreatedAt, &chat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalIDs(admins, &chat.Admins); err != nil {
		return nil, err
	}
	if err := unmarshalIDs(participants, &chat.Participants); err != nil {
		return nil, err
	}
	if err := unmarshalIDs(messages, &chat.Messages); err != nil {
		return nil, err
	}
	return &chat, nil
}

// FindByID 通过ID查找会话，不存在时返回 (nil, nil)
func (r *chatRepository) FindByID(id string) (*model.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats WHERE id = ?`
	chat, err := scanChat(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return chat, err
}

// FindByIDs 批量解析ID列表，缺失的ID被跳过
func (r *chatRepository) FindByIDs(ids []string) ([]*model.Chat, error) {
	if len(ids) == 0 {
		return []*model.Chat{}, nil
	}
	query := `SELECT ` + chatColumns + ` FROM chats WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.Query(query, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*model.Chat, len(ids))
	for rows.Next() {
		chat, err := scanChat(rows.Scan)
		if err != nil {
			return nil, err
		}
		byID[chat.ID] = chat
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	chats := make([]*model.Chat, 0, len(byID))
	for _, id := range ids {
		if chat, ok := byID[id]; ok {
			chats = append(chats, chat)
		}
	}
	return chats, nil
}

// FindAll 返回全部会话
func (r *chatRepository) FindAll() ([]*model.Chat, error) {
	query := `SELECT ` + chatColumns + ` FROM chats ORDER BY updated_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*model.Chat
	for rows.Next() {
		chat, err := scanChat(rows.Scan)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// Update 整体写回会话文档
func (r *chatRepository) Update(chat *model.Chat) error {
	chat.UpdatedAt = time.Now()

	admins, err := marshalIDs(chat.Admins)
	if err != nil {
		return err
	}
	participants, err := marshalIDs(chat.Participants)
	if err != nil {
		return err
	}
	messages, err := marshalIDs(chat.Messages)
	if err != nil {
		return err
	}

	query := `UPDATE chats
	          SET name = ?, is_group = ?, admins = ?, participants = ?, messages = ?, last_message = ?, updated_at = ?
	          WHERE id = ?`
	_, err = r.db.Exec(query,
		chat.Name, chat.IsGroup, admins, participants, messages, chat.LastMessage,
		chat.UpdatedAt, chat.ID)
	return err
}

// Delete 删除会话
func (r *chatRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM chats WHERE id = ?`, id)
	return err
}
