package mysql

import (
	"database/sql"
	"time"

	"github.com/hcissey0/flux-backend/internal/model"
)

// messageRepository 实现了 MessageRepository 接口
type messageRepository struct {
	db *sql.DB
}

// NewMessageRepository 创建一个新的 messageRepository 实例
func NewMessageRepository(db *sql.DB) *messageRepository {
	return &messageRepository{db}
}

const messageColumns = `id, author, chat, text, edited, created_at, updated_at`

// Create 创建一条新消息
func (r *messageRepository) Create(message *model.Message) error {
	now := time.Now()
	message.CreatedAt = now
	message.UpdatedAt = now

	query := `INSERT INTO messages (` + messageColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query,
		message.ID, message.Author, message.Chat, message.Text, message.Edited,
		message.CreatedAt, message.UpdatedAt)
	return err
}

func scanMessage(scan func(dest ...interface{}) error) (*model.Message, error) {
	var message model.Message
	err := scan(
		&message.ID, &message.Author, &message.Chat, &message.Text, &message.Edited,
		&message.CreatedAt, &message.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// FindByID 通过ID查找消息，不存在时返回 (nil, nil)
func (r *messageRepository) FindByID(id string) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`
	message, err := scanMessage(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return message, err
}

// FindByIDs 批量解析ID列表，缺失的ID被跳过
func (r *messageRepository) FindByIDs(ids []string) ([]*model.Message, error) {
	if len(ids) == 0 {
		return []*model.Message{}, nil
	}
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.Query(query, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*model.Message, len(ids))
	for rows.Next() {
		message, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		byID[message.ID] = message
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	messages := make([]*model.Message, 0, len(byID))
	for _, id := range ids {
		if message, ok := byID[id]; ok {
			messages = append(messages, message)
		}
	}
	return messages, nil
}

// FindAll 返回全部消息
func (r *messageRepository) FindAll() ([]*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages ORDER BY created_at ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		message, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

// Update 整体写回消息文档
func (r *messageRepository) Update(message *model.Message) error {
	message.UpdatedAt = time.Now()

	query := `UPDATE messages SET author = ?, chat = ?, text = ?, edited = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query,
		message.Author, message.Chat, message.Text, message.Edited, message.UpdatedAt, message.ID)
	return err
}

// Delete 删除消息
func (r *messageRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM messages WHERE id = ?`, id)
	return err
}
