package mysql

import (
	"database/sql"
	"time"

	"github.com/hcissey0/flux-backend/internal/model"
)

// commentRepository 实现了 CommentRepository 接口
type commentRepository struct {
	db *sql.DB
}

// NewCommentRepository 创建一个新的 commentRepository 实例
func NewCommentRepository(db *sql.DB) *commentRepository {
	return &commentRepository{db}
}

const commentColumns = `id, author, post, text, edited, reply, likes, replies, created_at, updated_at`

// Create 创建一条新评论
func (r *commentRepository) Create(comment *model.Comment) error {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	likes, err := marshalIDs(comment.Likes)
	if err != nil {
		return err
	}
	replies, err := marshalIDs(comment.Replies)
	if err != nil {
		return err
	}

	query := `INSERT INTO comments (` + commentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		comment.ID, comment.Author, comment.Post, comment.Text, comment.Edited, comment.Reply,
		likes, replies, comment.CreatedAt, comment.UpdatedAt)
	return err
}

func scanComment(scan func(dest ...interface{}) error) (*model.Comment, error) {
	var comment model.Comment
	var likes, replies []byte
	err := scan(
		&comment.ID, &comment.Author, &comment.Post, &comment.Text, &comment.Edited, &comment.Reply,
		&likes, &replies, &comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalIDs(likes, &comment.Likes); err != nil {
		return nil, err
	}
	if err := unmarshalIDs(replies, &comment.Replies); err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindByID 通过ID查找评论，不存在时返回 (nil, nil)
func (r *commentRepository) FindByID(id string) (*model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = ?`
	comment, err := scanComment(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return comment, err
}

// FindByIDs 批量解析ID列表，缺失的ID被跳过
func (r *commentRepository) FindByIDs(ids []string) ([]*model.Comment, error) {
	if len(ids) == 0 {
		return []*model.Comment{}, nil
	}
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.Query(query, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*model.Comment, len(ids))
	for rows.Next() {
		comment, err := scanComment(rows.Scan)
		if err != nil {
			return nil, err
		}
		byID[comment.ID] = comment
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	comments := make([]*model.Comment, 0, len(byID))
	for _, id := range ids {
		if comment, ok := byID[id]; ok {
			comments = append(comments, comment)
		}
	}
	return comments, nil
}

// FindAll 返回全部评论
func (r *commentRepository) FindAll() ([]*model.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments ORDER BY created_at ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		comment, err := scanComment(rows.Scan)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// Update 整体写回评论文档
func (r *commentRepository) Update(comment *model.Comment) error {
	comment.UpdatedAt = time.Now()

	likes, err := marshalIDs(comment.Likes)
	if err != nil {
		return err
	}
	replies, err := marshalIDs(comment.Replies)
	if err != nil {
		return err
	}

	query := `UPDATE comments
	          SET author = ?, post = ?, text = ?, edited = ?, reply = ?, likes = ?, replies = ?, updated_at = ?
	          WHERE id = ?`
	_, err = r.db.Exec(query,
		comment.Author, comment.Post, comment.Text, comment.Edited, comment.Reply,
		likes, replies, comment.UpdatedAt, comment.ID)
	return err
}

// Delete 删除评论
func (r *commentRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	return err
}
