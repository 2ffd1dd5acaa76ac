package mysql

import (
	"database/sql"
	"time"

	"github.com/hcissey0/flux-backend/internal/model"
)

// postRepository 实现了 PostRepository 接口
type postRepository struct {
	db *sql.DB
}

// NewPostRepository 创建一个新的 postRepository 实例
func NewPostRepository(db *sql.DB) *postRepository {
	return &postRepository{db}
}

const postColumns = `id, author, text, edited, comments, likes, saves, created_at, updated_at`

// Create 创建一个新帖子
func (r *postRepository) Create(post *model.Post) error {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	comments, err := marshalIDs(post.Comments)
	if err != nil {
		return err
	}
	likes, err := marshalIDs(post.Likes)
	if err != nil {
		return err
	}
	saves, err := marshalIDs(post.Saves)
	if err != nil {
		return err
	}

	query := `INSERT INTO posts (` + postColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		post.ID, post.Author, post.Text, post.Edited,
		comments, likes, saves, post.CreatedAt, post.UpdatedAt)
	return err
}

func scanPost(scan func(dest ...interface{}) error) (*model.Post, error) {
	var post model.Post
	var comments, likes, saves []byte
	err := scan(
		&post.ID, &post.Author, &post.Text, &post.Edited,
		&comments, &likes, &saves, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalIDs(comments, &post.Comments); err != nil {
		return nil, err
	}
	if err := unmarshalIDs(likes, &post.Likes); err != nil {
		return nil, err
	}
	if err := unmarshalIDs(saves, &post.Saves); err != nil {
		return nil, err
	}
	return &post, nil
}

// FindByID 通过ID查找帖子，不存在时返回 (nil, nil)
func (r *postRepository) FindByID(id string) (*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ?`
	post, err := scanPost(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return post, err
}

// FindByIDs 批量解析ID列表，缺失的ID被跳过
func (r *postRepository) FindByIDs(ids []string) ([]*model.Post, error) {
	if len(ids) == 0 {
		return []*model.Post{}, nil
	}
	query := `SELECT ` + postColumns + ` FROM posts WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.Query(query, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*model.Post, len(ids))
	for rows.Next() {
		post, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		byID[post.ID] = post
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	posts := make([]*model.Post, 0, len(byID))
	for _, id := range ids {
		if post, ok := byID[id]; ok {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

// FindAll 按创建时间倒序返回全部帖子
func (r *postRepository) FindAll() ([]*model.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		post, err := scanPost(rows.Scan)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// Update 整体写回帖子文档
func (r *postRepository) Update(post *model.Post) error {
	post.UpdatedAt = time.Now()

	comments, err := marshalIDs(post.Comments)
	if err != nil {
		return err
	}
	likes, err := marshalIDs(post.Likes)
	if err != nil {
		return err
	}
	saves, err := marshalIDs(post.Saves)
	if err != nil {
		return err
	}

	query := `UPDATE posts
	          SET author = ?, text = ?, edited = ?, comments = ?, likes = ?, saves = ?, updated_at = ?
	          WHERE id = ?`
	_, err = r.db.Exec(query,
		post.Author, post.Text, post.Edited, comments, likes, saves, post.UpdatedAt, post.ID)
	return err
}

// Delete 删除帖子
func (r *postRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	return err
}
