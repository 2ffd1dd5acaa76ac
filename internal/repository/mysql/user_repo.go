package mysql

import (
	"database/sql"
	"time"

	"github.com/hcissey0/flux-backend/internal/model"
)

// userRepository 实现了 UserRepository 接口
type userRepository struct {
	db *sql.DB
}

// NewUserRepository 创建一个新的 userRepository 实例
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db}
}

const userColumns = `id, first_name, last_name, email, username, password_hash,
	posts, comments, saved_posts, chats, followers, following, created_at, updated_at`

// Create 创建一个新用户
func (r *userRepository) Create(user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	posts, err := marshalIDs(user.Posts)
	if err != nil {
		return err
	}
	comments, err := marshalIDs(user.Comments)
	if err != nil {
		return err
	}
	saved, err := marshalIDs(user.SavedPosts)
	if err != nil {
		return err
	}
	chats, err := marshalIDs(user.Chats)
	if err != nil {
		return err
	}
	followers, err := marshalIDs(user.Followers)
	if err != nil {
		return err
	}
	following, err := marshalIDs(user.Following)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (` + userColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.Exec(query,
		user.ID, user.FirstName, user.LastName, user.Email, user.Username, user.PasswordHash,
		posts, comments, saved, chats, followers, following, user.CreatedAt, user.UpdatedAt)
	return err
}

func scanUser(scan func(dest ...interface{}) error) (*model.User, error) {
	var user model.User
	var posts, comments, saved, chats, followers, following []byte
	err := scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Username, &user.PasswordHash,
		&posts, &comments, &saved, &chats, &followers, &following, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalIDs(posts, &user.Posts); err != nil {
		return nil, err
	}
	if err := unmarshalIDs(comments, &user.Comments); err != nil {
		return nil, err
	}
	if err := unmarshalIDs(saved, &user.SavedPosts); err != nil {
		return nil, err
	}
	if err := unmarshalIDs(chats, &user.Chats); err != nil {
		return nil, err
	}
	if err := unmarshalIDs(followers, &user.Followers); err != nil {
		return nil, err
	}
	if err := unmarshalIDs(following, &user.Following); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID 通过ID查找用户，不存在时返回 (nil, nil)
func (r *userRepository) FindByID(id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// FindByUsername 通过用户名查找用户
func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	user, err := scanUser(r.db.QueryRow(query, username).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// FindByIDs 批量解析ID列表，缺失的ID被跳过
func (r *userRepository) FindByIDs(ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.Query(query, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// 保持输入ID的顺序返回
	byID := make(map[string]*model.User, len(ids))
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		byID[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	users := make([]*model.User, 0, len(byID))
	for _, id := range ids {
		if user, ok := byID[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

// FindAll 返回全部用户
func (r *userRepository) FindAll() ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Update 整体写回用户文档
func (r *userRepository) Update(user *model.User) error {
	user.UpdatedAt = time.Now()

	posts, err := marshalIDs(user.Posts)
	if err != nil {
		return err
	}
	comments, err := marshalIDs(user.Comments)
	if err != nil {
		return err
	}
	saved, err := marshalIDs(user.SavedPosts)
	if err != nil {
		return err
	}
	chats, err := marshalIDs(user.Chats)
	if err != nil {
		return err
	}
	followers, err := marshalIDs(user.Followers)
	if err != nil {
		return err
	}
	following, err := marshalIDs(user.Following)
	if err != nil {
		return err
	}

	query := `UPDATE users
	          SET first_name = ?, last_name = ?, email = ?, username = ?, password_hash = ?,
	              posts = ?, comments = ?, saved_posts = ?, chats = ?, followers = ?, following = ?, updated_at = ?
	          WHERE id = ?`
	_, err = r.db.Exec(query,
		user.FirstName, user.LastName, user.Email, user.Username, user.PasswordHash,
		posts, comments, saved, chats, followers, following, user.UpdatedAt, user.ID)
	return err
}

// Delete 删除用户
func (r *userRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	return err
}
