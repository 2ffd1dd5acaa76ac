package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/hcissey0/flux-backend/config"
	"github.com/hcissey0/flux-backend/internal/common"
	"github.com/hcissey0/flux-backend/internal/model"
	"github.com/hcissey0/flux-backend/internal/service"
	"github.com/hcissey0/flux-backend/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	util.InitLogger("error")
	config.AppConfig.JWTSecret = "test-secret"
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("notblank", util.ValidateNotBlank)
	}
	os.Exit(m.Run())
}

// stubUserRepo 是测试用的最小用户存储
type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*model.User)}
}

func copyUser(u *model.User) *model.User {
	c := *u
	c.Followers = model.CloneIDs(u.Followers)
	c.Following = model.CloneIDs(u.Following)
	return &c
}

func (r *stubUserRepo) Create(u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = copyUser(u)
	return nil
}

func (r *stubUserRepo) FindByID(id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *stubUserRepo) FindByUsername(username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *stubUserRepo) FindByIDs(ids []string) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) FindAll() ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, copyUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = copyUser(u)
	return nil
}

func (r *stubUserRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type stubPostRepo struct{}

func (stubPostRepo) Create(*model.Post) error                   { return nil }
func (stubPostRepo) FindByID(string) (*model.Post, error)       { return nil, nil }
func (stubPostRepo) FindByIDs([]string) ([]*model.Post, error)  { return nil, nil }
func (stubPostRepo) FindAll() ([]*model.Post, error)            { return nil, nil }
func (stubPostRepo) Update(*model.Post) error                   { return nil }
func (stubPostRepo) Delete(string) error                        { return nil }

type stubCommentRepo struct{}

func (stubCommentRepo) Create(*model.Comment) error                  { return nil }
func (stubCommentRepo) FindByID(string) (*model.Comment, error)      { return nil, nil }
func (stubCommentRepo) FindByIDs([]string) ([]*model.Comment, error) { return nil, nil }
func (stubCommentRepo) FindAll() ([]*model.Comment, error)           { return nil, nil }
func (stubCommentRepo) Update(*model.Comment) error                  { return nil }
func (stubCommentRepo) Delete(string) error                          { return nil }

type stubChatRepo struct{}

func (stubChatRepo) Create(*model.Chat) error                  { return nil }
func (stubChatRepo) FindByID(string) (*model.Chat, error)      { return nil, nil }
func (stubChatRepo) FindByIDs([]string) ([]*model.Chat, error) { return nil, nil }
func (stubChatRepo) FindAll() ([]*model.Chat, error)           { return nil, nil }
func (stubChatRepo) Update(*model.Chat) error                  { return nil }
func (stubChatRepo) Delete(string) error                       { return nil }

type stubBlacklist struct{}

func (stubBlacklist) Add(string, time.Duration) error  { return nil }
func (stubBlacklist) Contains(string) (bool, error)    { return false, nil }

func newTestRouter() (*gin.Engine, *stubUserRepo) {
	userRepo := newStubUserRepo()
	userService := service.NewUserService(userRepo, stubPostRepo{}, stubChatRepo{}, stubBlacklist{})
	relationshipService := service.NewRelationshipService(userRepo, stubPostRepo{}, stubCommentRepo{}, common.NewEdgeLocks())

	authHandler := NewAuthHandler(userService)
	userHandler := NewUserHandler(userService, relationshipService)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/users", userHandler.CreateUser)
	api.GET("/auth/connect", authHandler.Connect)

	// 测试中用固定身份替代令牌解析
	asActor := func(actorID string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set("user_id", actorID)
			c.Next()
		}
	}
	api.POST("/users/:id/follow", asActor("actor"), userHandler.ToggleFollow)

	return r, userRepo
}

func performJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateUserEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	w := performJSON(r, http.MethodPost, "/api/users", gin.H{
		"username": "alice",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		User model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.User.Username)
	assert.NotEmpty(t, resp.User.ID)
	// 密码哈希绝不出现在响应中
	assert.NotContains(t, w.Body.String(), "password")
}

func TestCreateUserValidation(t *testing.T) {
	r, _ := newTestRouter()

	w := performJSON(r, http.MethodPost, "/api/users", gin.H{
		"username": "   ",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = performJSON(r, http.MethodPost, "/api/users", gin.H{
		"username": "alice",
		"password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestConnectEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	w := performJSON(r, http.MethodPost, "/api/users", gin.H{
		"username": "alice",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/connect", nil)
	req.SetBasicAuth("alice", "correct-horse")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestConnectBadCredentials(t *testing.T) {
	r, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/connect", nil)
	req.SetBasicAuth("alice", "nope")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusUnauthorized, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Message)
}

func TestToggleFollowEnvelope(t *testing.T) {
	r, repo := newTestRouter()
	repo.users["actor"] = &model.User{ID: "actor", Username: "alice"}
	repo.users["target"] = &model.User{ID: "target", Username: "bob"}

	w := performJSON(r, http.MethodPost, "/api/users/target/follow", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Followed bool       `json:"followed"`
		User     model.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Followed)
	assert.Equal(t, "target", resp.User.ID)
	assert.Contains(t, resp.User.Followers, "actor")

	w = performJSON(r, http.MethodPost, "/api/users/target/follow", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Followed)
}

func TestSelfFollowRejected(t *testing.T) {
	r, repo := newTestRouter()
	repo.users["actor"] = &model.User{ID: "actor", Username: "alice"}

	w := performJSON(r, http.MethodPost, "/api/users/actor/follow", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
