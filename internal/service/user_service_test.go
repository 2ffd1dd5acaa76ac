package service

import (
	"testing"

	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture() (*memStore, *UserService) {
	store := newMemStore()
	svc := NewUserService(
		&fakeUserRepo{store},
		&fakePostRepo{store},
		&fakeChatRepo{store},
		newFakeBlacklist(),
	)
	return store, svc
}

func TestRegister(t *testing.T) {
	_, svc := newUserFixture()

	user, err := svc.Register(RegisterInput{
		FirstName: "Alice",
		Username:  "alice",
		Password:  "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	// 密码只保存哈希
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	_, svc := newUserFixture()

	_, err := svc.Register(RegisterInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Username: "alice", Password: "other-password"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrResourceExists))
}

func TestConnect(t *testing.T) {
	_, svc := newUserFixture()

	registered, err := svc.Register(RegisterInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	token, user, err := svc.Connect("alice", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, registered.ID, user.ID)
}

func TestConnectWrongPassword(t *testing.T) {
	_, svc := newUserFixture()

	_, err := svc.Register(RegisterInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)

	_, _, err = svc.Connect("alice", "wrong")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidCredentials))

	_, _, err = svc.Connect("nobody", "correct-horse")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidCredentials))
}

func TestLogoutRevokesToken(t *testing.T) {
	_, svc := newUserFixture()

	_, err := svc.Register(RegisterInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	token, _, err := svc.Connect("alice", "correct-horse")
	require.NoError(t, err)

	revoked, err := svc.IsTokenRevoked(token)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, svc.Logout(token))

	revoked, err = svc.IsTokenRevoked(token)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestUpdateUserSelfOnly(t *testing.T) {
	_, svc := newUserFixture()

	alice, err := svc.Register(RegisterInput{Username: "alice", Password: "correct-horse"})
	require.NoError(t, err)
	bob, err := svc.Register(RegisterInput{Username: "bob", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.UpdateUser(bob.ID, alice.ID, UpdateInput{FirstName: "Mallory"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))

	updated, err := svc.UpdateUser(alice.ID, alice.ID, UpdateInput{FirstName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)
}

func TestGetSavedPostsSkipsMissing(t *testing.T) {
	store, svc := newUserFixture()
	u := store.addUser("a", "alice")
	store.addPost("p1", "a", "hello")
	u.SavedPosts = []string{"p1", "gone"}

	posts, err := svc.GetSavedPosts("a")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "p1", posts[0].ID)
}
