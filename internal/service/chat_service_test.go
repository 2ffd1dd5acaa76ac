package service

import (
	"fmt"
	"testing"

	"github.com/hcissey0/flux-backend/internal/common"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture() (*memStore, *ChatService) {
	store := newMemStore()
	svc := NewChatService(
		&fakeChatRepo{store},
		&fakeUserRepo{store},
		&fakeMessageRepo{store},
		common.NewEdgeLocks(),
	)
	return store, svc
}

func TestCreateDirectChat(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")
	bob := store.addUser("b", "bob")
	bob.FirstName = "Bob"

	chat, err := svc.CreateChat("c", "", false, []string{"b"})
	require.NoError(t, err)

	assert.False(t, chat.IsGroup)
	assert.ElementsMatch(t, []string{"c", "b"}, chat.Admins)
	assert.ElementsMatch(t, []string{"c", "b"}, chat.Participants)
	// 单聊名称来自第一个成员的展示名
	assert.Equal(t, "Bob", chat.Name)

	assert.True(t, model.ContainsID(store.users["c"].Chats, chat.ID))
	assert.True(t, model.ContainsID(store.users["b"].Chats, chat.ID))
}

func TestCreateGroupChatRequiresName(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")
	store.addUser("b", "bob")

	_, err := svc.CreateChat("c", "", true, []string{"b"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
}

func TestCreateDirectChatRequiresParticipants(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")

	_, err := svc.CreateChat("c", "", false, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
}

func TestCreateDirectChatRejectsSelf(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")

	_, err := svc.CreateChat("c", "", false, []string{"c"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
}

func TestCreateChatUnresolvedParticipants(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")

	_, err := svc.CreateChat("c", "", false, []string{"ghost1", "ghost2"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrResourceNotFound))
	// 失败的创建不留下任何会话
	assert.Empty(t, store.chats)
	assert.Empty(t, store.users["c"].Chats)
}

func TestCreateChatMemberWriteFailureRollsBack(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")
	store.addUser("b", "bob")
	store.failUserUpdate["b"] = fmt.Errorf("write refused")

	_, err := svc.CreateChat("c", "Friends", true, []string{"b"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConsistency))

	assert.Empty(t, store.chats)
	assert.Empty(t, store.users["c"].Chats)
	assert.Empty(t, store.users["b"].Chats)
}

func TestToggleParticipantRoundTrip(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")
	store.addUser("b", "bob")

	chat, err := svc.CreateChat("c", "Friends", true, []string{"b"})
	require.NoError(t, err)

	store.addUser("d", "dave")

	added, updated, err := svc.ToggleParticipant("c", chat.ID, "dave")
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, model.ContainsID(updated.Participants, "d"))
	assert.True(t, model.ContainsID(store.users["d"].Chats, chat.ID))

	added, updated, err = svc.ToggleParticipant("c", chat.ID, "dave")
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, model.ContainsID(updated.Participants, "d"))
	assert.False(t, model.ContainsID(updated.Admins, "d"))
	assert.False(t, model.ContainsID(store.users["d"].Chats, chat.ID))
}

func TestToggleParticipantDirectChatRejected(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")
	store.addUser("b", "bob")

	chat, err := svc.CreateChat("c", "", false, []string{"b"})
	require.NoError(t, err)

	_, _, err = svc.ToggleParticipant("c", chat.ID, "bob")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
}

func TestToggleParticipantRequiresAdmin(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")
	store.addUser("b", "bob")
	store.addUser("d", "dave")

	chat, err := svc.CreateChat("c", "Friends", true, []string{"b"})
	require.NoError(t, err)

	// b 是成员但不是管理员
	_, _, err = svc.ToggleParticipant("b", chat.ID, "dave")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))
}

func TestChatAutoDeletionOnDrain(t *testing.T) {
	store, svc := newChatFixture()
	carol := store.addUser("c", "carol")
	store.addUser("b", "bob")

	chat, err := svc.CreateChat("c", "Friends", true, []string{"b"})
	require.NoError(t, err)

	// 管理员先移出 bob，再移出自己，成员与管理员同时清空
	_, _, err = svc.ToggleParticipant("c", chat.ID, "bob")
	require.NoError(t, err)
	_, _, err = svc.ToggleParticipant("c", chat.ID, carol.Username)
	require.NoError(t, err)

	_, err = svc.GetChat("c", chat.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrResourceNotFound))
	assert.Empty(t, store.users["c"].Chats)
	assert.Empty(t, store.users["b"].Chats)
}

func TestChatNotDeletedWhileAdminLingers(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")
	store.addUser("b", "bob")

	chat, err := svc.CreateChat("c", "Friends", true, []string{"b"})
	require.NoError(t, err)

	// bob 被移出后 carol 仍是管理员兼成员，会话保留
	_, _, err = svc.ToggleParticipant("c", chat.ID, "bob")
	require.NoError(t, err)

	got, err := svc.GetChat("c", chat.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, got.Participants)
	assert.Equal(t, []string{"c"}, got.Admins)
}

func TestPostMessage(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")
	store.addUser("b", "bob")

	chat, err := svc.CreateChat("c", "", false, []string{"b"})
	require.NoError(t, err)

	message, err := svc.PostMessage("b", chat.ID, "hey")
	require.NoError(t, err)
	assert.Equal(t, "b", message.Author)
	assert.Equal(t, chat.ID, message.Chat)

	stored := store.chats[chat.ID]
	assert.True(t, model.ContainsID(stored.Messages, message.ID))
	assert.Equal(t, "hey", stored.LastMessage)
}

func TestPostMessageNonParticipant(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")
	store.addUser("b", "bob")
	store.addUser("d", "dave")

	chat, err := svc.CreateChat("c", "", false, []string{"b"})
	require.NoError(t, err)

	_, err = svc.PostMessage("d", chat.ID, "let me in")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))
	assert.Empty(t, store.messages)
}

func TestPostMessageChatWriteFailureDiscardsMessage(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")
	store.addUser("b", "bob")

	chat, err := svc.CreateChat("c", "", false, []string{"b"})
	require.NoError(t, err)
	store.failChatWrite[chat.ID] = fmt.Errorf("write refused")

	_, err = svc.PostMessage("b", chat.ID, "hey")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConsistency))
	// 游离的消息文档被清理
	assert.Empty(t, store.messages)
	assert.Empty(t, store.chats[chat.ID].Messages)
}

func TestListParticipantsMemberOnly(t *testing.T) {
	store, svc := newChatFixture()
	store.addUser("c", "carol")
	store.addUser("b", "bob")
	store.addUser("d", "dave")

	chat, err := svc.CreateChat("c", "", false, []string{"b"})
	require.NoError(t, err)

	users, err := svc.ListParticipants("c", chat.ID)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = svc.ListParticipants("d", chat.ID)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))
}
