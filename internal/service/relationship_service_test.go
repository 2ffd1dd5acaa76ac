package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/hcissey0/flux-backend/internal/common"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelationshipFixture() (*memStore, *RelationshipService) {
	store := newMemStore()
	svc := NewRelationshipService(
		&fakeUserRepo{store},
		&fakePostRepo{store},
		&fakeCommentRepo{store},
		common.NewEdgeLocks(),
	)
	return store, svc
}

func TestToggleFollowMirror(t *testing.T) {
	store, svc := newRelationshipFixture()
	store.addUser("a", "alice")
	store.addUser("b", "bob")
	store.addUser("c", "carol")

	followed, target, err := svc.ToggleFollow("a", "b")
	require.NoError(t, err)
	assert.True(t, followed)
	assert.True(t, model.ContainsID(target.Followers, "a"))

	assert.True(t, model.ContainsID(store.users["b"].Followers, "a"))
	assert.True(t, model.ContainsID(store.users["a"].Following, "b"))

	// 旁观者的集合不受影响
	assert.Empty(t, store.users["c"].Followers)
	assert.Empty(t, store.users["c"].Following)
	// 关注是定向的，反方向的边不存在
	assert.Empty(t, store.users["a"].Followers)
	assert.Empty(t, store.users["b"].Following)
}

func TestToggleFollowInvolution(t *testing.T) {
	store, svc := newRelationshipFixture()
	store.addUser("a", "alice")
	store.addUser("b", "bob")

	followed, _, err := svc.ToggleFollow("a", "b")
	require.NoError(t, err)
	assert.True(t, followed)

	followed, _, err = svc.ToggleFollow("a", "b")
	require.NoError(t, err)
	assert.False(t, followed)

	assert.Empty(t, store.users["a"].Following)
	assert.Empty(t, store.users["b"].Followers)
}

func TestToggleFollowSelfRejected(t *testing.T) {
	store, svc := newRelationshipFixture()
	store.addUser("a", "alice")

	_, _, err := svc.ToggleFollow("a", "a")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
	assert.Empty(t, store.users["a"].Following)
	assert.Empty(t, store.users["a"].Followers)
}

func TestToggleFollowTargetMissing(t *testing.T) {
	store, svc := newRelationshipFixture()
	store.addUser("a", "alice")

	_, _, err := svc.ToggleFollow("a", "ghost")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrResourceNotFound))
}

func TestToggleFollowMirrorFailureCompensated(t *testing.T) {
	store, svc := newRelationshipFixture()
	store.addUser("a", "alice")
	store.addUser("b", "bob")
	store.failUserUpdate["b"] = fmt.Errorf("write refused")

	_, _, err := svc.ToggleFollow("a", "b")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConsistency))

	// 主文档被补偿回滚，两侧都没有留下半条边
	assert.Empty(t, store.users["a"].Following)
	assert.Empty(t, store.users["b"].Followers)
}

func TestTogglePostLikeOneDirectional(t *testing.T) {
	store, svc := newRelationshipFixture()
	store.addUser("a", "alice")
	store.addPost("p1", "a", "hello")

	liked, post, err := svc.TogglePostLike("a", "p1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, model.ContainsID(post.Likes, "a"))

	// 用户文档上没有点赞的反向引用
	u := store.users["a"]
	assert.Empty(t, u.SavedPosts)
	assert.Empty(t, u.Following)
	assert.Empty(t, u.Followers)

	liked, _, err = svc.TogglePostLike("a", "p1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, store.posts["p1"].Likes)
}

func TestToggleCommentLike(t *testing.T) {
	store, svc := newRelationshipFixture()
	store.addUser("a", "alice")
	store.addComment("c1", "a", "p1", "nice")

	liked, comment, err := svc.ToggleCommentLike("a", "c1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, model.ContainsID(comment.Likes, "a"))

	liked, _, err = svc.ToggleCommentLike("a", "c1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, store.comments["c1"].Likes)
}

func TestToggleSaveMirror(t *testing.T) {
	store, svc := newRelationshipFixture()
	store.addUser("a", "alice")
	store.addPost("p1", "a", "hello")

	saved, post, err := svc.ToggleSave("a", "p1")
	require.NoError(t, err)
	assert.True(t, saved)
	assert.True(t, model.ContainsID(post.Saves, "a"))
	assert.True(t, model.ContainsID(store.users["a"].SavedPosts, "p1"))

	saved, _, err = svc.ToggleSave("a", "p1")
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Empty(t, store.users["a"].SavedPosts)
	assert.Empty(t, store.posts["p1"].Saves)
}

func TestToggleSaveMirrorInvariantAlways(t *testing.T) {
	store, svc := newRelationshipFixture()
	store.addUser("a", "alice")
	store.addPost("p1", "a", "hello")

	for i := 0; i < 5; i++ {
		_, _, err := svc.ToggleSave("a", "p1")
		require.NoError(t, err)

		inUser := model.ContainsID(store.users["a"].SavedPosts, "p1")
		inPost := model.ContainsID(store.posts["p1"].Saves, "a")
		assert.Equal(t, inUser, inPost, "收藏边必须两侧同在或同不在")
	}
}

func TestConcurrentLikesConverge(t *testing.T) {
	store, svc := newRelationshipFixture()
	store.addUser("a", "alice")
	store.addPost("p1", "a", "hello")

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.TogglePostLike("a", "p1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// 偶数次切换收敛回初始状态，且绝不产生重复条目
	assert.Empty(t, store.posts["p1"].Likes)
}

func TestConcurrentFollowsConverge(t *testing.T) {
	store, svc := newRelationshipFixture()
	store.addUser("a", "alice")
	store.addUser("b", "bob")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.ToggleFollow("a", "b")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	following := store.users["a"].Following
	followers := store.users["b"].Followers
	assert.Equal(t, model.ContainsID(following, "b"), model.ContainsID(followers, "a"))
	assert.LessOrEqual(t, len(following), 1)
	assert.LessOrEqual(t, len(followers), 1)
	// 偶数次切换收敛回初始状态
	assert.Empty(t, following)
}
