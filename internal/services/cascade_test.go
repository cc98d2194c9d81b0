package services

import (
	"testing"

	"phreddit/internal/db"
	"phreddit/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeletePostCascadeRemovesWholeThread(t *testing.T) {
	f := newFixture(t)
	cm := NewContentManager(f.store, f.log)

	p := f.post("P", "post", "alice", day(1))
	c1 := f.comment("C1", "bob", day(2), p, nil)
	c2 := f.comment("C2", "carol", day(2), p, nil)
	c3 := f.comment("C3", "dave", day(3), p, c1)
	other := f.post("other", "post", "alice", day(1))
	f.community("a", []*models.Post{p, other})
	f.community("b", []*models.Post{p})

	require.NoError(t, cm.DeletePostCascade(f.ctx, p.ID))

	assert.False(t, f.exists(&models.Post{}, p.ID))
	for _, c := range []*models.Comment{c1, c2, c3} {
		assert.False(t, f.exists(&models.Comment{}, c.ID), c.Content)
	}
	var holding []models.Community
	require.NoError(t, f.store.FindContaining(f.ctx, &holding, "post_ids", p.ID))
	assert.Empty(t, holding)

	var a []models.Community
	require.NoError(t, f.store.Find(f.ctx, &a, db.Filter{"name": "a"}))
	require.Len(t, a, 1)
	assert.Equal(t, models.IDList{other.ID}, a[0].PostIDs)

	var entry *logrus.Entry
	for _, e := range f.hook.AllEntries() {
		if e.Message == "deleting post" {
			entry = e
		}
	}
	require.NotNil(t, entry)
	assert.Equal(t, p.ID, entry.Data["post_id"])
}

func TestDeletePostCascadeMissingPost(t *testing.T) {
	f := newFixture(t)
	cm := NewContentManager(f.store, f.log)

	err := cm.DeletePostCascade(f.ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteCommentSubtreeAnyDepth(t *testing.T) {
	f := newFixture(t)
	cm := NewContentManager(f.store, f.log)

	p := f.post("P", "post", "alice", day(1))
	root := f.comment("root", "bob", day(2), p, nil)
	chain := []*models.Comment{root}
	for i := 0; i < 12; i++ {
		chain = append(chain, f.comment("reply", "bob", day(3+i), p, chain[len(chain)-1]))
	}
	sibling := f.comment("sibling", "bob", day(2), p, chain[5])

	require.NoError(t, cm.DeleteCommentSubtree(f.ctx, root.ID))

	for _, c := range append(chain, sibling) {
		assert.False(t, f.exists(&models.Comment{}, c.ID))
	}

	// the subtree routine leaves the post's child list alone
	var got models.Post
	f.reload(&got, p.ID)
	assert.Equal(t, models.IDList{root.ID}, got.CommentIDs)
}

func TestDeleteCommentSubtreeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	cm := NewContentManager(f.store, f.log)

	p := f.post("P", "post", "alice", day(1))
	c := f.comment("C", "bob", day(2), p, nil)
	f.comment("R", "bob", day(3), p, c)

	require.NoError(t, cm.DeleteCommentSubtree(f.ctx, c.ID))
	assert.NoError(t, cm.DeleteCommentSubtree(f.ctx, c.ID))
	assert.NoError(t, cm.DeleteCommentSubtree(f.ctx, "never-existed"))
}

func TestDeleteCommentSubtreeSkipsDanglingIDs(t *testing.T) {
	f := newFixture(t)
	cm := NewContentManager(f.store, f.log)

	c := &models.Comment{Content: "c", CommentedBy: "bob", CommentIDs: models.IDList{"ghost-1", "ghost-2"}}
	require.NoError(t, f.store.Create(f.ctx, c))

	require.NoError(t, cm.DeleteCommentSubtree(f.ctx, c.ID))
	assert.False(t, f.exists(&models.Comment{}, c.ID))

	var dangling int
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.DebugLevel && e.Message == "skipping dangling comment id" {
			dangling++
		}
	}
	assert.Equal(t, 2, dangling)
}

func TestDeleteCommentSubtreeSurvivesCycles(t *testing.T) {
	f := newFixture(t)
	cm := NewContentManager(f.store, f.log)

	a := &models.Comment{ID: "cycle-a", Content: "a", CommentedBy: "x", CommentIDs: models.IDList{"cycle-b"}}
	b := &models.Comment{ID: "cycle-b", Content: "b", CommentedBy: "x", CommentIDs: models.IDList{"cycle-a"}}
	require.NoError(t, f.store.Create(f.ctx, a))
	require.NoError(t, f.store.Create(f.ctx, b))

	require.NoError(t, cm.DeleteCommentSubtree(f.ctx, a.ID))
	assert.False(t, f.exists(&models.Comment{}, a.ID))
	assert.False(t, f.exists(&models.Comment{}, b.ID))
}

func TestDeleteCommentCascadeDetachesReferences(t *testing.T) {
	f := newFixture(t)
	cm := NewContentManager(f.store, f.log)

	p := f.post("P", "post", "alice", day(1))
	c1 := f.comment("C1", "bob", day(2), p, nil)
	c2 := f.comment("C2", "bob", day(3), p, c1)
	c3 := f.comment("C3", "bob", day(4), p, c2)
	keep := f.comment("keep", "bob", day(4), p, c1)

	// drift: a stray reference without a parent link
	stray := &models.Comment{Content: "stray", CommentedBy: "x", CommentIDs: models.IDList{c2.ID}}
	require.NoError(t, f.store.Create(f.ctx, stray))

	require.NoError(t, cm.DeleteCommentCascade(f.ctx, c2.ID))

	assert.False(t, f.exists(&models.Comment{}, c2.ID))
	assert.False(t, f.exists(&models.Comment{}, c3.ID))

	var parent models.Comment
	f.reload(&parent, c1.ID)
	assert.Equal(t, models.IDList{keep.ID}, parent.CommentIDs)

	var s models.Comment
	f.reload(&s, stray.ID)
	assert.Empty(t, s.CommentIDs)

	assert.True(t, errors.Is(cm.DeleteCommentCascade(f.ctx, c2.ID), ErrNotFound))
}

func TestDeleteCommentCascadeTopLevel(t *testing.T) {
	f := newFixture(t)
	cm := NewContentManager(f.store, f.log)

	p := f.post("P", "post", "alice", day(1))
	c1 := f.comment("C1", "bob", day(2), p, nil)
	c2 := f.comment("C2", "bob", day(2), p, nil)

	require.NoError(t, cm.DeleteCommentCascade(f.ctx, c1.ID))

	var got models.Post
	f.reload(&got, p.ID)
	assert.Equal(t, models.IDList{c2.ID}, got.CommentIDs)
}

func TestDeleteCommunityCascade(t *testing.T) {
	f := newFixture(t)
	cm := NewContentManager(f.store, f.log)

	alice := f.user("alice", 100)
	p1 := f.post("P1", "post", "alice", day(1))
	p2 := f.post("P2", "post", "alice", day(2))
	c := f.comment("C", "bob", day(3), p1, nil)
	r := f.comment("R", "bob", day(4), p1, c)
	community := f.community("swim", []*models.Post{p1, p2}, alice)

	// a stale post id is skipped
	require.NoError(t, f.store.UpdateByID(f.ctx, &models.Community{}, community.ID,
		map[string]interface{}{"post_ids": models.IDList{p1.ID, "gone", p2.ID}}))

	require.NoError(t, cm.DeleteCommunityCascade(f.ctx, community.ID))

	assert.False(t, f.exists(&models.Community{}, community.ID))
	for _, id := range []string{p1.ID, p2.ID} {
		assert.False(t, f.exists(&models.Post{}, id))
	}
	assert.False(t, f.exists(&models.Comment{}, c.ID))
	assert.False(t, f.exists(&models.Comment{}, r.ID))

	var u models.User
	f.reload(&u, alice.ID)
	assert.Empty(t, u.JoinedCommunities)
}

func TestDeleteUserCascadeRemovesOthersReplies(t *testing.T) {
	f := newFixture(t)
	cm := NewContentManager(f.store, f.log)

	alice := f.user("alice", 100)
	bob := f.user("bob", 100)

	bobsPost := f.post("bob's", "post", "bob", day(1))
	alicesComment := f.comment("alice says", "alice", day(2), bobsPost, nil)
	bobsReply := f.comment("bob replies", "bob", day(3), bobsPost, alicesComment)
	bobsOther := f.comment("bob top", "bob", day(3), bobsPost, nil)

	alicesPost := f.post("alice's", "post", "alice", day(1))
	onAlicesPost := f.comment("bob on alice", "bob", day(2), alicesPost, nil)

	community := f.community("c", []*models.Post{bobsPost, alicesPost}, alice, bob)

	require.NoError(t, cm.DeleteUserCascade(f.ctx, alice.ID))

	assert.False(t, f.exists(&models.User{}, alice.ID))
	assert.False(t, f.exists(&models.Post{}, alicesPost.ID))
	assert.False(t, f.exists(&models.Comment{}, onAlicesPost.ID))
	assert.False(t, f.exists(&models.Comment{}, alicesComment.ID))
	assert.False(t, f.exists(&models.Comment{}, bobsReply.ID), "replies by other users go with the subtree")
	assert.True(t, f.exists(&models.Comment{}, bobsOther.ID))

	var post models.Post
	f.reload(&post, bobsPost.ID)
	assert.Equal(t, models.IDList{bobsOther.ID}, post.CommentIDs)

	var got models.Community
	f.reload(&got, community.ID)
	assert.Equal(t, models.IDList{bob.ID}, got.Members)
	assert.Equal(t, models.IDList{bobsPost.ID}, got.PostIDs)
}

func TestDeleteUserCascadeFollowsParentLinks(t *testing.T) {
	f := newFixture(t)
	cm := NewContentManager(f.store, f.log)

	alice := f.user("alice", 100)
	p := f.post("P", "post", "bob", day(1))
	mine := f.comment("mine", "alice", day(2), p, nil)

	// reply that points at its parent but is missing from the parent's child list
	orphan := &models.Comment{Content: "orphan", CommentedBy: "bob", ParentID: &mine.ID, PostID: &p.ID}
	require.NoError(t, f.store.Create(f.ctx, orphan))

	require.NoError(t, cm.DeleteUserCascade(f.ctx, alice.ID))
	assert.False(t, f.exists(&models.Comment{}, orphan.ID))
}
