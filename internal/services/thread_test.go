package services

import (
	"testing"

	"phreddit/internal/models"

	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func TestLatestActivityWithoutComments(t *testing.T) {
	post := &models.Post{ID: "p", PostedDate: day(1)}
	assert.Equal(t, day(1), NewThread(nil, nil).LatestActivity(post))
}

func TestLatestActivityNestedReply(t *testing.T) {
	comments := []models.Comment{
		{ID: "top", CommentedDate: day(2), CommentIDs: models.IDList{"mid"}},
		{ID: "mid", CommentedDate: day(3), CommentIDs: models.IDList{"deep"}},
		{ID: "deep", CommentedDate: day(5)},
		{ID: "other", CommentedDate: day(4)},
	}
	post := &models.Post{ID: "p", PostedDate: day(1), CommentIDs: models.IDList{"top", "other", "missing"}}

	assert.Equal(t, day(5), NewThread(comments, nil).LatestActivity(post))
}

func TestLatestActivityIgnoresOlderComments(t *testing.T) {
	comments := []models.Comment{{ID: "c", CommentedDate: day(1)}}
	post := &models.Post{ID: "p", PostedDate: day(3), CommentIDs: models.IDList{"c"}}

	assert.Equal(t, day(3), NewThread(comments, nil).LatestActivity(post))
}

func TestCountThreadSharedReferences(t *testing.T) {
	comments := []models.Comment{
		{ID: "a", CommentIDs: models.IDList{"c"}},
		{ID: "b", CommentIDs: models.IDList{"c"}},
		{ID: "c"},
	}
	post := &models.Post{ID: "p", CommentIDs: models.IDList{"a", "b", "ghost"}}

	th := NewThread(comments, nil)
	assert.Equal(t, 3, th.CountThread(post))

	var order []string
	for _, c := range th.Descendants(post.CommentIDs) {
		order = append(order, c.ID)
	}
	assert.Equal(t, []string{"a", "c", "b"}, order)
}

func TestResolvePostID(t *testing.T) {
	comments := []models.Comment{
		{ID: "top", PostID: ptr("p1"), CommentIDs: models.IDList{"reply"}},
		{ID: "reply", ParentID: ptr("top"), CommentIDs: models.IDList{"deep"}},
		{ID: "deep", ParentID: ptr("reply")},
		{ID: "root", CommentIDs: models.IDList{"leaf"}},
		{ID: "leaf"},
		{ID: "lost"},
	}
	posts := []models.Post{
		{ID: "p1", CommentIDs: models.IDList{"top"}},
		{ID: "p2", CommentIDs: models.IDList{"root"}},
	}
	th := NewThread(comments, posts)

	for id, want := range map[string]string{"top": "p1", "deep": "p1", "leaf": "p2", "lost": ""} {
		c, ok := th.Comment(id)
		assert.True(t, ok)
		assert.Equal(t, want, th.ResolvePostID(c), id)
	}
}
