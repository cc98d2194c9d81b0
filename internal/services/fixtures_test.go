package services

import (
	"context"
	"testing"
	"time"

	"phreddit/internal/db"
	"phreddit/internal/db/dbtest"
	"phreddit/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *db.Store
	log   *logrus.Logger
	hook  *test.Hook
}

func newFixture(t *testing.T) *fixture {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return &fixture{t: t, ctx: context.Background(), store: dbtest.NewStore(t), log: log, hook: hook}
}

func (f *fixture) user(name string, reputation int) *models.User {
	u := &models.User{
		Email: name + "@example.com", DisplayName: name, FirstName: "F", LastName: "L",
		PasswordHash: "x", Reputation: reputation,
	}
	require.NoError(f.t, f.store.Create(f.ctx, u))
	return u
}

func (f *fixture) post(title, content, by string, posted time.Time) *models.Post {
	p := &models.Post{Title: title, Content: content, PostedBy: by, PostedDate: posted}
	require.NoError(f.t, f.store.Create(f.ctx, p))
	return p
}

// comment creates a comment and links it under parent, or under post when parent is nil.
func (f *fixture) comment(content, by string, at time.Time, post *models.Post, parent *models.Comment) *models.Comment {
	c := &models.Comment{Content: content, CommentedBy: by, CommentedDate: at}
	if post != nil {
		c.PostID = &post.ID
	}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	require.NoError(f.t, f.store.Create(f.ctx, c))

	if parent != nil {
		parent.CommentIDs = append(parent.CommentIDs, c.ID)
		require.NoError(f.t, f.store.UpdateByID(f.ctx, &models.Comment{}, parent.ID,
			map[string]interface{}{"comment_ids": parent.CommentIDs}))
	} else if post != nil {
		post.CommentIDs = append(post.CommentIDs, c.ID)
		require.NoError(f.t, f.store.UpdateByID(f.ctx, &models.Post{}, post.ID,
			map[string]interface{}{"comment_ids": post.CommentIDs}))
	}
	return c
}

func (f *fixture) community(name string, posts []*models.Post, members ...*models.User) *models.Community {
	c := &models.Community{Name: name, Description: name + " community"}
	for _, p := range posts {
		c.PostIDs = append(c.PostIDs, p.ID)
	}
	for _, m := range members {
		c.Members = append(c.Members, m.ID)
	}
	require.NoError(f.t, f.store.Create(f.ctx, c))
	for _, m := range members {
		m.JoinedCommunities = append(m.JoinedCommunities, c.ID)
		require.NoError(f.t, f.store.UpdateByID(f.ctx, &models.User{}, m.ID,
			map[string]interface{}{"joined_communities": m.JoinedCommunities}))
	}
	return c
}

func (f *fixture) exists(model interface{}, id string) bool {
	ok, err := f.store.Exists(f.ctx, model, db.Filter{"id": id})
	require.NoError(f.t, err)
	return ok
}

func (f *fixture) reload(dest interface{}, id string) {
	require.NoError(f.t, f.store.FindByID(f.ctx, dest, id))
}

func postIDs(posts []models.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
