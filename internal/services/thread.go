package services

import (
	"time"

	"phreddit/internal/models"
)

// Thread indexes a loaded set of comments so comment trees can be walked
// without going back to the store.
type Thread struct {
	comments map[string]*models.Comment
	parentOf map[string]string // child comment id -> parent comment id
	postOf   map[string]string // top-level comment id -> post id
}

// NewThread builds the index. posts may be nil when only comment lookups are needed.
func NewThread(comments []models.Comment, posts []models.Post) *Thread {
	t := &Thread{
		comments: make(map[string]*models.Comment, len(comments)),
		parentOf: make(map[string]string),
		postOf:   make(map[string]string),
	}
	for i := range comments {
		c := &comments[i]
		t.comments[c.ID] = c
		for _, child := range c.CommentIDs {
			t.parentOf[child] = c.ID
		}
	}
	for _, p := range posts {
		for _, id := range p.CommentIDs {
			t.postOf[id] = p.ID
		}
	}
	return t
}

func (t *Thread) Comment(id string) (*models.Comment, bool) {
	c, ok := t.comments[id]
	return c, ok
}

// LatestActivity 返回帖子本身及其所有后代评论中最新的时间
func (t *Thread) LatestActivity(post *models.Post) time.Time {
	latest := post.PostedDate
	t.walk(post.CommentIDs, map[string]bool{}, func(c *models.Comment) {
		if c.CommentedDate.After(latest) {
			latest = c.CommentedDate
		}
	})
	return latest
}

// CountThread counts the distinct comments reachable from the post.
func (t *Thread) CountThread(post *models.Post) int {
	n := 0
	t.walk(post.CommentIDs, map[string]bool{}, func(*models.Comment) { n++ })
	return n
}

// Descendants returns the comments under ids in tree pre-order.
func (t *Thread) Descendants(ids []string) []models.Comment {
	var out []models.Comment
	t.walk(ids, map[string]bool{}, func(c *models.Comment) {
		out = append(out, *c)
	})
	return out
}

// walk visits every comment reachable from ids once, parents before children.
// Ids missing from the index are skipped.
func (t *Thread) walk(ids []string, seen map[string]bool, visit func(*models.Comment)) {
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		c, ok := t.comments[id]
		if !ok {
			continue
		}
		visit(c)
		t.walk(c.CommentIDs, seen, visit)
	}
}

// ResolvePostID finds the post a comment belongs to. Replies created without a
// postID are resolved by climbing the parent chain to a comment that has one,
// or to the thread root and the post whose child list holds it.
func (t *Thread) ResolvePostID(c *models.Comment) string {
	seen := map[string]bool{}
	cur := c
	for cur != nil && !seen[cur.ID] {
		seen[cur.ID] = true
		if cur.PostID != nil && *cur.PostID != "" {
			return *cur.PostID
		}
		if postID, ok := t.postOf[cur.ID]; ok {
			return postID
		}

		parentID := t.parentOf[cur.ID]
		if cur.ParentID != nil && *cur.ParentID != "" {
			parentID = *cur.ParentID
		}
		if parentID == "" {
			return ""
		}
		if postID, ok := t.postOf[parentID]; ok {
			if _, loaded := t.comments[parentID]; !loaded {
				return postID
			}
		}
		cur = t.comments[parentID]
	}
	return ""
}
