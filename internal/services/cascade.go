package services

import (
	"context"
	"time"

	"phreddit/internal/db"
	"phreddit/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ContentManager owns every cascading delete. Post, comment, community and user
// deletion all go through the same subtree routine so they cannot drift apart.
//
// Cascades are best-effort: they are not wrapped in a transaction, dangling ids
// are skipped, and a failure part way leaves earlier steps applied. Comment
// subtrees are removed before any reference is pulled to keep orphans rare.
type ContentManager struct {
	store *db.Store
	log   logrus.FieldLogger
}

func NewContentManager(store *db.Store, log logrus.FieldLogger) *ContentManager {
	return &ContentManager{store: store, log: log.WithField("component", "cascade")}
}

// DeleteCommentSubtree deletes a comment and everything below it, children
// first. An absent id is a no-op. The parent's child list is left untouched.
func (m *ContentManager) DeleteCommentSubtree(ctx context.Context, id string) error {
	defer observe("comment_subtree", time.Now())
	n, err := m.deleteSubtree(ctx, id, false, map[string]bool{})
	countDeletes("comments", n)
	return err
}

// deleteSubtree removes id and its descendants in post-order and returns how
// many comments were removed. With byParent set, replies that only point back
// through parentID are followed as well.
func (m *ContentManager) deleteSubtree(ctx context.Context, id string, byParent bool, visited map[string]bool) (int, error) {
	if id == "" || visited[id] {
		return 0, nil
	}
	visited[id] = true

	var c models.Comment
	if err := m.store.FindByID(ctx, &c, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			m.log.WithField("comment_id", id).Debug("skipping dangling comment id")
			return 0, nil
		}
		return 0, errors.Wrapf(err, "load comment %s", id)
	}

	children := []string(c.CommentIDs)
	if byParent {
		var replies []models.Comment
		if err := m.store.Find(ctx, &replies, db.Filter{"parent_id": id}); err != nil {
			return 0, errors.Wrapf(err, "load replies of %s", id)
		}
		for _, r := range replies {
			children = append(children, r.ID)
		}
	}

	removed := 0
	for _, child := range children {
		n, err := m.deleteSubtree(ctx, child, byParent, visited)
		removed += n
		if err != nil {
			return removed, err
		}
	}

	ok, err := m.store.DeleteByID(ctx, &models.Comment{}, id)
	if err != nil {
		return removed, errors.Wrapf(err, "delete comment %s", id)
	}
	if ok {
		removed++
	}
	return removed, nil
}

// DeletePostCascade deletes a post, its whole comment tree and every community reference to it.
func (m *ContentManager) DeletePostCascade(ctx context.Context, id string) error {
	defer observe("post", time.Now())

	var post models.Post
	if err := m.store.FindByID(ctx, &post, id); err != nil {
		return lookup(err, "Post")
	}
	m.log.WithField("post_id", id).Info("deleting post")
	return m.deletePost(ctx, &post, map[string]bool{})
}

func (m *ContentManager) deletePost(ctx context.Context, post *models.Post, visited map[string]bool) error {
	removed := 0
	for _, cid := range post.CommentIDs {
		n, err := m.deleteSubtree(ctx, cid, false, visited)
		removed += n
		if err != nil {
			countDeletes("comments", removed)
			return err
		}
	}
	countDeletes("comments", removed)

	if _, err := m.store.PullFromAll(ctx, &models.Community{}, "post_ids", post.ID); err != nil {
		return errors.Wrapf(err, "detach post %s from communities", post.ID)
	}

	ok, err := m.store.DeleteByID(ctx, &models.Post{}, post.ID)
	if err != nil {
		return errors.Wrapf(err, "delete post %s", post.ID)
	}
	if ok {
		countDeletes("posts", 1)
	}
	return nil
}

// DeleteCommentCascade deletes a comment subtree and pulls the comment id out
// of its parent, and out of every other comment or post that still lists it.
func (m *ContentManager) DeleteCommentCascade(ctx context.Context, id string) error {
	defer observe("comment", time.Now())

	var c models.Comment
	if err := m.store.FindByID(ctx, &c, id); err != nil {
		return lookup(err, "Comment")
	}
	m.log.WithField("comment_id", id).Info("deleting comment")

	n, err := m.deleteSubtree(ctx, id, false, map[string]bool{})
	countDeletes("comments", n)
	if err != nil {
		return err
	}
	if err := m.detach(ctx, &c); err != nil {
		return err
	}

	// drift: references that exist without a canonical parent link
	if _, err := m.store.PullFromAll(ctx, &models.Comment{}, "comment_ids", id); err != nil {
		return errors.Wrapf(err, "pull comment %s from comments", id)
	}
	if _, err := m.store.PullFromAll(ctx, &models.Post{}, "comment_ids", id); err != nil {
		return errors.Wrapf(err, "pull comment %s from posts", id)
	}
	return nil
}

// detach pulls c out of its parent comment, or out of its post when top-level.
func (m *ContentManager) detach(ctx context.Context, c *models.Comment) error {
	if c.ParentID != nil && *c.ParentID != "" {
		var parent models.Comment
		err := m.store.FindByID(ctx, &parent, *c.ParentID)
		if err != nil {
			return ignoreNotFound(err)
		}
		if list, changed := parent.CommentIDs.Without(c.ID); changed {
			err := m.store.UpdateByID(ctx, &models.Comment{}, parent.ID, map[string]interface{}{"comment_ids": list})
			return ignoreNotFound(err)
		}
		return nil
	}
	if c.PostID != nil && *c.PostID != "" {
		var post models.Post
		err := m.store.FindByID(ctx, &post, *c.PostID)
		if err != nil {
			return ignoreNotFound(err)
		}
		if list, changed := post.CommentIDs.Without(c.ID); changed {
			err := m.store.UpdateByID(ctx, &models.Post{}, post.ID, map[string]interface{}{"comment_ids": list})
			return ignoreNotFound(err)
		}
	}
	return nil
}

// DeleteCommunityCascade deletes every post of the community with its comments,
// drops the community from members' joined lists, then deletes the community.
func (m *ContentManager) DeleteCommunityCascade(ctx context.Context, id string) error {
	defer observe("community", time.Now())

	var community models.Community
	if err := m.store.FindByID(ctx, &community, id); err != nil {
		return lookup(err, "Community")
	}
	m.log.WithFields(logrus.Fields{"community_id": id, "posts": len(community.PostIDs)}).Info("deleting community")

	visited := map[string]bool{}
	for _, pid := range community.PostIDs {
		var post models.Post
		if err := m.store.FindByID(ctx, &post, pid); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				continue
			}
			return errors.Wrapf(err, "load post %s", pid)
		}
		if err := m.deletePost(ctx, &post, visited); err != nil {
			return err
		}
	}

	if _, err := m.store.PullFromAll(ctx, &models.User{}, "joined_communities", id); err != nil {
		return errors.Wrapf(err, "pull community %s from users", id)
	}
	ok, err := m.store.DeleteByID(ctx, &models.Community{}, id)
	if err != nil {
		return errors.Wrapf(err, "delete community %s", id)
	}
	if ok {
		countDeletes("communities", 1)
	}
	return nil
}

// DeleteUserCascade deletes everything posted under the user's display name,
// removes the user from community member lists and deletes the user.
//
// Replies under the user's comments go with them even when someone else wrote them.
func (m *ContentManager) DeleteUserCascade(ctx context.Context, id string) error {
	defer observe("user", time.Now())

	var user models.User
	if err := m.store.FindByID(ctx, &user, id); err != nil {
		return lookup(err, "User")
	}
	log := m.log.WithFields(logrus.Fields{"user_id": id, "display_name": user.DisplayName})
	log.Info("deleting user")

	visited := map[string]bool{}

	var posts []models.Post
	if err := m.store.Find(ctx, &posts, db.Filter{"posted_by": user.DisplayName}); err != nil {
		return errors.Wrap(err, "load user posts")
	}
	for i := range posts {
		if err := m.deletePost(ctx, &posts[i], visited); err != nil {
			return err
		}
	}

	var comments []models.Comment
	if err := m.store.Find(ctx, &comments, db.Filter{"commented_by": user.DisplayName}); err != nil {
		return errors.Wrap(err, "load user comments")
	}
	removed := 0
	for i := range comments {
		c := &comments[i]
		if visited[c.ID] {
			continue
		}
		if err := m.detach(ctx, c); err != nil {
			countDeletes("comments", removed)
			return err
		}
		n, err := m.deleteSubtree(ctx, c.ID, true, visited)
		removed += n
		if err != nil {
			countDeletes("comments", removed)
			return err
		}
	}
	countDeletes("comments", removed)

	if _, err := m.store.PullFromAll(ctx, &models.Community{}, "members", id); err != nil {
		return errors.Wrapf(err, "pull user %s from communities", id)
	}
	ok, err := m.store.DeleteByID(ctx, &models.User{}, id)
	if err != nil {
		return errors.Wrapf(err, "delete user %s", id)
	}
	if ok {
		countDeletes("users", 1)
	}
	log.WithField("posts", len(posts)).Info("user deleted")
	return nil
}

func observe(entry string, start time.Time) {
	cascadeDuration.WithLabelValues(entry).Observe(time.Since(start).Seconds())
}

func countDeletes(kind string, n int) {
	if n > 0 {
		cascadeDeletes.WithLabelValues(kind).Add(float64(n))
	}
}
