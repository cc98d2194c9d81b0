package services

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"phreddit/internal/db"
	"phreddit/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// 排序方式
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortActive = "active"
)

// Ranker 提供帖子排序、搜索与社区列表
type Ranker struct {
	store *db.Store
	log   logrus.FieldLogger
}

func NewRanker(store *db.Store, log logrus.FieldLogger) *Ranker {
	return &Ranker{store: store, log: log.WithField("component", "ranking")}
}

// NormalizeSort maps unknown or empty sort names to newest.
func NormalizeSort(s string) string {
	switch s {
	case SortOldest, SortActive:
		return s
	default:
		return SortNewest
	}
}

// SortPosts orders posts in place and fills CommentCount.
// When joined is non-nil and the order is not active, posts whose id is in
// joined move ahead of the rest; each group keeps the chosen order.
func SortPosts(posts []models.Post, order string, thread *Thread, joined map[string]bool) {
	for i := range posts {
		posts[i].CommentCount = thread.CountThread(&posts[i])
	}

	switch NormalizeSort(order) {
	case SortOldest:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].PostedDate.Before(posts[j].PostedDate)
		})
	case SortActive:
		latest := make(map[string]int64, len(posts))
		for i := range posts {
			latest[posts[i].ID] = thread.LatestActivity(&posts[i]).UnixNano()
		}
		sort.SliceStable(posts, func(i, j int) bool {
			a, b := latest[posts[i].ID], latest[posts[j].ID]
			if a != b {
				return a > b
			}
			return posts[i].PostedDate.After(posts[j].PostedDate)
		})
		return
	default:
		sort.SliceStable(posts, func(i, j int) bool {
			return posts[i].PostedDate.After(posts[j].PostedDate)
		})
	}

	if joined != nil {
		sort.SliceStable(posts, func(i, j int) bool {
			return joined[posts[i].ID] && !joined[posts[j].ID]
		})
	}
}

// ListPosts returns every post in the requested order, personalised for userID when given.
func (r *Ranker) ListPosts(ctx context.Context, order, userID string) ([]models.Post, error) {
	var posts []models.Post
	if err := r.store.Find(ctx, &posts, nil); err != nil {
		return nil, errors.Wrap(err, "load posts")
	}
	return r.rank(ctx, posts, order, userID)
}

// CommunityPosts returns the posts of one community in the requested order.
func (r *Ranker) CommunityPosts(ctx context.Context, communityID, order string) ([]models.Post, error) {
	var community models.Community
	if err := r.store.FindByID(ctx, &community, communityID); err != nil {
		return nil, lookup(err, "Community")
	}
	var posts []models.Post
	if err := r.store.FindByIDs(ctx, &posts, community.PostIDs); err != nil {
		return nil, errors.Wrap(err, "load community posts")
	}
	return r.rank(ctx, posts, order, "")
}

// Search matches each whitespace separated token of query, as a case
// insensitive regular expression, against post titles, post content and
// comment content. Posts owning a matching comment are included once.
func (r *Ranker) Search(ctx context.Context, query, order, userID string) ([]models.Post, error) {
	patterns := compileTokens(query)
	if len(patterns) == 0 {
		return []models.Post{}, nil
	}

	var posts []models.Post
	if err := r.store.Find(ctx, &posts, nil); err != nil {
		return nil, errors.Wrap(err, "load posts")
	}
	var comments []models.Comment
	if err := r.store.Find(ctx, &comments, nil); err != nil {
		return nil, errors.Wrap(err, "load comments")
	}
	thread := NewThread(comments, posts)

	matched := map[string]bool{}
	for i := range posts {
		if matchAny(patterns, posts[i].Title) || matchAny(patterns, posts[i].Content) {
			matched[posts[i].ID] = true
		}
	}
	for i := range comments {
		if !matchAny(patterns, comments[i].Content) {
			continue
		}
		if postID := thread.ResolvePostID(&comments[i]); postID != "" {
			matched[postID] = true
		}
	}

	results := make([]models.Post, 0, len(matched))
	for _, p := range posts {
		if matched[p.ID] {
			results = append(results, p)
		}
	}
	r.log.WithFields(logrus.Fields{"query": query, "results": len(results)}).Debug("search")

	joined, err := r.joinedPostIDs(ctx, order, userID)
	if err != nil {
		return nil, err
	}
	SortPosts(results, order, thread, joined)
	rankedPosts.WithLabelValues(NormalizeSort(order)).Add(float64(len(results)))
	return results, nil
}

// ListCommunities returns all communities, the ones userID has joined first.
func (r *Ranker) ListCommunities(ctx context.Context, userID string) ([]models.Community, error) {
	var communities []models.Community
	if err := r.store.Find(ctx, &communities, nil); err != nil {
		return nil, errors.Wrap(err, "load communities")
	}
	sort.SliceStable(communities, func(i, j int) bool {
		return communities[i].StartDate.Before(communities[j].StartDate)
	})
	if userID == "" {
		return communities, nil
	}
	sort.SliceStable(communities, func(i, j int) bool {
		return communities[i].Members.Contains(userID) && !communities[j].Members.Contains(userID)
	})
	return communities, nil
}

func (r *Ranker) rank(ctx context.Context, posts []models.Post, order, userID string) ([]models.Post, error) {
	var comments []models.Comment
	if err := r.store.Find(ctx, &comments, nil); err != nil {
		return nil, errors.Wrap(err, "load comments")
	}
	joined, err := r.joinedPostIDs(ctx, order, userID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	SortPosts(posts, order, NewThread(comments, nil), joined)
	rankedPosts.WithLabelValues(NormalizeSort(order)).Add(float64(len(posts)))
	return posts, nil
}

// joinedPostIDs collects the post ids of every community userID has joined.
// It returns nil when no personalisation applies.
func (r *Ranker) joinedPostIDs(ctx context.Context, order, userID string) (map[string]bool, error) {
	if userID == "" || NormalizeSort(order) == SortActive {
		return nil, nil
	}
	var user models.User
	if err := r.store.FindByID(ctx, &user, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load user")
	}
	var communities []models.Community
	if err := r.store.FindByIDs(ctx, &communities, user.JoinedCommunities); err != nil {
		return nil, errors.Wrap(err, "load joined communities")
	}
	joined := map[string]bool{}
	for _, c := range communities {
		for _, id := range c.PostIDs {
			joined[id] = true
		}
	}
	return joined, nil
}

// compileTokens turns each token into a case-insensitive pattern. Tokens that
// are not valid expressions are matched literally.
func compileTokens(query string) []*regexp.Regexp {
	var patterns []*regexp.Regexp
	for _, tok := range strings.Fields(query) {
		re, err := regexp.Compile("(?i)" + tok)
		if err != nil {
			re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(tok))
		}
		patterns = append(patterns, re)
	}
	return patterns
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
