package services

import (
	"context"
	"strings"

	"phreddit/internal/db"
	"phreddit/internal/models"
	"phreddit/internal/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Forum handles accounts and authoring of posts, comments and link flairs.
// Deletes go through ContentManager.
type Forum struct {
	store *db.Store
	log   logrus.FieldLogger
}

func NewForum(store *db.Store, log logrus.FieldLogger) *Forum {
	return &Forum{store: store, log: log.WithField("component", "forum")}
}

// ---- users ----

type RegisterInput struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"displayName" binding:"required"`
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// Register creates an account with the default reputation.
func (f *Forum) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	user := &models.User{
		Email:       strings.TrimSpace(in.Email),
		DisplayName: strings.TrimSpace(in.DisplayName),
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Reputation:  models.DefaultReputation,
	}
	if err := validateStruct(user); err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password, user); err != nil {
		return nil, err
	}

	emailTaken, err := f.store.Exists(ctx, &models.User{}, db.Filter{"email": user.Email})
	if err != nil {
		return nil, errors.Wrap(err, "check email")
	}
	nameTaken, err := f.store.Exists(ctx, &models.User{}, db.Filter{"display_name": user.DisplayName})
	if err != nil {
		return nil, errors.Wrap(err, "check display name")
	}
	if emailTaken || nameTaken {
		return nil, conflict("Email or display name already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	user.PasswordHash = hash
	if err := f.store.Create(ctx, user); err != nil {
		return nil, errors.Wrap(err, "create user")
	}
	f.log.WithFields(logrus.Fields{"user_id": user.ID, "display_name": user.DisplayName}).Info("user registered")
	return user, nil
}

// checkPassword rejects passwords that contain the user's own names or email.
func checkPassword(password string, u *models.User) error {
	if password == "" {
		return invalid("password is required")
	}
	lower := strings.ToLower(password)
	local := strings.SplitN(u.Email, "@", 2)[0]
	for _, part := range []string{u.FirstName, u.LastName, u.DisplayName, local} {
		if part != "" && strings.Contains(lower, strings.ToLower(part)) {
			return invalid("Password must not contain your name, display name or email")
		}
	}
	return nil
}

// Authenticate returns the user matching email and password.
func (f *Forum) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var users []models.User
	if err := f.store.Find(ctx, &users, db.Filter{"email": strings.TrimSpace(email)}); err != nil {
		return nil, errors.Wrap(err, "load user")
	}
	if len(users) == 0 || !utils.CheckPasswordHash(password, users[0].PasswordHash) {
		return nil, ErrBadCredentials
	}
	return &users[0], nil
}

func (f *Forum) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := f.store.FindByID(ctx, &user, id); err != nil {
		return nil, lookup(err, "User")
	}
	return &user, nil
}

func (f *Forum) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := f.store.Find(ctx, &users, nil); err != nil {
		return nil, errors.Wrap(err, "load users")
	}
	return users, nil
}

// UserUpdate holds the admin-editable user fields. Nil fields are left unchanged.
type UserUpdate struct {
	Email       *string `json:"email"`
	DisplayName *string `json:"displayName"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Reputation  *int    `json:"reputation"`
	IsAdmin     *bool   `json:"isAdmin"`
}

// AdminUpdateUser applies an admin edit. A display name change is carried over
// to every post and comment attributed to the old name.
func (f *Forum) AdminUpdateUser(ctx context.Context, id string, in UserUpdate) (*models.User, error) {
	var user models.User
	err := f.store.Transaction(ctx, func(tx *db.Store) error {
		if err := tx.FindByID(ctx, &user, id); err != nil {
			return lookup(err, "User")
		}
		oldName := user.DisplayName

		patch := map[string]interface{}{}
		if in.Email != nil && *in.Email != user.Email {
			if err := uniqueUserField(ctx, tx, "email", *in.Email, id, "Email already in use"); err != nil {
				return err
			}
			user.Email = *in.Email
			patch["email"] = user.Email
		}
		if in.DisplayName != nil && *in.DisplayName != user.DisplayName {
			if err := uniqueUserField(ctx, tx, "display_name", *in.DisplayName, id, "Display name already in use"); err != nil {
				return err
			}
			user.DisplayName = *in.DisplayName
			patch["display_name"] = user.DisplayName
		}
		if in.FirstName != nil {
			user.FirstName = *in.FirstName
			patch["first_name"] = user.FirstName
		}
		if in.LastName != nil {
			user.LastName = *in.LastName
			patch["last_name"] = user.LastName
		}
		if in.Reputation != nil {
			user.Reputation = *in.Reputation
			patch["reputation"] = user.Reputation
		}
		if in.IsAdmin != nil {
			user.IsAdmin = *in.IsAdmin
			patch["is_admin"] = user.IsAdmin
		}
		if err := validateStruct(&user); err != nil {
			return err
		}
		if len(patch) == 0 {
			return nil
		}
		if err := tx.UpdateByID(ctx, &models.User{}, id, patch); err != nil {
			return lookup(err, "User")
		}

		if user.DisplayName != oldName {
			if err := tx.DB().WithContext(ctx).Model(&models.Post{}).
				Where("posted_by = ?", oldName).Update("posted_by", user.DisplayName).Error; err != nil {
				return errors.Wrap(err, "migrate post attribution")
			}
			if err := tx.DB().WithContext(ctx).Model(&models.Comment{}).
				Where("commented_by = ?", oldName).Update("commented_by", user.DisplayName).Error; err != nil {
				return errors.Wrap(err, "migrate comment attribution")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func uniqueUserField(ctx context.Context, tx *db.Store, column, value, exceptID, msg string) error {
	var users []models.User
	if err := tx.Find(ctx, &users, db.Filter{column: value}); err != nil {
		return errors.Wrapf(err, "check %s", column)
	}
	for _, u := range users {
		if u.ID != exceptID {
			return conflict("%s", msg)
		}
	}
	return nil
}

// 用户内容类型
const (
	ContentPosts       = "posts"
	ContentComments    = "comments"
	ContentCommunities = "communities"
)

// UserContent lists what a user has posted, commented or created.
// Unknown content types yield an empty list.
func (f *Forum) UserContent(ctx context.Context, userID, contentType string) (interface{}, error) {
	user, err := f.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch contentType {
	case "", ContentPosts:
		posts := []models.Post{}
		err = f.store.Find(ctx, &posts, db.Filter{"posted_by": user.DisplayName})
		return posts, err
	case ContentComments:
		comments := []models.Comment{}
		err = f.store.Find(ctx, &comments, db.Filter{"commented_by": user.DisplayName})
		return comments, err
	case ContentCommunities:
		var all []models.Community
		if err := f.store.FindContaining(ctx, &all, "members", userID); err != nil {
			return nil, errors.Wrap(err, "load communities")
		}
		created := []models.Community{}
		for _, c := range all {
			if c.Creator() == userID {
				created = append(created, c)
			}
		}
		return created, nil
	default:
		return []interface{}{}, nil
	}
}

// ---- posts ----

type PostInput struct {
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	LinkFlairID *string `json:"linkFlairID"`
	PostedBy    string  `json:"postedBy"`
	CommunityID string  `json:"communityID"`
}

// CreatePost stores a post and appends it to its community when one is given.
func (f *Forum) CreatePost(ctx context.Context, in PostInput) (*models.Post, error) {
	post := &models.Post{
		Title:       strings.TrimSpace(in.Title),
		Content:     in.Content,
		LinkFlairID: emptyToNil(in.LinkFlairID),
		PostedBy:    in.PostedBy,
	}
	if err := validateStruct(post); err != nil {
		return nil, err
	}
	if err := CheckHyperlinks(post.Content); err != nil {
		return nil, err
	}

	err := f.store.Transaction(ctx, func(tx *db.Store) error {
		if post.LinkFlairID != nil {
			var flair models.LinkFlair
			if err := tx.FindByID(ctx, &flair, *post.LinkFlairID); err != nil {
				return lookup(err, "Link flair")
			}
		}
		var community models.Community
		if in.CommunityID != "" {
			if err := tx.FindByID(ctx, &community, in.CommunityID); err != nil {
				return lookup(err, "Community")
			}
		}
		if err := tx.Create(ctx, post); err != nil {
			return errors.Wrap(err, "create post")
		}
		if in.CommunityID == "" {
			return nil
		}
		postIDs, _ := community.PostIDs.With(post.ID)
		return tx.UpdateByID(ctx, &models.Community{}, community.ID, map[string]interface{}{"post_ids": postIDs})
	})
	if err != nil {
		return nil, err
	}
	f.log.WithFields(logrus.Fields{"post_id": post.ID, "community_id": in.CommunityID}).Info("post created")
	return post, nil
}

// UpdatePost edits title, content and link flair.
func (f *Forum) UpdatePost(ctx context.Context, id string, in PostInput) (*models.Post, error) {
	var post models.Post
	if err := f.store.FindByID(ctx, &post, id); err != nil {
		return nil, lookup(err, "Post")
	}
	post.Title = strings.TrimSpace(in.Title)
	post.Content = in.Content
	post.LinkFlairID = emptyToNil(in.LinkFlairID)
	if err := validateStruct(&post); err != nil {
		return nil, err
	}
	if err := CheckHyperlinks(post.Content); err != nil {
		return nil, err
	}

	err := f.store.UpdateByID(ctx, &models.Post{}, id, map[string]interface{}{
		"title":         post.Title,
		"content":       post.Content,
		"link_flair_id": post.LinkFlairID,
	})
	if err != nil {
		return nil, lookup(err, "Post")
	}
	return &post, nil
}

// GetPost loads a post with its rendered content and thread size.
func (f *Forum) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := f.store.FindByID(ctx, &post, id); err != nil {
		return nil, lookup(err, "Post")
	}
	comments, err := f.threadComments(ctx, &post)
	if err != nil {
		return nil, err
	}
	post.CommentCount = len(comments)
	post.ContentHTML = utils.RenderMarkdown(post.Content)
	return &post, nil
}

// IncrementViews bumps the view counter and returns the updated post.
func (f *Forum) IncrementViews(ctx context.Context, id string) (*models.Post, error) {
	if err := f.store.Increment(ctx, &models.Post{}, id, "views", 1); err != nil {
		return nil, lookup(err, "Post")
	}
	var post models.Post
	if err := f.store.FindByID(ctx, &post, id); err != nil {
		return nil, lookup(err, "Post")
	}
	return &post, nil
}

// PostComments returns every comment in the post's tree, parents before replies.
func (f *Forum) PostComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var post models.Post
	if err := f.store.FindByID(ctx, &post, postID); err != nil {
		return nil, lookup(err, "Post")
	}
	comments, err := f.threadComments(ctx, &post)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		comments[i].ContentHTML = utils.RenderMarkdown(comments[i].Content)
	}
	return comments, nil
}

// threadComments loads the post's descendant comments breadth by breadth.
func (f *Forum) threadComments(ctx context.Context, post *models.Post) ([]models.Comment, error) {
	var loaded []models.Comment
	seen := map[string]bool{}
	frontier := []string(post.CommentIDs)
	for len(frontier) > 0 {
		var ids []string
		for _, id := range frontier {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		var batch []models.Comment
		if err := f.store.FindByIDs(ctx, &batch, ids); err != nil {
			return nil, errors.Wrap(err, "load comments")
		}
		frontier = frontier[:0:0]
		for _, c := range batch {
			frontier = append(frontier, c.CommentIDs...)
		}
		loaded = append(loaded, batch...)
	}

	out := NewThread(loaded, nil).Descendants(post.CommentIDs)
	if out == nil {
		out = []models.Comment{}
	}
	return out, nil
}

// ---- comments ----

type CommentInput struct {
	Content     string  `json:"content"`
	CommentedBy string  `json:"commentedBy"`
	PostID      *string `json:"postID"`
	ParentID    *string `json:"parentID"`
}

// CreateComment stores a comment and links it under its parent comment, or
// under the post when it is top-level. Replies inherit the parent's post.
func (f *Forum) CreateComment(ctx context.Context, in CommentInput) (*models.Comment, error) {
	comment := &models.Comment{
		Content:     in.Content,
		CommentedBy: in.CommentedBy,
		PostID:      emptyToNil(in.PostID),
		ParentID:    emptyToNil(in.ParentID),
	}
	if err := validateStruct(comment); err != nil {
		return nil, err
	}
	if err := CheckHyperlinks(comment.Content); err != nil {
		return nil, err
	}
	if comment.PostID == nil && comment.ParentID == nil {
		return nil, invalid("postID or parentID is required")
	}

	err := f.store.Transaction(ctx, func(tx *db.Store) error {
		if comment.ParentID != nil {
			var parent models.Comment
			if err := tx.FindByID(ctx, &parent, *comment.ParentID); err != nil {
				return lookup(err, "Parent comment")
			}
			if comment.PostID == nil {
				comment.PostID = parent.PostID
			}
			if err := tx.Create(ctx, comment); err != nil {
				return errors.Wrap(err, "create comment")
			}
			children, _ := parent.CommentIDs.With(comment.ID)
			return tx.UpdateByID(ctx, &models.Comment{}, parent.ID, map[string]interface{}{"comment_ids": children})
		}

		var post models.Post
		if err := tx.FindByID(ctx, &post, *comment.PostID); err != nil {
			return lookup(err, "Post")
		}
		if err := tx.Create(ctx, comment); err != nil {
			return errors.Wrap(err, "create comment")
		}
		children, _ := post.CommentIDs.With(comment.ID)
		return tx.UpdateByID(ctx, &models.Post{}, post.ID, map[string]interface{}{"comment_ids": children})
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment edits the comment text.
func (f *Forum) UpdateComment(ctx context.Context, id, content string) (*models.Comment, error) {
	var comment models.Comment
	if err := f.store.FindByID(ctx, &comment, id); err != nil {
		return nil, lookup(err, "Comment")
	}
	comment.Content = content
	if err := validateStruct(&comment); err != nil {
		return nil, err
	}
	if err := CheckHyperlinks(content); err != nil {
		return nil, err
	}
	if err := f.store.UpdateByID(ctx, &models.Comment{}, id, map[string]interface{}{"content": content}); err != nil {
		return nil, lookup(err, "Comment")
	}
	return &comment, nil
}

func (f *Forum) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := f.store.FindByID(ctx, &comment, id); err != nil {
		return nil, lookup(err, "Comment")
	}
	comment.ContentHTML = utils.RenderMarkdown(comment.Content)
	return &comment, nil
}

func (f *Forum) ListComments(ctx context.Context) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := f.store.Find(ctx, &comments, nil); err != nil {
		return nil, errors.Wrap(err, "load comments")
	}
	return comments, nil
}

// ---- link flairs ----

func (f *Forum) CreateLinkFlair(ctx context.Context, content string) (*models.LinkFlair, error) {
	flair := &models.LinkFlair{Content: strings.TrimSpace(content)}
	if err := validateStruct(flair); err != nil {
		return nil, err
	}
	if err := f.store.Create(ctx, flair); err != nil {
		return nil, errors.Wrap(err, "create link flair")
	}
	return flair, nil
}

func (f *Forum) ListLinkFlairs(ctx context.Context) ([]models.LinkFlair, error) {
	flairs := []models.LinkFlair{}
	if err := f.store.Find(ctx, &flairs, nil); err != nil {
		return nil, errors.Wrap(err, "load link flairs")
	}
	return flairs, nil
}

// ---- communities ----

func (f *Forum) GetCommunity(ctx context.Context, id string) (*models.Community, error) {
	var community models.Community
	if err := f.store.FindByID(ctx, &community, id); err != nil {
		return nil, lookup(err, "Community")
	}
	return &community, nil
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
