package services

import (
	"context"
	"sort"
	"time"

	"phreddit/internal/db"
	"phreddit/internal/models"
	"phreddit/internal/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Maintenance holds one-off data hygiene jobs. None of them run per request.
type Maintenance struct {
	store   *db.Store
	content *ContentManager
	log     logrus.FieldLogger
}

func NewMaintenance(store *db.Store, content *ContentManager, log logrus.FieldLogger) *Maintenance {
	return &Maintenance{store: store, content: content, log: log.WithField("component", "maintenance")}
}

// DedupeReport counts what RemoveDuplicates deleted.
type DedupeReport struct {
	Communities int `json:"communities"`
	Posts       int `json:"posts"`
}

// RemoveDuplicates keeps the oldest community per name and the oldest post per
// title and deletes the rest. Duplicate posts go through the post cascade.
func (m *Maintenance) RemoveDuplicates(ctx context.Context) (*DedupeReport, error) {
	report := &DedupeReport{}

	var communities []models.Community
	if err := m.store.Find(ctx, &communities, nil); err != nil {
		return nil, errors.Wrap(err, "load communities")
	}
	sort.SliceStable(communities, func(i, j int) bool {
		return communities[i].StartDate.Before(communities[j].StartDate)
	})
	names := map[string]bool{}
	var dupCommunities []string
	for _, c := range communities {
		if names[c.Name] {
			dupCommunities = append(dupCommunities, c.ID)
			continue
		}
		names[c.Name] = true
	}
	for _, id := range dupCommunities {
		if _, err := m.store.PullFromAll(ctx, &models.User{}, "joined_communities", id); err != nil {
			return nil, errors.Wrapf(err, "pull community %s from users", id)
		}
	}
	n, err := m.store.DeleteMany(ctx, &models.Community{}, dupCommunities)
	if err != nil {
		return nil, errors.Wrap(err, "delete duplicate communities")
	}
	report.Communities = int(n)

	var posts []models.Post
	if err := m.store.Find(ctx, &posts, nil); err != nil {
		return nil, errors.Wrap(err, "load posts")
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PostedDate.Before(posts[j].PostedDate)
	})
	titles := map[string]bool{}
	for _, p := range posts {
		if !titles[p.Title] {
			titles[p.Title] = true
			continue
		}
		if err := ignoreNotFound(m.content.DeletePostCascade(ctx, p.ID)); err != nil {
			return nil, err
		}
		report.Posts++
	}

	m.log.WithFields(logrus.Fields{
		"communities": report.Communities,
		"posts":       report.Posts,
	}).Info("Duplicate check completed")
	return report, nil
}

// AdminAccount is the administrator Seed creates.
type AdminAccount struct {
	Email       string
	DisplayName string
	Password    string
}

// Seed populates an empty database with an administrator and sample content.
func (m *Maintenance) Seed(ctx context.Context, admin AdminAccount) error {
	if admin.Email == "" || admin.DisplayName == "" || admin.Password == "" {
		return invalid("admin email, display name and password are required")
	}
	exists, err := m.store.Exists(ctx, &models.User{}, db.Filter{"email": admin.Email})
	if err != nil {
		return errors.Wrap(err, "check admin")
	}
	if exists {
		return conflict("admin %s already exists", admin.Email)
	}

	err = m.store.Transaction(ctx, func(tx *db.Store) error {
		return seedData(ctx, tx, admin)
	})
	if err != nil {
		return err
	}
	m.log.WithFields(logrus.Fields{"email": admin.Email, "display_name": admin.DisplayName}).Info("Database initialized")
	return nil
}

type seedUser struct {
	email, displayName, first, last string
	reputation                      int
}

var seedUsers = []seedUser{
	{"swimstar@example.com", "swimstar", "Michael", "Dolphin", 150},
	{"aquachamp@example.com", "aquachamp", "Katie", "Waters", 200},
	{"barbielover@example.com", "barbielover", "Ken", "Dreamhouse", 300},
	{"butterflykick@example.com", "butterflykick", "Fly", "Kicker", 50},
	{"margot@example.com", "MargotFan", "Margot", "Robbie", 250},
	{"olympicgold@example.com", "olympicgold", "Gold", "Medalist", 100},
	{"kenergy@example.com", "kenergy", "Ryan", "Gosling", 100},
}

func seedData(ctx context.Context, tx *db.Store, admin AdminAccount) error {
	hash, err := utils.HashPassword(admin.Password)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	adminUser := &models.User{
		Email: admin.Email, DisplayName: admin.DisplayName, FirstName: "Admin", LastName: "User",
		PasswordHash: hash, Reputation: 1000, IsAdmin: true,
	}
	if err := tx.Create(ctx, adminUser); err != nil {
		return errors.Wrap(err, "create admin")
	}

	sampleHash, err := utils.HashPassword("password123")
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	users := make([]*models.User, len(seedUsers))
	for i, su := range seedUsers {
		users[i] = &models.User{
			Email: su.email, DisplayName: su.displayName, FirstName: su.first, LastName: su.last,
			PasswordHash: sampleHash, Reputation: su.reputation,
		}
		if err := tx.Create(ctx, users[i]); err != nil {
			return errors.Wrapf(err, "create user %s", su.displayName)
		}
	}

	flairs := make([]*models.LinkFlair, 0, 4)
	for _, content := range []string{"Technique Question", "Olympic Discussion", "Barbie World", "Kenergy Only"} {
		f := &models.LinkFlair{Content: content}
		if err := tx.Create(ctx, f); err != nil {
			return errors.Wrap(err, "create link flair")
		}
		flairs = append(flairs, f)
	}

	date := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02 15:04", s)
		return t
	}

	post1 := &models.Post{
		Title:       "Help with butterfly stroke technique? I keep sinking in the middle",
		Content:     "So I've been swimming for about a year now and I'm trying to learn the butterfly stroke. I can do freestyle and breaststroke fine, but every time I try butterfly I end up sinking in the middle of the pool. My coach says my timing is off but I don't understand what that means. Any tips from experienced swimmers? Also, do I need to be stronger to do this stroke properly?",
		LinkFlairID: &flairs[0].ID,
		PostedBy:    "butterflykick",
		PostedDate:  date("2024-08-23 01:19"),
		Views:       14,
		Votes:       -5,
		UpvotedBy:   models.IDList{users[1].ID},
		DownvotedBy: models.IDList{users[0].ID, users[2].ID},
	}
	post2 := &models.Post{
		Title:       "Barbie movie changed my life!",
		Content:     "Just saw the Barbie movie for the fourth time and I'm still discovering new details! The way they handled feminism, capitalism, and existential crisis was brilliant.\n\nAnyone else think the beach scene was a direct reference to Plato's allegory of the cave? And that ending... I was in tears. What were your favorite moments?",
		LinkFlairID: &flairs[2].ID,
		PostedBy:    "MargotFan",
		PostedDate:  date("2024-09-09 14:24"),
		Views:       1023,
		Votes:       8,
		UpvotedBy:   models.IDList{users[0].ID, users[1].ID, users[2].ID},
	}
	for _, p := range []*models.Post{post1, post2} {
		if err := tx.Create(ctx, p); err != nil {
			return errors.Wrap(err, "create post")
		}
	}

	type seedComment struct {
		content, by, date string
		post              *models.Post
		parent            int // index into created, -1 for top-level
	}
	thread := []seedComment{
		{"Have you tried using a kickboard to isolate the lower body movement? That really helped me with butterfly.", "aquachamp", "2024-08-23 08:22", post1, -1},
		{"I recommend watching YouTube tutorials on butterfly technique. Your timing might be off. Try focusing on the undulation motion first.", "barbielover", "2024-08-23 10:57", post1, -1},
		{"Actually, the flutter kick is great for beginners! Keep at it and you'll be doing butterfly in no time.", "swimstar", "2024-08-23 09:31", post1, 0},
		{"Margot Robbie was perfect casting for Barbie.", "barbielover", "2024-09-10 06:41", post2, -1},
		{"Saw the movie 5 times already. The patriarchy will never recover!", "olympicgold", "2024-09-09 17:03", post2, -1},
		{"Ken was the real star of the movie tbh.", "kenergy", "2024-09-10 07:18", post2, 3},
		{"I have all the Barbie movie merch, totally worth it!", "olympicgold", "2024-09-10 09:43", post2, 5},
	}
	created := make([]*models.Comment, len(thread))
	for i, sc := range thread {
		c := &models.Comment{
			Content:       sc.content,
			CommentedBy:   sc.by,
			CommentedDate: date(sc.date),
			PostID:        &sc.post.ID,
		}
		if sc.parent >= 0 {
			c.ParentID = &created[sc.parent].ID
		}
		if err := tx.Create(ctx, c); err != nil {
			return errors.Wrap(err, "create comment")
		}
		created[i] = c

		if sc.parent >= 0 {
			parent := created[sc.parent]
			parent.CommentIDs = append(parent.CommentIDs, c.ID)
			err = tx.UpdateByID(ctx, &models.Comment{}, parent.ID, map[string]interface{}{"comment_ids": parent.CommentIDs})
		} else {
			sc.post.CommentIDs = append(sc.post.CommentIDs, c.ID)
			err = tx.UpdateByID(ctx, &models.Post{}, sc.post.ID, map[string]interface{}{"comment_ids": sc.post.CommentIDs})
		}
		if err != nil {
			return errors.Wrap(err, "link comment")
		}
	}

	communities := []*models.Community{
		{
			Name:        "SwimGeeks",
			Description: "For all things swimming - technique, training, competition and community.",
			PostIDs:     models.IDList{post1.ID},
			StartDate:   date("2014-08-10 04:18"),
			Members:     models.IDList{users[0].ID, users[1].ID, users[2].ID, users[3].ID},
		},
		{
			Name:        "Barbie World",
			Description: "Life in plastic, it's fantastic! Everything Barbie, from movies to merchandise.",
			PostIDs:     models.IDList{post2.ID},
			StartDate:   date("2017-05-04 08:32"),
			Members:     models.IDList{users[4].ID, users[2].ID},
		},
	}
	for _, c := range communities {
		if err := tx.Create(ctx, c); err != nil {
			return errors.Wrap(err, "create community")
		}
		for _, memberID := range c.Members {
			for _, u := range users {
				if u.ID != memberID {
					continue
				}
				u.JoinedCommunities, _ = u.JoinedCommunities.With(c.ID)
				if err := tx.UpdateByID(ctx, &models.User{}, u.ID, map[string]interface{}{"joined_communities": u.JoinedCommunities}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
