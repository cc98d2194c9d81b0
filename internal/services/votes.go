package services

import (
	"context"

	"phreddit/internal/db"
	"phreddit/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// 投票类型
const (
	VoteUp   = "upvote"
	VoteDown = "downvote"
)

// 投票目标
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// MinVoteReputation 投票所需的最低声望
const MinVoteReputation = 50

// 作者声望变动
const (
	RepUpvote       = 5
	RepDownvote     = -10
	RepUndoDownvote = 10 // 踩改赞时先撤销踩
	RepUndoUpvote   = -5 // 赞改踩时先撤销赞
)

// VoteResult is the vote projection returned to clients.
type VoteResult struct {
	ID           string `json:"id"`
	Votes        int    `json:"votes"`
	HasUpvoted   bool   `json:"hasUpvoted"`
	HasDownvoted bool   `json:"hasDownvoted"`
}

// votable is the part of a post or comment the ledger works on.
type votable struct {
	id     string
	author string
	votes  int
	up     models.IDList
	down   models.IDList
}

// VoteLedger 处理帖子和评论的投票以及作者声望变动
type VoteLedger struct {
	store *db.Store
	log   logrus.FieldLogger
}

func NewVoteLedger(store *db.Store, log logrus.FieldLogger) *VoteLedger {
	return &VoteLedger{store: store, log: log.WithField("component", "votes")}
}

// Vote records userID's vote on a post or comment. Switching polarity first
// undoes the earlier vote. Voting the same way twice is rejected.
func (l *VoteLedger) Vote(ctx context.Context, target, itemID, userID, voteType string) (*VoteResult, error) {
	if voteType != VoteUp && voteType != VoteDown {
		return nil, invalid("Invalid vote type")
	}
	var model interface{}
	switch target {
	case TargetPost:
		model = &models.Post{}
	case TargetComment:
		model = &models.Comment{}
	default:
		return nil, invalid("Invalid vote target")
	}

	var result *VoteResult
	err := l.store.Transaction(ctx, func(tx *db.Store) error {
		item, err := loadVotable(ctx, tx, target, itemID)
		if err != nil {
			return err
		}

		var voter models.User
		if err := tx.FindByID(ctx, &voter, userID); err != nil {
			return lookup(err, "User")
		}
		if voter.Reputation < MinVoteReputation {
			return ErrLowReputation
		}

		var authors []models.User
		if err := tx.Find(ctx, &authors, db.Filter{"display_name": item.author}); err != nil {
			return errors.Wrap(err, "load author")
		}
		if len(authors) == 0 {
			return notFound("Author")
		}
		author := authors[0]

		delta, err := apply(item, userID, voteType)
		if err != nil {
			return err
		}

		err = tx.UpdateByID(ctx, model, item.id, map[string]interface{}{
			"votes":        item.votes,
			"upvoted_by":   item.up,
			"downvoted_by": item.down,
		})
		if err != nil {
			return errors.Wrapf(err, "save %s votes", target)
		}
		if err := tx.Increment(ctx, &models.User{}, author.ID, "reputation", delta); err != nil {
			return errors.Wrap(err, "adjust author reputation")
		}

		result = &VoteResult{
			ID:           item.id,
			Votes:        item.votes,
			HasUpvoted:   item.up.Contains(userID),
			HasDownvoted: item.down.Contains(userID),
		}
		l.log.WithFields(logrus.Fields{
			"target": target, "id": item.id, "type": voteType, "author_delta": delta,
		}).Debug("vote recorded")
		return nil
	})
	if err != nil {
		return nil, err
	}
	votesCast.WithLabelValues(target, voteType).Inc()
	return result, nil
}

// apply mutates item for the vote and returns the author's reputation change.
func apply(item *votable, userID, voteType string) (int, error) {
	delta := 0
	switch voteType {
	case VoteUp:
		if item.up.Contains(userID) {
			return 0, newError(ErrAlreadyVoted, "Already upvoted")
		}
		var undone bool
		if item.down, undone = item.down.Without(userID); undone {
			item.votes++
			delta += RepUndoDownvote
		}
		item.up, _ = item.up.With(userID)
		item.votes++
		delta += RepUpvote
	case VoteDown:
		if item.down.Contains(userID) {
			return 0, newError(ErrAlreadyVoted, "Already downvoted")
		}
		var undone bool
		if item.up, undone = item.up.Without(userID); undone {
			item.votes--
			delta += RepUndoUpvote
		}
		item.down, _ = item.down.With(userID)
		item.votes--
		delta += RepDownvote
	}
	return delta, nil
}

func loadVotable(ctx context.Context, tx *db.Store, target, id string) (*votable, error) {
	if target == TargetPost {
		var p models.Post
		if err := tx.FindByID(ctx, &p, id); err != nil {
			return nil, lookup(err, "Post")
		}
		return &votable{id: p.ID, author: p.PostedBy, votes: p.Votes, up: p.UpvotedBy, down: p.DownvotedBy}, nil
	}
	var c models.Comment
	if err := tx.FindByID(ctx, &c, id); err != nil {
		return nil, lookup(err, "Comment")
	}
	return &votable{id: c.ID, author: c.CommentedBy, votes: c.Votes, up: c.UpvotedBy, down: c.DownvotedBy}, nil
}
