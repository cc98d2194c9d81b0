package services

import (
	"testing"

	"phreddit/internal/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteTransitions(t *testing.T) {
	f := newFixture(t)
	l := NewVoteLedger(f.store, f.log)

	author := f.user("author", 100)
	voter := f.user("voter", 60)
	post := f.post("P", "x", "author", day(1))

	steps := []struct {
		vote       string
		votes      int
		reputation int
		up, down   bool
	}{
		{VoteUp, 1, 105, true, false},
		{VoteDown, -1, 90, false, true}, // -5 undo, -10 downvote
		{VoteUp, 1, 105, true, false},   // +10 undo, +5 upvote
	}
	for _, s := range steps {
		res, err := l.Vote(f.ctx, TargetPost, post.ID, voter.ID, s.vote)
		require.NoError(t, err, s.vote)
		assert.Equal(t, s.votes, res.Votes)
		assert.Equal(t, s.up, res.HasUpvoted)
		assert.Equal(t, s.down, res.HasDownvoted)

		var a models.User
		f.reload(&a, author.ID)
		assert.Equal(t, s.reputation, a.Reputation)
	}

	var got models.Post
	f.reload(&got, post.ID)
	assert.Equal(t, 1, got.Votes)
	assert.Equal(t, models.IDList{voter.ID}, got.UpvotedBy)
	assert.Empty(t, got.DownvotedBy)
}

func TestVoteRejectsDuplicatePolarity(t *testing.T) {
	f := newFixture(t)
	l := NewVoteLedger(f.store, f.log)

	f.user("author", 100)
	voter := f.user("voter", 100)
	post := f.post("P", "x", "author", day(1))
	c := f.comment("C", "author", day(2), post, nil)

	_, err := l.Vote(f.ctx, TargetComment, c.ID, voter.ID, VoteDown)
	require.NoError(t, err)

	_, err = l.Vote(f.ctx, TargetComment, c.ID, voter.ID, VoteDown)
	assert.True(t, errors.Is(err, ErrAlreadyVoted))
	assert.EqualError(t, err, "Already downvoted")

	var got models.Comment
	f.reload(&got, c.ID)
	assert.Equal(t, -1, got.Votes)
}

func TestVoteRequiresReputation(t *testing.T) {
	f := newFixture(t)
	l := NewVoteLedger(f.store, f.log)

	f.user("author", 100)
	low := f.user("low", 49)
	edge := f.user("edge", 50)
	post := f.post("P", "x", "author", day(1))

	_, err := l.Vote(f.ctx, TargetPost, post.ID, low.ID, VoteUp)
	assert.ErrorIs(t, err, ErrLowReputation)
	assert.True(t, errors.Is(err, ErrPermissionDenied))

	_, err = l.Vote(f.ctx, TargetPost, post.ID, edge.ID, VoteUp)
	assert.NoError(t, err)
}

func TestVoteNotFoundAndInvalid(t *testing.T) {
	f := newFixture(t)
	l := NewVoteLedger(f.store, f.log)

	voter := f.user("voter", 100)
	orphan := f.post("P", "x", "nobody", day(1))

	_, err := l.Vote(f.ctx, TargetPost, "missing", voter.ID, VoteUp)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.Vote(f.ctx, TargetPost, orphan.ID, "missing", VoteUp)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.Vote(f.ctx, TargetPost, orphan.ID, voter.ID, VoteUp)
	assert.ErrorIs(t, err, ErrNotFound, "author resolved by display name")

	_, err = l.Vote(f.ctx, TargetPost, orphan.ID, voter.ID, "sideways")
	assert.ErrorIs(t, err, ErrInvalid)
}
