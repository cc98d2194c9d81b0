package services

import (
	"testing"

	"phreddit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinLeaveKeepsBothSidesInSync(t *testing.T) {
	f := newFixture(t)
	m := NewMembership(f.store, f.log)

	alice := f.user("alice", 100)
	c := f.community("swim", nil)

	for i := 0; i < 2; i++ {
		got, err := m.Join(f.ctx, c.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, models.IDList{alice.ID}, got.Members)
	}
	var u models.User
	f.reload(&u, alice.ID)
	assert.Equal(t, models.IDList{c.ID}, u.JoinedCommunities)

	for i := 0; i < 2; i++ {
		got, err := m.Leave(f.ctx, c.ID, alice.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Members)
	}
	f.reload(&u, alice.ID)
	assert.Empty(t, u.JoinedCommunities)

	_, err := m.Join(f.ctx, "missing", alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Join(f.ctx, c.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateCommunityCreatorFirst(t *testing.T) {
	f := newFixture(t)
	m := NewMembership(f.store, f.log)

	alice := f.user("alice", 100)
	bob := f.user("bob", 100)

	c, err := m.CreateCommunity(f.ctx, CommunityInput{Name: " Swim ", Description: "laps"}, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Swim", c.Name)
	assert.Equal(t, alice.ID, c.Creator())

	_, err = m.Join(f.ctx, c.ID, bob.ID)
	require.NoError(t, err)

	var got models.Community
	f.reload(&got, c.ID)
	assert.Equal(t, models.IDList{alice.ID, bob.ID}, got.Members)

	var u models.User
	f.reload(&u, alice.ID)
	assert.Equal(t, models.IDList{c.ID}, u.JoinedCommunities)

	_, err = m.CreateCommunity(f.ctx, CommunityInput{Name: "Swim", Description: "again"}, bob.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = m.CreateCommunity(f.ctx, CommunityInput{Name: "", Description: "x"}, bob.ID)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateCommunityNameUniqueness(t *testing.T) {
	f := newFixture(t)
	m := NewMembership(f.store, f.log)

	a := f.community("a", nil)
	f.community("b", nil)

	got, err := m.UpdateCommunity(f.ctx, a.ID, CommunityInput{Name: "a", Description: "new description"})
	require.NoError(t, err)
	assert.Equal(t, "new description", got.Description)

	_, err = m.UpdateCommunity(f.ctx, a.ID, CommunityInput{Name: "b", Description: "x"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = m.UpdateCommunity(f.ctx, "missing", CommunityInput{Name: "z", Description: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}
