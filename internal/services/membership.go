package services

import (
	"context"
	"strings"

	"phreddit/internal/db"
	"phreddit/internal/models"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Membership keeps community member lists and users' joined lists in step.
type Membership struct {
	store *db.Store
	log   logrus.FieldLogger
}

func NewMembership(store *db.Store, log logrus.FieldLogger) *Membership {
	return &Membership{store: store, log: log.WithField("component", "membership")}
}

// CommunityInput holds the editable community fields.
type CommunityInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Join adds userID to the community and the community to the user. Joining twice is a no-op.
func (m *Membership) Join(ctx context.Context, communityID, userID string) (*models.Community, error) {
	return m.change(ctx, communityID, userID, true)
}

// Leave is the inverse of Join. Leaving a community one is not in is a no-op.
func (m *Membership) Leave(ctx context.Context, communityID, userID string) (*models.Community, error) {
	return m.change(ctx, communityID, userID, false)
}

func (m *Membership) change(ctx context.Context, communityID, userID string, join bool) (*models.Community, error) {
	var community models.Community
	err := m.store.Transaction(ctx, func(tx *db.Store) error {
		if err := tx.FindByID(ctx, &community, communityID); err != nil {
			return lookup(err, "Community")
		}
		var user models.User
		if err := tx.FindByID(ctx, &user, userID); err != nil {
			return lookup(err, "User")
		}

		var membersChanged, joinedChanged bool
		if join {
			community.Members, membersChanged = community.Members.With(userID)
			user.JoinedCommunities, joinedChanged = user.JoinedCommunities.With(communityID)
		} else {
			community.Members, membersChanged = community.Members.Without(userID)
			user.JoinedCommunities, joinedChanged = user.JoinedCommunities.Without(communityID)
		}

		if membersChanged {
			err := tx.UpdateByID(ctx, &models.Community{}, community.ID, map[string]interface{}{"members": community.Members})
			if err != nil {
				return errors.Wrap(err, "update members")
			}
		}
		if joinedChanged {
			err := tx.UpdateByID(ctx, &models.User{}, user.ID, map[string]interface{}{"joined_communities": user.JoinedCommunities})
			if err != nil {
				return errors.Wrap(err, "update joined communities")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log.WithFields(logrus.Fields{"community_id": communityID, "user_id": userID, "join": join}).Debug("membership changed")
	return &community, nil
}

// CreateCommunity creates a community with creatorID as its first member.
func (m *Membership) CreateCommunity(ctx context.Context, in CommunityInput, creatorID string) (*models.Community, error) {
	community := &models.Community{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Members:     models.IDList{creatorID},
	}
	if err := validateStruct(community); err != nil {
		return nil, err
	}

	err := m.store.Transaction(ctx, func(tx *db.Store) error {
		var creator models.User
		if err := tx.FindByID(ctx, &creator, creatorID); err != nil {
			return lookup(err, "User")
		}
		if err := nameTaken(ctx, tx, community.Name, ""); err != nil {
			return err
		}
		if err := tx.Create(ctx, community); err != nil {
			return errors.Wrap(err, "create community")
		}
		joined, _ := creator.JoinedCommunities.With(community.ID)
		return tx.UpdateByID(ctx, &models.User{}, creator.ID, map[string]interface{}{"joined_communities": joined})
	})
	if err != nil {
		return nil, err
	}
	m.log.WithFields(logrus.Fields{"community_id": community.ID, "name": community.Name}).Info("community created")
	return community, nil
}

// UpdateCommunity changes the name and description, keeping names unique.
func (m *Membership) UpdateCommunity(ctx context.Context, id string, in CommunityInput) (*models.Community, error) {
	var community models.Community
	if err := m.store.FindByID(ctx, &community, id); err != nil {
		return nil, lookup(err, "Community")
	}
	community.Name = strings.TrimSpace(in.Name)
	community.Description = strings.TrimSpace(in.Description)
	if err := validateStruct(&community); err != nil {
		return nil, err
	}
	if err := nameTaken(ctx, m.store, community.Name, id); err != nil {
		return nil, err
	}

	err := m.store.UpdateByID(ctx, &models.Community{}, id, map[string]interface{}{
		"name":        community.Name,
		"description": community.Description,
	})
	if err != nil {
		return nil, lookup(err, "Community")
	}
	return &community, nil
}

// nameTaken reports ErrConflict when another community (not exceptID) uses name.
func nameTaken(ctx context.Context, store *db.Store, name, exceptID string) error {
	var existing []models.Community
	if err := store.Find(ctx, &existing, db.Filter{"name": name}); err != nil {
		return errors.Wrap(err, "check community name")
	}
	for _, c := range existing {
		if c.ID != exceptID {
			return conflict("A community with this name already exists")
		}
	}
	return nil
}
