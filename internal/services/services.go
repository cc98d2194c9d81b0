package services

import (
	"phreddit/internal/db"

	"github.com/sirupsen/logrus"
)

// Services bundles every service over one store.
type Services struct {
	Content     *ContentManager
	Ranker      *Ranker
	Votes       *VoteLedger
	Membership  *Membership
	Forum       *Forum
	Maintenance *Maintenance
}

func New(store *db.Store, log logrus.FieldLogger) *Services {
	content := NewContentManager(store, log)
	return &Services{
		Content:     content,
		Ranker:      NewRanker(store, log),
		Votes:       NewVoteLedger(store, log),
		Membership:  NewMembership(store, log),
		Forum:       NewForum(store, log),
		Maintenance: NewMaintenance(store, content, log),
	}
}
