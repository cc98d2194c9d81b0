package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phreddit_cascade_deletes_total",
		Help: "Records removed by cascading deletes, by kind.",
	}, []string{"kind"})

	cascadeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phreddit_cascade_duration_seconds",
		Help:    "Duration of cascading deletes, by entry point.",
		Buckets: prometheus.DefBuckets,
	}, []string{"entry"})

	votesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phreddit_votes_total",
		Help: "Accepted votes, by target kind and vote type.",
	}, []string{"target", "type"})

	rankedPosts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phreddit_ranked_posts_total",
		Help: "Posts returned by ranked listings, by sort order.",
	}, []string{"sort"})
)
