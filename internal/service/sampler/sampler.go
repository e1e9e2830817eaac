package sampler

import (
	"log/slog"
	"math/rand"
	"slices"

	"github.com/filmquorum/core/internal/model"
)

const (
	tierSuperset = iota
	tierOverlap
	tierFallback
	tierCount
)

// Sampler partitions validated candidates into priority tiers by how
// well their genres overlap the requested ones, shuffles each tier
// uniformly, and greedily fills the output tier by tier.
type Sampler struct {
	rng    *rand.Rand
	logger *slog.Logger
}

type Option func(*Sampler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sampler) {
		s.logger = logger
	}
}

// WithRand injects a deterministic source; tests use it, production
// wiring passes nothing and gets a time-seeded source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Sampler) {
		s.rng = rng
	}
}

func New(opts ...Option) *Sampler {
	s := &Sampler{
		rng:    rand.New(rand.NewSource(rand.Int63())),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns exactly n items whenever the pool allows it. A short
// pool yields fewer with a shortage warning; the caller decides
// whether that aborts the run. Within a tier order is purely the
// random permutation, no secondary key.
func (s *Sampler) Select(valid []model.CandidateItem, requestedGenres []int64, n int) []model.CandidateItem {
	tiers := s.partition(valid, requestedGenres)

	for i := range tiers {
		s.rng.Shuffle(len(tiers[i]), func(a, b int) {
			tiers[i][a], tiers[i][b] = tiers[i][b], tiers[i][a]
		})
	}

	out := make([]model.CandidateItem, 0, n)
	for _, tier := range tiers {
		for _, item := range tier {
			if len(out) == n {
				return out
			}
			out = append(out, item)
		}
	}

	if len(out) < n {
		s.logger.Warn("candidate pool shortage",
			slog.Int("selected", len(out)),
			slog.Int("wanted", n))
	}
	return out
}

func (s *Sampler) partition(valid []model.CandidateItem, requestedGenres []int64) [tierCount][]model.CandidateItem {
	var tiers [tierCount][]model.CandidateItem

	for _, item := range valid {
		tier := tierOf(item, requestedGenres)
		tiers[tier] = append(tiers[tier], item)
	}
	return tiers
}

// tierOf: with no requested genres nothing discriminates and everything
// is top tier. Otherwise a genre superset is tier 1, any overlap tier 2
// and the popular remainder tier 3.
func tierOf(item model.CandidateItem, requested []int64) int {
	if len(requested) == 0 {
		return tierSuperset
	}

	matches := 0
	for _, id := range requested {
		if slices.Contains(item.GenreIDs, id) {
			matches++
		}
	}

	switch {
	case matches == len(requested):
		return tierSuperset
	case matches > 0:
		return tierOverlap
	default:
		return tierFallback
	}
}
