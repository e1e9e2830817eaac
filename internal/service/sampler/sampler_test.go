package sampler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmquorum/core/internal/model"
)

func pool(start, count int, genres ...int64) []model.CandidateItem {
	items := make([]model.CandidateItem, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, model.CandidateItem{
			ID:       int64(start + i),
			GenreIDs: genres,
		})
	}
	return items
}

func ids(items []model.CandidateItem) map[int64]bool {
	set := make(map[int64]bool, len(items))
	for _, item := range items {
		set[item.ID] = true
	}
	return set
}

func TestSelectNoRequestedGenres(t *testing.T) {
	s := New(WithRand(rand.New(rand.NewSource(1))))

	valid := pool(0, 200, 18)
	out := s.Select(valid, nil, 50)

	require.Len(t, out, 50)

	seen := ids(out)
	assert.Len(t, seen, 50, "selection must not repeat items")
	all := ids(valid)
	for id := range seen {
		assert.True(t, all[id], "selected item must come from the pool")
	}
}

func TestSelectTierPriority(t *testing.T) {
	s := New(WithRand(rand.New(rand.NewSource(7))))

	requested := []int64{18, 35}
	superset := pool(0, 10, 18, 35)
	overlap := pool(100, 40, 18)
	fallback := pool(200, 100, 99)

	valid := append(append(superset, overlap...), fallback...)
	out := s.Select(valid, requested, 50)

	require.Len(t, out, 50)

	supersetIDs := ids(superset)
	overlapIDs := ids(overlap)
	gotSuperset, gotOverlap := 0, 0
	for _, item := range out {
		switch {
		case supersetIDs[item.ID]:
			gotSuperset++
		case overlapIDs[item.ID]:
			gotOverlap++
		default:
			t.Fatalf("item %d selected from fallback while higher tiers could fill the set", item.ID)
		}
	}
	assert.Equal(t, 10, gotSuperset, "the whole superset tier must be taken first")
	assert.Equal(t, 40, gotOverlap)
}

func TestSelectFallsThroughToFallback(t *testing.T) {
	s := New(WithRand(rand.New(rand.NewSource(3))))

	requested := []int64{18}
	overlap := pool(0, 20, 18)
	fallback := pool(100, 100, 99)

	out := s.Select(append(overlap, fallback...), requested, 50)

	require.Len(t, out, 50)
	overlapIDs := ids(overlap)
	got := 0
	for _, item := range out {
		if overlapIDs[item.ID] {
			got++
		}
	}
	assert.Equal(t, 20, got, "every overlapping item must be in before any fallback")
}

func TestSelectShortPool(t *testing.T) {
	s := New(WithRand(rand.New(rand.NewSource(5))))

	out := s.Select(pool(0, 30, 18), []int64{18}, 50)

	assert.Len(t, out, 30)
}

func TestSelectDeterministicWithFixedSeed(t *testing.T) {
	valid := pool(0, 120, 18)

	first := New(WithRand(rand.New(rand.NewSource(42)))).Select(valid, nil, 50)
	second := New(WithRand(rand.New(rand.NewSource(42)))).Select(valid, nil, 50)

	assert.Equal(t, first, second)
}

func TestTierOf(t *testing.T) {
	requested := []int64{18, 35}

	assert.Equal(t, tierSuperset, tierOf(model.CandidateItem{GenreIDs: []int64{18, 35, 80}}, requested))
	assert.Equal(t, tierOverlap, tierOf(model.CandidateItem{GenreIDs: []int64{35}}, requested))
	assert.Equal(t, tierFallback, tierOf(model.CandidateItem{GenreIDs: []int64{99}}, requested))
	assert.Equal(t, tierSuperset, tierOf(model.CandidateItem{GenreIDs: []int64{99}}, nil))
}
