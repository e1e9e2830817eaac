package qualitygate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/filmquorum/core/internal/model"
)

func validMovie() model.CandidateItem {
	return model.CandidateItem{
		ID:               603,
		Title:            "The Matrix",
		ReleaseDate:      "1999-03-30",
		Overview:         "A computer hacker learns the truth about his reality.",
		PosterPath:       "/matrix.jpg",
		GenreIDs:         []int64{28, 878},
		Popularity:       85.1,
		VoteAverage:      8.2,
		VoteCount:        24000,
		OriginalLanguage: "en",
		Category:         model.CategoryMovie,
	}
}

func validSeries() model.CandidateItem {
	return model.CandidateItem{
		ID:               1396,
		Name:             "Breaking Bad",
		FirstAirDate:     "2008-01-20",
		Overview:         "A chemistry teacher turns to a life of crime to secure his family's future.",
		PosterPath:       "/bb.jpg",
		GenreIDs:         []int64{18, 80},
		Popularity:       120.4,
		VoteAverage:      8.9,
		VoteCount:        12000,
		OriginalLanguage: "en",
		Category:         model.CategorySeries,
	}
}

func TestCheck(t *testing.T) {
	gate := New([]string{"en", "es"})

	testCases := []struct {
		name      string
		item      func() model.CandidateItem
		expected  model.Category
		ok        bool
		reason    RejectReason
		violation bool
	}{
		{
			name:     "accepts a valid movie",
			item:     validMovie,
			expected: model.CategoryMovie,
			ok:       true,
		},
		{
			name:     "accepts a valid series",
			item:     validSeries,
			expected: model.CategorySeries,
			ok:       true,
		},
		{
			name: "flags a series-shaped item under a movie request",
			item: func() model.CandidateItem {
				item := validMovie()
				item.Name = "Some Show"
				return item
			},
			expected:  model.CategoryMovie,
			reason:    ReasonContamination,
			violation: true,
		},
		{
			name:      "flags a movie-shaped item under a series request",
			item:      validMovie,
			expected:  model.CategorySeries,
			reason:    ReasonContamination,
			violation: true,
		},
		{
			name: "rejects a movie without release date",
			item: func() model.CandidateItem {
				item := validMovie()
				item.ReleaseDate = ""
				return item
			},
			expected: model.CategoryMovie,
			reason:   ReasonMissingTitle,
		},
		{
			name: "rejects an empty overview",
			item: func() model.CandidateItem {
				item := validMovie()
				item.Overview = ""
				return item
			},
			expected: model.CategoryMovie,
			reason:   ReasonMissingOverview,
		},
		{
			name: "rejects an overview below the minimum length",
			item: func() model.CandidateItem {
				item := validMovie()
				item.Overview = "Too short."
				return item
			},
			expected: model.CategoryMovie,
			reason:   ReasonShortOverview,
		},
		{
			name: "rejects the placeholder overview",
			item: func() model.CandidateItem {
				item := validMovie()
				item.Overview = "No overview available."
				return item
			},
			expected: model.CategoryMovie,
			reason:   ReasonPlaceholder,
		},
		{
			name: "rejects a missing poster",
			item: func() model.CandidateItem {
				item := validMovie()
				item.PosterPath = ""
				return item
			},
			expected: model.CategoryMovie,
			reason:   ReasonMissingPoster,
		},
		{
			name: "rejects a language outside the allowlist",
			item: func() model.CandidateItem {
				item := validMovie()
				item.OriginalLanguage = "fr"
				return item
			},
			expected: model.CategoryMovie,
			reason:   ReasonLanguage,
		},
		{
			name: "rejects an empty genre set",
			item: func() model.CandidateItem {
				item := validMovie()
				item.GenreIDs = nil
				return item
			},
			expected: model.CategoryMovie,
			reason:   ReasonNoGenres,
		},
		{
			name: "rejects NaN popularity",
			item: func() model.CandidateItem {
				item := validMovie()
				item.Popularity = math.NaN()
				return item
			},
			expected: model.CategoryMovie,
			reason:   ReasonMalformedSignals,
		},
		{
			name: "rejects a rating above ten",
			item: func() model.CandidateItem {
				item := validMovie()
				item.VoteAverage = 11.5
				return item
			},
			expected: model.CategoryMovie,
			reason:   ReasonMalformedSignals,
		},
		{
			name: "rejects adult content",
			item: func() model.CandidateItem {
				item := validMovie()
				item.Adult = true
				return item
			},
			expected: model.CategoryMovie,
			reason:   ReasonAdult,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			verdict := gate.Check(tc.item(), tc.expected)

			assert.Equal(t, tc.ok, verdict.OK)
			assert.Equal(t, tc.violation, verdict.Violation)
			if !tc.ok {
				assert.Equal(t, tc.reason, verdict.Reason)
			}
		})
	}
}

func TestCheckIsDeterministic(t *testing.T) {
	gate := New([]string{"en"})
	item := validMovie()

	first := gate.Check(item, model.CategoryMovie)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, gate.Check(item, model.CategoryMovie))
	}
}

func TestHasGenres(t *testing.T) {
	item := model.CandidateItem{GenreIDs: []int64{18, 35, 80}}

	assert.True(t, HasGenres(item, []int64{18, 80}))
	assert.True(t, HasGenres(item, nil))
	assert.False(t, HasGenres(item, []int64{18, 99}))
}
