package qualitygate

import (
	"math"
	"slices"
	"unicode/utf8"

	"github.com/filmquorum/core/internal/model"
)

type RejectReason string

const (
	ReasonContamination    RejectReason = "cross_category_contamination"
	ReasonMissingTitle     RejectReason = "missing_title_or_date"
	ReasonMissingOverview  RejectReason = "missing_overview"
	ReasonShortOverview    RejectReason = "overview_below_min_length"
	ReasonPlaceholder      RejectReason = "placeholder_overview"
	ReasonMissingPoster    RejectReason = "missing_poster"
	ReasonLanguage         RejectReason = "language_not_allowed"
	ReasonNoGenres         RejectReason = "empty_genre_set"
	ReasonMalformedSignals RejectReason = "malformed_popularity_or_rating"
	ReasonAdult            RejectReason = "adult_content"
)

// Verdict is the tagged outcome of one gate check. Rejections are the
// expected, silent filter path; Violation marks the business-rule case
// (cross-category contamination) that callers log louder.
type Verdict struct {
	OK        bool
	Reason    RejectReason
	Violation bool
}

func accepted() Verdict                { return Verdict{OK: true} }
func rejected(r RejectReason) Verdict  { return Verdict{Reason: r} }
func violation(r RejectReason) Verdict { return Verdict{Reason: r, Violation: true} }

const (
	minOverviewLength   = 20
	placeholderOverview = "No overview available."
)

// Gate is the single source of truth for "is this item acceptable".
// It is pure and deterministic; the same item and category always
// produce the same verdict, whatever tier the item lands in.
type Gate struct {
	languages map[string]struct{}
}

func New(languages []string) *Gate {
	allow := make(map[string]struct{}, len(languages))
	for _, l := range languages {
		allow[l] = struct{}{}
	}
	return &Gate{languages: allow}
}

// Check runs the rejection rules in order; the first failing rule
// wins. The minimum-length and placeholder overview rules are kept as
// independent checks on purpose.
func (g *Gate) Check(item model.CandidateItem, expected model.Category) Verdict {
	if contaminated(item, expected) {
		return violation(ReasonContamination)
	}

	title, date := categoryFields(item, expected)
	if title == "" || date == "" {
		return rejected(ReasonMissingTitle)
	}

	if item.Overview == "" {
		return rejected(ReasonMissingOverview)
	}
	if utf8.RuneCountInString(item.Overview) < minOverviewLength {
		return rejected(ReasonShortOverview)
	}
	if item.Overview == placeholderOverview {
		return rejected(ReasonPlaceholder)
	}

	if item.PosterPath == "" {
		return rejected(ReasonMissingPoster)
	}

	if _, ok := g.languages[item.OriginalLanguage]; !ok {
		return rejected(ReasonLanguage)
	}

	if len(item.GenreIDs) == 0 {
		return rejected(ReasonNoGenres)
	}

	if malformedSignals(item) {
		return rejected(ReasonMalformedSignals)
	}

	if item.Adult {
		return rejected(ReasonAdult)
	}

	return accepted()
}

// HasGenres reports whether the item's genre set covers all the wanted
// ids. Shared with the sampler's tiering.
func HasGenres(item model.CandidateItem, wanted []int64) bool {
	for _, id := range wanted {
		if !slices.Contains(item.GenreIDs, id) {
			return false
		}
	}
	return true
}

func categoryFields(item model.CandidateItem, expected model.Category) (title, date string) {
	if expected == model.CategorySeries {
		return item.Name, item.FirstAirDate
	}
	return item.Title, item.ReleaseDate
}

// contaminated reports an item carrying the structural signature of
// the other category: series-like fields under a movie request or the
// reverse.
func contaminated(item model.CandidateItem, expected model.Category) bool {
	seriesShaped := item.Name != "" || item.FirstAirDate != ""
	movieShaped := item.Title != "" || item.ReleaseDate != ""

	if expected == model.CategoryMovie {
		return seriesShaped
	}
	return movieShaped
}

func malformedSignals(item model.CandidateItem) bool {
	if math.IsNaN(item.Popularity) || math.IsInf(item.Popularity, 0) || item.Popularity < 0 {
		return true
	}
	if math.IsNaN(item.VoteAverage) || item.VoteAverage < 0 || item.VoteAverage > 10 {
		return true
	}
	return item.VoteCount < 0
}
