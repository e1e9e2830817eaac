package model

import "time"

type Category string

const (
	CategoryMovie  Category = "MOVIE"
	CategorySeries Category = "SERIES"
)

// CandidateItem is the strongly-typed shape of one catalog record.
// The raw catalog payload is decoded into it at the provider boundary;
// nothing downstream ever touches the wire format. Movie-like and
// series-like field families are both present so the quality gate can
// detect cross-category contamination.
type CandidateItem struct {
	ID               int64
	Title            string
	ReleaseDate      string
	Name             string
	FirstAirDate     string
	Overview         string
	PosterPath       string
	GenreIDs         []int64
	Popularity       float64
	VoteAverage      float64
	VoteCount        int64
	OriginalLanguage string
	Adult            bool
	Category         Category
}

// DisplayTitle resolves the human-readable title regardless of the
// catalog taxonomy the item came from.
func (c CandidateItem) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// CurationCriteria is pinned to a room the first time its set is
// materialized and never changes afterwards.
type CurationCriteria struct {
	Category Category `json:"category"`
	GenreIDs []int64  `json:"genre_ids"`
}

// ItemSnapshot is the part of a candidate that survives into the cache.
type ItemSnapshot struct {
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	PosterPath  string   `json:"poster_path"`
	GenreIDs    []int64  `json:"genre_ids"`
	Rating      float64  `json:"rating"`
	ReleaseDate string   `json:"release_date"`
	Category    Category `json:"category"`
}

type CachedItem struct {
	RoomID        RoomID
	SequenceIndex int
	ItemID        int64
	Snapshot      ItemSnapshot
	BatchNumber   int
	CachedAt      time.Time
	TTL           time.Time
}

type CacheStatus string

const (
	CacheStatusCreating CacheStatus = "CREATING"
	CacheStatusReady    CacheStatus = "READY"
	CacheStatusExpired  CacheStatus = "EXPIRED"
	CacheStatusError    CacheStatus = "ERROR"
)

// RoomCacheMetadata describes one room's curated set. CurrentIndex is
// the only field that moves during normal delivery; it is monotonic
// and bounded by ItemCount.
type RoomCacheMetadata struct {
	RoomID       RoomID
	Status       CacheStatus
	ItemCount    int
	Criteria     CurationCriteria
	CurrentIndex int
	BatchNumber  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	TTL          time.Time
}
