package infra_catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/filmquorum/core/internal/config"
	"github.com/filmquorum/core/internal/model"
	usecase_curation "github.com/filmquorum/core/internal/usecase/curation"
	"golang.org/x/time/rate"
)

var (
	ErrRateLimited     = errors.New("catalog rate limited")
	ErrUpstreamTimeout = errors.New("catalog timeout")
	ErrBadResponse     = errors.New("catalog bad response")
)

// genreJoin selects how multiple genre ids are combined in a query:
// the strict pass requires all of them, the top-up pass any of them.
type genreJoin string

const (
	joinAll genreJoin = ","
	joinAny genreJoin = "|"
)

type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	cfg     config.Catalog
	logger  *slog.Logger
}

type ClientOption func(*Client)

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

func New(cfg config.Catalog, opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Every(cfg.MinRequestGap), 1),
		cfg:     cfg,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rawItem mirrors one record of the catalog wire format. It exists
// only inside this package; Fetch converts it into model.CandidateItem
// before anything else sees it.
type rawItem struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	ReleaseDate      string  `json:"release_date"`
	Name             string  `json:"name"`
	FirstAirDate     string  `json:"first_air_date"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	GenreIDs         []int64 `json:"genre_ids"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	OriginalLanguage string  `json:"original_language"`
	Adult            bool    `json:"adult"`
}

type discoverPage struct {
	Page         int       `json:"page"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
	Results      []rawItem `json:"results"`
}

// Fetch pages through the catalog sorted by popularity until the
// quota (the caller over-asks to absorb expected filtering loss) or
// the last page is reached. A strict all-genres pass runs first; when
// it comes up short a second any-genre pass tops the pool up. Items
// are deduplicated by id across pages and passes.
func (c *Client) Fetch(ctx context.Context, criteria model.CurationCriteria, quota int) ([]model.CandidateItem, error) {
	if quota <= 0 {
		quota = 1
	}

	genres := c.QueryGenres(criteria)

	seen := make(map[int64]struct{}, quota)
	items := make([]model.CandidateItem, 0, quota)

	joins := []genreJoin{joinAll}
	if len(genres) > 1 {
		joins = append(joins, joinAny)
	}

	for _, join := range joins {
		if len(items) >= quota {
			break
		}
		fetched, err := c.fetchPass(ctx, criteria.Category, genres, join, quota-len(items), seen)
		if err != nil {
			return nil, err
		}
		items = append(items, fetched...)
	}

	if len(items) == 0 {
		return nil, usecase_curation.ErrNoCandidatesFound
	}

	c.logger.Info("catalog fetch complete",
		slog.String("category", string(criteria.Category)),
		slog.Int("fetched", len(items)),
		slog.Int("quota", quota))
	return items, nil
}

func (c *Client) fetchPass(ctx context.Context, category model.Category, genres []int64, join genreJoin, want int, seen map[int64]struct{}) ([]model.CandidateItem, error) {
	items := make([]model.CandidateItem, 0, want)

	for page := 1; page <= c.cfg.MaxPages && len(items) < want; page++ {
		result, err := c.discover(ctx, category, genres, join, page)
		if err != nil {
			return nil, err
		}

		for _, raw := range result.Results {
			if _, dup := seen[raw.ID]; dup {
				continue
			}
			seen[raw.ID] = struct{}{}
			items = append(items, c.toCandidate(raw, category))
			if len(items) >= want {
				break
			}
		}

		if result.Page >= result.TotalPages {
			break
		}
	}

	return items, nil
}

// discover performs one page request with the local rate limit and a
// bounded retry loop. Backoff doubles per attempt and is capped; once
// the attempt budget is spent the last retryable error surfaces to the
// caller as-is.
func (c *Client) discover(ctx context.Context, category model.Category, genres []int64, join genreJoin, page int) (*discoverPage, error) {
	backoff := c.cfg.InitialBackoff

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
			if backoff > c.cfg.MaxBackoff {
				backoff = c.cfg.MaxBackoff
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		result, err := c.doDiscover(ctx, category, genres, join, page)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, ErrRateLimited) && !errors.Is(err, ErrUpstreamTimeout) {
			return nil, err
		}
		lastErr = err
		c.logger.Warn("catalog request retry",
			slog.Int("page", page),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()))
	}

	return nil, lastErr
}

func (c *Client) doDiscover(ctx context.Context, category model.Category, genres []int64, join genreJoin, page int) (*discoverPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.discoverURL(category, genres, join, page), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		var ne interface{ Timeout() bool }
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
		}
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode == http.StatusGatewayTimeout:
		return nil, ErrUpstreamTimeout
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var result discoverPage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return &result, nil
}

func (c *Client) discoverURL(category model.Category, genres []int64, join genreJoin, page int) string {
	path := "/discover/movie"
	if category == model.CategorySeries {
		path = "/discover/tv"
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("sort_by", "popularity.desc")
	params.Set("vote_count.gte", strconv.Itoa(c.cfg.MinVoteCount))
	params.Set("include_adult", "false")
	params.Set("with_original_language", strings.Join(c.cfg.Languages, "|"))
	if len(genres) > 0 {
		joined := make([]string, 0, len(genres))
		for _, id := range genres {
			joined = append(joined, strconv.FormatInt(id, 10))
		}
		params.Set("with_genres", strings.Join(joined, string(join)))
	}

	return c.cfg.BaseURL + path + "?" + params.Encode()
}

// QueryGenres translates movie-taxonomy genre ids into the series
// taxonomy when the series catalog is the target; ids without a table
// entry pass through unchanged. Exported because the same effective
// ids drive the sampler's tiering over the fetched pool.
func (c *Client) QueryGenres(criteria model.CurationCriteria) []int64 {
	if criteria.Category != model.CategorySeries || len(criteria.GenreIDs) == 0 {
		return criteria.GenreIDs
	}

	remapped := make([]int64, 0, len(criteria.GenreIDs))
	for _, id := range criteria.GenreIDs {
		if to, ok := c.cfg.GenreRemap[id]; ok {
			remapped = append(remapped, to)
			continue
		}
		remapped = append(remapped, id)
	}
	return remapped
}

func (c *Client) toCandidate(raw rawItem, category model.Category) model.CandidateItem {
	return model.CandidateItem{
		ID:               raw.ID,
		Title:            raw.Title,
		ReleaseDate:      raw.ReleaseDate,
		Name:             raw.Name,
		FirstAirDate:     raw.FirstAirDate,
		Overview:         raw.Overview,
		PosterPath:       raw.PosterPath,
		GenreIDs:         raw.GenreIDs,
		Popularity:       raw.Popularity,
		VoteAverage:      raw.VoteAverage,
		VoteCount:        raw.VoteCount,
		OriginalLanguage: raw.OriginalLanguage,
		Adult:            raw.Adult,
		Category:         category,
	}
}
