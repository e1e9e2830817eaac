package usecase_curation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/filmquorum/core/internal/model"
	"github.com/filmquorum/core/internal/service/qualitygate"
)

var (
	ErrNoCandidatesFound = errors.New("no candidates found")
	ErrInvalidItemCount  = errors.New("invalid curated item count")
	ErrCacheNotFound     = errors.New("room cache not found")
	ErrInternal          = errors.New("internal error")
)

//go:generate mockery --name=ContentProvider --output=./mocks/curation/provider --filename=provider.go
type ContentProvider interface {
	Fetch(ctx context.Context, criteria model.CurationCriteria, quota int) ([]model.CandidateItem, error)
	QueryGenres(criteria model.CurationCriteria) []int64
}

type QualityGate interface {
	Check(item model.CandidateItem, expected model.Category) qualitygate.Verdict
}

type Sampler interface {
	Select(valid []model.CandidateItem, requestedGenres []int64, n int) []model.CandidateItem
}

//go:generate mockery --name=CacheRepository --output=./mocks/curation/repository --filename=repository.go
type CacheRepository interface {
	Metadata(ctx context.Context, roomID model.RoomID) (model.RoomCacheMetadata, error)
	StoreSet(ctx context.Context, meta model.RoomCacheMetadata, items []model.CachedItem) error
	DeleteItems(ctx context.Context, roomID model.RoomID) error
}

type Config struct {
	SetSize     int
	FetchFactor int
	Retention   time.Duration
}

type Usecase struct {
	provider ContentProvider
	gate     QualityGate
	sampler  Sampler
	cache    CacheRepository
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func New(provider ContentProvider, gate QualityGate, sampler Sampler, cache CacheRepository, cfg Config, opts ...Option) *Usecase {
	u := &Usecase{
		provider: provider,
		gate:     gate,
		sampler:  sampler,
		cache:    cache,
		cfg:      cfg,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Materialize builds and commits the room's curated set. Re-invoking
// it for a room whose set is already READY returns the stored metadata
// untouched. A set that cannot reach exactly SetSize items aborts the
// whole run; nothing partial is persisted.
func (u *Usecase) Materialize(ctx context.Context, roomID model.RoomID, criteria model.CurationCriteria) (model.RoomCacheMetadata, error) {
	existing, err := u.cache.Metadata(ctx, roomID)
	switch {
	case err == nil && existing.Status == model.CacheStatusReady:
		return existing, nil
	case err != nil && !errors.Is(err, ErrCacheNotFound):
		return model.RoomCacheMetadata{}, errors.Join(ErrInternal, err)
	}

	batch := existing.BatchNumber + 1

	selected, err := u.curate(ctx, criteria)
	if err != nil {
		return model.RoomCacheMetadata{}, err
	}

	now := u.now()
	expiry := now.Add(u.cfg.Retention)

	items := make([]model.CachedItem, 0, len(selected))
	for i, candidate := range selected {
		items = append(items, model.CachedItem{
			RoomID:        roomID,
			SequenceIndex: i,
			ItemID:        candidate.ID,
			Snapshot:      snapshot(candidate),
			BatchNumber:   batch,
			CachedAt:      now,
			TTL:           expiry,
		})
	}

	meta := model.RoomCacheMetadata{
		RoomID:       roomID,
		Status:       model.CacheStatusReady,
		ItemCount:    len(items),
		Criteria:     criteria,
		CurrentIndex: 0,
		BatchNumber:  batch,
		CreatedAt:    now,
		UpdatedAt:    now,
		TTL:          expiry,
	}

	if err := u.cache.StoreSet(ctx, meta, items); err != nil {
		return model.RoomCacheMetadata{}, errors.Join(ErrInternal, err)
	}

	u.logger.Info("curated set materialized",
		slog.String("room_id", string(roomID)),
		slog.Int("items", len(items)),
		slog.Int("batch", batch))
	return meta, nil
}

// Refresh drops the room's cached items and re-materializes with the
// criteria pinned when the set was first created.
func (u *Usecase) Refresh(ctx context.Context, roomID model.RoomID) (model.RoomCacheMetadata, error) {
	existing, err := u.cache.Metadata(ctx, roomID)
	if err != nil {
		if errors.Is(err, ErrCacheNotFound) {
			return model.RoomCacheMetadata{}, ErrCacheNotFound
		}
		return model.RoomCacheMetadata{}, errors.Join(ErrInternal, err)
	}

	if err := u.cache.DeleteItems(ctx, roomID); err != nil {
		return model.RoomCacheMetadata{}, errors.Join(ErrInternal, err)
	}

	return u.Materialize(ctx, roomID, existing.Criteria)
}

// curate runs the fetch -> gate -> sample pipeline and enforces the
// exact-size invariant.
func (u *Usecase) curate(ctx context.Context, criteria model.CurationCriteria) ([]model.CandidateItem, error) {
	quota := u.cfg.SetSize * u.cfg.FetchFactor

	candidates, err := u.provider.Fetch(ctx, criteria, quota)
	if err != nil {
		if errors.Is(err, ErrNoCandidatesFound) {
			return nil, ErrNoCandidatesFound
		}
		return nil, errors.Join(ErrInternal, err)
	}

	valid := make([]model.CandidateItem, 0, len(candidates))
	for _, candidate := range candidates {
		verdict := u.gate.Check(candidate, criteria.Category)
		if verdict.OK {
			valid = append(valid, candidate)
			continue
		}
		if verdict.Violation {
			u.logger.Warn("business rule violation",
				slog.Int64("item_id", candidate.ID),
				slog.String("reason", string(verdict.Reason)),
				slog.String("expected_category", string(criteria.Category)))
		}
	}
	if len(valid) == 0 {
		return nil, ErrNoCandidatesFound
	}

	selected := u.sampler.Select(valid, u.provider.QueryGenres(criteria), u.cfg.SetSize)
	if len(selected) != u.cfg.SetSize {
		return nil, fmt.Errorf("%w: selected %d, want %d", ErrInvalidItemCount, len(selected), u.cfg.SetSize)
	}
	return selected, nil
}

func snapshot(c model.CandidateItem) model.ItemSnapshot {
	date := c.ReleaseDate
	if c.Category == model.CategorySeries {
		date = c.FirstAirDate
	}
	return model.ItemSnapshot{
		Title:       c.DisplayTitle(),
		Overview:    c.Overview,
		PosterPath:  c.PosterPath,
		GenreIDs:    c.GenreIDs,
		Rating:      c.VoteAverage,
		ReleaseDate: date,
		Category:    c.Category,
	}
}
