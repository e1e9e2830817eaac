package infra_postgres_roomcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/filmquorum/core/internal/model"
	usecase_curation "github.com/filmquorum/core/internal/usecase/curation"
	usecase_deck "github.com/filmquorum/core/internal/usecase/deck"
	"github.com/jmoiron/sqlx"
)

// Driver owns the room_cache_metadata and room_cache_items tables. It
// serves the materializer (set commits), the deck cursor (conditional
// advance) and the consensus watcher (title lookups).
type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type metadataDTO struct {
	RoomID       string    `db:"room_id"`
	Status       string    `db:"status"`
	ItemCount    int       `db:"item_count"`
	Criteria     []byte    `db:"criteria"`
	CurrentIndex int       `db:"current_index"`
	BatchNumber  int       `db:"batch_number"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	TTL          time.Time `db:"ttl"`
}

type itemDTO struct {
	RoomID        string    `db:"room_id"`
	SequenceIndex int       `db:"sequence_index"`
	ItemID        int64     `db:"item_id"`
	Snapshot      []byte    `db:"snapshot"`
	BatchNumber   int       `db:"batch_number"`
	CachedAt      time.Time `db:"cached_at"`
	TTL           time.Time `db:"ttl"`
}

func (d *Driver) Metadata(ctx context.Context, roomID model.RoomID) (model.RoomCacheMetadata, error) {
	var dto metadataDTO

	query := `
		SELECT room_id, status, item_count, criteria, current_index, batch_number, created_at, updated_at, ttl
		FROM room_cache_metadata
		WHERE room_id = $1
	`

	err := d.db.GetContext(ctx, &dto, query, string(roomID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RoomCacheMetadata{}, usecase_curation.ErrCacheNotFound
		}
		return model.RoomCacheMetadata{}, err
	}

	return dto.toModel()
}

// StoreSet commits the whole curated set and its metadata in one
// transaction. Either all N items plus the READY metadata land, or
// nothing does.
func (d *Driver) StoreSet(ctx context.Context, meta model.RoomCacheMetadata, items []model.CachedItem) error {
	criteria, err := json.Marshal(meta.Criteria)
	if err != nil {
		return err
	}

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	insertItem := `
		INSERT INTO room_cache_items (room_id, sequence_index, item_id, snapshot, batch_number, cached_at, ttl)
		VALUES (:room_id, :sequence_index, :item_id, :snapshot, :batch_number, :cached_at, :ttl)
	`

	for _, item := range items {
		snapshot, err := json.Marshal(item.Snapshot)
		if err != nil {
			return err
		}
		_, err = tx.NamedExecContext(ctx, insertItem, itemDTO{
			RoomID:        string(item.RoomID),
			SequenceIndex: item.SequenceIndex,
			ItemID:        item.ItemID,
			Snapshot:      snapshot,
			BatchNumber:   item.BatchNumber,
			CachedAt:      item.CachedAt,
			TTL:           item.TTL,
		})
		if err != nil {
			return err
		}
	}

	upsertMeta := `
		INSERT INTO room_cache_metadata
			(room_id, status, item_count, criteria, current_index, batch_number, created_at, updated_at, ttl)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (room_id)
		DO UPDATE SET
			status = EXCLUDED.status,
			item_count = EXCLUDED.item_count,
			current_index = EXCLUDED.current_index,
			batch_number = EXCLUDED.batch_number,
			updated_at = EXCLUDED.updated_at,
			ttl = EXCLUDED.ttl
	`

	_, err = tx.ExecContext(ctx, upsertMeta,
		string(meta.RoomID), string(meta.Status), meta.ItemCount, criteria,
		meta.CurrentIndex, meta.BatchNumber, meta.CreatedAt, meta.UpdatedAt, meta.TTL)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteItems clears the room's cached items ahead of a refresh; the
// metadata row survives so the pinned criteria do too.
func (d *Driver) DeleteItems(ctx context.Context, roomID model.RoomID) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM room_cache_items WHERE room_id = $1`, string(roomID)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE room_cache_metadata
		SET status = $1, item_count = 0, current_index = 0, updated_at = now()
		WHERE room_id = $2`,
		string(model.CacheStatusCreating), string(roomID)); err != nil {
		return err
	}

	return tx.Commit()
}

// Advance is the cursor's single conditional read-modify-write: the
// increment only happens while current_index is below item_count, and
// the served index comes back from the same statement, so concurrent
// callers can never be handed the same card.
func (d *Driver) Advance(ctx context.Context, roomID model.RoomID) (int, int, error) {
	var result struct {
		Served    int `db:"served"`
		ItemCount int `db:"item_count"`
	}

	query := `
		UPDATE room_cache_metadata
		SET current_index = current_index + 1, updated_at = now()
		WHERE room_id = $1 AND status = $2 AND current_index < item_count
		RETURNING current_index - 1 AS served, item_count
	`

	err := d.db.GetContext(ctx, &result, query, string(roomID), string(model.CacheStatusReady))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, d.exhaustedOrMissing(ctx, roomID)
		}
		return 0, 0, err
	}

	return result.Served, result.ItemCount, nil
}

func (d *Driver) ItemAt(ctx context.Context, roomID model.RoomID, index int) (model.CachedItem, error) {
	var dto itemDTO

	query := `
		SELECT room_id, sequence_index, item_id, snapshot, batch_number, cached_at, ttl
		FROM room_cache_items
		WHERE room_id = $1 AND sequence_index = $2
	`

	err := d.db.GetContext(ctx, &dto, query, string(roomID), index)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CachedItem{}, usecase_deck.ErrCacheNotFound
		}
		return model.CachedItem{}, err
	}

	return dto.toModel()
}

func (d *Driver) ItemByID(ctx context.Context, roomID model.RoomID, itemID int64) (model.CachedItem, error) {
	var dto itemDTO

	query := `
		SELECT room_id, sequence_index, item_id, snapshot, batch_number, cached_at, ttl
		FROM room_cache_items
		WHERE room_id = $1 AND item_id = $2
	`

	err := d.db.GetContext(ctx, &dto, query, string(roomID), itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.CachedItem{}, usecase_deck.ErrCacheNotFound
		}
		return model.CachedItem{}, err
	}

	return dto.toModel()
}

func (d *Driver) exhaustedOrMissing(ctx context.Context, roomID model.RoomID) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM room_cache_metadata WHERE room_id = $1)`

	if err := d.db.GetContext(ctx, &exists, query, string(roomID)); err != nil {
		return err
	}
	if !exists {
		return usecase_deck.ErrCacheNotFound
	}
	return usecase_deck.ErrExhausted
}

func (dto metadataDTO) toModel() (model.RoomCacheMetadata, error) {
	var criteria model.CurationCriteria
	if err := json.Unmarshal(dto.Criteria, &criteria); err != nil {
		return model.RoomCacheMetadata{}, fmt.Errorf("decode criteria: %w", err)
	}

	return model.RoomCacheMetadata{
		RoomID:       model.RoomID(dto.RoomID),
		Status:       model.CacheStatus(dto.Status),
		ItemCount:    dto.ItemCount,
		Criteria:     criteria,
		CurrentIndex: dto.CurrentIndex,
		BatchNumber:  dto.BatchNumber,
		CreatedAt:    dto.CreatedAt,
		UpdatedAt:    dto.UpdatedAt,
		TTL:          dto.TTL,
	}, nil
}

func (dto itemDTO) toModel() (model.CachedItem, error) {
	var snapshot model.ItemSnapshot
	if err := json.Unmarshal(dto.Snapshot, &snapshot); err != nil {
		return model.CachedItem{}, fmt.Errorf("decode snapshot: %w", err)
	}

	return model.CachedItem{
		RoomID:        model.RoomID(dto.RoomID),
		SequenceIndex: dto.SequenceIndex,
		ItemID:        dto.ItemID,
		Snapshot:      snapshot,
		BatchNumber:   dto.BatchNumber,
		CachedAt:      dto.CachedAt,
		TTL:           dto.TTL,
	}, nil
}
