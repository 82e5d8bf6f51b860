// Package outbox implements the transactional outbox: events are inserted in
// the same transaction as the state change they announce, then claimed and
// published by a relay process.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rsmaster/o2c-backend/pkg/db/models"
)

// Repository persists and claims outbox rows.
type Repository struct {
	conn *gorm.DB
}

func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{conn: conn}
}

// Insert writes a pending outbox row inside the caller's transaction.
func (r *Repository) Insert(tx *gorm.DB, row *models.OutboxEvent) error {
	return tx.Create(row).Error
}

// Claim leases up to limit pending rows for owner. A row is claimable when it
// is unpublished and either unlocked or its lease expired, so rows stranded
// by a crashed publisher are picked up again after the lease runs out.
func (r *Repository) Claim(ctx context.Context, limit int, owner string, lease time.Duration) (int64, error) {
	now := time.Now().UTC()
	cutoff := now.Add(-lease)

	sub := r.conn.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Select("id").
		Where("published_at IS NULL").
		Where("locked_at IS NULL OR locked_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit)

	res := r.conn.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id IN (?)", sub).
		Updates(map[string]any{"locked_at": now, "locked_by": owner})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// FetchClaimed returns the rows currently leased to owner, oldest first.
func (r *Repository) FetchClaimed(ctx context.Context, owner string) ([]models.OutboxEvent, error) {
	var rows []models.OutboxEvent
	err := r.conn.WithContext(ctx).
		Where("published_at IS NULL AND locked_by = ?", owner).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// MarkPublished stamps a row as published and releases its lock. It reports
// whether this call changed the row, so a second publisher racing on the same
// id sees false and skips its side effects.
func (r *Repository) MarkPublished(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.conn.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ? AND published_at IS NULL", id).
		Updates(map[string]any{
			"published_at": time.Now().UTC(),
			"locked_at":    nil,
			"locked_by":    nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Release drops the lease on a row so another publisher can retry it.
func (r *Repository) Release(ctx context.Context, id uuid.UUID) error {
	return r.conn.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ? AND published_at IS NULL", id).
		Updates(map[string]any{"locked_at": nil, "locked_by": nil}).Error
}

// CountPending returns the number of unpublished rows, used by health checks.
func (r *Repository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.conn.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("published_at IS NULL").
		Count(&count).Error
	return count, err
}
