package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/sairex/internal/notification/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.OutboxRepository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, msg *domain.OutboxMessage) (bool, error) {
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dedupe_key"}}, DoNothing: true}).
		Create(msg)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.OutboxMessage, error) {
	var msg domain.OutboxMessage
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, event_type, payload, dedupe_key, status, attempts, next_attempt_at,
		 last_error, sent_at, created_at, updated_at
		 FROM notification_outbox WHERE id = ?`,
		id,
	).Scan(&msg).Error
	if err != nil {
		return nil, err
	}
	if msg.ID == 0 {
		return nil, nil
	}
	return &msg, nil
}

func (r *repo) ListDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]*domain.OutboxMessage, error) {
	var msgs []*domain.OutboxMessage
	err := db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", domain.OutboxStatusPending, now).
		Order("next_attempt_at asc, id asc").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *repo) Claim(ctx context.Context, db *gorm.DB, id snowflake.ID, now, leaseUntil time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE notification_outbox SET next_attempt_at = ?, updated_at = ?
		 WHERE id = ? AND status = ? AND next_attempt_at <= ?`,
		leaseUntil, now, id, domain.OutboxStatusPending, now,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repo) MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, attempts int, sentAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE notification_outbox SET status = ?, attempts = ?, sent_at = ?, last_error = NULL, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.OutboxStatusSent, attempts, sentAt, sentAt, id, domain.OutboxStatusPending,
	).Error
}

func (r *repo) MarkRetry(ctx context.Context, db *gorm.DB, id snowflake.ID, attempts int, nextAttemptAt time.Time, lastError string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE notification_outbox SET attempts = ?, next_attempt_at = ?, last_error = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		attempts, nextAttemptAt, lastError, at, id, domain.OutboxStatusPending,
	).Error
}

func (r *repo) MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, attempts int, lastError string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE notification_outbox SET status = ?, attempts = ?, last_error = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		domain.OutboxStatusFailed, attempts, lastError, at, id, domain.OutboxStatusPending,
	).Error
}
