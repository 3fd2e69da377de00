package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type OutboxRepository interface {
	// Insert stores msg unless a row with the same dedupe key exists.
	Insert(ctx context.Context, db *gorm.DB, msg *OutboxMessage) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*OutboxMessage, error)
	ListDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]*OutboxMessage, error)
	// Claim pushes a due PENDING row's next attempt to leaseUntil and reports
	// whether this caller won it.
	Claim(ctx context.Context, db *gorm.DB, id snowflake.ID, now, leaseUntil time.Time) (bool, error)
	MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, attempts int, sentAt time.Time) error
	MarkRetry(ctx context.Context, db *gorm.DB, id snowflake.ID, attempts int, nextAttemptAt time.Time, lastError string, at time.Time) error
	MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, attempts int, lastError string, at time.Time) error
}
