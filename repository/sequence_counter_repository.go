// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/utils"
)

// SequenceCounterRepositoryImpl implements SequenceCounterRepository interface.
//
// All mutations go through a pessimistic row lock (SELECT ... FOR UPDATE) so
// that concurrent allocators serialize on the counter row and no value is ever
// issued twice. Each call runs in its own transaction, deliberately ignoring
// any transaction carried in ctx: an issued value must be committed before the
// caller uses it, even if the caller's surrounding transaction later rolls
// back.
type SequenceCounterRepositoryImpl struct {
	db          *gorm.DB
	lockTimeout string
}

// NewSequenceCounterRepository creates a new sequence counter repository.
// lockTimeoutMillis bounds how long a single increment waits on the row lock;
// zero disables the per-transaction lock timeout.
func NewSequenceCounterRepository(db *gorm.DB, lockTimeoutMillis int) SequenceCounterRepository {
	lockTimeout := ""
	if lockTimeoutMillis > 0 {
		lockTimeout = fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockTimeoutMillis)
	}
	return &SequenceCounterRepositoryImpl{
		db:          db,
		lockTimeout: lockTimeout,
	}
}

// Increment atomically advances the named counter by one and returns the new
// value. The counter row is created on first use, racing provisioners resolve
// through the primary key conflict and both end up locking the same row.
func (r *SequenceCounterRepositoryImpl) Increment(ctx context.Context, name string) (int64, error) {
	var next int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout != "" {
			if err := tx.Exec(r.lockTimeout).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}

		counter, err := r.lockRow(tx, name)
		if err != nil {
			return err
		}

		next = counter.LastValue + 1
		res := tx.Model(&models.SequenceCounter{}).
			Where("name = ?", name).
			Updates(map[string]any{
				"last_value": next,
				"updated_at": utils.UTCNow(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to advance sequence %q: %w", name, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("sequence %q vanished under lock", name)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return next, nil
}

// Current returns the last issued value without advancing the counter.
// A counter that has never issued a value reads as zero.
func (r *SequenceCounterRepositoryImpl) Current(ctx context.Context, name string) (int64, error) {
	var counter models.SequenceCounter
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read sequence %q: %w", name, err)
	}
	return counter.LastValue, nil
}

// Resync forces the counter to the given value under the same row lock used
// by Increment, so in-flight allocations either complete before or observe
// the new value.
func (r *SequenceCounterRepositoryImpl) Resync(ctx context.Context, name string, value int64) error {
	if value < 0 {
		return fmt.Errorf("sequence %q cannot be resynced to negative value %d", name, value)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout != "" {
			if err := tx.Exec(r.lockTimeout).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}

		if _, err := r.lockRow(tx, name); err != nil {
			return err
		}

		res := tx.Model(&models.SequenceCounter{}).
			Where("name = ?", name).
			Updates(map[string]any{
				"last_value": value,
				"updated_at": utils.UTCNow(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to resync sequence %q: %w", name, res.Error)
		}
		return nil
	})
}

// lockRow selects the counter row FOR UPDATE, provisioning it with
// last_value 0 on first use. The ON CONFLICT DO NOTHING insert makes
// provisioning safe under races: the loser of the insert race simply
// re-selects the winner's row.
func (r *SequenceCounterRepositoryImpl) lockRow(tx *gorm.DB, name string) (*models.SequenceCounter, error) {
	var counter models.SequenceCounter

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&counter).Error
	if err == nil {
		return &counter, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to lock sequence %q: %w", name, err)
	}

	now := utils.UTCNow()
	seed := models.SequenceCounter{
		Name:      name,
		LastValue: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("failed to provision sequence %q: %w", name, err)
	}

	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&counter).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock sequence %q after provisioning: %w", name, err)
	}
	return &counter, nil
}
