// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/utils"
)

// MatchRepositoryImpl implements MatchRepository interface
type MatchRepositoryImpl struct {
	*BaseRepository[models.Match, models.MatchFilter]
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &MatchRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Match, models.MatchFilter](db),
	}
}

// ByUUID retrieves a match by UUID (string)
func (r *MatchRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Match, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.MatchFilter{UUID: &parsed}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// applyFilter applies filter criteria to a GORM query
func (r *MatchRepositoryImpl) applyFilter(query *gorm.DB, filter models.MatchFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Round != nil {
		query = query.Where("round = ?", *filter.Round)
	}
	if filter.TeamID != nil {
		query = query.Where("home_team_id = ? OR away_team_id = ?", *filter.TeamID, *filter.TeamID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ReminderSent != nil {
		query = query.Where("reminder_sent = ?", *filter.ReminderSent)
	}
	if filter.ScheduledAfter != nil {
		query = query.Where("scheduled_at > ?", *filter.ScheduledAfter)
	}
	if filter.ScheduledBefore != nil {
		query = query.Where("scheduled_at < ?", *filter.ScheduledBefore)
	}
	return query
}

// ByFilter retrieves matches based on filter criteria
func (r *MatchRepositoryImpl) ByFilter(ctx context.Context, filter models.MatchFilter, orderBy string, limit, offset int) ([]*models.Match, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Match{}).
		Preload("HomeTeam").
		Preload("AwayTeam")

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "scheduled_at ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var matches []*models.Match
	if err := query.Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

// Count returns the number of matches matching the filter
func (r *MatchRepositoryImpl) Count(ctx context.Context, filter models.MatchFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Match{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any match matching the filter exists
func (r *MatchRepositoryImpl) Exists(ctx context.Context, filter models.MatchFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates mutable fields for a match by ID
func (r *MatchRepositoryImpl) Update(ctx context.Context, match *models.Match) error {
	if match == nil {
		return errors.New("match payload is nil")
	}
	if match.ID == 0 {
		return errors.New("match ID is required for update")
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	updates := map[string]any{
		"updated_at": utils.UTCNow(),
	}
	if match.Round != "" {
		updates["round"] = match.Round
	}
	if match.Venue != "" {
		updates["venue"] = match.Venue
	}
	if !match.ScheduledAt.IsZero() {
		updates["scheduled_at"] = match.ScheduledAt
	}
	if match.Status != "" {
		updates["status"] = match.Status
	}
	if match.HomeScore != nil {
		updates["home_score"] = *match.HomeScore
	}
	if match.AwayScore != nil {
		updates["away_score"] = *match.AwayScore
	}
	if match.WinnerTeamID != nil {
		updates["winner_team_id"] = *match.WinnerTeamID
	}

	result := db.Model(&models.Match{}).
		Where("id = ?", match.ID).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("match not found with ID: " + strconv.Itoa(int(match.ID)))
	}
	return nil
}

// ListUpcoming retrieves scheduled matches starting within the next `within`
// minutes, optionally restricted to those whose reminder has not been sent
func (r *MatchRepositoryImpl) ListUpcoming(ctx context.Context, within int, reminderPending bool) ([]*models.Match, error) {
	now := utils.UTCNow()
	horizon := now.Add(time.Duration(within) * time.Minute)

	filter := models.MatchFilter{
		Status:          utils.ToPtr(models.MatchStatusScheduled),
		ScheduledAfter:  &now,
		ScheduledBefore: &horizon,
	}
	if reminderPending {
		filter.ReminderSent = utils.ToPtr(false)
	}
	return r.ByFilter(ctx, filter, "scheduled_at ASC", 0, 0)
}

// MarkReminderSent flags a match so the scheduler does not notify twice
func (r *MatchRepositoryImpl) MarkReminderSent(ctx context.Context, matchID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.Match{}).
		Where("id = ?", matchID).
		Updates(map[string]any{
			"reminder_sent": true,
			"updated_at":    utils.UTCNow(),
		}).Error
	return err
}
