// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/icct-platform/registration-backend/models"
)

// PlayerRepositoryImpl implements PlayerRepository interface
type PlayerRepositoryImpl struct {
	*BaseRepository[models.Player, models.PlayerFilter]
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &PlayerRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Player, models.PlayerFilter](db),
	}
}

// ByDisplayID retrieves a player by its derived display identifier
func (r *PlayerRepositoryImpl) ByDisplayID(ctx context.Context, displayID string) (*models.Player, error) {
	filter := models.PlayerFilter{DisplayID: &displayID}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ListByTeam retrieves a team's roster ordered by position
func (r *PlayerRepositoryImpl) ListByTeam(ctx context.Context, teamID uint) ([]*models.Player, error) {
	filter := models.PlayerFilter{TeamID: &teamID}
	return r.ByFilter(ctx, filter, "position ASC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query
func (r *PlayerRepositoryImpl) applyFilter(query *gorm.DB, filter models.PlayerFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}
	if filter.DisplayID != nil {
		query = query.Where("display_id = ?", *filter.DisplayID)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	return query
}

// ByFilter retrieves players based on filter criteria
func (r *PlayerRepositoryImpl) ByFilter(ctx context.Context, filter models.PlayerFilter, orderBy string, limit, offset int) ([]*models.Player, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Player{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var players []*models.Player
	if err := query.Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

// Count returns the number of players matching the filter
func (r *PlayerRepositoryImpl) Count(ctx context.Context, filter models.PlayerFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Player{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any player matching the filter exists
func (r *PlayerRepositoryImpl) Exists(ctx context.Context, filter models.PlayerFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
