// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/utils"
)

// TeamRepositoryImpl implements TeamRepository interface
type TeamRepositoryImpl struct {
	*BaseRepository[models.Team, models.TeamFilter]
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &TeamRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Team, models.TeamFilter](db),
	}
}

// ByUUID retrieves a team by UUID (string)
func (r *TeamRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Team, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.TeamFilter{UUID: &parsed}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ByDisplayID retrieves a team by its issued display identifier
func (r *TeamRepositoryImpl) ByDisplayID(ctx context.Context, displayID string) (*models.Team, error) {
	filter := models.TeamFilter{DisplayID: &displayID}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ByName retrieves a team by its unique name
func (r *TeamRepositoryImpl) ByName(ctx context.Context, name string) (*models.Team, error) {
	filter := models.TeamFilter{Name: &name}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// WithRoster retrieves a team by ID with players and documents preloaded
func (r *TeamRepositoryImpl) WithRoster(ctx context.Context, id uint) (*models.Team, error) {
	db := r.getDB(ctx)

	var team models.Team
	err := db.Preload("Players", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Documents").First(&team, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *TeamRepositoryImpl) applyFilter(query *gorm.DB, filter models.TeamFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.DisplayID != nil {
		query = query.Where("display_id = ?", *filter.DisplayID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.Institution != nil {
		query = query.Where("institution = ?", *filter.Institution)
	}
	if filter.CaptainEmail != nil {
		query = query.Where("captain_email = ?", *filter.CaptainEmail)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves teams based on filter criteria
func (r *TeamRepositoryImpl) ByFilter(ctx context.Context, filter models.TeamFilter, orderBy string, limit, offset int) ([]*models.Team, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Team{})

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

	var teams []*models.Team
	if err := query.Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// Count returns the number of teams matching the filter
func (r *TeamRepositoryImpl) Count(ctx context.Context, filter models.TeamFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Team{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any team matching the filter exists
func (r *TeamRepositoryImpl) Exists(ctx context.Context, filter models.TeamFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateStatus transitions a team's review status
func (r *TeamRepositoryImpl) UpdateStatus(ctx context.Context, teamID uint, status string, reviewedBy, reviewNote *string) error {
	if teamID == 0 {
		return errors.New("team ID is required for status update")
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
		"status":     status,
		"updated_at": utils.UTCNow(),
	}
	if reviewedBy != nil {
		updates["reviewed_by"] = *reviewedBy
	}
	if reviewNote != nil {
		updates["review_note"] = *reviewNote
	}

	result := db.Model(&models.Team{}).
		Where("id = ?", teamID).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("team not found with ID: " + strconv.Itoa(int(teamID)))
	}
	return nil
}

// Delete removes a team and, via FK cascade, its players and documents.
// Used only for compensation when a registration fails after partial writes.
func (r *TeamRepositoryImpl) Delete(ctx context.Context, teamID uint) error {
	if teamID == 0 {
		return errors.New("team ID is required for delete")
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

	err = db.Delete(&models.Team{}, teamID).Error
	return err
}

// MaxDisplaySuffix returns the highest numeric suffix among display IDs with
// the given prefix, 0 when no team carries one. Feeds startup reconciliation
// of the team sequence.
func (r *TeamRepositoryImpl) MaxDisplaySuffix(ctx context.Context, prefix string) (int64, error) {
	db := r.getDB(ctx)

	var max *int64
	err := db.Model(&models.Team{}).
		Select("MAX(CAST(SUBSTRING(display_id FROM ?) AS BIGINT))", "^"+prefix+"-(\\d+)$").
		Where("display_id LIKE ?", prefix+"-%").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}
