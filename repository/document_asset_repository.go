// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/utils"
)

// DocumentAssetRepositoryImpl implements DocumentAssetRepository interface
type DocumentAssetRepositoryImpl struct {
	*BaseRepository[models.DocumentAsset, models.DocumentAssetFilter]
}

// NewDocumentAssetRepository creates a new document asset repository
func NewDocumentAssetRepository(db *gorm.DB) DocumentAssetRepository {
	return &DocumentAssetRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DocumentAsset, models.DocumentAssetFilter](db),
	}
}

// ByUUID retrieves a document by UUID (string)
func (r *DocumentAssetRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.DocumentAsset, error) {
	parsed, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.DocumentAssetFilter{UUID: &parsed}
	items, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ByStorageKey retrieves a document by its object storage key
func (r *DocumentAssetRepositoryImpl) ByStorageKey(ctx context.Context, key string) (*models.DocumentAsset, error) {
	db := r.getDB(ctx)

	var doc models.DocumentAsset
	err := db.Where("storage_key = ?", key).First(&doc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// ListByTeam retrieves all documents attached to a team
func (r *DocumentAssetRepositoryImpl) ListByTeam(ctx context.Context, teamID uint) ([]*models.DocumentAsset, error) {
	filter := models.DocumentAssetFilter{TeamID: &teamID}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query
func (r *DocumentAssetRepositoryImpl) applyFilter(query *gorm.DB, filter models.DocumentAssetFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}
	if filter.PlayerID != nil {
		query = query.Where("player_id = ?", *filter.PlayerID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	return query
}

// ByFilter retrieves documents based on filter criteria
func (r *DocumentAssetRepositoryImpl) ByFilter(ctx context.Context, filter models.DocumentAssetFilter, orderBy string, limit, offset int) ([]*models.DocumentAsset, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.DocumentAsset{})

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

	var docs []*models.DocumentAsset
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Count returns the number of documents matching the filter
func (r *DocumentAssetRepositoryImpl) Count(ctx context.Context, filter models.DocumentAssetFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.DocumentAsset{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any document matching the filter exists
func (r *DocumentAssetRepositoryImpl) Exists(ctx context.Context, filter models.DocumentAssetFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
