// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/icct-platform/registration-backend/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// TeamRepository defines operations for registered teams
type TeamRepository interface {
	Repository[models.Team, models.TeamFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Team, error)
	ByDisplayID(ctx context.Context, displayID string) (*models.Team, error)
	ByName(ctx context.Context, name string) (*models.Team, error)
	WithRoster(ctx context.Context, id uint) (*models.Team, error)
	UpdateStatus(ctx context.Context, teamID uint, status string, reviewedBy, reviewNote *string) error
	Delete(ctx context.Context, teamID uint) error
	MaxDisplaySuffix(ctx context.Context, prefix string) (int64, error)
}

// PlayerRepository defines operations for roster players
type PlayerRepository interface {
	Repository[models.Player, models.PlayerFilter]
	ByDisplayID(ctx context.Context, displayID string) (*models.Player, error)
	ListByTeam(ctx context.Context, teamID uint) ([]*models.Player, error)
}

// MatchRepository defines operations for scheduled matches
type MatchRepository interface {
	Repository[models.Match, models.MatchFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	ListUpcoming(ctx context.Context, within int, reminderPending bool) ([]*models.Match, error)
	MarkReminderSent(ctx context.Context, matchID uint) error
}

// DocumentAssetRepository defines operations for uploaded documents
type DocumentAssetRepository interface {
	Repository[models.DocumentAsset, models.DocumentAssetFilter]
	ByUUID(ctx context.Context, uuid string) (*models.DocumentAsset, error)
	ByStorageKey(ctx context.Context, key string) (*models.DocumentAsset, error)
	ListByTeam(ctx context.Context, teamID uint) ([]*models.DocumentAsset, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByTeam(ctx context.Context, teamID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}

// SequenceCounterRepository defines operations for named monotonic counters.
// Increment, Current, and Resync each run in their own short transaction and
// never join a transaction carried in ctx: an issued value must be durable
// before the caller acts on it.
type SequenceCounterRepository interface {
	Increment(ctx context.Context, name string) (int64, error)
	Current(ctx context.Context, name string) (int64, error)
	Resync(ctx context.Context, name string, value int64) error
}
