// Package testing provides test utilities and database setup for testing the registration system
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestTeam creates a registered team with the given display identifier
func (tf *TestFixtures) CreateTestTeam(displayID, status string) (*models.Team, error) {
	suffix := rand.Intn(10000000)

	team := &models.Team{
		DisplayID:     displayID,
		Name:          fmt.Sprintf("Test Team %s %d", displayID, suffix),
		Institution:   "Test University",
		CaptainName:   "Jordan Smith",
		CaptainEmail:  fmt.Sprintf("captain.%s.%d@example.com", displayID, suffix),
		CaptainMobile: fmt.Sprintf("+4479%08d", rand.Intn(100000000)),
		Status:        status,
	}

	if status != models.TeamStatusPending {
		reviewer := "test-admin"
		team.ReviewedBy = &reviewer
	}

	err := tf.DB.DB.Create(team).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test team: %w", err)
	}

	return team, nil
}

// CreateTestPlayers creates a full roster of `count` players under the team
func (tf *TestFixtures) CreateTestPlayers(team *models.Team, count int) ([]*models.Player, error) {
	roles := []string{
		models.PlayerRoleBatter,
		models.PlayerRoleBowler,
		models.PlayerRoleAllRounder,
		models.PlayerRoleWicketKeeper,
	}

	var players []*models.Player
	for i := 1; i <= count; i++ {
		player := &models.Player{
			TeamID:       team.ID,
			DisplayID:    fmt.Sprintf("%s-P%02d", team.DisplayID, i),
			Position:     i,
			FullName:     fmt.Sprintf("Player %d of %s", i, team.DisplayID),
			Role:         roles[(i-1)%len(roles)],
			JerseyNumber: i,
		}

		if err := tf.DB.DB.Create(player).Error; err != nil {
			return nil, fmt.Errorf("failed to create test player %d: %w", i, err)
		}
		players = append(players, player)
	}

	return players, nil
}

// CreateTestDocument creates a stored document record for the team
func (tf *TestFixtures) CreateTestDocument(team *models.Team, kind string) (*models.DocumentAsset, error) {
	suffix := rand.Intn(10000000)
	key := fmt.Sprintf("registrations/%s/%s/test-%d.jpg", team.UUID, kind, suffix)

	doc := &models.DocumentAsset{
		TeamID:           team.ID,
		Kind:             kind,
		OriginalFilename: fmt.Sprintf("test-%d.jpg", suffix),
		StorageKey:       key,
		PublicURL:        "https://storage.example.com/" + key,
		MimeType:         "image/jpeg",
		SizeBytes:        1024,
	}

	err := tf.DB.DB.Create(doc).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test document: %w", err)
	}

	return doc, nil
}

// CreateTestMatch creates a scheduled match between the two teams
func (tf *TestFixtures) CreateTestMatch(home, away *models.Team, scheduledAt time.Time) (*models.Match, error) {
	match := &models.Match{
		Round:        "group_stage",
		HomeTeamID:   home.ID,
		AwayTeamID:   away.ID,
		Venue:        "Test Oval",
		ScheduledAt:  scheduledAt,
		Status:       models.MatchStatusScheduled,
		ReminderSent: utils.ToPtr(false),
	}

	err := tf.DB.DB.Create(match).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test match: %w", err)
	}

	return match, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(teamID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		TeamID:      teamID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	err := tf.DB.DB.Create(audit).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}

// SeedSequenceCounter inserts a counter row with the given value
func (tf *TestFixtures) SeedSequenceCounter(name string, value int64) (*models.SequenceCounter, error) {
	counter := &models.SequenceCounter{
		Name:      name,
		LastValue: value,
	}

	err := tf.DB.DB.Create(counter).Error
	if err != nil {
		return nil, fmt.Errorf("failed to seed sequence counter %s: %w", name, err)
	}

	return counter, nil
}
