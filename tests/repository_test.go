package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/repository"
	testingutil "github.com/icct-platform/registration-backend/testing"
	"github.com/icct-platform/registration-backend/utils"
)

func TestSequenceCounterRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewSequenceCounterRepository(testDB.DB, 3000)
		ctx := testingutil.CreateTestContext()

		t.Run("IncrementProvisionsRow", func(t *testing.T) {
			value, err := repo.Increment(ctx, "fresh")
			require.NoError(t, err)
			assert.Equal(t, int64(1), value)

			value, err = repo.Increment(ctx, "fresh")
			require.NoError(t, err)
			assert.Equal(t, int64(2), value)
		})

		t.Run("CurrentMissingCounter", func(t *testing.T) {
			value, err := repo.Current(ctx, "never_used")
			require.NoError(t, err)
			assert.Equal(t, int64(0), value)
		})

		t.Run("CurrentDoesNotAdvance", func(t *testing.T) {
			_, err := repo.Increment(ctx, "readonly")
			require.NoError(t, err)

			value, err := repo.Current(ctx, "readonly")
			require.NoError(t, err)
			assert.Equal(t, int64(1), value)

			value, err = repo.Increment(ctx, "readonly")
			require.NoError(t, err)
			assert.Equal(t, int64(2), value)
		})

		t.Run("Resync", func(t *testing.T) {
			require.NoError(t, repo.Resync(ctx, "repaired", 100))

			value, err := repo.Current(ctx, "repaired")
			require.NoError(t, err)
			assert.Equal(t, int64(100), value)

			value, err = repo.Increment(ctx, "repaired")
			require.NoError(t, err)
			assert.Equal(t, int64(101), value)
		})

		t.Run("ResyncRejectsNegative", func(t *testing.T) {
			err := repo.Resync(ctx, "repaired", -5)
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTeamRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewTeamRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByDisplayID", func(t *testing.T) {
			team, err := fixtures.CreateTestTeam("ICCT-001", models.TeamStatusPending)
			require.NoError(t, err)

			found, err := repo.ByDisplayID(ctx, "ICCT-001")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, team.ID, found.ID)
			assert.Equal(t, team.Name, found.Name)
		})

		t.Run("ByDisplayIDNotFound", func(t *testing.T) {
			found, err := repo.ByDisplayID(ctx, "ICCT-999")
			assert.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ByName", func(t *testing.T) {
			team, err := fixtures.CreateTestTeam("ICCT-002", models.TeamStatusPending)
			require.NoError(t, err)

			found, err := repo.ByName(ctx, team.Name)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, team.ID, found.ID)
		})

		t.Run("WithRoster", func(t *testing.T) {
			team, err := fixtures.CreateTestTeam("ICCT-003", models.TeamStatusApproved)
			require.NoError(t, err)
			_, err = fixtures.CreateTestPlayers(team, 11)
			require.NoError(t, err)
			_, err = fixtures.CreateTestDocument(team, models.DocumentKindPaymentProof)
			require.NoError(t, err)

			full, err := repo.WithRoster(ctx, team.ID)
			require.NoError(t, err)
			require.NotNil(t, full)
			assert.Len(t, full.Players, 11)
			assert.Len(t, full.Documents, 1)

			// Players come back in roster order
			for i, p := range full.Players {
				assert.Equal(t, i+1, p.Position)
			}
		})

		t.Run("UpdateStatus", func(t *testing.T) {
			team, err := fixtures.CreateTestTeam("ICCT-004", models.TeamStatusPending)
			require.NoError(t, err)

			reviewer := "admin"
			note := "All documents verified"
			err = repo.UpdateStatus(ctx, team.ID, models.TeamStatusApproved, &reviewer, &note)
			require.NoError(t, err)

			updated, err := repo.ByID(ctx, team.ID)
			require.NoError(t, err)
			require.NotNil(t, updated)
			assert.Equal(t, models.TeamStatusApproved, updated.Status)
			require.NotNil(t, updated.ReviewedBy)
			assert.Equal(t, reviewer, *updated.ReviewedBy)
		})

		t.Run("MaxDisplaySuffix", func(t *testing.T) {
			_, err := fixtures.CreateTestTeam("ICCT-042", models.TeamStatusPending)
			require.NoError(t, err)

			max, err := repo.MaxDisplaySuffix(ctx, "ICCT")
			require.NoError(t, err)
			assert.Equal(t, int64(42), max)
		})

		t.Run("CountByStatus", func(t *testing.T) {
			count, err := repo.Count(ctx, models.TeamFilter{Status: utils.ToPtr(models.TeamStatusPending)})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, count, int64(2))
		})

		t.Run("Delete", func(t *testing.T) {
			team, err := fixtures.CreateTestTeam("ICCT-050", models.TeamStatusPending)
			require.NoError(t, err)
			_, err = fixtures.CreateTestPlayers(team, 11)
			require.NoError(t, err)

			require.NoError(t, repo.Delete(ctx, team.ID))

			found, err := repo.ByID(ctx, team.ID)
			require.NoError(t, err)
			assert.Nil(t, found)

			// Cascade removes the roster
			playerRepo := repository.NewPlayerRepository(testDB.DB)
			players, err := playerRepo.ListByTeam(ctx, team.ID)
			require.NoError(t, err)
			assert.Empty(t, players)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestMatchRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewMatchRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		home, err := fixtures.CreateTestTeam("ICCT-001", models.TeamStatusApproved)
		require.NoError(t, err)
		away, err := fixtures.CreateTestTeam("ICCT-002", models.TeamStatusApproved)
		require.NoError(t, err)

		t.Run("ByUUID", func(t *testing.T) {
			match, err := fixtures.CreateTestMatch(home, away, utils.UTCNow().Add(48*time.Hour))
			require.NoError(t, err)

			found, err := repo.ByUUID(ctx, match.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, match.ID, found.ID)
			require.NotNil(t, found.HomeTeam)
			assert.Equal(t, home.DisplayID, found.HomeTeam.DisplayID)
		})

		t.Run("ListUpcoming", func(t *testing.T) {
			soon, err := fixtures.CreateTestMatch(home, away, utils.UTCNow().Add(2*time.Hour))
			require.NoError(t, err)
			_, err = fixtures.CreateTestMatch(home, away, utils.UTCNow().Add(10*24*time.Hour))
			require.NoError(t, err)

			due, err := repo.ListUpcoming(ctx, 24*60, true)
			require.NoError(t, err)
			require.Len(t, due, 1)
			assert.Equal(t, soon.ID, due[0].ID)
		})

		t.Run("MarkReminderSent", func(t *testing.T) {
			match, err := fixtures.CreateTestMatch(home, away, utils.UTCNow().Add(3*time.Hour))
			require.NoError(t, err)

			require.NoError(t, repo.MarkReminderSent(ctx, match.ID))

			due, err := repo.ListUpcoming(ctx, 24*60, true)
			require.NoError(t, err)
			for _, m := range due {
				assert.NotEqual(t, match.ID, m.ID)
			}
		})

		t.Run("UpdateResult", func(t *testing.T) {
			match, err := fixtures.CreateTestMatch(home, away, utils.UTCNow().Add(4*time.Hour))
			require.NoError(t, err)

			homeScore := 187
			awayScore := 165
			match.Status = models.MatchStatusCompleted
			match.HomeScore = &homeScore
			match.AwayScore = &awayScore
			match.WinnerTeamID = &home.ID
			require.NoError(t, repo.Update(ctx, match))

			updated, err := repo.ByID(ctx, match.ID)
			require.NoError(t, err)
			require.NotNil(t, updated)
			assert.Equal(t, models.MatchStatusCompleted, updated.Status)
			require.NotNil(t, updated.HomeScore)
			assert.Equal(t, homeScore, *updated.HomeScore)
			require.NotNil(t, updated.WinnerTeamID)
			assert.Equal(t, home.ID, *updated.WinnerTeamID)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAuditLogRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewAuditLogRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		team, err := fixtures.CreateTestTeam("ICCT-001", models.TeamStatusPending)
		require.NoError(t, err)

		_, err = fixtures.CreateTestAuditLog(&team.ID, models.AuditActionRegistrationSubmitted, true)
		require.NoError(t, err)
		_, err = fixtures.CreateTestAuditLog(&team.ID, models.AuditActionTeamApproved, true)
		require.NoError(t, err)
		_, err = fixtures.CreateTestAuditLog(nil, models.AuditActionRegistrationFailed, false)
		require.NoError(t, err)

		t.Run("ListByTeam", func(t *testing.T) {
			entries, err := repo.ListByTeam(ctx, team.ID, 10, 0)
			require.NoError(t, err)
			assert.Len(t, entries, 2)
		})

		t.Run("ListByAction", func(t *testing.T) {
			entries, err := repo.ListByAction(ctx, models.AuditActionTeamApproved, 10, 0)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.True(t, entries[0].IsAdminEvent())
		})

		t.Run("ListFailedActions", func(t *testing.T) {
			entries, err := repo.ListFailedActions(ctx, 10, 0)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.True(t, entries[0].IsFailed())
			assert.Equal(t, models.AuditActionRegistrationFailed, entries[0].Action)
		})

		return nil
	})
	require.NoError(t, err)
}
