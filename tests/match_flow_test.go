package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businessflow "github.com/icct-platform/registration-backend/business_flow"
	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/repository"
	testingutil "github.com/icct-platform/registration-backend/testing"
	"github.com/icct-platform/registration-backend/utils"
)

func TestMatchFlowListMatchesFilters(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		matchRepo := repository.NewMatchRepository(testDB.DB)
		teamRepo := repository.NewTeamRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)
		flow := businessflow.NewMatchFlow(matchRepo, teamRepo, auditRepo, testDB.DB)

		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		home, err := fixtures.CreateTestTeam("ICCT-001", models.TeamStatusApproved)
		require.NoError(t, err)
		away, err := fixtures.CreateTestTeam("ICCT-002", models.TeamStatusApproved)
		require.NoError(t, err)

		scheduled, err := fixtures.CreateTestMatch(home, away, utils.UTCNow().Add(48*time.Hour))
		require.NoError(t, err)

		finished, err := fixtures.CreateTestMatch(home, away, utils.UTCNow().Add(72*time.Hour))
		require.NoError(t, err)
		finished.Status = models.MatchStatusCompleted
		require.NoError(t, matchRepo.Update(ctx, finished))

		t.Run("NoFilters", func(t *testing.T) {
			resp, err := flow.ListMatches(ctx, "", "")
			require.NoError(t, err)
			assert.Equal(t, int64(2), resp.Total)
			assert.Len(t, resp.Matches, 2)
		})

		t.Run("ByStatus", func(t *testing.T) {
			resp, err := flow.ListMatches(ctx, "", models.MatchStatusCompleted)
			require.NoError(t, err)
			require.Len(t, resp.Matches, 1)
			assert.Equal(t, models.MatchStatusCompleted, resp.Matches[0].Status)
			assert.Equal(t, finished.UUID.String(), resp.Matches[0].UUID)
		})

		t.Run("ByRoundAndStatus", func(t *testing.T) {
			resp, err := flow.ListMatches(ctx, "group_stage", models.MatchStatusScheduled)
			require.NoError(t, err)
			require.Len(t, resp.Matches, 1)
			assert.Equal(t, scheduled.UUID.String(), resp.Matches[0].UUID)

			resp, err = flow.ListMatches(ctx, "final", models.MatchStatusScheduled)
			require.NoError(t, err)
			assert.Empty(t, resp.Matches)
		})

		return nil
	})
	require.NoError(t, err)
}
