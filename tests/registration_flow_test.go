package tests

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icct-platform/registration-backend/app/dto"
	"github.com/icct-platform/registration-backend/app/services"
	businessflow "github.com/icct-platform/registration-backend/business_flow"
	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/repository"
	testingutil "github.com/icct-platform/registration-backend/testing"
	"github.com/icct-platform/registration-backend/utils"
)

// Minimal well-formed PNG header; content sniffing only needs the signature
var pngBytes = []byte("\x89PNG\r\n\x1a\n")

func pngBase64() string {
	return base64.StdEncoding.EncodeToString(pngBytes)
}

type registrationTestEnv struct {
	flow    businessflow.RegistrationFlow
	storage *services.MockStorageService
	teams   repository.TeamRepository
	audits  repository.AuditLogRepository
}

func newRegistrationTestEnv(testDB *testingutil.TestDB) *registrationTestEnv {
	teamRepo := repository.NewTeamRepository(testDB.DB)
	playerRepo := repository.NewPlayerRepository(testDB.DB)
	documentRepo := repository.NewDocumentAssetRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	sequenceRepo := repository.NewSequenceCounterRepository(testDB.DB, 3000)

	identifierSvc := services.NewIdentifierService(sequenceRepo, services.IdentifierServiceConfig{
		Prefix:       "ICCT",
		PadWidth:     3,
		MaxRetries:   3,
		RetryBackoff: 10 * time.Millisecond,
	})
	storage := services.NewMockStorageService()
	notificationSvc := services.NewNotificationService(services.NewMockEmailProvider())

	flow := businessflow.NewRegistrationFlow(
		teamRepo,
		playerRepo,
		documentRepo,
		auditRepo,
		identifierSvc,
		storage,
		notificationSvc,
		businessflow.RegistrationConfig{
			RosterMin:       11,
			RosterMax:       15,
			MaxDocumentSize: 8 * 1024 * 1024,
		},
		testDB.DB,
	)

	return &registrationTestEnv{
		flow:    flow,
		storage: storage,
		teams:   teamRepo,
		audits:  auditRepo,
	}
}

func validRegistrationRequest(teamName string, rosterSize int) *dto.RegistrationRequest {
	players := make([]dto.RegistrationPlayer, 0, rosterSize)
	roles := []string{
		models.PlayerRoleBatter,
		models.PlayerRoleBowler,
		models.PlayerRoleAllRounder,
		models.PlayerRoleWicketKeeper,
	}
	for i := 1; i <= rosterSize; i++ {
		players = append(players, dto.RegistrationPlayer{
			FullName:     fmt.Sprintf("Player %d", i),
			Role:         roles[(i-1)%len(roles)],
			JerseyNumber: i,
		})
	}

	return &dto.RegistrationRequest{
		TeamName:      teamName,
		Institution:   "Test University",
		CaptainName:   "Jordan Smith",
		CaptainEmail:  "captain@example.com",
		CaptainMobile: "+447912345678",
		Players:       players,
		Documents: []dto.RegistrationDocument{
			{
				Kind:          models.DocumentKindPaymentProof,
				Filename:      "receipt.png",
				ContentBase64: pngBase64(),
			},
		},
	}
}

func TestRegistrationFlowHappyPath(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newRegistrationTestEnv(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		resp, err := env.flow.Register(ctx, validRegistrationRequest("Northern Knights", 11), metadata)
		require.NoError(t, err)
		require.NotNil(t, resp)

		assert.Equal(t, "ICCT-001", resp.Team.DisplayID)
		assert.Equal(t, models.TeamStatusPending, resp.Team.Status)
		assert.Len(t, resp.Team.Players, 11)
		assert.Equal(t, "ICCT-001-P01", resp.Team.Players[0].DisplayID)
		require.Len(t, resp.Team.Documents, 1)

		// Document bytes landed in the object store
		assert.Equal(t, 1, env.storage.Len())

		// Second registration gets the next number
		resp2, err := env.flow.Register(ctx, validRegistrationRequest("Southern Stars", 12), metadata)
		require.NoError(t, err)
		assert.Equal(t, "ICCT-002", resp2.Team.DisplayID)

		// Submission is audited against the team
		team, err := env.teams.ByDisplayID(ctx, "ICCT-001")
		require.NoError(t, err)
		entries, err := env.audits.ListByTeam(ctx, team.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.AuditActionRegistrationSubmitted, entries[0].Action)

		return nil
	})
	require.NoError(t, err)
}

func TestRegistrationFlowDuplicateTeamName(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newRegistrationTestEnv(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		_, err := env.flow.Register(ctx, validRegistrationRequest("Northern Knights", 11), metadata)
		require.NoError(t, err)

		_, err = env.flow.Register(ctx, validRegistrationRequest("Northern Knights", 11), metadata)
		require.Error(t, err)
		assert.True(t, errors.Is(err, businessflow.ErrTeamNameAlreadyExists))

		// The rejected attempt must not consume an identifier
		resp, err := env.flow.Register(ctx, validRegistrationRequest("Southern Stars", 11), metadata)
		require.NoError(t, err)
		assert.Equal(t, "ICCT-002", resp.Team.DisplayID)

		return nil
	})
	require.NoError(t, err)
}

func TestRegistrationFlowRosterBounds(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newRegistrationTestEnv(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		_, err := env.flow.Register(ctx, validRegistrationRequest("Tiny Team", 10), metadata)
		require.Error(t, err)
		assert.True(t, errors.Is(err, businessflow.ErrRosterTooSmall))

		_, err = env.flow.Register(ctx, validRegistrationRequest("Huge Team", 16), metadata)
		require.Error(t, err)
		assert.True(t, errors.Is(err, businessflow.ErrRosterTooLarge))

		// Nothing was uploaded or persisted
		assert.Equal(t, 0, env.storage.Len())

		return nil
	})
	require.NoError(t, err)
}

func TestRegistrationFlowDuplicateJerseyNumber(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newRegistrationTestEnv(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		req := validRegistrationRequest("Northern Knights", 11)
		req.Players[5].JerseyNumber = req.Players[2].JerseyNumber

		_, err := env.flow.Register(ctx, req, metadata)
		require.Error(t, err)
		assert.True(t, errors.Is(err, businessflow.ErrDuplicateJerseyNumber))

		return nil
	})
	require.NoError(t, err)
}

func TestRegistrationFlowPaymentProofRequired(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newRegistrationTestEnv(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		req := validRegistrationRequest("Northern Knights", 11)
		req.Documents = nil

		_, err := env.flow.Register(ctx, req, metadata)
		require.Error(t, err)
		assert.True(t, errors.Is(err, businessflow.ErrPaymentProofRequired))

		return nil
	})
	require.NoError(t, err)
}

func TestRegistrationFlowRejectsUnknownContentType(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newRegistrationTestEnv(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		req := validRegistrationRequest("Northern Knights", 11)
		// An executable posing as a receipt; sniffing sees the real bytes
		req.Documents[0].ContentBase64 = base64.StdEncoding.EncodeToString([]byte("MZ\x90\x00\x03"))

		_, err := env.flow.Register(ctx, req, metadata)
		require.Error(t, err)
		assert.True(t, errors.Is(err, businessflow.ErrDocumentContentInvalid))
		assert.Equal(t, 0, env.storage.Len())

		return nil
	})
	require.NoError(t, err)
}

func TestRegistrationFlowAuditCarriesRequestID(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newRegistrationTestEnv(testDB)
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		// Handlers stash the request ID under utils.RequestIDKey; the audit
		// trail must pick it up from there
		ctx := context.WithValue(testingutil.CreateTestContext(), utils.RequestIDKey, "req-12345")

		_, err := env.flow.Register(ctx, validRegistrationRequest("Northern Knights", 11), metadata)
		require.NoError(t, err)

		team, err := env.teams.ByDisplayID(ctx, "ICCT-001")
		require.NoError(t, err)
		entries, err := env.audits.ListByTeam(ctx, team.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.NotNil(t, entries[0].RequestID)
		assert.Equal(t, "req-12345", *entries[0].RequestID)

		return nil
	})
	require.NoError(t, err)
}

func TestRegistrationFlowGetByDisplayID(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newRegistrationTestEnv(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

		_, err := env.flow.Register(ctx, validRegistrationRequest("Northern Knights", 11), metadata)
		require.NoError(t, err)

		team, err := env.flow.GetByDisplayID(ctx, "ICCT-001")
		require.NoError(t, err)
		assert.Equal(t, "Northern Knights", team.Name)
		assert.Len(t, team.Players, 11)

		_, err = env.flow.GetByDisplayID(ctx, "ICCT-404")
		require.Error(t, err)
		assert.True(t, errors.Is(err, businessflow.ErrTeamNotFound))

		return nil
	})
	require.NoError(t, err)
}
