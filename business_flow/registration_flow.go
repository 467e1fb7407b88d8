// Package businessflow contains the core business logic and use cases for tournament registration workflows
package businessflow

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/icct-platform/registration-backend/app/dto"
	"github.com/icct-platform/registration-backend/app/services"
	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/repository"
	"github.com/icct-platform/registration-backend/utils"
)

// RegistrationFlow handles the complete team registration business logic
type RegistrationFlow interface {
	Register(ctx context.Context, req *dto.RegistrationRequest, metadata *ClientMetadata) (*dto.RegistrationResponse, error)
	GetByDisplayID(ctx context.Context, displayID string) (*dto.TeamDTO, error)
}

// RegistrationConfig holds tunable registration rules
type RegistrationConfig struct {
	RosterMin       int
	RosterMax       int
	MaxDocumentSize int64
}

// RegistrationFlowImpl implements the registration business flow
type RegistrationFlowImpl struct {
	teamRepo        repository.TeamRepository
	playerRepo      repository.PlayerRepository
	documentRepo    repository.DocumentAssetRepository
	auditRepo       repository.AuditLogRepository
	identifierSvc   services.IdentifierService
	storageSvc      services.ObjectStorageService
	notificationSvc services.NotificationService
	config          RegistrationConfig
	db              *gorm.DB
}

// NewRegistrationFlow creates a new registration flow instance
func NewRegistrationFlow(
	teamRepo repository.TeamRepository,
	playerRepo repository.PlayerRepository,
	documentRepo repository.DocumentAssetRepository,
	auditRepo repository.AuditLogRepository,
	identifierSvc services.IdentifierService,
	storageSvc services.ObjectStorageService,
	notificationSvc services.NotificationService,
	config RegistrationConfig,
	db *gorm.DB,
) RegistrationFlow {
	return &RegistrationFlowImpl{
		teamRepo:        teamRepo,
		playerRepo:      playerRepo,
		documentRepo:    documentRepo,
		auditRepo:       auditRepo,
		identifierSvc:   identifierSvc,
		storageSvc:      storageSvc,
		notificationSvc: notificationSvc,
		config:          config,
		db:              db,
	}
}

type decodedDocument struct {
	kind           string
	filename       string
	data           []byte
	mimeType       string
	playerPosition *int
}

type uploadedDocument struct {
	decodedDocument
	storageKey string
	publicURL  string
}

// Register validates the submission, uploads documents, allocates the team's
// display identifier, and persists the whole registration. The identifier is
// allocated outside the saving transaction: once issued it is durable, and a
// failure afterwards leaves a gap rather than risking a duplicate.
func (s *RegistrationFlowImpl) Register(ctx context.Context, req *dto.RegistrationRequest, metadata *ClientMetadata) (*dto.RegistrationResponse, error) {
	if err := s.validateRegistrationRequest(ctx, req); err != nil {
		return nil, NewBusinessError("REGISTRATION_VALIDATION_FAILED", "Registration validation failed", err)
	}

	docs, err := s.decodeDocuments(req)
	if err != nil {
		return nil, NewBusinessError("REGISTRATION_VALIDATION_FAILED", "Registration validation failed", err)
	}

	teamUUID := uuid.New()

	// Upload before allocating so a storage outage never consumes a number
	uploaded, err := s.uploadDocuments(ctx, teamUUID, docs)
	if err != nil {
		s.deleteUploaded(ctx, uploaded)
		errMsg := fmt.Sprintf("Document upload failed: %s", err.Error())
		_ = s.createAuditLog(ctx, nil, models.AuditActionRegistrationFailed, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("DOCUMENT_UPLOAD_FAILED", "Document upload failed", err)
	}

	displayID, _, err := s.identifierSvc.AllocateNext(ctx, models.SequenceTeam)
	if err != nil {
		s.deleteUploaded(ctx, uploaded)
		errMsg := fmt.Sprintf("Identifier allocation failed: %s", err.Error())
		_ = s.createAuditLog(ctx, nil, models.AuditActionRegistrationFailed, errMsg, false, &errMsg, metadata)

		if services.IsSequenceUnavailable(err) {
			return nil, NewBusinessError("SEQUENCE_UNAVAILABLE", "Registration is temporarily unavailable, please retry", ErrSequenceUnavailable)
		}
		return nil, NewBusinessError("REGISTRATION_FAILED", "Registration failed", err)
	}

	team := &models.Team{
		UUID:          teamUUID,
		DisplayID:     displayID,
		Name:          req.TeamName,
		Institution:   req.Institution,
		CaptainName:   req.CaptainName,
		CaptainEmail:  req.CaptainEmail,
		CaptainMobile: req.CaptainMobile,
		Status:        models.TeamStatusPending,
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.teamRepo.Save(txCtx, team); err != nil {
			return err
		}

		players := make([]*models.Player, 0, len(req.Players))
		for i, p := range req.Players {
			position := i + 1
			player := &models.Player{
				TeamID:       team.ID,
				DisplayID:    services.PlayerDisplayID(displayID, position),
				Position:     position,
				FullName:     p.FullName,
				Role:         p.Role,
				JerseyNumber: p.JerseyNumber,
			}
			if p.DateOfBirth != "" {
				dob, err := time.Parse("2006-01-02", p.DateOfBirth)
				if err != nil {
					return fmt.Errorf("invalid date of birth for player %d: %w", position, err)
				}
				player.DateOfBirth = &dob
			}
			players = append(players, player)
		}
		if err := s.playerRepo.SaveBatch(txCtx, players); err != nil {
			return err
		}

		assets := make([]*models.DocumentAsset, 0, len(uploaded))
		for _, u := range uploaded {
			asset := &models.DocumentAsset{
				TeamID:           team.ID,
				Kind:             u.kind,
				OriginalFilename: u.filename,
				StorageKey:       u.storageKey,
				PublicURL:        u.publicURL,
				MimeType:         u.mimeType,
				SizeBytes:        int64(len(u.data)),
			}
			if u.playerPosition != nil && *u.playerPosition <= len(players) {
				asset.PlayerID = &players[*u.playerPosition-1].ID
			}
			assets = append(assets, asset)
		}
		return s.documentRepo.SaveBatch(txCtx, assets)
	})

	if err != nil {
		// The allocated number stays consumed; compensation only removes
		// the orphaned uploads
		s.deleteUploaded(ctx, uploaded)
		errMsg := fmt.Sprintf("Registration persistence failed for %s: %s", displayID, err.Error())
		_ = s.createAuditLog(ctx, nil, models.AuditActionRegistrationFailed, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("REGISTRATION_FAILED", "Registration failed", err)
	}

	msg := fmt.Sprintf("Team %s registered as %s", team.Name, displayID)
	_ = s.createAuditLog(ctx, team, models.AuditActionRegistrationSubmitted, msg, true, nil, metadata)

	// Send confirmation outside the transaction; a mail failure must not
	// undo a completed registration
	go func() {
		subject := fmt.Sprintf("Registration received: %s", displayID)
		body := s.confirmationEmailBody(team)
		if err := s.notificationSvc.SendEmail(context.Background(), team.CaptainEmail, subject, body); err != nil {
			log.Printf("failed to send confirmation email for %s: %v", displayID, err)
		}
	}()

	saved, err := s.teamRepo.WithRoster(ctx, team.ID)
	if err != nil || saved == nil {
		saved = team
	}

	teamDTO := ToTeamDTO(*saved)
	return &dto.RegistrationResponse{
		Message:   "Registration submitted successfully",
		Team:      teamDTO,
		EmailSent: true,
	}, nil
}

// GetByDisplayID returns a registered team with its roster and documents
func (s *RegistrationFlowImpl) GetByDisplayID(ctx context.Context, displayID string) (*dto.TeamDTO, error) {
	team, err := s.teamRepo.ByDisplayID(ctx, displayID)
	if err != nil {
		return nil, NewBusinessError("TEAM_LOOKUP_FAILED", "Failed to look up team", err)
	}
	if team == nil {
		return nil, NewBusinessError("TEAM_NOT_FOUND", "Team not found", ErrTeamNotFound)
	}

	full, err := s.teamRepo.WithRoster(ctx, team.ID)
	if err != nil {
		return nil, NewBusinessError("TEAM_LOOKUP_FAILED", "Failed to look up team", err)
	}

	teamDTO := ToTeamDTO(*full)
	return &teamDTO, nil
}

func (s *RegistrationFlowImpl) validateRegistrationRequest(ctx context.Context, req *dto.RegistrationRequest) error {
	if len(req.Players) < s.config.RosterMin {
		return ErrRosterTooSmall
	}
	if len(req.Players) > s.config.RosterMax {
		return ErrRosterTooLarge
	}

	jerseys := make(map[int]bool, len(req.Players))
	for _, p := range req.Players {
		if jerseys[p.JerseyNumber] {
			return ErrDuplicateJerseyNumber
		}
		jerseys[p.JerseyNumber] = true
	}

	hasPaymentProof := false
	for _, d := range req.Documents {
		if d.Kind == models.DocumentKindPaymentProof {
			hasPaymentProof = true
		}
	}
	if !hasPaymentProof {
		return ErrPaymentProofRequired
	}

	exists, err := s.teamRepo.Exists(ctx, models.TeamFilter{Name: &req.TeamName})
	if err != nil {
		return fmt.Errorf("failed to check team name: %w", err)
	}
	if exists {
		return ErrTeamNameAlreadyExists
	}

	return nil
}

var allowedDocumentMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

func (s *RegistrationFlowImpl) decodeDocuments(req *dto.RegistrationRequest) ([]decodedDocument, error) {
	docs := make([]decodedDocument, 0, len(req.Documents))
	for _, d := range req.Documents {
		data, err := base64.StdEncoding.DecodeString(d.ContentBase64)
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", d.Filename, ErrDocumentContentInvalid)
		}
		if int64(len(data)) > s.config.MaxDocumentSize {
			return nil, fmt.Errorf("document %q: %w", d.Filename, ErrDocumentTooLarge)
		}

		// Sniff the real content type; the client-supplied filename is
		// not trusted
		mimeType := http.DetectContentType(data)
		if !allowedDocumentMimeTypes[mimeType] {
			return nil, fmt.Errorf("document %q has type %s: %w", d.Filename, mimeType, ErrDocumentContentInvalid)
		}

		docs = append(docs, decodedDocument{
			kind:           d.Kind,
			filename:       d.Filename,
			data:           data,
			mimeType:       mimeType,
			playerPosition: d.PlayerPosition,
		})
	}
	return docs, nil
}

func (s *RegistrationFlowImpl) uploadDocuments(ctx context.Context, teamUUID uuid.UUID, docs []decodedDocument) ([]uploadedDocument, error) {
	uploaded := make([]uploadedDocument, 0, len(docs))
	for _, doc := range docs {
		key := fmt.Sprintf("registrations/%s/%s/%s-%s", teamUUID, doc.kind, uuid.NewString(), doc.filename)
		url, err := s.storageSvc.Store(ctx, key, doc.data, doc.mimeType)
		if err != nil {
			return uploaded, err
		}
		uploaded = append(uploaded, uploadedDocument{
			decodedDocument: doc,
			storageKey:      key,
			publicURL:       url,
		})
	}
	return uploaded, nil
}

func (s *RegistrationFlowImpl) deleteUploaded(ctx context.Context, uploaded []uploadedDocument) {
	for _, u := range uploaded {
		if err := s.storageSvc.Delete(ctx, u.storageKey); err != nil {
			log.Printf("failed to delete orphaned object %s: %v", u.storageKey, err)
		}
	}
}

func (s *RegistrationFlowImpl) confirmationEmailBody(team *models.Team) string {
	return fmt.Sprintf(
		"<p>Dear %s,</p>"+
			"<p>Your team <strong>%s</strong> has been registered with identifier <strong>%s</strong>.</p>"+
			"<p>The registration is pending review. You will be notified once it is approved.</p>",
		team.CaptainName, team.Name, team.DisplayID)
}

func (s *RegistrationFlowImpl) createAuditLog(ctx context.Context, team *models.Team, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	var teamID *uint
	if team != nil {
		teamID = &team.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		TeamID:       teamID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	// Extract request ID from context if available
	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return s.auditRepo.Save(ctx, audit)
}
