// Package businessflow contains the core business logic and use cases for tournament registration workflows
package businessflow

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/icct-platform/registration-backend/app/services"
	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/repository"
	"github.com/icct-platform/registration-backend/utils"
)

const previewMaxEdge = 256

// DocumentFlow serves stored registration documents and image previews
type DocumentFlow interface {
	Download(ctx context.Context, documentUUID string, metadata *ClientMetadata) (*models.DocumentAsset, []byte, error)
	Preview(ctx context.Context, documentUUID string) (*models.DocumentAsset, []byte, error)
}

// DocumentFlowImpl implements the document serving flow
type DocumentFlowImpl struct {
	documentRepo repository.DocumentAssetRepository
	auditRepo    repository.AuditLogRepository
	storageSvc   services.ObjectStorageService
}

// NewDocumentFlow creates a new document flow instance
func NewDocumentFlow(
	documentRepo repository.DocumentAssetRepository,
	auditRepo repository.AuditLogRepository,
	storageSvc services.ObjectStorageService,
) DocumentFlow {
	return &DocumentFlowImpl{
		documentRepo: documentRepo,
		auditRepo:    auditRepo,
		storageSvc:   storageSvc,
	}
}

// Download fetches the original document bytes from the object store
func (s *DocumentFlowImpl) Download(ctx context.Context, documentUUID string, metadata *ClientMetadata) (*models.DocumentAsset, []byte, error) {
	doc, err := s.lookup(ctx, documentUUID)
	if err != nil {
		return nil, nil, err
	}

	data, _, err := s.storageSvc.Fetch(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, NewBusinessError("DOCUMENT_FETCH_FAILED", "Failed to fetch document", err)
	}

	msg := fmt.Sprintf("Document %s downloaded", doc.UUID)
	_ = s.createAuditLog(ctx, doc, models.AuditActionDocumentDownloaded, msg, metadata)

	return doc, data, nil
}

// Preview returns a JPEG thumbnail for image documents. PDFs and other
// non-image kinds have no preview.
func (s *DocumentFlowImpl) Preview(ctx context.Context, documentUUID string) (*models.DocumentAsset, []byte, error) {
	doc, err := s.lookup(ctx, documentUUID)
	if err != nil {
		return nil, nil, err
	}

	if doc.MimeType != "image/jpeg" && doc.MimeType != "image/png" {
		return nil, nil, NewBusinessError("DOCUMENT_NOT_PREVIEWABLE", "Document kind has no image preview", ErrDocumentNotPreviewable)
	}

	data, _, err := s.storageSvc.Fetch(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, NewBusinessError("DOCUMENT_FETCH_FAILED", "Failed to fetch document", err)
	}

	thumb, err := renderThumbnail(data)
	if err != nil {
		return nil, nil, NewBusinessError("DOCUMENT_PREVIEW_FAILED", "Failed to render preview", err)
	}

	return doc, thumb, nil
}

func (s *DocumentFlowImpl) lookup(ctx context.Context, documentUUID string) (*models.DocumentAsset, error) {
	doc, err := s.documentRepo.ByUUID(ctx, documentUUID)
	if err != nil {
		return nil, NewBusinessError("DOCUMENT_LOOKUP_FAILED", "Failed to look up document", err)
	}
	if doc == nil {
		return nil, NewBusinessError("DOCUMENT_NOT_FOUND", "Document not found", ErrDocumentNotFound)
	}
	return doc, nil
}

// renderThumbnail decodes an image and scales its longest edge down to
// previewMaxEdge, re-encoding as JPEG
func renderThumbnail(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > previewMaxEdge || h > previewMaxEdge {
		if w >= h {
			h = h * previewMaxEdge / w
			w = previewMaxEdge
		} else {
			w = w * previewMaxEdge / h
			h = previewMaxEdge
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *DocumentFlowImpl) createAuditLog(ctx context.Context, doc *models.DocumentAsset, action, description string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		TeamID:      &doc.TeamID,
		Action:      action,
		Description: &description,
		Success:     utils.ToPtr(true),
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		if requestIDStr, ok := requestID.(string); ok {
			audit.RequestID = &requestIDStr
		}
	}

	return s.auditRepo.Save(ctx, audit)
}
