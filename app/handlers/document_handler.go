// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/icct-platform/registration-backend/app/dto"
	businessflow "github.com/icct-platform/registration-backend/business_flow"
	"github.com/icct-platform/registration-backend/utils"
)

// DocumentHandlerInterface defines the contract for document handlers
type DocumentHandlerInterface interface {
	Download(c fiber.Ctx) error
	Preview(c fiber.Ctx) error
}

// DocumentHandler serves stored registration documents
type DocumentHandler struct {
	flow businessflow.DocumentFlow
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(flow businessflow.DocumentFlow) *DocumentHandler {
	return &DocumentHandler{flow: flow}
}

func (h *DocumentHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

// Download streams the original document bytes
// @Summary Download Document
// @Tags Admin
// @Produce octet-stream
// @Param uuid path string true "Document UUID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.APIResponse "Document not found"
// @Router /api/v1/admin/documents/{uuid} [get]
func (h *DocumentHandler) Download(c fiber.Ctx) error {
	documentUUID := c.Params("uuid")
	if documentUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Document UUID is required", "DOCUMENT_UUID_REQUIRED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	doc, data, err := h.flow.Download(h.createRequestContext(c, "/api/v1/admin/documents/:uuid"), documentUUID, metadata)
	if err != nil {
		if businessflow.IsDocumentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Document not found", "DOCUMENT_NOT_FOUND", nil)
		}
		log.Println("Document download failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to download document", "DOCUMENT_FETCH_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, doc.MimeType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+doc.OriginalFilename+`"`)
	return c.Send(data)
}

// Preview returns a JPEG thumbnail for image documents
// @Summary Preview Document
// @Tags Admin
// @Produce jpeg
// @Param uuid path string true "Document UUID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.APIResponse "Document not found"
// @Failure 422 {object} dto.APIResponse "Document has no preview"
// @Router /api/v1/admin/documents/{uuid}/preview [get]
func (h *DocumentHandler) Preview(c fiber.Ctx) error {
	documentUUID := c.Params("uuid")
	if documentUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Document UUID is required", "DOCUMENT_UUID_REQUIRED", nil)
	}

	_, thumb, err := h.flow.Preview(h.createRequestContext(c, "/api/v1/admin/documents/:uuid/preview"), documentUUID)
	if err != nil {
		if businessflow.IsDocumentNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Document not found", "DOCUMENT_NOT_FOUND", nil)
		}
		if businessflow.IsDocumentNotPreviewable(err) {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Document kind has no image preview", "DOCUMENT_NOT_PREVIEWABLE", nil)
		}
		log.Println("Document preview failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to render preview", "DOCUMENT_PREVIEW_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(thumb)
}

func (h *DocumentHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
