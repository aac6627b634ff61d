package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docshare/internal/http/middleware"
	"docshare/internal/service"
	"docshare/internal/storage"
)

type shareRequest struct {
	GranteeID string `json:"granteeId"`
}

// UploadDocument accepts a multipart upload (field name: file), stores the
// blob and records its metadata under the caller's identity.
//
// @Summary Upload a document
// @Tags documents
// @Accept mpfd
// @Produce json
// @Param file formData file true "document to upload"
// @Success 201 {object} model.Document
// @Failure 400 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Security BearerAuth
// @Router /documents [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := svc.Upload(c.UserContext(), middleware.IdentityFromCtx(c), f, fh.Filename, ct, fh.Size)
		if err != nil {
			return writeDocumentError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocuments returns the record set visible to the caller: records they
// own plus records shared with them.
//
// @Summary List visible documents
// @Tags documents
// @Produce json
// @Success 200 {array} model.Document
// @Security BearerAuth
// @Router /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := svc.List(c.UserContext(), middleware.IdentityFromCtx(c))
		if err != nil {
			return writeDocumentError(c, err)
		}
		return c.JSON(docs)
	}
}

// GetDocument returns a single record if the caller may see it.
//
// @Summary Get a document
// @Tags documents
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} model.Document
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Get(c.UserContext(), c.Params("id"), middleware.IdentityFromCtx(c))
		if err != nil {
			return writeDocumentError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a record. Owner-only.
//
// @Summary Delete a document
// @Tags documents
// @Param id path string true "document id"
// @Success 204
// @Failure 403 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id"), middleware.IdentityFromCtx(c)); err != nil {
			return writeDocumentError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ShareDocument grants another identity read access to a record. Owner-only;
// granting an existing grantee again is absorbed.
//
// @Summary Share a document
// @Tags documents
// @Accept json
// @Param id path string true "document id"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Security BearerAuth
// @Router /documents/{id}/share [post]
func ShareDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req shareRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "bad request")
		}
		if err := svc.Grant(c.UserContext(), c.Params("id"), middleware.IdentityFromCtx(c), req.GranteeID); err != nil {
			return writeDocumentError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RevokeAccess removes a grantee from a record. Owner-only; revoking an
// absent grantee is a no-op.
//
// @Summary Revoke access to a document
// @Tags documents
// @Param id path string true "document id"
// @Param granteeId path string true "grantee identity"
// @Success 204
// @Failure 403 {object} errorPayload
// @Security BearerAuth
// @Router /documents/{id}/share/{granteeId} [delete]
func RevokeAccess(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Revoke(c.UserContext(), c.Params("id"), middleware.IdentityFromCtx(c), c.Params("granteeId")); err != nil {
			return writeDocumentError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// writeDocumentError translates service errors into the error envelope.
func writeDocumentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrIdentityRequired):
		return fiber.NewError(fiber.StatusUnauthorized, "identity required")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrNotOwner):
		return writeError(c, fiber.StatusForbidden, "NOT_OWNER", "only the owner may do this")
	case errors.Is(err, service.ErrInvalidGrantee):
		return writeError(c, fiber.StatusBadRequest, "INVALID_GRANTEE", "cannot share a document with yourself")
	case errors.Is(err, service.ErrGranteeRequired):
		return writeError(c, fiber.StatusBadRequest, "GRANTEE_REQUIRED", "grantee id is required")
	case errors.Is(err, storage.ErrUploadFailed):
		return writeError(c, fiber.StatusBadGateway, "UPLOAD_FAILED", "blob upload failed")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
