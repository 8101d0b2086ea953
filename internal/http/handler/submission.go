package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fritakagp.app/backend/internal/http/dto"
	"fritakagp.app/backend/internal/http/middleware"
	"fritakagp.app/backend/internal/http/validation"
	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/service"
)

// SubmissionHandler serves one kind of application or claim. R is the request
// body the kind is created from.
type SubmissionHandler[T model.Record, R dto.Request[T]] struct {
	svc service.SubmissionService[T]
}

func NewSubmissionHandler[T model.Record, R dto.Request[T]](svc service.SubmissionService[T]) *SubmissionHandler[T, R] {
	return &SubmissionHandler[T, R]{svc: svc}
}

// Create validates the body, stores the submission and schedules its processing.
func (h *SubmissionHandler[T, R]) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req R
	if err := c.ShouldBindJSON(&req); err != nil {
		if fields := validation.Errors(err); fields != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationResponse(fields))
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if fields := req.Check(); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, dto.NewValidationResponse(fields))
		return
	}

	attachment, err := dto.DecodeAttachment(req.Attachment())
	if err != nil {
		c.JSON(http.StatusBadRequest, attachmentError(err))
		return
	}

	record, err := h.svc.Create(ctx, middleware.GetIdentity(ctx), req.ToRecord(), attachment)
	if err != nil {
		if errors.Is(err, service.ErrInfected) {
			c.JSON(http.StatusBadRequest, attachmentError(err))
			return
		}
		slog.ErrorContext(ctx, "failed to create submission", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create submission"})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Get returns a submission to its submitter or the employee it concerns.
func (h *SubmissionHandler[T, R]) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.svc.Get(ctx, middleware.GetIdentity(ctx), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to get submission", "error", err, "id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get submission"})
		return
	}

	c.JSON(http.StatusOK, record)
}

type ClaimHandler[T model.ClaimRecord, R dto.Request[T]] struct {
	*SubmissionHandler[T, R]
	claims service.ClaimService[T]
}

func NewClaimHandler[T model.ClaimRecord, R dto.Request[T]](svc service.ClaimService[T]) *ClaimHandler[T, R] {
	return &ClaimHandler[T, R]{
		SubmissionHandler: NewSubmissionHandler[T, R](svc),
		claims:            svc,
	}
}

// Delete withdraws a claim.
func (h *ClaimHandler[T, R]) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseID(c)
	if !ok {
		return
	}

	record, err := h.claims.Delete(ctx, middleware.GetIdentity(ctx), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(err, service.ErrAlreadyDeleted):
			c.JSON(http.StatusConflict, gin.H{"error": "claim is already withdrawn"})
		default:
			slog.ErrorContext(ctx, "failed to delete claim", "error", err, "id", id)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete claim"})
		}
		return
	}

	c.JSON(http.StatusOK, record)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func attachmentError(err error) dto.ValidationResponse {
	return dto.NewValidationResponse([]validation.FieldError{{
		PropertyPath: "dokumentasjon",
		Message:      err.Error(),
	}})
}
