package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vero/backend/internal/domain"
	"go.uber.org/zap"
)

const (
	serviceName    = "vero-backend"
	serviceVersion = "1.0.0"
)

// Verifier runs the verification pipeline for a submission
type Verifier interface {
	VerifyDrug(ctx context.Context, submission *domain.DrugSubmission) (*domain.VerificationResponse, error)
	VerifyBaby(ctx context.Context, submission *domain.BabySubmission) (*domain.VerificationResponse, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	verifier Verifier
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(verifier Verifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		verifier: verifier,
		logger:   logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// VerifyDrugProduct handles drug verification requests
func (h *Handler) VerifyDrugProduct(c *gin.Context) {
	var req domain.DrugSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.verifier.VerifyDrug(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, domain.CategoryDrug, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyBabyProduct handles baby product verification requests
func (h *Handler) VerifyBabyProduct(c *gin.Context) {
	var req domain.BabySubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.verifier.VerifyBaby(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, domain.CategoryBaby, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// respondError maps service errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, category domain.Category, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidLanguage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPersistence):
		h.logger.Error("Failed to persist verification",
			zap.String("category", string(category)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save verification"})
	default:
		h.logger.Error("Verification failed",
			zap.String("category", string(category)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
