package handler

import (
	"errors"
	"net/http"

	"github.com/carmen/backend/internal/domain/shared"
	"github.com/carmen/backend/internal/infrastructure/logger"
	"github.com/carmen/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDKey is the gin context key for the request ID
const RequestIDKey = "request_id"

// TenantIDHeader carries the business unit on every request
const TenantIDHeader = "X-Tenant-ID"

// UserIDHeader optionally identifies the acting user
const UserIDHeader = "X-User-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// defaultTenantID is used in development when no tenant header is present
var defaultTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// getTenantID extracts the tenant ID from the request header, falling back
// to the development default tenant when the header is absent. The resolved
// tenant is stamped onto the request context for query log correlation.
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	tenantID := defaultTenantID
	if tenantIDStr := c.GetHeader(TenantIDHeader); tenantIDStr != "" {
		parsed, err := uuid.Parse(tenantIDStr)
		if err != nil {
			return uuid.Nil, err
		}
		tenantID = parsed
	}
	c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID.String()))
	return tenantID, nil
}

// getUserID extracts the acting user ID, if supplied
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr := c.GetHeader(UserIDHeader)
	if userIDStr == "" {
		return uuid.Nil, errors.New("user ID not found in request")
	}
	return uuid.Parse(userIDStr)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleDomainError converts domain errors to HTTP responses.
// The mapping from domain codes to HTTP statuses is centralized in the dto
// package; anything that is not a domain error becomes a 500.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	requestID := getRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		statusCode := dto.GetHTTPStatus(code)
		c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	logger.GetGinLogger(c).Error("unhandled error", zap.Error(err))
	h.InternalError(c, "An unexpected error occurred")
}
