// Package handler adapts the application services to the HTTP API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/audit"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AuditRecorder appends audit entries for the acting staff member
type AuditRecorder interface {
	Record(ctx context.Context, actor shared.Actor, requests ...audit.Request) error
}

// BaseHandler provides common handler utilities
type BaseHandler struct {
	audit AuditRecorder
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

// Error sends an error response, deriving the status code from the error code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.Set(middleware.ErrorCodeKey, code)
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 INVALID_INPUT response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, shared.CodeInvalidInput, message)
}

// HandleError converts service errors to HTTP responses. Domain errors keep
// their code and message; storage and unknown errors are logged and reported
// without their cause.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, domainErr.Code, domainErr.Message)
		return
	}

	_ = c.Error(err)
	log := logger.GetGinLogger(c)

	var storageErr *shared.StorageError
	if errors.As(err, &storageErr) {
		log.Error("Storage failure", zap.String("op", storageErr.Op), zap.Error(err))
		h.Error(c, shared.CodeStorage, "A storage error occurred, please retry")
		return
	}

	log.Error("Unhandled error", zap.Error(err))
	h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred")
}

// bindJSON binds the request body, answering 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters, answering 400 on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// parseID reads a uuid path parameter, answering 400 when malformed
func (h *BaseHandler) parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// actor returns the acting staff member, answering 401 when the actor
// middleware did not run
func (h *BaseHandler) actor(c *gin.Context) (shared.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		h.Error(c, shared.CodeUnauthorized, "Authentication required")
		return shared.Actor{}, false
	}
	return actor, true
}

// record appends audit entries for a completed operation. The operation has
// already committed, so a failure is logged by the recorder and not
// reported to the client.
func (h *BaseHandler) record(c *gin.Context, actor shared.Actor, requests ...audit.Request) {
	if h.audit == nil || len(requests) == 0 {
		return
	}
	_ = h.audit.Record(c.Request.Context(), actor, requests...)
}
