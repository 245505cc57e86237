package handler

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	printingapp "github.com/webstudio/backend/internal/application/printing"
	"github.com/webstudio/backend/internal/domain/shared"
	"github.com/webstudio/backend/internal/interfaces/http/dto"
	"github.com/webstudio/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	logger *zap.Logger
}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// getUserID extracts the authenticated user's ID from the JWT claims
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr := middleware.UserID(c)
	if userIDStr == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(userIDStr)
}

// parseID reads a UUID path parameter. On failure it writes a 400 and returns false.
func (h *BaseHandler) parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, "Invalid "+param+" format")
		return uuid.Nil, false
	}
	return id, true
}

// requireUserID reads the caller's ID. On failure it writes a 401 and returns false.
func (h *BaseHandler) requireUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.OK(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.Page(data, total, page, pageSize))
}

// successPage sends the items of a page with pagination meta
func successPage[T any](h *BaseHandler, c *gin.Context, page shared.Paginated[T]) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.OK(data))
}

// Accepted sends a 202 accepted response
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.OK(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.Fail(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	_, status := dto.Resolve(code)
	c.JSON(status, dto.Fail(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// Unavailable sends a 503 response
func (h *BaseHandler) Unavailable(c *gin.Context, message string) {
	h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeUnavailable, message)
}

// BindJSON binds the request body. On failure it writes a 400 with field details and returns false.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// BindQuery binds query parameters. On failure it writes a 400 with field details and returns false.
func (h *BaseHandler) BindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// HandleError converts domain errors to HTTP responses. Anything else is a 500
// whose cause is logged but never sent to the client.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		_, statusCode := dto.Resolve(domainErr.Code)
		if statusCode >= http.StatusInternalServerError {
			h.log().Error("Request failed",
				zap.String("request_id", getRequestID(c)),
				zap.String("path", c.Request.URL.Path),
				zap.String("code", domainErr.Code),
				zap.Error(err),
			)
		}
		c.JSON(statusCode, dto.Fail(domainErr.Code, domainErr.Message, getRequestID(c)))
		return
	}

	h.log().Error("Unexpected error",
		zap.String("request_id", getRequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	h.InternalError(c, "An unexpected error occurred")
}

func (h *BaseHandler) log() *zap.Logger {
	if h.logger == nil {
		return zap.NewNop()
	}
	return h.logger
}

// sendDocument streams a rendered PDF. fallbackName is used when the renderer suggested none.
func (h *BaseHandler) sendDocument(c *gin.Context, doc *printingapp.Document, fallbackName string, inline bool) {
	filename := doc.Filename
	if filename == "" {
		filename = fallbackName
	}
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, contentType, doc.Data)
}
