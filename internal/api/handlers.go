// Package api exposes the validation engine over HTTP for callers that want
// request or payload checks without running the event pipeline.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/syngenta/acai-ts-sub001/internal/records"
	"github.com/syngenta/acai-ts-sub001/internal/schema"
	"github.com/syngenta/acai-ts-sub001/internal/validation"
)

type Handlers struct {
	validator *validation.Validator
	logger    *zap.Logger
}

func NewHandlers(validator *validation.Validator, logger *zap.Logger) *Handlers {
	return &Handlers{validator: validator, logger: logger}
}

// ValidateRequest runs full OpenAPI operation validation for a translated
// request posted by the caller.
func (h *Handlers) ValidateRequest(c *gin.Context) {
	var req ValidateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	resp := validation.NewResponse()
	translated := &validation.Request{
		Headers:         req.Headers,
		QueryParameters: req.QueryParameters,
		PathParameters:  req.PathParameters,
		Body:            req.Body,
	}
	if err := h.validator.ValidateRequest(translated, req.Route, req.Method, resp); err != nil {
		var notFound *schema.OperationNotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("request validation failed to run", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Validation failed to run"})
		return
	}

	if resp.HasErrors() {
		c.JSON(resp.Code, ValidateResponse{Valid: false, Errors: resp.Errors})
		return
	}
	c.JSON(http.StatusOK, ValidateResponse{Valid: true})
}

// ValidateRecord validates a single payload against a named or inline schema.
func (h *Handlers) ValidateRecord(c *gin.Context) {
	var req ValidateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	var schemaRef interface{}
	switch {
	case req.Schema != "":
		schemaRef = req.Schema
	case req.InlineSchema != nil:
		schemaRef = req.InlineSchema
	}

	rec := records.NewFallbackRecord(map[string]interface{}{})
	rec.SetBody(req.Body)
	res := validation.NewResult(rec)

	valid, err := h.validator.ValidateRecord(res, schemaRef, false)
	if err != nil {
		var notFound *schema.SchemaNotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("record validation failed to run", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Validation failed to run"})
		return
	}

	if !valid {
		c.JSON(http.StatusUnprocessableEntity, ValidateResponse{Valid: false, Errors: res.Errors})
		return
	}
	c.JSON(http.StatusOK, ValidateResponse{Valid: true})
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
