package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"clipper/internal/pipeline"
	"clipper/internal/services"
	"clipper/internal/workspace"
)

// statusCode maps an error to its HTTP status.
func statusCode(err error) int {
	switch {
	case errors.Is(err, workspace.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrConfiguration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	code := statusCode(err)
	body := ErrorResponse{Error: err.Error(), Kind: services.Kind(err)}
	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		body.Stage = string(stageErr.Stage)
	}
	if errors.Is(err, workspace.ErrBusy) {
		body.Kind = "busy"
	}
	if code >= http.StatusInternalServerError {
		s.requestLogger(c).Error("request failed",
			"error", err.Error(),
			"stage", body.Stage,
			"error_kind", body.Kind,
		)
	}
	c.AbortWithStatusJSON(code, body)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: message})
}
