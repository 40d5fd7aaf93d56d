package api

import (
	"encoding/json"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"clipper/internal/clips"
	"clipper/internal/history"
	"clipper/internal/logging"
	"clipper/internal/pipeline"
)

const maxConfigBody = 64 << 10

func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field \"file\" is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "unreadable upload: "+err.Error())
		return
	}
	defer file.Close()

	logger := s.requestLogger(c)
	logger.Info("upload received",
		logging.String("upload", header.Filename),
		logging.Int64("bytes", header.Size),
		logging.String(logging.FieldEventType, "upload_received"),
	)
	ids, err := s.pipeline.Process(c.Request.Context(), pipeline.Upload{
		Name: filepath.Base(header.Filename),
		Body: file,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProcessResponse{Status: "processed", Clips: ids})
}

func (s *Server) handleStatus(c *gin.Context) {
	doc, err := s.pipeline.Status()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) handleListClips(c *gin.Context) {
	ids, err := s.pipeline.Clips()
	if err != nil {
		s.writeError(c, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, ids)
}

func (s *Server) handleGetClipConfig(c *gin.Context) {
	cfg, err := s.pipeline.ClipConfig(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) handleSaveClipConfig(c *gin.Context) {
	id := c.Param("id")
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxConfigBody))
	if err != nil {
		badRequest(c, "unreadable body: "+err.Error())
		return
	}
	if !json.Valid(body) {
		badRequest(c, "body must be a JSON object")
		return
	}
	current, err := s.pipeline.ClipConfig(id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	next, err := clips.DecodeRenderConfig(current, body)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.pipeline.SaveClipConfig(id, next); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse{OK: true})
}

func (s *Server) handleRender(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.pipeline.Render(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, OKResponse{OK: true, Preview: path.Join("/files", id, clips.PreviewFile)})
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, RunsResponse{Runs: []history.Run{}})
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	runs, err := s.history.List(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	c.JSON(http.StatusOK, RunsResponse{Runs: runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "run history disabled"})
		return
	}
	run, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleHealth(c *gin.Context) {
	report := s.health(c.Request.Context())
	code := http.StatusOK
	if !report.OK {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, report)
}
