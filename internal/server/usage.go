package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	usagedomain "github.com/smetelco/portal/internal/usage/domain"
	"go.uber.org/zap"
)

func (s *Server) IngestUsage(c *gin.Context) {
	var req usagedomain.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.usageSvc.Ingest(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Deduplicated {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

func (s *Server) LineUsageHistory(c *gin.Context) {
	months := 0
	if raw := strings.TrimSpace(c.Query("months")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			AbortWithError(c, usagedomain.ErrInvalidMonths)
			return
		}
		months = parsed
	}

	history, err := s.usageSvc.History(c.Request.Context(), c.Param("lineId"), months)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// UsageIngestRateLimit applies the per-line token bucket before the ingest
// handler runs. The body is restored for the handler to bind again.
func (s *Server) UsageIngestRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.ingestLimiter == nil || !s.ingestLimiter.Enabled() {
			c.Next()
			return
		}

		lineID, err := readIngestLineID(c)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		if lineID == "" {
			c.Next()
			return
		}

		allowed, err := s.ingestLimiter.AllowLine(c.Request.Context(), lineID)
		if err != nil {
			s.log.Warn("ingest rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !allowed {
			c.Header("Retry-After", "1")
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func readIngestLineID(c *gin.Context) (string, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return "", nil
	}

	var payload struct {
		LineID string `json:"lineId"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", nil
	}
	return strings.TrimSpace(payload.LineID), nil
}
