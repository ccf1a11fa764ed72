package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smetelco/portal/internal/audit/domain"
)

func (s *Server) ListLogs(c *gin.Context) {
	var req auditdomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
