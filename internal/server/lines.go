package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	linedomain "github.com/smetelco/portal/internal/line/domain"
)

func (s *Server) CreateLine(c *gin.Context) {
	var req linedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	line, err := s.lineSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

func (s *Server) ListLines(c *gin.Context) {
	lines, err := s.lineSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

func (s *Server) ListCompanyLines(c *gin.Context) {
	lines, err := s.lineSvc.ListByCompany(c.Request.Context(), c.Param("companyId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

func (s *Server) GetLine(c *gin.Context) {
	line, err := s.lineSvc.Get(c.Request.Context(), c.Param("lineId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (s *Server) UpdateLine(c *gin.Context) {
	var fields linedomain.UpdateFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	line, err := s.lineSvc.Update(c.Request.Context(), c.Param("lineId"), fields)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (s *Server) UpdateLineLimit(c *gin.Context) {
	var req struct {
		BudgetLimit float64 `json:"budgetLimit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	line, err := s.lineSvc.UpdateLimit(c.Request.Context(), c.Param("lineId"), req.BudgetLimit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

func (s *Server) DeleteLine(c *gin.Context) {
	if err := s.lineSvc.Delete(c.Request.Context(), c.Param("lineId")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) BulkUpdateLines(c *gin.Context) {
	var req struct {
		Updates []linedomain.BulkUpdateItem `json:"updates"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	results, err := s.lineSvc.BulkUpdate(c.Request.Context(), req.Updates)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
