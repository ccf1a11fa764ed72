package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) LineRecommendations(c *gin.Context) {
	rec, err := s.recommender.Recommend(c.Request.Context(), c.Param("lineId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
