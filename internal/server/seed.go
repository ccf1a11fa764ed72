package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SeedDemo loads the demo dataset. The route is only registered outside
// production.
func (s *Server) SeedDemo(c *gin.Context) {
	summary, err := s.seeder.Seed(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
