package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type notifyRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Notify pushes an out-of-band message to a subscriber through the SMS
// provider boundary. The audit entry keeps only a preview of the body.
func (s *Server) Notify(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Phone == "" {
		AbortWithError(c, newValidationError("phone", "required", "phone is required"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		AbortWithError(c, newValidationError("message", "required", "message is required"))
		return
	}

	preview := req.Message
	if len(preview) > 50 {
		preview = preview[:50]
	}
	_ = s.auditSvc.Record(c.Request.Context(), "Notification sent", "system", map[string]any{
		"phone":          req.Phone,
		"messagePreview": preview,
	})

	if err := s.sms.Send(c.Request.Context(), req.Phone, req.Message); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification sent successfully"})
}
