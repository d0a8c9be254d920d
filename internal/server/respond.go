package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func abortBadRequest(c *gin.Context, message, suggestion string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		ErrorCode:  "invalid_request",
		Message:    message,
		Suggestion: suggestion,
	})
}
