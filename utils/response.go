package utils

import (
	"github.com/gin-gonic/gin"
)

// DateFormat is the wire format of every timestamp
const DateFormat = "2006-01-02T15:04:05Z"

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONCodedError sends an error response with a stable code and optional field messages
func JSONCodedError(c *gin.Context, status int, code, message string, fields map[string]string) {
	body := gin.H{
		"status":  status,
		"message": message,
		"error":   message,
		"code":    code,
	}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	c.AbortWithStatusJSON(status, body)
}
