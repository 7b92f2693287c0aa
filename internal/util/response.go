package util

import (
	"github.com/gin-gonic/gin"
)

// Error writes the error payload every endpoint uses: a status code and
// a single message field.
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"message": msg})
}
