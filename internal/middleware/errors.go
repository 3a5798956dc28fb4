package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/logging"
	"taskmanager/internal/models"
)

func abortJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": false, "message": message})
}

// NotFound answers unknown routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortJSON(c, http.StatusNotFound, "Route not found: "+c.Request.URL.String())
	}
}

// ErrorHandler renders errors that handlers pushed with c.Error and did not
// answer themselves. A leftover 200 becomes 500; malformed ids become 404.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		message := err.Error()
		if errors.Is(err, models.ErrInvalidID) {
			status = http.StatusNotFound
			message = "Resource not found"
		}

		logging.Logger.WithField("request_id", c.GetString(RequestIDKey)).
			Errorf("[http][err] %s %s status=%d: %v", c.Request.Method, c.Request.URL.Path, status, err)

		body := gin.H{"status": false, "message": message}
		if production {
			if status >= http.StatusInternalServerError {
				body["message"] = "Internal server error"
			}
			body["stack"] = nil
		} else {
			body["stack"] = fmt.Sprintf("%+v", c.Errors.Errors())
		}
		c.AbortWithStatusJSON(status, body)
	}
}

// Recovery turns panics into the same JSON error shape.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		logging.Logger.WithField("request_id", c.GetString(RequestIDKey)).
			Errorf("[http][panic] %s %s: %v", c.Request.Method, c.Request.URL.Path, rec)
		abortJSON(c, http.StatusInternalServerError, "Internal server error")
	})
}
