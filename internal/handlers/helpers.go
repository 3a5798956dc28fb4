package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager/internal/authz"
	"taskmanager/internal/logging"
	"taskmanager/internal/models"
	"taskmanager/internal/repositories"
	"taskmanager/internal/services"
)

// статус и текст ответа для известных ошибок сервиса
var errorResponses = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrTaskNotFound, http.StatusNotFound, "Task not found."},
	{services.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{repositories.ErrNotFound, http.StatusNotFound, "Resource not found"},
	{services.ErrUserExists, http.StatusBadRequest, "User already exists"},
	{services.ErrInvalidAction, http.StatusBadRequest, "Invalid action type."},
	{services.ErrInvalidDependencies, http.StatusBadRequest, "Some dependencies are invalid or do not exist."},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
	{services.ErrUserInactive, http.StatusUnauthorized, "User account has been deactivated, contact the administrator"},
	{services.ErrInvalidToken, http.StatusUnauthorized, "Not authorized. Try login again."},
}

// badRequest errors keep their own text.
var badRequest = []error{services.ErrValidation, models.ErrInvalidID, models.ErrInvalidDate}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": false, "message": message})
}

// respondError maps service errors to responses. Anything unknown goes to the
// error middleware as a 500.
func respondError(c *gin.Context, tag string, err error) {
	for _, r := range errorResponses {
		if errors.Is(err, r.err) {
			logging.Logger.Infof("%s %v", tag, err)
			fail(c, r.status, r.message)
			return
		}
	}
	for _, e := range badRequest {
		if errors.Is(err, e) {
			logging.Logger.Infof("%s %v", tag, err)
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	logging.Logger.Errorf("%s[err] %v", tag, err)
	c.Status(http.StatusInternalServerError)
	_ = c.Error(err)
}

func bindJSON(c *gin.Context, tag string, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logging.Logger.Infof("%s[bind] %v", tag, err)
		fail(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func pathID(c *gin.Context, tag string) (primitive.ObjectID, bool) {
	id, err := models.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, tag, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

// principal is set by middleware.Protect on every authenticated route.
func principal(c *gin.Context) authz.Principal {
	p, _ := authz.PrincipalFrom(c)
	return p
}
