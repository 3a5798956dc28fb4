package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/logging"
	"taskmanager/internal/models"
	"taskmanager/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GET /user/get-team
func (h *UserHandler) GetTeam(c *gin.Context) {
	team, err := h.service.ListTeam(c.Request.Context())
	if err != nil {
		respondError(c, "[user][team]", err)
		return
	}
	c.JSON(http.StatusOK, team)
}

// PUT /user/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if !bindJSON(c, "[user][profile]", &req) {
		return
	}
	user, err := h.service.UpdateProfile(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, "[user][profile]", err)
		return
	}
	logging.Logger.Infof("[user][profile] ok id=%s by=%s", user.ID.Hex(), principal(c).UserID.Hex())
	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "Profile Updated Successfully.",
		"user":    user,
	})
}

// PUT /user/change-password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if !bindJSON(c, "[user][password]", &req) {
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), principal(c).UserID, req.Password); err != nil {
		respondError(c, "[user][password]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Password changed successfully."})
}

// PUT /user/:id
func (h *UserHandler) Activate(c *gin.Context) {
	id, ok := pathID(c, "[user][activate]")
	if !ok {
		return
	}
	var req models.ActivationRequest
	if !bindJSON(c, "[user][activate]", &req) {
		return
	}
	user, err := h.service.SetActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		respondError(c, "[user][activate]", err)
		return
	}
	state := "disabled"
	if user.IsActive {
		state = "activated"
	}
	logging.Logger.Infof("[user][activate] id=%s state=%s", id.Hex(), state)
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "User account has been " + state})
}

// DELETE /user/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "[user][delete]")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "[user][delete]", err)
		return
	}
	logging.Logger.Infof("[user][delete] ok id=%s by=%s", id.Hex(), principal(c).UserID.Hex())
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "User deleted successfully"})
}
