package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/logging"
	"taskmanager/internal/realtime"
	"taskmanager/internal/services"
)

type NotificationHandler struct {
	notices services.NoticeService
	hub     *realtime.NoticeHub
}

func NewNotificationHandler(notices services.NoticeService, hub *realtime.NoticeHub) *NotificationHandler {
	return &NotificationHandler{notices: notices, hub: hub}
}

// GET /user/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	list, err := h.notices.ListUnread(c.Request.Context(), principal(c).UserID)
	if err != nil {
		respondError(c, "[notice][list]", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// PUT /user/read-noti?isReadType=all|&id=
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	readType := c.Query("isReadType")
	id := c.Query("id")
	if readType != services.ReadAll && id == "" {
		fail(c, http.StatusBadRequest, "id is required unless isReadType=all")
		return
	}
	if err := h.notices.MarkRead(c.Request.Context(), principal(c).UserID, readType, id); err != nil {
		respondError(c, "[notice][read]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Done"})
}

// GET /user/notifications/ws
// Держит websocket открытым до закрытия клиентом; новые уведомления
// приходят как {"type":"notice","notice":{...}}.
func (h *NotificationHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		fail(c, http.StatusNotFound, "realtime notifications are disabled")
		return
	}
	uid := principal(c).UserID

	conn, err := realtime.Upgrade(c.Writer, c.Request)
	if err != nil {
		logging.Logger.Infof("[notice][ws] upgrade user=%s: %v", uid.Hex(), err)
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	h.hub.Register(uid, conn)
	defer h.hub.Unregister(uid, conn)

	logging.Logger.Debugf("[notice][ws] open user=%s", uid.Hex())
	if err := conn.ReadLoop(); err != nil && !errors.Is(err, io.EOF) {
		logging.Logger.Debugf("[notice][ws] closed user=%s: %v", uid.Hex(), err)
	}
}
