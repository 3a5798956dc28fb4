package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/logging"
	"taskmanager/internal/models"
	"taskmanager/internal/services"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// @Summary      Создать задачу
// @Tags         Tasks
// @Accept       json
// @Produce      json
// @Param        task  body      models.CreateTaskRequest  true  "Задача"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Router       /task/create [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req models.CreateTaskRequest
	if !bindJSON(c, "[task][create]", &req) {
		return
	}
	p := principal(c)
	logging.Logger.Debugf("[task][create] call by user=%s title=%q team=%d", p.UserID.Hex(), req.Title, len(req.Team))

	task, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		respondError(c, "[task][create]", err)
		return
	}
	logging.Logger.Infof("[task][create] ok id=%s", task.ID.Hex())
	c.JSON(http.StatusOK, gin.H{"status": true, "task": task, "message": "Task created successfully."})
}

// POST /task/duplicate/:id
func (h *TaskHandler) Duplicate(c *gin.Context) {
	id, ok := pathID(c, "[task][duplicate]")
	if !ok {
		return
	}
	task, err := h.service.Duplicate(c.Request.Context(), id)
	if err != nil {
		respondError(c, "[task][duplicate]", err)
		return
	}
	logging.Logger.Infof("[task][duplicate] ok src=%s new=%s", id.Hex(), task.ID.Hex())
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Task duplicated successfully.", "task": task})
}

// POST /task/activity/:id
func (h *TaskHandler) PostActivity(c *gin.Context) {
	id, ok := pathID(c, "[task][activity]")
	if !ok {
		return
	}
	var req models.ActivityRequest
	if !bindJSON(c, "[task][activity]", &req) {
		return
	}
	if err := h.service.PostActivity(c.Request.Context(), id, principal(c), req); err != nil {
		respondError(c, "[task][activity]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Activity posted successfully."})
}

// @Summary      Сводка по задачам
// @Description  Для администратора все задачи, иначе только задачи, где пользователь в команде
// @Tags         Tasks
// @Produce      json
// @Success      200  {object}  models.Dashboard
// @Router       /task/dashboard [get]
func (h *TaskHandler) Dashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, "[task][dashboard]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     true,
		"message":    "Successfully",
		"totalTasks": d.TotalTasks,
		"last10Task": d.Last10Task,
		"users":      d.Users,
		"tasks":      d.Tasks,
		"graphData":  d.GraphData,
	})
}

// GET /task?stage=&isTrashed=
func (h *TaskHandler) List(c *gin.Context) {
	filter := models.TaskFilter{IsTrashed: c.Query("isTrashed") == "true"}
	if raw := c.Query("stage"); raw != "" {
		stage, ok := models.ParseStage(raw)
		if !ok {
			fail(c, http.StatusBadRequest, "invalid stage: "+raw)
			return
		}
		filter.Stage = &stage
	}

	tasks, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "[task][list]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "tasks": tasks})
}

// GET /task/:id
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "[task][get]")
	if !ok {
		return
	}
	task, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "[task][get]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "task": task})
}

// PUT /task/create-subtask/:id
func (h *TaskHandler) AddSubTask(c *gin.Context) {
	id, ok := pathID(c, "[task][subtask]")
	if !ok {
		return
	}
	var req models.SubTaskRequest
	if !bindJSON(c, "[task][subtask]", &req) {
		return
	}
	if err := h.service.AddSubTask(c.Request.Context(), id, req); err != nil {
		respondError(c, "[task][subtask]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "SubTask added successfully."})
}

// PUT /task/update/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "[task][update]")
	if !ok {
		return
	}
	var req models.UpdateTaskRequest
	if !bindJSON(c, "[task][update]", &req) {
		return
	}
	task, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, "[task][update]", err)
		return
	}
	logging.Logger.Infof("[task][update] ok id=%s", id.Hex())
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Task updated successfully.", "task": task})
}

// PUT /task/trash/:id и PUT /task/:id
func (h *TaskHandler) Trash(c *gin.Context) {
	id, ok := pathID(c, "[task][trash]")
	if !ok {
		return
	}
	if err := h.service.Trash(c.Request.Context(), id); err != nil {
		respondError(c, "[task][trash]", err)
		return
	}
	logging.Logger.Infof("[task][trash] ok id=%s", id.Hex())
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Task trashed successfully."})
}

// @Summary      Удалить или восстановить задачи из корзины
// @Tags         Tasks
// @Produce      json
// @Param        id          path   string  false  "ID задачи (для delete/restore)"
// @Param        actionType  query  string  true   "delete | deleteAll | restore | restoreAll"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /task/delete-restore/{id} [delete]
func (h *TaskHandler) DeleteRestore(c *gin.Context) {
	action := models.DeleteRestoreAction(c.Query("actionType"))
	if err := h.service.DeleteRestore(c.Request.Context(), action, c.Param("id")); err != nil {
		respondError(c, "[task][delete-restore]", err)
		return
	}
	logging.Logger.Infof("[task][delete-restore] ok action=%s id=%q", action, c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Operation performed successfully."})
}

// PUT /task/dependencies/:id
func (h *TaskHandler) SetDependencies(c *gin.Context) {
	id, ok := pathID(c, "[task][dependencies]")
	if !ok {
		return
	}
	var req models.DependenciesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Dependencies == nil {
		fail(c, http.StatusBadRequest, "Dependencies must be an array of task IDs.")
		return
	}
	task, err := h.service.SetDependencies(c.Request.Context(), id, req.Dependencies)
	if err != nil {
		respondError(c, "[task][dependencies]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "task": task, "message": "Dependencies updated successfully."})
}
