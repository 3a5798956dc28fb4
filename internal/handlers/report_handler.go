package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/pdf"
	"taskmanager/internal/services"
)

type ReportHandler struct {
	tasks     services.TaskService
	generator pdf.Generator
}

func NewReportHandler(tasks services.TaskService, generator pdf.Generator) *ReportHandler {
	return &ReportHandler{tasks: tasks, generator: generator}
}

// GET /task/dashboard/report
func (h *ReportHandler) Dashboard(c *gin.Context) {
	p := principal(c)
	d, err := h.tasks.Dashboard(c.Request.Context(), p)
	if err != nil {
		respondError(c, "[report][dashboard]", err)
		return
	}

	now := time.Now()
	body, err := h.generator.DashboardReport(pdf.ReportData{Dashboard: d, RequestedBy: p.Email, CreatedAt: now})
	if err != nil {
		respondError(c, "[report][dashboard]", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="dashboard-%s.pdf"`, now.Format("20060102")))
	c.Data(http.StatusOK, "application/pdf", body)
}
