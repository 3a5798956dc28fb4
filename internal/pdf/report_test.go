package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskmanager/internal/models"
)

func TestDashboardReport(t *testing.T) {
	g := NewReportGenerator("")

	dash := &models.Dashboard{
		TotalTasks: 2,
		Last10Task: []models.TaskView{
			{ID: primitive.NewObjectID(), Title: "Ship release", Stage: models.StageTodo, Priority: models.PriorityHigh, Date: time.Now()},
			{ID: primitive.NewObjectID(), Title: "A very long title that should be truncated before it overflows the cell", Stage: models.StageCompleted, Priority: models.PriorityLow, Date: time.Now()},
		},
		Users:     []models.User{{Name: "Ann", Title: "PM", Email: "ann@x.io"}},
		Tasks:     map[models.TaskStage]int{models.StageTodo: 1, models.StageCompleted: 1},
		GraphData: []models.GraphPoint{{Name: models.PriorityHigh, Total: 1}, {Name: models.PriorityLow, Total: 1}},
	}

	out, err := g.DashboardReport(ReportData{Dashboard: dash, RequestedBy: "ann@x.io"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	empty, err := g.DashboardReport(ReportData{Dashboard: &models.Dashboard{}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, []byte("%PDF")))

	_, err = g.DashboardReport(ReportData{})
	assert.Error(t, err)
}

func TestNewReportGenerator_MissingFontFallsBack(t *testing.T) {
	g := NewReportGenerator("/nonexistent/DejaVuSans.ttf")
	assert.False(t, g.utf8)
	assert.Equal(t, "Helvetica", g.fontName)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestText_CoreFontUsesCP1252(t *testing.T) {
	g := NewReportGenerator("")
	doc := gofpdf.New("P", "mm", "A4", "")

	assert.Equal(t, "Caf\xe9", g.text(doc, "Café"))
	assert.Equal(t, "plain", g.text(doc, "plain"))
	require.NoError(t, doc.Error())

	g.utf8 = true
	assert.Equal(t, "Café", g.text(doc, "Café"))
}

func TestDashboardReport_NonASCIIWithCoreFont(t *testing.T) {
	g := NewReportGenerator("")
	dash := &models.Dashboard{
		TotalTasks: 1,
		Last10Task: []models.TaskView{
			{ID: primitive.NewObjectID(), Title: "Résumé review", Stage: models.StageInProgress, Priority: models.PriorityMedium, Date: time.Now()},
		},
		Users: []models.User{{Name: "Zoë", Title: "Développeur", Email: "zoe@x.io"}},
	}

	out, err := g.DashboardReport(ReportData{Dashboard: dash, RequestedBy: "zoë@x.io"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
