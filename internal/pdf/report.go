package pdf

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskmanager/internal/models"
)

// Generator renders documents into memory (удобно мокать в тестах).
type Generator interface {
	DashboardReport(data ReportData) ([]byte, error)
}

type ReportData struct {
	Dashboard   *models.Dashboard
	RequestedBy string
	CreatedAt   time.Time
}

// ReportGenerator draws with a UTF-8 TTF when FontPath points to one and
// falls back to the built-in Helvetica otherwise.
type ReportGenerator struct {
	FontPath string
	fontName string
	utf8     bool
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	g := &ReportGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err == nil {
			g.fontName = "DejaVu"
			g.utf8 = true
		}
	}
	return g
}

func (g *ReportGenerator) DashboardReport(data ReportData) ([]byte, error) {
	if data.Dashboard == nil {
		return nil, fmt.Errorf("dashboard report: no data")
	}
	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now()
	}
	d := data.Dashboard

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task dashboard", false)
	pdf.SetAuthor("Task Manager", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	g.addFont(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "TASK DASHBOARD", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	sub := data.CreatedAt.Format("02.01.2006 15:04")
	if data.RequestedBy != "" {
		sub = fmt.Sprintf("%s  /  %s", sub, data.RequestedBy)
	}
	pdf.CellFormat(0, 7, g.text(pdf, sub), "", 1, "C", false, 0, "")
	g.hr(pdf)

	g.sectionTitle(pdf, "Summary")
	g.kvLine(pdf, "Total tasks", fmt.Sprintf("%d", d.TotalTasks))
	for _, st := range models.Stages {
		g.kvLine(pdf, string(st), fmt.Sprintf("%d", d.Tasks[st]))
	}
	pdf.Ln(1)
	g.hr(pdf)

	g.sectionTitle(pdf, "By priority")
	for _, p := range d.GraphData {
		g.kvLine(pdf, string(p.Name), fmt.Sprintf("%d", p.Total))
	}
	g.hr(pdf)

	g.sectionTitle(pdf, "Latest tasks")
	g.taskTable(pdf, d.Last10Task)

	if len(d.Users) > 0 {
		pdf.Ln(2)
		g.hr(pdf)
		g.sectionTitle(pdf, "Active users")
		for _, u := range d.Users {
			g.kvLine(pdf, u.Name, fmt.Sprintf("%s, %s", u.Title, u.Email))
		}
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("dashboard report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) taskTable(pdf *gofpdf.Fpdf, tasks []models.TaskView) {
	widths := []float64{80, 30, 25, 35}
	head := []string{"Title", "Stage", "Priority", "Date"}

	pdf.SetFont(g.fontName, "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range head {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(g.fontName, "", 10)
	if len(tasks) == 0 {
		pdf.CellFormat(170, 7, "No tasks", "1", 1, "C", false, 0, "")
		return
	}
	for _, t := range tasks {
		row := []string{
			truncate(t.Title, 45),
			string(t.Stage),
			string(t.Priority),
			t.Date.Format("02.01.2006"),
		}
		for i, v := range row {
			pdf.CellFormat(widths[i], 7, g.text(pdf, v), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, g.text(pdf, key)+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, g.text(pdf, val), "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func (g *ReportGenerator) addFont(pdf *gofpdf.Fpdf) {
	if !g.utf8 {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

// text converts to cp1252 for the core font; the TTF path takes UTF-8 as is.
func (g *ReportGenerator) text(pdf *gofpdf.Fpdf, s string) string {
	if g.utf8 {
		return s
	}
	return pdf.UnicodeTranslatorFromDescriptor("")(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
