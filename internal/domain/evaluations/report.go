package evaluations

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"talentreview/internal/domain/scoring"
)

// WritePDF renders a one-page evaluation report.
func WritePDF(w io.Writer, ev Evaluation) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Evaluation report", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("%s evaluation", titleCase(string(ev.Type))))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(format string, args ...any) {
		pdf.Cell(0, 7, fmt.Sprintf(format, args...))
		pdf.Ln(6)
	}
	line("Employee: %s", ev.EmployeeID)
	line("Evaluator: %s", ev.EvaluatorID)
	line("Cycle: %s", ev.CycleID)
	line("Status: %s (%d of %d criteria scored)", ev.Status, ev.Progress.Scored, ev.Progress.Total)
	if ev.SubmittedAt != nil {
		line("Submitted: %s", ev.SubmittedAt.Format("2006-01-02"))
	}
	pdf.Ln(4)

	for _, section := range ev.Criteria {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("%s (weight %.0f%%)", titleCase(string(section.Category)), section.Weight*100))
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		for _, item := range section.Items {
			name := item.Name
			if name == "" {
				name = item.ID
			}
			pdf.CellFormat(150, 6, name, "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, ratingText(item.Score), "", 1, "R", false, 0, "")
		}
		pdf.Ln(2)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Results")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	line("Technical %.2f / Behavioral %.2f / Organizational %.2f", ev.Scores.Technical, ev.Scores.Behavioral, ev.Scores.Organizational)
	line("Final score: %.2f (%s)", ev.Scores.Final, ev.PerformanceLabel)
	if ev.Potential != nil {
		line("Potential: %.2f (%s)", ev.Potential.Final, ev.PotentialLabel)
	}
	if ev.NineBox != nil {
		line("Nine-box: %d - %s", ev.NineBox.Position, ev.NineBox.Label)
	}

	return pdf.Output(w)
}

func ratingText(r scoring.Rating) string {
	if !r.Defined() {
		return "-"
	}
	return fmt.Sprintf("%d / %d", r, scoring.RatingMax)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
