package evaluations

import (
	"bytes"
	"testing"

	"talentreview/internal/domain/scoring"
)

func TestWritePDF(t *testing.T) {
	ev, err := Preview(SaveInput{
		CycleID:    "c1",
		EmployeeID: "e1",
		Type:       TypeLeader,
		Criteria:   criteria(3),
		Potential:  fullPotential(),
	})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, ev); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected a PDF document, got %q", buf.Bytes()[:8])
	}
}

func TestRatingText(t *testing.T) {
	if ratingText(scoring.RatingUnset) != "-" || ratingText(3) != "3 / 4" {
		t.Fatalf("unexpected rating text: %q %q", ratingText(0), ratingText(3))
	}
}
