package scoring

type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Box is a cell of the 3x3 performance/potential grid. Position counts
// left-to-right along performance and bottom-to-top along potential, so 1 is
// low/low and 9 is high/high.
type Box struct {
	Performance Tier   `json:"performance"`
	Potential   Tier   `json:"potential"`
	Position    int    `json:"position"`
	Label       string `json:"label"`
}

var boxLabels = [3][3]string{
	// potential low
	{"Talent risk", "Effective professional", "Trusted professional"},
	// potential medium
	{"Inconsistent player", "Core player", "High performer"},
	// potential high
	{"Rough diamond", "Future star", "Star"},
}

func tierOf(score float64) Tier {
	switch {
	case score >= thresholdHigh:
		return TierHigh
	case score >= thresholdMedium:
		return TierMedium
	default:
		return TierLow
	}
}

func tierIndex(t Tier) int {
	switch t {
	case TierHigh:
		return 2
	case TierMedium:
		return 1
	default:
		return 0
	}
}

// NineBox places a final performance score and a final potential score on
// the grid.
func NineBox(performance, potential float64) Box {
	perf := tierOf(performance)
	pot := tierOf(potential)
	col := tierIndex(perf)
	row := tierIndex(pot)
	return Box{
		Performance: perf,
		Potential:   pot,
		Position:    row*3 + col + 1,
		Label:       boxLabels[row][col],
	}
}
