package scoring

const (
	LabelExcellent        = "Excellent"
	LabelGood             = "Good"
	LabelRegular          = "Regular"
	LabelNeedsImprovement = "Needs improvement"

	LabelHighPotential       = "High potential"
	LabelMediumPotential     = "Medium potential"
	LabelDevelopingPotential = "Developing potential"
	LabelNeedsDevelopment    = "Needs development"
)

// Band thresholds on the 1-4 scale. A score equal to a threshold belongs to
// the higher band.
const (
	thresholdHigh   = 3.5
	thresholdMedium = 2.5
	thresholdLow    = 1.5
)

type bands [4]string

var (
	performanceBands = bands{LabelExcellent, LabelGood, LabelRegular, LabelNeedsImprovement}
	potentialBands   = bands{LabelHighPotential, LabelMediumPotential, LabelDevelopingPotential, LabelNeedsDevelopment}
)

func (b bands) classify(score float64) string {
	switch {
	case score >= thresholdHigh:
		return b[0]
	case score >= thresholdMedium:
		return b[1]
	case score >= thresholdLow:
		return b[2]
	default:
		return b[3]
	}
}

func ClassifyPerformance(score float64) string {
	return performanceBands.classify(score)
}

func ClassifyPotential(score float64) string {
	return potentialBands.classify(score)
}
