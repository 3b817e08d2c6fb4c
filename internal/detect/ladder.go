package detect

// ladderMultipliers are applied to the base threshold to form the upper part
// of the ladder. The two fixed floors below catch low-confidence detections
// regardless of where the base was set. Seven filter passes at most.
var ladderMultipliers = [...]float64{1.0, 0.7, 0.5, 0.3, 0.1}

// ladderFloors are absolute fallback thresholds appended after the scaled
// steps.
var ladderFloors = [...]float64{0.05, 0.01}

// NewLadder derives the ordered threshold sequence for base. The first
// element always equals base; subsequent candidates are kept only while they
// keep the sequence strictly decreasing, so a low base simply yields a
// shorter ladder.
func NewLadder(base float64) []float64 {
	ladder := make([]float64, 0, len(ladderMultipliers)+len(ladderFloors))
	for _, m := range ladderMultipliers {
		ladder = appendDecreasing(ladder, base*m)
	}
	for _, f := range ladderFloors {
		ladder = appendDecreasing(ladder, f)
	}
	return ladder
}

func appendDecreasing(ladder []float64, t float64) []float64 {
	if len(ladder) > 0 && t >= ladder[len(ladder)-1] {
		return ladder
	}
	return append(ladder, t)
}
