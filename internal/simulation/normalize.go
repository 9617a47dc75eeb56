package simulation

// Normalize fills the Normalized field of each point and computes the
// baseline summary over predicted values. Pure and total: no failure mode
// for any input, including the empty set (average 0 by convention) and the
// zero-range set (every normalized value fixed at 0.5, signalling no
// distinguishable variation).
func Normalize(points []PredictedDataPoint) ([]PredictedDataPoint, BaselineSummary) {
	if len(points) == 0 {
		return points, BaselineSummary{}
	}

	min, max, sum := points[0].PredictedValue, points[0].PredictedValue, 0.0
	for _, p := range points {
		v := p.PredictedValue
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}

	span := max - min
	for i := range points {
		if span == 0 {
			points[i].Normalized = 0.5
		} else {
			points[i].Normalized = (points[i].PredictedValue - min) / span
		}
	}

	return points, BaselineSummary{Min: min, Max: max, Average: sum / float64(len(points))}
}
