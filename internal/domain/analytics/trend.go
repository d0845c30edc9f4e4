package analytics

// lastValues returns up to n most recent non-nil values of d, oldest first.
func lastValues(aggs []WeeklyAggregate, d Dimension, n int) []float64 {
	var vals []float64
	for i := len(aggs) - 1; i >= 0 && len(vals) < n; i-- {
		if v := aggs[i].Value(d); v != nil {
			vals = append(vals, *v)
		}
	}
	for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
		vals[i], vals[j] = vals[j], vals[i]
	}
	return vals
}

// StabilityScore maps week-to-week dispersion of the recent weekly means onto
// 0-100, 100 being perfectly steady. Each dimension contributes its population
// standard deviation when it has at least two points; the contributions are
// averaged. Nil when there is not enough data.
func StabilityScore(aggs []WeeklyAggregate, th Thresholds) *int {
	total := 0
	var spreads []float64
	for _, d := range Dimensions {
		vals := lastValues(aggs, d, th.StabilityWindow)
		total += len(vals)
		if sd := populationStdDev(vals); sd != nil {
			spreads = append(spreads, *sd)
		}
	}
	if total < 2 || len(spreads) == 0 {
		return nil
	}
	sigma := *mean(spreads)
	score := roundHalfUp(100 - th.StabilityScale*sigma)
	if score < 0 {
		score = 0
	}
	return &score
}

// point is one (week, value) pair of a collapsed series.
type point struct {
	x, y float64
}

// combinedSeries collapses the last n weeks to one value each.
func combinedSeries(aggs []WeeklyAggregate, n int) []point {
	var pts []point
	for i := len(aggs) - 1; i >= 0 && len(pts) < n; i-- {
		if v := aggs[i].Combined(); v != nil {
			pts = append(pts, point{x: float64(aggs[i].Week), y: *v})
		}
	}
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
	return pts
}

// slope fits y = a + b*x by ordinary least squares and returns b. Nil when
// all x are equal or there are fewer than two points.
func slope(pts []point) *float64 {
	n := float64(len(pts))
	if len(pts) < 2 {
		return nil
	}
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range pts {
		sumX += p.x
		sumY += p.y
		sumXY += p.x * p.y
		sumXX += p.x * p.x
	}
	den := n*sumXX - sumX*sumX
	if den == 0 {
		return nil
	}
	b := (n*sumXY - sumX*sumY) / den
	return &b
}

// TrajectoryScore is the recent linear trend mapped to [-100, 100].
// Positive means ratings are improving week over week.
func TrajectoryScore(aggs []WeeklyAggregate, th Thresholds) *int {
	b := slope(combinedSeries(aggs, th.TrajectoryWindow))
	if b == nil {
		return nil
	}
	score := clamp(roundHalfUp(*b*th.TrajectoryScale), -100, 100)
	return &score
}
