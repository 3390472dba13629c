package pipeline

// ScaleWarning is the advisory attached to a series whose y values span more
// than a 10x range. It never filters data or blocks composition; it exists so
// the operator can spot a likely scale mismatch before combining charts.
const ScaleWarning = "Y values span more than a 10x range; combined charts may hide smaller series"

// scaleRatioThreshold is the yMax/yMin ratio above which the advisory fires.
const scaleRatioThreshold = 10.0

// flagScaleMismatch sets the advisory warning on a series with at least two
// points and non-temporal y values when yMin is non-zero and yMax/yMin
// exceeds the threshold. A deliberately crude magnitude check, not a
// statistical test.
func flagScaleMismatch(s *Series) {
	if len(s.Points) < 2 || s.TemporalY {
		return
	}
	yMin, yMax := s.Points[0].Y, s.Points[0].Y
	for _, p := range s.Points[1:] {
		if p.Y < yMin {
			yMin = p.Y
		}
		if p.Y > yMax {
			yMax = p.Y
		}
	}
	if yMin != 0 && yMax/yMin > scaleRatioThreshold {
		s.Warning = ScaleWarning
	}
}
