package eyeson

import "math"

// scoreMap holds the eye-likeness score of every pixel of the considered band.
// A zero score means the pixel is not a candidate.
type scoreMap struct {
	width     int
	topLimit  int
	scores    []float32
	globalMax float64
}

// buildScoreMap combines the feature maps into a single score per pixel
// for the first topLimit rows.
func buildScoreMap(fm *featureMaps, topLimit int, t Thresholds) *scoreMap {
	width := fm.width
	sm := &scoreMap{
		width:    width,
		topLimit: topLimit,
		scores:   make([]float32, width*topLimit),
	}
	topBand := float64(topLimit) * t.TopPenaltyBand
	bottomBand := float64(topLimit) * t.BottomPenaltyBand

	for y := 0; y < topLimit; y++ {
		for x := 0; x < width; x++ {
			idx := x + y*width
			if fm.validity[idx] == 0 {
				continue
			}
			score := pixelScore(
				float64(fm.whiteness[idx]),
				float64(fm.brightness[idx]),
				float64(fm.saturation[idx]),
				float64(fm.gradient[idx]),
			)
			if float64(y) < topBand {
				score *= t.TopPenalty
			}
			if float64(y) > bottomBand {
				score *= t.BottomPenalty
			}
			score -= t.ScoreBias
			if !(score > 0) {
				continue
			}
			sm.scores[idx] = float32(score)
			if score > sm.globalMax {
				sm.globalMax = score
			}
		}
	}
	return sm
}

// pixelScore rates how much a pixel looks like sclera, iris or eye highlight.
func pixelScore(w, b, s, g float64) float64 {
	highlight := math.Pow(math.Max(w, b), 1.15)
	chroma := math.Max(0, s-0.2) * (0.35 + b*0.3)

	return math.Pow(w, 1.35)*math.Pow(b, 1.05) +
		g*0.28 +
		chroma*0.45 +
		highlight*0.15
}
