package eyeson

import "math"

// Component is a connected region of the score map summarized by its
// score-weighted statistics. Coordinates are in working-buffer pixels.
type Component struct {
	MeanX, MeanY     float64
	RadiusX, RadiusY float64
	SpanX, SpanY     int
	Area             int
	Weight           float64

	MeanWhiteness  float64
	MeanBrightness float64
	MeanSaturation float64
	MeanGradient   float64

	Confidence float64
}

// regionStats accumulates the statistics of a region while it grows.
type regionStats struct {
	area                     int
	weight                   float64
	sumX, sumY, sumXX, sumYY float64
	minX, maxX, minY, maxY   int
	white, bright, sat, grad float64
}

func (rs *regionStats) add(x, y int, score float64, fm *featureMaps, idx int) {
	fx, fy := float64(x), float64(y)
	rs.area++
	rs.weight += score
	rs.sumX += fx * score
	rs.sumY += fy * score
	rs.sumXX += fx * fx * score
	rs.sumYY += fy * fy * score
	if x < rs.minX {
		rs.minX = x
	}
	if x > rs.maxX {
		rs.maxX = x
	}
	if y < rs.minY {
		rs.minY = y
	}
	if y > rs.maxY {
		rs.maxY = y
	}
	rs.white += float64(fm.whiteness[idx])
	rs.bright += float64(fm.brightness[idx])
	rs.sat += float64(fm.saturation[idx])
	rs.grad += float64(fm.gradient[idx])
}

// extractComponents groups the score map into connected regions using
// hysteresis region growing: a region is seeded only by a cell reaching
// SeedScore, and grows through 8-connected cells reaching GrowScore.
// Every cell is claimed by at most one region.
func extractComponents(sm *scoreMap, fm *featureMaps, t Thresholds) []Component {
	width, height := sm.width, sm.topLimit
	total := width * height
	visited := make([]bool, total)
	queue := make([]int32, total)
	seed := float32(t.SeedScore)
	grow := float32(t.GrowScore)

	var components []Component

	for index := 0; index < total; index++ {
		if visited[index] || sm.scores[index] < seed {
			continue
		}

		head, tail := 0, 0
		queue[tail] = int32(index)
		tail++
		visited[index] = true

		rs := regionStats{minX: width, maxX: -1, minY: height, maxY: -1}

		for head < tail {
			current := int(queue[head])
			head++
			score := sm.scores[current]
			if score <= 0 {
				continue
			}
			y := current / width
			x := current - y*width
			rs.add(x, y, float64(score), fm, current)

			// Walk the 8 neighbours without wrapping around row ends.
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= height {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if (dx == 0 && dy == 0) || nx < 0 || nx >= width {
						continue
					}
					n := nx + ny*width
					if visited[n] || sm.scores[n] < grow {
						continue
					}
					visited[n] = true
					queue[tail] = int32(n)
					tail++
				}
			}
		}

		if c, ok := rs.component(width, height, t); ok {
			components = append(components, c)
		}
	}
	return components
}

// component applies the shape and photometric filters to the region
// and converts it into a Component when it survives.
func (rs *regionStats) component(width, height int, t Thresholds) (Component, bool) {
	if rs.area == 0 || !(rs.weight > 0) {
		return Component{}, false
	}
	spanX := rs.maxX - rs.minX + 1
	spanY := rs.maxY - rs.minY + 1
	if spanX <= t.MinSpan || spanY <= t.MinSpan {
		return Component{}, false
	}

	areaRatio := float64(rs.area) / float64(width*height)
	if areaRatio < t.MinAreaRatio || areaRatio > t.MaxAreaRatio {
		return Component{}, false
	}
	aspect := float64(spanX) / float64(spanY)
	if aspect < t.MinAspect || aspect > t.MaxAspect {
		return Component{}, false
	}

	area := float64(rs.area)
	c := Component{
		MeanX:          rs.sumX / rs.weight,
		MeanY:          rs.sumY / rs.weight,
		SpanX:          spanX,
		SpanY:          spanY,
		Area:           rs.area,
		Weight:         rs.weight,
		MeanWhiteness:  rs.white / area,
		MeanBrightness: rs.bright / area,
		MeanSaturation: rs.sat / area,
		MeanGradient:   rs.grad / area,
	}

	if c.MeanBrightness < t.MinBrightness {
		return Component{}, false
	}
	// Neither a pale sclera nor a saturated iris.
	if c.MeanWhiteness < t.MinWhiteness && c.MeanSaturation < t.MinSaturation {
		return Component{}, false
	}
	if c.MeanY/float64(height) > t.MaxVerticalNorm {
		return Component{}, false
	}

	varX := math.Max(rs.sumXX/rs.weight-c.MeanX*c.MeanX, 0)
	varY := math.Max(rs.sumYY/rs.weight-c.MeanY*c.MeanY, 0)
	c.RadiusX = math.Max(math.Sqrt(varX)*2.4, float64(spanX)*0.33)
	c.RadiusY = math.Max(math.Sqrt(varY)*2.0, float64(spanY)*0.35)

	c.Confidence = rs.weight * (0.7 +
		c.MeanWhiteness*0.5 +
		c.MeanBrightness*0.4 +
		c.MeanGradient*0.6)

	return c, true
}
