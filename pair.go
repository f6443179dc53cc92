package eyeson

import (
	"math"
	"sort"

	"github.com/eyeson-art/eyeson/utils"
)

// Source identifies which strategy produced a result.
type Source string

const (
	SourceHeuristic   Source = "anime-heuristic"
	SourceFaceCascade Source = "face-cascade"
	SourceFallback    Source = "fallback"
)

// EyePair is the outcome of a successful detection.
type EyePair struct {
	Crop       Crop       `json:"crop"`
	Eyes       [2]CropEye `json:"eyes"`
	Absolute   [2]Eye     `json:"absoluteEyes"`
	Confidence float64    `json:"confidence"`
	Source     Source     `json:"source"`
}

// frame maps working-buffer coordinates back to the source image.
type frame struct {
	scaleInv float64
	width    int
	height   int
}

func (f frame) eye(c Component) Eye {
	return Eye{
		Center:  [2]float64{c.MeanX * f.scaleInv, c.MeanY * f.scaleInv},
		RadiusX: c.RadiusX * f.scaleInv,
		RadiusY: c.RadiusY * f.scaleInv,
	}
}

// selectBestPair evaluates every pair of components and returns the most
// plausible left/right eye pair, or nil when no pair passes the filters.
func selectBestPair(components []Component, f frame, t Thresholds) *EyePair {
	if len(components) < 2 || f.width <= 0 || f.height <= 0 {
		return nil
	}
	w, h := float64(f.width), float64(f.height)

	var best *EyePair
	for i := 0; i < len(components)-1; i++ {
		for j := i + 1; j < len(components); j++ {
			left, right := components[i], components[j]
			if left.MeanX > right.MeanX {
				left, right = right, left
			}
			leftEye, rightEye := f.eye(left), f.eye(right)

			distNorm := (rightEye.Center[0] - leftEye.Center[0]) / w
			if distNorm < t.MinPairDistance || distNorm > t.MaxPairDistance {
				continue
			}
			verticalNorm := math.Abs(leftEye.Center[1]-rightEye.Center[1]) / h
			if verticalNorm > t.MaxVerticalOffset {
				continue
			}
			areaBalance := utils.Ratio(
				float64(utils.Min(left.Area, right.Area)),
				float64(utils.Max(left.Area, right.Area)),
			)
			if areaBalance < t.MinAreaBalance {
				continue
			}
			brightBalance := utils.Ratio(
				math.Min(left.MeanBrightness, right.MeanBrightness),
				math.Max(left.MeanBrightness, right.MeanBrightness),
			)
			if brightBalance < t.MinBrightBalance {
				continue
			}

			confidence := left.Confidence + right.Confidence +
				areaBalance*0.8 +
				(1-math.Min(verticalNorm, 1))*0.6 +
				math.Max(0, 0.4-math.Abs(distNorm-t.IdealPairDistance))*1.1 +
				brightBalance*0.5

			if best != nil && !(confidence > best.Confidence) {
				continue
			}
			crop, ok := CropFromEyes(leftEye, rightEye, f.width, f.height)
			if !ok {
				continue
			}
			best = newEyePair(crop, leftEye, rightEye, confidence, SourceHeuristic)
		}
	}
	return best
}

// newEyePair builds a result with both eyes expressed relative to the crop,
// sorted from left to right.
func newEyePair(crop Crop, left, right Eye, confidence float64, src Source) *EyePair {
	eyes := []CropEye{crop.Relative(left), crop.Relative(right)}
	sort.SliceStable(eyes, func(i, j int) bool {
		return eyes[i].CX < eyes[j].CX
	})
	return &EyePair{
		Crop:       crop,
		Eyes:       [2]CropEye{eyes[0], eyes[1]},
		Absolute:   [2]Eye{left, right},
		Confidence: confidence,
		Source:     src,
	}
}
