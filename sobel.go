package eyeson

import (
	"math"

	"github.com/eyeson-art/eyeson/utils"
)

// maxGradient caps the gradient magnitude.
const maxGradient = 2

// sobel fills the gradient map with a Sobel-like magnitude of the brightness map.
// The axial differences use the 4-neighbours, the diagonals contribute with half weight.
// Border pixels and pixels below topLimit keep a zero gradient.
// See https://en.wikipedia.org/wiki/Sobel_operator
func (fm *featureMaps) sobel(topLimit int) {
	dx := fm.width
	lastRow := fm.height - 1
	if topLimit-1 < lastRow {
		lastRow = topLimit - 1
	}
	br := fm.brightness

	for y := 1; y < lastRow; y++ {
		for x := 1; x < dx-1; x++ {
			idx := x + y*dx
			if fm.validity[idx] == 0 {
				continue
			}
			left, right := br[idx-1], br[idx+1]
			up, down := br[idx-dx], br[idx+dx]
			upLeft, upRight := br[idx-dx-1], br[idx-dx+1]
			downLeft, downRight := br[idx+dx-1], br[idx+dx+1]

			gx := utils.Abs(right-left) + 0.5*utils.Abs(upRight-downLeft)
			gy := utils.Abs(down-up) + 0.5*utils.Abs(downRight-upLeft)
			magnitude := math.Sqrt(float64(gx*gx + gy*gy))
			if magnitude > maxGradient {
				magnitude = maxGradient
			}
			fm.gradient[idx] = float32(magnitude)
		}
	}
}
