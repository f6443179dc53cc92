package eyeson

import (
	"image"
	"math"

	"github.com/eyeson-art/eyeson/utils"
)

// Margins applied around the eyes when framing the crop. The region above
// the eyes is larger to keep the eyebrows.
const (
	cropMarginX      = 2.4
	cropMarginTop    = 2.8
	cropMarginBottom = 2.2
	cropScale        = 1.1
	cropMinSide      = 0.32
	cropMaxSide      = 1.05
)

// Eye describes an eye region in source image coordinates.
type Eye struct {
	Center  [2]float64 `json:"center"`
	RadiusX float64    `json:"radiusX"`
	RadiusY float64    `json:"radiusY"`
}

// Crop is a square region of the source image.
type Crop struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CropEye describes an eye region relative to a crop.
type CropEye struct {
	CX      int `json:"cx"`
	CY      int `json:"cy"`
	RadiusX int `json:"radiusX"`
	RadiusY int `json:"radiusY"`
}

// Rect returns the crop as an image.Rectangle.
func (c Crop) Rect() image.Rectangle {
	return image.Rect(c.Left, c.Top, c.Left+c.Width, c.Top+c.Height)
}

// CropFromEyes frames the two eyes into a square crop fully inside a
// width x height image. It returns false for an empty image.
func CropFromEyes(left, right Eye, width, height int) (Crop, bool) {
	if width <= 0 || height <= 0 {
		return Crop{}, false
	}
	w, h := float64(width), float64(height)
	minImageSide := math.Max(1, math.Min(w, h))

	rawLeft := math.Min(left.Center[0]-left.RadiusX*cropMarginX, right.Center[0]-right.RadiusX*cropMarginX)
	rawRight := math.Max(left.Center[0]+left.RadiusX*cropMarginX, right.Center[0]+right.RadiusX*cropMarginX)
	rawTop := math.Min(left.Center[1]-left.RadiusY*cropMarginTop, right.Center[1]-right.RadiusY*cropMarginTop)
	rawBottom := math.Max(left.Center[1]+left.RadiusY*cropMarginBottom, right.Center[1]+right.RadiusY*cropMarginBottom)

	baseSide := math.Max(rawRight-rawLeft, rawBottom-rawTop)
	target := utils.Clamp(baseSide*cropScale, minImageSide*cropMinSide, minImageSide*cropMaxSide)
	side := utils.Max(1, utils.Min(math.Round(target), minImageSide))

	centerX := utils.Clamp((rawLeft+rawRight)/2, side/2, w-side/2)
	centerY := utils.Clamp((rawTop+rawBottom)/2, side/2, h-side/2)

	return squareAt(centerX-side/2, centerY-side/2, side, width, height), true
}

// FallbackCrop returns the crop used when no eye pair could be located:
// a square of 70% of the shorter side, horizontally centered, starting at
// 15% of the image height.
func FallbackCrop(width, height int) Crop {
	if width <= 0 || height <= 0 {
		return Crop{Width: 1, Height: 1}
	}
	minImageSide := float64(utils.Min(width, height))
	side := utils.Max(1, math.Floor(minImageSide*0.7))
	left := math.Floor((float64(width) - side) / 2)
	top := math.Floor(float64(height) * 0.15)

	return squareAt(left, top, side, width, height)
}

// squareAt rounds and clamps a square so it stays inside the image bounds.
func squareAt(left, top, side float64, width, height int) Crop {
	s := int(side)
	l := utils.Clamp(int(math.Round(left)), 0, utils.Max(width-s, 0))
	t := utils.Clamp(int(math.Round(top)), 0, utils.Max(height-s, 0))
	s = utils.Max(1, utils.Min(s, utils.Min(width-l, height-t)))

	return Crop{Left: l, Top: t, Width: s, Height: s}
}

// Relative expresses an eye in the coordinate space of the crop.
// The center is clamped inside the crop and the radii to [5%, 50%] of its side.
// A crop side below 2 has no integer radius in that range; the upper bound
// wins and the radii are 0.
func (c Crop) Relative(e Eye) CropEye {
	side := float64(utils.Max(utils.Min(c.Width, c.Height), 0))
	maxRadius := int(math.Floor(side * 0.5))
	minRadius := utils.Min(int(math.Ceil(side*0.05)), maxRadius)

	return CropEye{
		CX:      utils.Clamp(roundInt(e.Center[0]-float64(c.Left)), 0, utils.Max(c.Width-1, 0)),
		CY:      utils.Clamp(roundInt(e.Center[1]-float64(c.Top)), 0, utils.Max(c.Height-1, 0)),
		RadiusX: utils.Clamp(roundInt(e.RadiusX), minRadius, maxRadius),
		RadiusY: utils.Clamp(roundInt(e.RadiusY), minRadius, maxRadius),
	}
}

// roundInt rounds half away from zero; NaN and infinities map to zero.
func roundInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
