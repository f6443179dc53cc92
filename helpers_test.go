package eyeson

import (
	"image"
	"image/color"
	"image/draw"
)

var (
	background = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
	sclera     = color.NRGBA{R: 215, G: 215, B: 194, A: 255}
)

type blob struct {
	cx, cy, rx, ry float64
}

// newPortrait draws filled ellipses of the sclera color over a dark background.
func newPortrait(width, height int, blobs ...blob) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	for _, b := range blobs {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				dx := (float64(x) + 0.5 - b.cx) / b.rx
				dy := (float64(y) + 0.5 - b.cy) / b.ry
				if dx*dx+dy*dy <= 1 {
					img.SetNRGBA(x, y, sclera)
				}
			}
		}
	}
	return img
}

// referencePortrait returns a 720x720 portrait with two identical eye-like blobs.
func referencePortrait() *image.NRGBA {
	return newPortrait(720, 720,
		blob{cx: 280, cy: 300, rx: 40, ry: 30},
		blob{cx: 440, cy: 300, rx: 40, ry: 30},
	)
}
