package eyeson

import "github.com/lucasb-eyer/go-colorful"

// featureMaps holds the per-pixel features of the working buffer.
// All maps are indexed as x + y*width.
type featureMaps struct {
	width      int
	height     int
	brightness []float32
	whiteness  []float32
	saturation []float32
	gradient   []float32
	validity   []uint8
}

// extractFeatures converts an RGBA pixel buffer into feature maps.
// The gradient is computed only over the first topLimit rows.
func extractFeatures(pix []uint8, stride, width, height, topLimit int, t Thresholds) *featureMaps {
	total := width * height
	fm := &featureMaps{
		width:      width,
		height:     height,
		brightness: make([]float32, total),
		whiteness:  make([]float32, total),
		saturation: make([]float32, total),
		gradient:   make([]float32, total),
		validity:   make([]uint8, total),
	}

	for y := 0; y < height; y++ {
		row := pix[y*stride:]
		for x := 0; x < width; x++ {
			i := x * 4
			r, g, b, a := row[i], row[i+1], row[i+2], row[i+3]
			if a < t.MinAlpha {
				continue
			}
			if max(r, g, b) < t.MinChannel {
				continue
			}

			c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
			_, sat, value := c.Hsv()
			lightness := (c.R + c.G + c.B) / 3

			idx := x + y*width
			fm.brightness[idx] = float32(value*0.65 + lightness*0.35)
			fm.whiteness[idx] = float32(1 - sat)
			fm.saturation[idx] = float32(sat)
			fm.validity[idx] = 1
		}
	}
	fm.sobel(topLimit)

	return fm
}
