package eyeson

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrop_FromEyes(t *testing.T) {
	assert := assert.New(t)

	left := Eye{Center: [2]float64{300, 300}, RadiusX: 20, RadiusY: 15}
	right := Eye{Center: [2]float64{500, 300}, RadiusX: 20, RadiusY: 15}

	crop, ok := CropFromEyes(left, right, 1000, 1000)
	assert.True(ok)
	assert.Equal(Crop{Left: 237, Top: 133, Width: 326, Height: 326}, crop)
	assert.Equal(image.Rect(237, 133, 563, 459), crop.Rect())
}

func TestCrop_EmptyImage(t *testing.T) {
	eye := Eye{Center: [2]float64{1, 1}, RadiusX: 1, RadiusY: 1}

	_, ok := CropFromEyes(eye, eye, 0, 100)
	assert.False(t, ok)
}

func TestCrop_StaysInsideTheImage(t *testing.T) {
	assert := assert.New(t)

	sizes := [][2]int{{1000, 1000}, {1600, 900}, {300, 1200}, {40, 40}, {1, 1}}
	positions := []float64{-50, 0, 0.1, 0.5, 0.9, 1, 1.5}
	radii := []float64{0, 1, 12, 80, 1e4}

	for _, size := range sizes {
		w, h := size[0], size[1]
		for _, px := range positions {
			for _, py := range positions {
				for _, r := range radii {
					left := Eye{Center: [2]float64{px * float64(w), py * float64(h)}, RadiusX: r, RadiusY: r * 0.7}
					right := Eye{Center: [2]float64{px*float64(w) + r, py * float64(h)}, RadiusX: r, RadiusY: r * 0.7}

					crop, ok := CropFromEyes(left, right, w, h)
					assert.True(ok)
					assert.Equal(crop.Width, crop.Height)
					assert.GreaterOrEqual(crop.Width, 1)
					assert.GreaterOrEqual(crop.Left, 0)
					assert.GreaterOrEqual(crop.Top, 0)
					assert.LessOrEqual(crop.Left+crop.Width, w)
					assert.LessOrEqual(crop.Top+crop.Height, h)
				}
			}
		}
	}
}

func TestCrop_SideIsBoundedByTheShorterSide(t *testing.T) {
	assert := assert.New(t)

	tiny := Eye{Center: [2]float64{500, 400}, RadiusX: 1, RadiusY: 1}
	crop, _ := CropFromEyes(tiny, tiny, 1000, 800)
	assert.Equal(256, crop.Width)

	huge := Eye{Center: [2]float64{500, 400}, RadiusX: 900, RadiusY: 900}
	crop, _ = CropFromEyes(huge, huge, 1000, 800)
	assert.Equal(800, crop.Width)
	assert.Equal(0, crop.Top)
}

func TestCrop_Fallback(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Crop{Left: 220, Top: 120, Width: 560, Height: 560}, FallbackCrop(1000, 800))
	assert.Equal(Crop{Left: 15, Top: 150, Width: 70, Height: 70}, FallbackCrop(100, 1000))
	assert.Equal(Crop{Left: 0, Top: 0, Width: 1, Height: 1}, FallbackCrop(1, 1))
	assert.Equal(Crop{Width: 1, Height: 1}, FallbackCrop(0, 0))
}

func TestCrop_Relative(t *testing.T) {
	assert := assert.New(t)

	crop := Crop{Left: 100, Top: 100, Width: 200, Height: 200}

	eye := crop.Relative(Eye{Center: [2]float64{150.4, 160.6}, RadiusX: 30, RadiusY: 3})
	assert.Equal(CropEye{CX: 50, CY: 61, RadiusX: 30, RadiusY: 10}, eye)

	eye = crop.Relative(Eye{Center: [2]float64{50, 900}, RadiusX: 500, RadiusY: 500})
	assert.Equal(CropEye{CX: 0, CY: 199, RadiusX: 100, RadiusY: 100}, eye)
}

func TestCrop_RelativeTinyCrop(t *testing.T) {
	assert := assert.New(t)

	eye := Eye{Center: [2]float64{3, 3}, RadiusX: 8, RadiusY: 6}

	// No integer radius lies in [5%, 50%] of a 1px side: the radii never exceed half the side.
	assert.Equal(CropEye{CX: 0, CY: 0, RadiusX: 0, RadiusY: 0}, Crop{Width: 1, Height: 1}.Relative(eye))
	assert.Equal(CropEye{CX: 1, CY: 1, RadiusX: 1, RadiusY: 1}, Crop{Width: 2, Height: 2}.Relative(eye))

	for side := 2; side <= 64; side++ {
		got := Crop{Width: side, Height: side}.Relative(Eye{RadiusX: 0.01, RadiusY: 1e4})
		assert.GreaterOrEqual(float64(got.RadiusX), 0.05*float64(side), "side %d", side)
		assert.LessOrEqual(float64(got.RadiusY), 0.5*float64(side), "side %d", side)
	}
}
