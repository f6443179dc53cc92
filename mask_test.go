package eyeson

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

var maskEyes = [2]CropEye{
	{CX: 60, CY: 100, RadiusX: 20, RadiusY: 15},
	{CX: 140, CY: 100, RadiusX: 20, RadiusY: 15},
}

func solidCrop(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{sclera}, image.Point{}, draw.Src)
	return img
}

func TestMask_KeepsTheEyes(t *testing.T) {
	assert := assert.New(t)

	out := ApplyEyeMask(solidCrop(200), maskEyes, 200, DefaultMaskOptions())

	assert.Equal(image.Rect(0, 0, 200, 200), out.Bounds())
	assert.Equal(sclera, out.NRGBAAt(60, 102))
	assert.Equal(sclera, out.NRGBAAt(140, 102))
	// Bridge between the eyes.
	assert.Equal(sclera, out.NRGBAAt(100, 103))

	assert.Equal(color.NRGBA{}, out.NRGBAAt(0, 0))
	assert.Equal(color.NRGBA{}, out.NRGBAAt(100, 190))
	assert.Equal(color.NRGBA{}, out.NRGBAAt(199, 100))
}

func TestMask_WithoutBridge(t *testing.T) {
	opts := DefaultMaskOptions()
	opts.BridgeStrength = 0

	out := ApplyEyeMask(solidCrop(200), maskEyes, 200, opts)
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(100, 103))
	assert.Equal(t, sclera, out.NRGBAAt(60, 102))
}

func TestMask_ResizedCrop(t *testing.T) {
	assert := assert.New(t)

	out := ApplyEyeMask(solidCrop(100), maskEyes, 200, DefaultMaskOptions())

	assert.Equal(sclera, out.NRGBAAt(30, 51))
	assert.Equal(sclera, out.NRGBAAt(70, 51))
	assert.Equal(color.NRGBA{}, out.NRGBAAt(2, 2))
}

func TestMask_DoesNotAlterTheSource(t *testing.T) {
	src := solidCrop(50)
	ApplyEyeMask(src, maskEyes, 200, DefaultMaskOptions())

	assert.Equal(t, sclera, src.NRGBAAt(0, 0))
}
