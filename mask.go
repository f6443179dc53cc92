package eyeson

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/eyeson-art/eyeson/imop"
	"golang.org/x/image/vector"
)

// kappa is the control point distance of a cubic Bézier approximating a quarter ellipse.
const kappa = 0.5522847498

// MaskOptions controls the shape of the eye mask.
type MaskOptions struct {
	ExpandX        float64 // horizontal growth of each eye ellipse
	ExpandY        float64 // vertical growth of each eye ellipse
	DownShift      float64 // downward shift of the ellipse centers, in radiusY units
	BridgeStrength float64 // height of the bridge between the eyes, in radiusY units; 0 disables it
}

// DefaultMaskOptions returns the reference eye mask shape.
func DefaultMaskOptions() MaskOptions {
	return MaskOptions{
		ExpandX:        1.6,
		ExpandY:        1.9,
		DownShift:      0.12,
		BridgeStrength: 0.28,
	}
}

type ellipse struct {
	cx, cy, rx, ry float64
}

// path adds the ellipse outline to the rasterizer as four cubic Bézier curves.
func (e ellipse) path(z *vector.Rasterizer) {
	cx, cy := float32(e.cx), float32(e.cy)
	rx, ry := float32(e.rx), float32(e.ry)
	kx, ky := rx*kappa, ry*kappa

	z.MoveTo(cx+rx, cy)
	z.CubeTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	z.CubeTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	z.CubeTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	z.CubeTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	z.ClosePath()
}

// ApplyEyeMask keeps only the eye regions of a crop and makes everything
// else transparent. The eyes are expressed relative to a crop of side
// cropSide; the crop image may have been resized since.
func ApplyEyeMask(crop image.Image, eyes [2]CropEye, cropSide int, opts MaskOptions) *image.NRGBA {
	dst := imaging.Clone(crop)
	width, height := dst.Bounds().Dx(), dst.Bounds().Dy()
	if width == 0 || height == 0 || cropSide <= 0 {
		return dst
	}
	sx := float64(width) / float64(cropSide)
	sy := float64(height) / float64(cropSide)

	shapes := make([]ellipse, 0, 3)
	for _, eye := range eyes {
		ry := math.Max(1, float64(eye.RadiusY)*sy*opts.ExpandY)
		shapes = append(shapes, ellipse{
			cx: float64(eye.CX) * sx,
			cy: float64(eye.CY)*sy + ry*opts.DownShift,
			rx: math.Max(1, float64(eye.RadiusX)*sx*opts.ExpandX),
			ry: ry,
		})
	}
	if opts.BridgeStrength > 0 {
		left, right := shapes[0], shapes[1]
		if left.cx > right.cx {
			left, right = right, left
		}
		shapes = append(shapes, ellipse{
			cx: (left.cx + right.cx) / 2,
			cy: (left.cy + right.cy) / 2,
			rx: math.Max(1, (right.cx-left.cx)/2+math.Max(left.rx, right.rx)*0.05),
			ry: math.Max(1, math.Max(left.ry, right.ry)*opts.BridgeStrength),
		})
	}

	// Overlapping shapes saturate the coverage, so the mask is their union.
	z := vector.NewRasterizer(width, height)
	for _, s := range shapes {
		s.path(z)
	}
	alpha := image.NewAlpha(dst.Bounds())
	z.Draw(alpha, alpha.Bounds(), image.Opaque, image.Point{})

	mask := image.NewNRGBA(dst.Bounds())
	for i, a := range alpha.Pix {
		mask.Pix[i*4], mask.Pix[i*4+1], mask.Pix[i*4+2], mask.Pix[i*4+3] = 0xff, 0xff, 0xff, a
	}

	op := imop.InitOp()
	op.Set(imop.DstIn)
	bmp := imop.NewBitmap(dst.Bounds())
	op.Draw(bmp, mask, dst)

	return bmp.Img
}
