// Package imop implements the Porter-Duff composition operations
// used for mixing a graphic element with its backdrop.
// Porter and Duff presented in their paper 12 different composition operation,
// but the image/draw core package implements only the source-over-destination and source.
// This package is aimed to overcome the missing composite operations.
//
// It is mainly used to cut the detected eye regions out of the crop:
// the eye mask is the source and the crop is the backdrop of a DstIn operation.
package imop

import (
	"image"

	"golang.org/x/exp/slices"
)

const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// Bitmap holds the result of a composition.
type Bitmap struct {
	Img *image.NRGBA
}

// Composite holds the currently active composition operation.
type Composite struct {
	current string
	ops     []string
}

// NewBitmap allocates a transparent bitmap.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// InitOp initializes a composition with SrcOver as the active operation.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops: []string{
			Clear,
			Copy,
			Dst,
			SrcOver,
			DstOver,
			SrcIn,
			DstIn,
			SrcOut,
			DstOut,
			SrcAtop,
			DstAtop,
			Xor,
		},
	}
}

// Set activates one of the supported composition operations.
// Unknown operations are ignored.
func (op *Composite) Set(cop string) {
	if slices.Contains(op.ops, cop) {
		op.current = cop
	}
}

// Get returns the active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// Draw composes src over the dst backdrop into the bitmap.
// The three images are expected to share the same dimensions.
func (op *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA) {
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()
	if bitmap == nil {
		bitmap = NewBitmap(src.Bounds())
	}
	out := bitmap.Img

	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			si := src.PixOffset(src.Rect.Min.X+x, src.Rect.Min.Y+y)
			di := dst.PixOffset(dst.Rect.Min.X+x, dst.Rect.Min.Y+y)
			oi := out.PixOffset(out.Rect.Min.X+x, out.Rect.Min.Y+y)

			as := float64(src.Pix[si+3]) / 255
			ab := float64(dst.Pix[di+3]) / 255

			// Porter-Duff fractions of the source and of the backdrop.
			var fs, fb float64
			switch op.current {
			case Clear:
			case Copy:
				fs = 1
			case Dst:
				fb = 1
			case SrcOver:
				fs, fb = 1, 1-as
			case DstOver:
				fs, fb = 1-ab, 1
			case SrcIn:
				fs = ab
			case DstIn:
				fb = as
			case SrcOut:
				fs = 1 - ab
			case DstOut:
				fb = 1 - as
			case SrcAtop:
				fs, fb = ab, 1-as
			case DstAtop:
				fs, fb = 1-ab, as
			case Xor:
				fs, fb = 1-ab, 1-as
			}

			an := as*fs + ab*fb
			if an <= 0 {
				out.Pix[oi], out.Pix[oi+1], out.Pix[oi+2], out.Pix[oi+3] = 0, 0, 0, 0
				continue
			}
			for c := 0; c < 3; c++ {
				cs := float64(src.Pix[si+c]) / 255
				cb := float64(dst.Pix[di+c]) / 255
				cn := (as*fs*cs + ab*fb*cb) / an
				out.Pix[oi+c] = toByte(cn)
			}
			out.Pix[oi+3] = toByte(an)
		}
	}
}

func toByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	return uint8(v*255 + 0.5)
}
