package eyeson

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/eyeson-art/eyeson/utils"
)

const (
	// DefaultMaxSide bounds the longer side of the working buffer.
	DefaultMaxSide = 720
	// DefaultTopLimitRatio is the fraction of rows, from the top, searched for eyes.
	DefaultTopLimitRatio = 0.8

	minWorkingSide = 32
	minTopLimit    = 8
)

// Detector locates a pair of eye-like regions in stylized portraits.
// A Detector holds only configuration, so a single value can be shared
// by concurrent goroutines.
type Detector struct {
	Thresholds    Thresholds
	MaxSide       int
	TopLimitRatio float64
	// BlurRadius is the sigma of an optional Gaussian blur applied to the
	// working buffer. Zero disables it.
	BlurRadius float64
}

// Stats reports what the detector saw during a single run.
type Stats struct {
	Width      int
	Height     int
	TopLimit   int
	GlobalMax  float64
	Components int
}

// NewDetector returns a Detector with the reference tuning.
func NewDetector() *Detector {
	return &Detector{
		Thresholds:    DefaultThresholds(),
		MaxSide:       DefaultMaxSide,
		TopLimitRatio: DefaultTopLimitRatio,
	}
}

// Detect runs the detector on img and returns the best eye pair in source
// image coordinates, or nil when no plausible pair exists.
func (d *Detector) Detect(img image.Image) *EyePair {
	pair, _ := d.DetectStats(img)
	return pair
}

// DetectStats is like Detect but also returns the intermediate statistics.
func (d *Detector) DetectStats(img image.Image) (*EyePair, Stats) {
	if img == nil || img.Bounds().Empty() {
		return nil, Stats{}
	}
	src := imaging.Clone(img)
	ow, oh := src.Bounds().Dx(), src.Bounds().Dy()

	maxSide := d.MaxSide
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	scale := math.Min(1, float64(maxSide)/float64(utils.Max(ow, oh)))
	sw := utils.Max(minWorkingSide, int(math.Round(float64(ow)*scale)))
	sh := utils.Max(minWorkingSide, int(math.Round(float64(oh)*scale)))

	work := src
	if sw != ow || sh != oh {
		work = imaging.Resize(src, sw, sh, imaging.Linear)
	}
	if d.BlurRadius > 0 {
		work = imaging.Blur(work, d.BlurRadius)
	}

	return d.run(work.Pix, work.Stride, sw, sh, frame{
		scaleInv: 1 / scale,
		width:    ow,
		height:   oh,
	})
}

// DetectPixels runs the detector on a tightly packed, non-premultiplied
// RGBA buffer at its native resolution.
func (d *Detector) DetectPixels(pix []uint8, width, height int) *EyePair {
	if width <= 0 || height <= 0 || len(pix) < width*height*4 {
		return nil
	}
	pair, _ := d.run(pix, width*4, width, height, frame{
		scaleInv: 1,
		width:    width,
		height:   height,
	})
	return pair
}

// run executes the detection pipeline over the working buffer.
func (d *Detector) run(pix []uint8, stride, width, height int, f frame) (*EyePair, Stats) {
	ratio := d.TopLimitRatio
	if !(ratio > 0 && ratio <= 1) {
		ratio = DefaultTopLimitRatio
	}
	topLimit := utils.Min(height, utils.Max(minTopLimit, int(math.Round(float64(height)*ratio))))
	stats := Stats{Width: width, Height: height, TopLimit: topLimit}

	fm := extractFeatures(pix, stride, width, height, topLimit, d.Thresholds)
	sm := buildScoreMap(fm, topLimit, d.Thresholds)
	stats.GlobalMax = sm.globalMax
	if sm.globalMax <= 0 {
		return nil, stats
	}

	components := extractComponents(sm, fm, d.Thresholds)
	stats.Components = len(components)
	if len(components) == 0 {
		return nil, stats
	}
	return selectBestPair(components, f, d.Thresholds), stats
}
