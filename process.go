package eyeson

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
	"github.com/eyeson-art/eyeson/utils"
	pigo "github.com/esimov/pigo/core"
)

const (
	// DefaultFaceQuality is the minimum cascade score of an accepted face.
	DefaultFaceQuality = 5.0

	faceMinSize      = 20
	faceShiftFactor  = 0.1
	faceScaleFactor  = 1.1
	faceIoUThreshold = 0.2
	puplocPerturbs   = 63
)

// Processor options
type Processor struct {
	Detector       *Detector
	Classifier     string // path to the pigo face cascade
	PuplocPath     string // path to the pigo pupil localization cascade
	FaceAngle      float64
	FaceQuality    float32
	Mask           MaskOptions
	Logger         *slog.Logger
	FaceDetector   *pigo.Pigo
	PuplocDetector *pigo.PuplocCascade
	Spinner        *utils.Spinner
	FaceDetect     bool
	EyeMask        bool
}

// Result is the outcome of analysing a single image. Pair is nil when the
// crop comes from the fixed fallback.
type Result struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Crop   Crop     `json:"crop"`
	Pair   *EyePair `json:"pair,omitempty"`
	Source Source   `json:"source"`
}

// NewProcessor returns a Processor using the default detector and mask shape.
func NewProcessor() *Processor {
	return &Processor{
		Detector:    NewDetector(),
		FaceQuality: DefaultFaceQuality,
		Mask:        DefaultMaskOptions(),
	}
}

// LoadCascades unpacks the face cascade and, if configured, the pupil
// localization cascade. It is a no-op when face detection is disabled.
func (p *Processor) LoadCascades() error {
	if !p.FaceDetect {
		return nil
	}
	if p.Classifier == "" {
		return errors.New("face detection requires a cascade file")
	}
	cascadeFile, err := os.ReadFile(p.Classifier)
	if err != nil {
		return fmt.Errorf("error reading the cascade file: %w", err)
	}
	// Unpack the binary file. This will return the number of cascade trees,
	// the tree depth, the threshold and the prediction from tree's leaf nodes.
	p.FaceDetector, err = pigo.NewPigo().Unpack(cascadeFile)
	if err != nil {
		return fmt.Errorf("error unpacking the cascade file: %w", err)
	}

	if p.PuplocPath == "" {
		return nil
	}
	puplocFile, err := os.ReadFile(p.PuplocPath)
	if err != nil {
		return fmt.Errorf("error reading the puploc cascade file: %w", err)
	}
	p.PuplocDetector, err = pigo.NewPuplocCascade().UnpackCascade(puplocFile)
	if err != nil {
		return fmt.Errorf("error unpacking the puploc cascade file: %w", err)
	}
	return nil
}

// Analyze locates the crop for img. The heuristic detector runs first,
// then the face cascade when one is loaded, then the fixed fallback crop.
func (p *Processor) Analyze(img image.Image) *Result {
	logger := p.logger()
	if img == nil || img.Bounds().Empty() {
		return &Result{Crop: FallbackCrop(0, 0), Source: SourceFallback}
	}
	src := imaging.Clone(img)
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	res := &Result{Width: width, Height: height}

	detector := p.Detector
	if detector == nil {
		detector = NewDetector()
	}
	pair, stats := detector.DetectStats(src)
	logger.Debug("heuristic detection",
		slog.Int("width", stats.Width),
		slog.Int("height", stats.Height),
		slog.Int("topLimit", stats.TopLimit),
		slog.Float64("globalMax", stats.GlobalMax),
		slog.Int("components", stats.Components),
		slog.Bool("found", pair != nil),
	)

	if pair == nil && p.FaceDetector != nil {
		pair = p.detectFace(src)
		logger.Debug("face cascade detection", slog.Bool("found", pair != nil))
	}

	if pair != nil {
		res.Pair = pair
		res.Crop = pair.Crop
		res.Source = pair.Source
	} else {
		res.Crop = FallbackCrop(width, height)
		res.Source = SourceFallback
	}
	logger.Info("crop selected",
		slog.String("source", string(res.Source)),
		slog.Int("left", res.Crop.Left),
		slog.Int("top", res.Crop.Top),
		slog.Int("side", res.Crop.Width),
	)
	return res
}

// Process decodes the image read from r, analyses it and encodes the cropped
// region into w. When the eye mask is enabled and an eye pair was found,
// everything outside the eyes is made transparent.
// Not finding the eyes is not an error: the fallback crop is written instead.
func (p *Processor) Process(r io.Reader, w io.Writer) (*Result, error) {
	src, err := decodeImg(r)
	if err != nil {
		return nil, err
	}
	res := p.Analyze(src)

	var out image.Image = imaging.Crop(src, res.Crop.Rect().Add(src.Bounds().Min))
	if p.EyeMask && res.Pair != nil {
		out = ApplyEyeMask(out, res.Pair.Eyes, res.Crop.Width, p.Mask)
	}
	if err := encodeImg(w, out); err != nil {
		return res, fmt.Errorf("could not encode the cropped image: %w", err)
	}
	return res, nil
}

// detectFace runs the face cascade over the image and seeds both eyes from
// the best face, refining them with the pupil localization cascade if loaded.
func (p *Processor) detectFace(src *image.NRGBA) *EyePair {
	cols, rows := src.Bounds().Dx(), src.Bounds().Dy()
	imgParams := pigo.ImageParams{
		Pixels: pigo.RgbToGrayscale(src),
		Rows:   rows,
		Cols:   cols,
		Dim:    cols,
	}
	cParams := pigo.CascadeParams{
		MinSize:     faceMinSize,
		MaxSize:     utils.Max(rows, cols),
		ShiftFactor: faceShiftFactor,
		ScaleFactor: faceScaleFactor,
		ImageParams: imgParams,
	}

	// Run the classifier over the obtained leaf nodes and return the detection results.
	// The result contains quadruplets representing the row, column, scale and detection score.
	faces := p.FaceDetector.RunCascade(cParams, p.FaceAngle)
	// Calculate the intersection over union (IoU) of two clusters.
	faces = p.FaceDetector.ClusterDetections(faces, faceIoUThreshold)

	var best *pigo.Detection
	for i := range faces {
		if faces[i].Q < p.FaceQuality {
			continue
		}
		if best == nil || faces[i].Q > best.Q {
			best = &faces[i]
		}
	}
	if best == nil {
		return nil
	}

	scale := float64(best.Scale)
	left := p.faceEye(best, -1, imgParams)
	right := p.faceEye(best, 1, imgParams)

	crop, ok := CropFromEyes(left, right, cols, rows)
	if !ok {
		return nil
	}
	p.logger().Debug("face found",
		slog.Int("row", best.Row),
		slog.Int("col", best.Col),
		slog.Float64("scale", scale),
		slog.Float64("quality", float64(best.Q)),
	)
	return newEyePair(crop, left, right, float64(best.Q), SourceFaceCascade)
}

// faceEye estimates one eye from a face detection; side is -1 for the
// eye on the left of the image and 1 for the other one.
func (p *Processor) faceEye(face *pigo.Detection, side int, imgParams pigo.ImageParams) Eye {
	scale := float64(face.Scale)
	row := float64(face.Row) - 0.085*scale
	col := float64(face.Col) + float64(side)*0.185*scale

	if p.PuplocDetector != nil {
		puploc := &pigo.Puploc{
			Row:      int(row),
			Col:      int(col),
			Scale:    float32(scale) * 0.4,
			Perturbs: puplocPerturbs,
		}
		if eye := p.PuplocDetector.RunDetector(*puploc, imgParams, p.FaceAngle, false); eye != nil && eye.Row > 0 && eye.Col > 0 {
			row, col = float64(eye.Row), float64(eye.Col)
		}
	}
	return Eye{
		Center:  [2]float64{col, row},
		RadiusX: 0.1 * scale,
		RadiusY: 0.07 * scale,
	}
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
