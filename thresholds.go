package eyeson

// Thresholds holds the tuned constants of the eye-pair heuristic.
// The values returned by DefaultThresholds are empirical; overriding them
// changes the behaviour of every stage of the detector.
type Thresholds struct {
	// Feature extraction.
	MinAlpha   uint8 // pixels with a lower alpha are ignored
	MinChannel uint8 // pixels whose brightest channel is lower are ignored

	// Score map.
	TopPenaltyBand    float64 // fraction of the band considered forehead/hair
	TopPenalty        float64
	BottomPenaltyBand float64 // rows after this fraction of the band get BottomPenalty
	BottomPenalty     float64
	ScoreBias         float64

	// Region growing.
	SeedScore float64
	GrowScore float64

	// Component filters.
	MinSpan         int
	MinAreaRatio    float64
	MaxAreaRatio    float64
	MinAspect       float64
	MaxAspect       float64
	MinBrightness   float64
	MinWhiteness    float64
	MinSaturation   float64
	MaxVerticalNorm float64

	// Pair filters.
	MinPairDistance   float64
	MaxPairDistance   float64
	MaxVerticalOffset float64
	MinAreaBalance    float64
	MinBrightBalance  float64
	IdealPairDistance float64
}

// DefaultThresholds returns the reference tuning of the detector.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinAlpha:   40,
		MinChannel: 35,

		TopPenaltyBand:    0.15,
		TopPenalty:        0.85,
		BottomPenaltyBand: 0.85,
		BottomPenalty:     0.5,
		ScoreBias:         0.18,

		SeedScore: 0.22,
		GrowScore: 0.12,

		MinSpan:         2,
		MinAreaRatio:    0.001,
		MaxAreaRatio:    0.1,
		MinAspect:       0.45,
		MaxAspect:       3.2,
		MinBrightness:   0.18,
		MinWhiteness:    0.26,
		MinSaturation:   0.28,
		MaxVerticalNorm: 0.88,

		MinPairDistance:   0.12,
		MaxPairDistance:   0.7,
		MaxVerticalOffset: 0.18,
		MinAreaBalance:    0.35,
		MinBrightBalance:  0.35,
		IdealPairDistance: 0.32,
	}
}
