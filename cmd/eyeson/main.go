package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/eyeson-art/eyeson"
	"github.com/eyeson-art/eyeson/utils"
)

const HelpBanner = `
┌─┐┬ ┬┌─┐┌─┐┌─┐┌┐┌
├┤ └┬┘├┤ └─┐│ ││││
└─┘ ┴ └─┘└─┘└─┘┘└┘

Eye-centered square crops of stylized portraits.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source")
	destination = flag.String("out", pipeName, "Destination")
	maxSide     = flag.Int("max", eyeson.DefaultMaxSide, "Longer side of the working image")
	topLimit    = flag.Float64("top", eyeson.DefaultTopLimitRatio, "Fraction of rows, from the top, searched for eyes")
	seedScore   = flag.Float64("seed", eyeson.DefaultThresholds().SeedScore, "Minimum score of a region seed")
	growScore   = flag.Float64("grow", eyeson.DefaultThresholds().GrowScore, "Minimum score of a grown region pixel")
	blurRadius  = flag.Float64("blur", 0, "Blur sigma applied before the detection")
	faceDetect  = flag.Bool("face", false, "Fall back to face detection")
	cascade     = flag.String("cc", "", "Face cascade classifier")
	puploc      = flag.String("pl", "", "Pupil localization cascade")
	faceAngle   = flag.Float64("angle", 0.0, "Plane rotated faces angle")
	eyeMask     = flag.Bool("mask", false, "Keep only the eye regions of the crop")
	jsonOut     = flag.Bool("json", false, "Write the detection result as json")
	debug       = flag.Bool("debug", false, "Log the detection steps")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *faceDetect && len(*cascade) == 0 {
		log.Fatal(utils.DecorateText("Please specify a face classifier in case you are using the -face flag!\n", utils.ErrorMessage))
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}

	proc := eyeson.NewProcessor()
	proc.Detector.MaxSide = *maxSide
	proc.Detector.TopLimitRatio = *topLimit
	proc.Detector.BlurRadius = *blurRadius
	proc.Detector.Thresholds.SeedScore = *seedScore
	proc.Detector.Thresholds.GrowScore = *growScore
	proc.FaceDetect = *faceDetect
	proc.Classifier = *cascade
	proc.PuplocPath = *puploc
	proc.FaceAngle = *faceAngle
	proc.EyeMask = *eyeMask
	proc.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("👁 EYESON", utils.StatusMessage),
		utils.DecorateText("is looking for the eyes...", utils.DefaultMessage))
	proc.Spinner = utils.NewSpinner(spinnerText, time.Millisecond*200, true)

	if err := proc.LoadCascades(); err != nil {
		log.Fatal(utils.DecorateText(err.Error(), utils.ErrorMessage))
	}

	op := &eyeson.Ops{
		Src:      *source,
		Dst:      *destination,
		PipeName: pipeName,
		Workers:  *workers,
		JSON:     *jsonOut,
	}
	if err := proc.Execute(op); err != nil {
		log.Fatal(fmt.Sprintf("%s%s",
			utils.DecorateText("\n"+err.Error(), utils.ErrorMessage),
			utils.DefaultColor,
		))
	}
}
