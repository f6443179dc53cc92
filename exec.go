package eyeson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/eyeson-art/eyeson/utils"
	"golang.org/x/exp/slices"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

var (
	// srcExtensions lists the decodable source image types.
	srcExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp"}
	// dstExtensions lists the encodable destination image types.
	dstExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}
)

// Ops holds the source and destination of a run.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int
	// JSON writes the detection result next to each generated image.
	JSON bool
}

// result holds the relevant information about the processing of a single image.
type result struct {
	path string
	res  *Result
	err  error
}

// Execute crops a single image, a pipe or every supported image of a directory.
// Failures of individual files in a directory are reported and do not stop the run.
func (p *Processor) Execute(op *Ops) error {
	var (
		fs  os.FileInfo
		err error
		url string
	)
	if p.Spinner == nil {
		msg := fmt.Sprintf("%s %s",
			utils.DecorateText("👁 EYESON", utils.StatusMessage),
			utils.DecorateText("⇢ looking for the eyes...", utils.DefaultMessage),
		)
		p.Spinner = utils.NewSpinner(msg, time.Millisecond*80, true)
	}

	// Check if source path is a local image or URL.
	if utils.IsValidUrl(op.Src) {
		src, err := utils.DownloadImage(op.Src, srcExtensions)
		if src != nil {
			defer os.Remove(src.Name())
			defer src.Close()
		}
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		url = src.Name()
		if fs, err = os.Stat(url); err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
	} else {
		// Check if the source is a pipe name or a regular file.
		if op.Src == op.PipeName {
			fs, err = os.Stdin.Stat()
		} else {
			fs, err = os.Stat(op.Src)
		}
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
	}

	finished := make(chan struct{})
	defer close(finished)
	go watchInterrupt(finished, p.Spinner.RestoreCursor)

	now := time.Now()
	p.Spinner.Start()

	var failed int
	switch mode := fs.Mode(); {
	case mode.IsDir():
		var wg sync.WaitGroup
		// Read destination file or directory.
		if _, err := os.Stat(op.Dst); err != nil {
			if err := os.MkdirAll(op.Dst, 0755); err != nil {
				p.Spinner.Stop()
				return fmt.Errorf("unable to create the destination directory: %w", err)
			}
		}

		// Limit the concurrently running workers to maxWorkers.
		if op.Workers <= 0 || op.Workers > maxWorkers {
			op.Workers = runtime.NumCPU()
		}

		// Process recursively the image files from the specified directory concurrently.
		ch := make(chan result)
		done := make(chan interface{})
		defer close(done)

		paths, errc := walkDir(done, op.Src, srcExtensions)

		wg.Add(op.Workers)
		for i := 0; i < op.Workers; i++ {
			go func() {
				defer wg.Done()
				op.consumer(p, op.Dst, ch, done, paths)
			}()
		}

		// Close the channel after the values are consumed.
		go func() {
			defer close(ch)
			wg.Wait()
		}()

		// Consume the channel values.
		sources := make(map[Source]int)
		for r := range ch {
			p.Spinner.Processed()
			if r.err != nil {
				failed++
			} else {
				sources[r.res.Source]++
			}
			op.printOpStatus(r.path, r.res, r.err)
		}
		p.Spinner.Stop()
		printSummary(sources, failed)

		if err := <-errc; err != nil {
			return fmt.Errorf("directory walk failed: %w", err)
		}

	case mode.IsRegular() || mode&os.ModeNamedPipe != 0: // check for regular files or pipe names
		ext := strings.ToLower(filepath.Ext(op.Dst))
		if !isValidExtension(ext, dstExtensions) && op.Dst != op.PipeName {
			p.Spinner.Stop()
			return fmt.Errorf("%v file type not supported", ext)
		}
		in := op.Src
		if url != "" {
			in = url
		}
		res, err := op.process(p, in, op.Dst)
		p.Spinner.Stop()
		op.printOpStatus(op.Dst, res, err)
		if err != nil {
			return err
		}
	default:
		p.Spinner.Stop()
		return fmt.Errorf("unsupported source: %s", op.Src)
	}

	if failed > 0 {
		return fmt.Errorf("%d image(s) could not be processed", failed)
	}
	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

// watchInterrupt captures the CTRL-C signal and restores back the cursor
// visibility before exiting. It returns once done is closed.
func watchInterrupt(done <-chan struct{}, restore func()) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-sig:
		restore()
		os.Exit(1)
	case <-done:
	}
}

// consumer reads the path names from the paths channel and calls the processor against the source image.
func (op *Ops) consumer(
	p *Processor,
	dest string,
	res chan<- result,
	done <-chan interface{},
	paths <-chan string,
) {
	for src := range paths {
		r, err := op.process(p, src, outputPath(dest, src))

		select {
		case <-done:
			return
		case res <- result{
			path: src,
			res:  r,
			err:  err,
		}:
		}
	}
}

// process crops the source image into the destination and writes the JSON sidecar if requested.
func (op *Ops) process(p *Processor, in, out string) (*Result, error) {
	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		return nil, err
	}

	defer func() {
		if img, ok := src.(*os.File); ok && img != os.Stdin {
			if err := img.Close(); err != nil {
				log.Printf("could not close the opened file: %v", err)
			}
		}
	}()

	res, err := p.Process(src, dst)
	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not close the destination file: %w", cerr)
		}
		if err != nil {
			// remove the generated image file in case of an error
			os.Remove(f.Name())
		}
	}
	if err != nil {
		return nil, err
	}

	if op.JSON {
		if err := op.writeJSON(out, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// writeJSON writes the detection result next to the destination image,
// or to stderr when the image goes to stdout.
func (op *Ops) writeJSON(out string, res *Result) error {
	var w io.Writer = os.Stderr
	if out != op.PipeName {
		f, err := os.Create(strings.TrimSuffix(out, filepath.Ext(out)) + ".json")
		if err != nil {
			return fmt.Errorf("unable to create the json file: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("unable to encode the detection result: %w", err)
	}
	return nil
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

// printOpStatus displays the relevant information about the processed image.
func (op *Ops) printOpStatus(fname string, res *Result, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%s",
			utils.DecorateText(fmt.Sprintf("\nError processing %s", filepath.Base(fname)), utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err), utils.DefaultMessage),
		)
		return
	}
	if fname == op.PipeName {
		return
	}
	if res.Source == SourceFallback {
		fmt.Fprintf(os.Stderr, "\n%s %s\n",
			utils.DecorateText(filepath.Base(fname), utils.WarningMessage),
			utils.DecorateText("⚠ no eye pair found, fallback crop", utils.WarningMessage),
		)
		return
	}
	fmt.Fprintf(os.Stderr, "\n%s %s (%s, confidence %.2f)\n",
		utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
		utils.DecorateText("✔", utils.SuccessMessage),
		res.Source,
		res.Pair.Confidence,
	)
}

// printSummary reports how many images each strategy cropped.
func printSummary(sources map[Source]int, failed int) {
	fmt.Fprintf(os.Stderr, "\n%s %d  %s %d  %s %d",
		utils.DecorateText(string(SourceHeuristic), utils.SuccessMessage), sources[SourceHeuristic],
		utils.DecorateText(string(SourceFaceCascade), utils.SuccessMessage), sources[SourceFaceCascade],
		utils.DecorateText(string(SourceFallback), utils.WarningMessage), sources[SourceFallback],
	)
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "  %s %d", utils.DecorateText("failed", utils.ErrorMessage), failed)
	}
	fmt.Fprintln(os.Stderr)
}

// outputPath maps a source image to its destination inside dest. Sources the
// encoder cannot write keep their name but are saved as png.
func outputPath(dest, src string) string {
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	if !isValidExtension(strings.ToLower(ext), dstExtensions) {
		base = strings.TrimSuffix(base, ext) + ".png"
	}
	return filepath.Join(dest, base)
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each regular file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan interface{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}

			if isValidExtension(strings.ToLower(filepath.Ext(f.Name())), srcExts) {
				select {
				case <-done:
					return errors.New("directory walk cancelled")
				case pathChan <- path:
				}
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	return slices.Contains(extensions, ext)
}
