package utils

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// frames is a blinking eye.
var frames = []rune("◉◉◎○◎")

// Spinner shows the progress of a run on a single terminal line,
// together with the number of images processed so far.
type Spinner struct {
	mu         sync.Mutex
	delay      time.Duration
	writer     io.Writer
	message    string
	lastOutput string
	processed  int
	running    bool
	StopMsg    string
	hideCursor bool
	stopChan   chan struct{}
}

// NewSpinner instantiates a new progress indicator redrawn every d.
func NewSpinner(msg string, d time.Duration, hideCursor bool) *Spinner {
	if d <= 0 {
		d = 100 * time.Millisecond
	}
	return &Spinner{
		delay:      d,
		writer:     os.Stderr,
		message:    msg,
		hideCursor: hideCursor,
	}
}

// Start starts the progress indicator. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.processed = 0
	stop := make(chan struct{})
	s.stopChan = stop
	if s.hideCursor && runtime.GOOS != "windows" {
		// hides the cursor
		fmt.Fprint(s.writer, "\033[?25l")
	}

	go func() {
		ticker := time.NewTicker(s.delay)
		defer ticker.Stop()

		for i := 0; ; i++ {
			s.render(frames[i%len(frames)])
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Processed counts one more finished image.
func (s *Spinner) Processed() {
	s.mu.Lock()
	s.processed++
	s.mu.Unlock()
}

// render draws a frame. Nothing is drawn once the spinner is stopped.
func (s *Spinner) render(frame rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	output := fmt.Sprintf("\r%s %s%c%s", s.message, SuccessColor, frame, DefaultColor)
	if s.processed > 0 {
		output += fmt.Sprintf(" %d processed", s.processed)
	}
	fmt.Fprint(s.writer, output)
	s.lastOutput = output
}

// Stop stops the progress indicator and prints StopMsg.
// Stopping an idle spinner is a no-op.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false

	s.clear()
	s.RestoreCursor()
	if len(s.StopMsg) > 0 {
		fmt.Fprint(s.writer, s.StopMsg)
	}
	close(s.stopChan)
}

// RestoreCursor restores back the cursor visibility.
func (s *Spinner) RestoreCursor() {
	if s.hideCursor && runtime.GOOS != "windows" {
		// makes the cursor visible
		fmt.Fprint(s.writer, "\033[?25h")
	}
}

// clear deletes the last line. Caller must hold the lock.
func (s *Spinner) clear() {
	n := utf8.RuneCountInString(s.lastOutput)
	if runtime.GOOS == "windows" {
		fmt.Fprint(s.writer, "\r"+strings.Repeat(" ", n)+"\r")
		s.lastOutput = ""
		return
	}
	fmt.Fprint(s.writer, "\r\033[K")
	s.lastOutput = ""
}
