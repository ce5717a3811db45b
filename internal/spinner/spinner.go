// Package spinner draws a one-line progress indicator on a terminal.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Interval is the time between frames.
const Interval = 80 * time.Millisecond

// Spinner redraws its message on w until Stop is called. The message may be
// changed while it runs.
type Spinner struct {
	w        io.Writer
	mu       sync.Mutex
	message  string
	drawn    int
	done     chan struct{}
	cleared  chan struct{}
	stopOnce sync.Once
}

// Start displays an animated spinner with the given message on w.
func Start(w io.Writer, message string) *Spinner {
	s := &Spinner{
		w:       w,
		message: message,
		done:    make(chan struct{}),
		cleared: make(chan struct{}),
	}
	go s.loop()
	return s
}

// Set replaces the message shown next to the spinner.
func (s *Spinner) Set(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Println clears the spinner line, writes line and lets the spinner redraw
// below it.
func (s *Spinner) Println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	fmt.Fprintln(s.w, line) //nolint:errcheck
}

// Stop stops the spinner and clears its line. It is safe to call more than
// once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	<-s.cleared
}

func (s *Spinner) loop() {
	ticker := time.NewTicker(Interval)
	defer ticker.Stop()

	i := 0
	for {
		select {
		case <-s.done:
			s.mu.Lock()
			s.clearLocked()
			s.mu.Unlock()
			close(s.cleared)
			return
		case <-ticker.C:
			s.mu.Lock()
			line := frames[i%len(frames)] + " " + s.message
			pad := max(s.drawn-runewidth.StringWidth(line), 0)
			fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", pad)) //nolint:errcheck
			s.drawn = runewidth.StringWidth(line)
			s.mu.Unlock()
			i++
		}
	}
}

func (s *Spinner) clearLocked() {
	if s.drawn == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn)) //nolint:errcheck
	s.drawn = 0
}
