package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Spinner shows an animated status line on stderr while a slow operation,
// such as a rename waiting on a locked directory, runs. It stays silent when
// stderr is not a terminal.
type Spinner struct {
	out     io.Writer
	active  bool
	frames  []string
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	message string
	current int
}

// Default spinner frames (dots style)
var defaultFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a spinner on stderr.
func NewSpinner(message string) *Spinner {
	return newSpinner(os.Stderr, message, isatty.IsTerminal(os.Stderr.Fd()))
}

func newSpinner(out io.Writer, message string, active bool) *Spinner {
	return &Spinner{
		out:     out,
		active:  active,
		frames:  defaultFrames,
		done:    make(chan struct{}),
		message: message,
	}
}

// Start begins the spinner animation after delay, so that fast operations
// never flash a spinner.
func (s *Spinner) Start(delay time.Duration) {
	if !s.active {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-s.done:
			return
		case <-time.After(delay):
		}

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-ticker.C:
				s.mu.Lock()
				frame := s.frames[s.current%len(s.frames)]
				s.current++
				msg := s.message
				s.mu.Unlock()
				fmt.Fprintf(s.out, "\r\033[K%s %s", Bold.Render(frame), msg)
			}
		}
	}()
}

// SetMessage replaces the status text.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop stops the spinner and clears its line. It is safe to call more than
// once.
func (s *Spinner) Stop() {
	if !s.active {
		return
	}
	s.mu.Lock()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
