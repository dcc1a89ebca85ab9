package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates one pipeline stage on stderr until it is stopped or its
// context ends.
type spinner struct {
	label string
	out   io.Writer
	ctx   context.Context

	stopOnce sync.Once
	quit     chan struct{}
	exited   chan struct{}
	mu       sync.Mutex
}

func newSpinnerWithContext(ctx context.Context, label string) *spinner {
	return &spinner{
		label:  label,
		out:    os.Stderr,
		ctx:    ctx,
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// Start draws frames in the background.
func (s *spinner) Start() {
	go s.run()
}

func (s *spinner) run() {
	defer close(s.exited)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.quit:
			return
		case <-s.ctx.Done():
			s.erase()
			return
		case <-tick.C:
			s.mu.Lock()
			fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.label))
			s.mu.Unlock()
		}
	}
}

// Stop ends the animation and erases the line. It may be called more than
// once, and works without Start.
func (s *spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		select {
		case <-s.exited:
		case <-time.After(spinnerInterval * 2):
		}
		s.erase()
	})
}

// StopWithError stops and reports the failed stage.
func (s *spinner) StopWithError(msg string) {
	s.Stop()
	printError("%s", msg)
}

func (s *spinner) erase() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.label)+4))
}
