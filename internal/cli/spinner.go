package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerClock is how long a stage runs before its elapsed time is shown.
const spinnerClock = time.Second

// Spinner shows a pipeline stage on statusOut until it is stopped or its
// context ends. The detail after the stage name can change while it runs.
type Spinner struct {
	stage   string
	detail  string
	start   time.Time
	width   int
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	mu      sync.Mutex
}

// newSpinner creates a spinner for stage that stops when ctx is done.
func newSpinner(ctx context.Context, stage string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		stage:   stage,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Detail replaces the text shown after the stage name.
func (s *Spinner) Detail(format string, args ...any) {
	s.mu.Lock()
	s.detail = fmt.Sprintf(format, args...)
	s.mu.Unlock()
}

// line is the status text without the frame, e.g.
// "Fetching dataset cds_trades (12 events) 3s".
func (s *Spinner) line(now time.Time) string {
	text := s.stage
	if s.detail != "" {
		text += " (" + s.detail + ")"
	}
	if d := now.Sub(s.start); d >= spinnerClock {
		text += " " + d.Truncate(time.Second).String()
	}
	return text
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.start = time.Now()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case now := <-ticker.C:
				s.mu.Lock()
				text := s.line(now)
				s.width = max(s.width, len(text))
				fmt.Fprintf(statusOut, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(text))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop stops the spinner and clears the line. It is safe to call more than
// once.
func (s *Spinner) Stop() {
	s.cancel()
	s.once.Do(func() { close(s.done) })
	<-s.stopped
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(statusOut, "\r%s\r", strings.Repeat(" ", s.width+4))
}

// StopWithError stops the spinner and reports the failed stage.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's context ended. Stop also cancels
// it, so check before stopping.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
