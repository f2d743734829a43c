package terminal

import (
	"fmt"
	"sync"
	"time"
)

// Spinner is a live "generating" indicator. It redraws a single line with
// a frame, a message, and the elapsed time until stopped. The spinner owns
// the console's writer while running; no other output should be
// interleaved with it.
type Spinner struct {
	console  *Console
	frames   []string
	interval time.Duration
	message  string
	start    time.Time

	mu     sync.Mutex
	active bool
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSpinner returns a stopped spinner bound to the console's writer.
func (c *Console) NewSpinner(message string) *Spinner {
	return &Spinner{
		console:  c,
		frames:   []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"},
		interval: 100 * time.Millisecond,
		message:  message,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (s *Spinner) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.start = time.Now()
	s.mu.Unlock()

	go s.spin()
}

// Stop halts the spinner, clears its line, and prints the completion
// message when one is given. Stopping a stopped spinner is a no-op.
func (s *Spinner) Stop(completionMessage string) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh

	w := s.console.sink()
	fmt.Fprintf(w, "\r\033[K")
	if completionMessage != "" {
		fmt.Fprintf(w, "%s\n", completionMessage)
	}
}

func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *Spinner) spin() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	frameIndex := 0

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			frame := s.frames[frameIndex]
			message := s.message
			start := s.start
			s.mu.Unlock()

			fmt.Fprintf(s.console.sink(), "\r%s %s %s", frame, message, dimStyle.Render(formatElapsed(time.Since(start))))
			frameIndex = (frameIndex + 1) % len(s.frames)
		}
	}
}
