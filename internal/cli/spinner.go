package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates one status line while a report or deletion runs. It
// draws only on terminals, so piped or captured stderr stays clean.
type spinner struct {
	w   io.Writer
	msg string

	mu    sync.Mutex
	width int // widest line drawn, for clearing

	quit chan struct{}
	done chan struct{}
	once sync.Once
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(f.Fd())
}

// startSpinner starts drawing msg on w.
func startSpinner(w io.Writer, msg string, animate bool) *spinner {
	s := &spinner{
		w:    w,
		msg:  msg,
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	if !animate {
		close(s.done)
		return s
	}
	go s.loop()
	return s
}

func (s *spinner) loop() {
	defer close(s.done)
	t := time.NewTicker(spinnerInterval)
	defer t.Stop()
	for i := 0; ; i++ {
		s.draw(spinnerFrames[i%len(spinnerFrames)])
		select {
		case <-s.quit:
			return
		case <-t.C:
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.msg))
	s.width = max(s.width, len([]rune(s.msg))+2)
}

// stop ends the animation and clears the line. Calling it again is a no-op.
func (s *spinner) stop() {
	s.once.Do(func() {
		close(s.quit)
		<-s.done
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
			s.width = 0
		}
	})
}

// spin runs fn while a spinner shows msg on the command's stderr. If the
// command's context ends while fn runs, the context error is returned so
// main can report an interrupt rather than the failed call.
func (c *CLI) spin(cmd *cobra.Command, msg string, fn func() error) error {
	w := cmd.ErrOrStderr()
	s := startSpinner(w, msg, isTerminal(w))
	err := fn()
	s.stop()
	if err != nil {
		if ctxErr := cmd.Context().Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
