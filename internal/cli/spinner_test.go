package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	var buf syncBuffer
	s := startSpinner(&buf, "Generating entries report...", true)
	time.Sleep(3 * spinnerInterval)
	s.stop()

	out := buf.String()
	if !strings.Contains(out, "Generating entries report...") {
		t.Errorf("output = %q, want message", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("output = %q, want line cleared on stop", out)
	}

	// Nothing is drawn after stop.
	n := len(buf.String())
	time.Sleep(2 * spinnerInterval)
	if len(buf.String()) != n {
		t.Error("spinner kept drawing after stop")
	}
}

func TestSpinnerWithoutAnimation(t *testing.T) {
	var buf syncBuffer
	s := startSpinner(&buf, "quiet", false)
	time.Sleep(2 * spinnerInterval)
	s.stop()
	if out := buf.String(); out != "" {
		t.Errorf("non-terminal spinner wrote %q", out)
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := startSpinner(&syncBuffer{}, "twice", true)
	done := make(chan struct{})
	go func() {
		s.stop()
		s.stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second stop() blocked")
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("isTerminal(buffer) = true")
	}
}

func TestSpin(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	boom := errors.New("list entries failed")

	newCmd := func(ctx context.Context) *cobra.Command {
		cmd := &cobra.Command{}
		cmd.SetContext(ctx)
		cmd.SetErr(&syncBuffer{})
		return cmd
	}

	t.Run("passes result through", func(t *testing.T) {
		ran := false
		err := c.spin(newCmd(context.Background()), "working", func() error { ran = true; return nil })
		if err != nil || !ran {
			t.Errorf("spin() = %v, ran = %v", err, ran)
		}
		if err := c.spin(newCmd(context.Background()), "working", func() error { return boom }); !errors.Is(err, boom) {
			t.Errorf("spin() = %v, want %v", err, boom)
		}
	})

	t.Run("interrupt wins over call error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := c.spin(newCmd(ctx), "working", func() error { return boom })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("spin() = %v, want context.Canceled", err)
		}
	})
}
