package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsLabel(t *testing.T) {
	out := &lockedBuffer{}
	s := newSpinnerWithContext(context.Background(), "Rendering mind map...")
	s.out = out
	s.Start()
	time.Sleep(4 * spinnerInterval)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Rendering mind map...") {
		t.Errorf("output %q does not contain the label", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Error("line not erased on stop")
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "Laying out...")
	s.out = &lockedBuffer{}
	s.Start()
	cancel()

	select {
	case <-s.exited:
	case <-time.After(time.Second):
		t.Fatal("spinner still running after cancel")
	}
	s.Stop()
}

func TestSpinnerStopTwice(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Rendering...")
	s.out = &lockedBuffer{}
	s.Start()
	s.Stop()
	s.Stop()

	unstarted := newSpinnerWithContext(context.Background(), "Rendering...")
	unstarted.out = &lockedBuffer{}
	unstarted.StopWithError("Render failed")
}
