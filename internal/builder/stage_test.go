package builder

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
)

// After a kill, the settle must not hang when the cancelled wait reports on
// the error channel and never delivers a response.
func TestAwaitStopErrorChannel(t *testing.T) {
	waitCh := make(chan container.WaitResponse) // never written
	errCh := make(chan error, 1)
	errCh <- context.Canceled

	done := make(chan struct{})
	go func() {
		awaitStop(waitCh, errCh)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("awaitStop blocked on a cancelled wait")
	}
}

func TestAwaitStopWaitChannel(t *testing.T) {
	waitCh := make(chan container.WaitResponse, 1)
	waitCh <- container.WaitResponse{StatusCode: 137}
	errCh := make(chan error)

	done := make(chan struct{})
	go func() {
		awaitStop(waitCh, errCh)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("awaitStop ignored the wait response")
	}
}

func TestTail(t *testing.T) {
	if got := tail("short output", 2048); got != "short output" {
		t.Errorf("tail = %q", got)
	}

	long := strings.Repeat("x", 5000) + "END"
	got := tail(long, 100)
	if !strings.HasPrefix(got, "...") {
		t.Errorf("truncated tail should be marked: %q", got[:10])
	}
	if !strings.HasSuffix(got, "END") {
		t.Error("tail should keep the end of the output")
	}

	if got := tail("  padded  \n", 2048); got != "padded" {
		t.Errorf("tail should trim whitespace, got %q", got)
	}
}
