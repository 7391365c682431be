package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"bootstrap-engine/internal/job"
)

func dialJobWS(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/jobs/" + id
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// An abruptly dropped client must detach like one that sent a close frame,
// so the idle reaper can terminate the abandoned job.
func TestJobWSAbruptDisconnectDetaches(t *testing.T) {
	eng, r := setup(t)
	j := job.New(job.NewID(), "python", 20*time.Millisecond)
	eng.jobs[j.ID] = j

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialJobWS(t, srv, j.ID)
	waitFor(t, "attach", func() bool { return j.ActiveWSCount() == 1 })

	conn.Close() // no close frame

	waitFor(t, "detach", func() bool { return j.ActiveWSCount() == 0 })

	select {
	case <-j.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("abandoned job was never idle-reaped")
	}
	if got := j.State(); got != job.StateTerminated {
		t.Errorf("state = %s, want TERMINATED", got)
	}
}

func TestJobWSStreamsOutputAndFinalState(t *testing.T) {
	eng, r := setup(t)
	j := job.New(job.NewID(), "python", 0)
	eng.jobs[j.ID] = j

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialJobWS(t, srv, j.ID)
	defer conn.Close()
	waitFor(t, "attach", func() bool { return j.ActiveWSCount() == 1 })

	j.Stdout.Write([]byte("ok\n"))
	j.MarkFinished(0)

	var stdout strings.Builder
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg struct {
			Type string       `json:"type"`
			Data string       `json:"data"`
			Job  job.Snapshot `json:"job"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}

		switch msg.Type {
		case "stdout":
			stdout.WriteString(msg.Data)
		case "state":
			if msg.Job.State != job.StateFinished {
				// intermediate state change, keep reading
				continue
			}
			if stdout.String() != "ok\n" {
				t.Errorf("stdout = %q, want ok", stdout.String())
			}
			if msg.Job.ExitCode == nil || *msg.Job.ExitCode != 0 {
				t.Errorf("exit code = %v, want 0", msg.Job.ExitCode)
			}
			return
		}
	}
}

func TestJobWSUnknownJob(t *testing.T) {
	_, r := setup(t)

	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/jobs/missing"
	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Fatal("expected dial to fail for an unknown job")
	}
}
