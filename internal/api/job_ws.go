package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bootstrap-engine/internal/bootstrap"
)

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterJobWS streams a job's stdout/stderr and state over a WebSocket:
// diff messages every tick, a final state message when the job ends.
func RegisterJobWS(r *gin.Engine, eng bootstrap.Engine) {
	r.GET("/ws/jobs/:id", func(c *gin.Context) {
		id := c.Param("id")

		j, ok := eng.GetJob(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}

		conn, err := Upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		j.AttachWS()
		defer func() {
			j.DetachWS()
			log.Debug("websocket detached", "job", j.ID, "active", j.ActiveWSCount())
		}()
		log.Debug("websocket attached", "job", j.ID, "active", j.ActiveWSCount())

		// The read pump drains client messages and signals when the peer is
		// gone, close frame or not: a dropped connection must detach too.
		clientGone := make(chan struct{})
		go func() {
			defer close(clientGone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		lastStdout, lastStderr := 0, 0
		lastState := ""
		ticker := time.NewTicker(40 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-clientGone:
				return

			case <-j.Done():
				sendDiff(conn, "stdout", j.Stdout.String(), &lastStdout)
				sendDiff(conn, "stderr", j.Stderr.String(), &lastStderr)

				conn.WriteJSON(gin.H{
					"type": "state",
					"job":  j.Snapshot(),
				})
				return

			case <-ticker.C:
				if err := sendDiff(conn, "stdout", j.Stdout.String(), &lastStdout); err != nil {
					return
				}
				if err := sendDiff(conn, "stderr", j.Stderr.String(), &lastStderr); err != nil {
					return
				}

				snap := j.Snapshot()
				state := string(snap.State) + "/" + snap.Step
				if state != lastState {
					lastState = state
					if err := conn.WriteJSON(gin.H{"type": "state", "job": snap}); err != nil {
						return
					}
				}
			}
		}
	})
}

func sendDiff(conn *websocket.Conn, t string, data string, last *int) error {
	if len(data) > *last {
		chunk := data[*last:]
		*last = len(data)
		return conn.WriteJSON(gin.H{"type": t, "data": chunk})
	}
	return nil
}
