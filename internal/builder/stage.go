package builder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
)

// stage is one committed step of the build: create a container from the
// previous image, copy files in, optionally run a command, commit.
type stage struct {
	from      string
	workDir   string
	cmd       []string // nil: nothing runs, the container is only committed
	copies    []copySpec
	commitRef string
	changes   []string
}

type copySpec struct {
	dest    string
	content io.Reader
}

func (b *DockerBuilder) runStage(ctx context.Context, st stage) error {
	cmd := st.cmd
	if cmd == nil {
		// a valid command is still required to create the container
		cmd = []string{"true"}
	}

	createResp, err := b.cli.ContainerCreate(
		ctx,
		&container.Config{
			Image:        st.from,
			Cmd:          cmd,
			WorkingDir:   st.workDir,
			Tty:          false,
			AttachStdout: true,
			AttachStderr: true,
		},
		nil, nil, nil, "",
	)
	if err != nil {
		return fmt.Errorf("container create: %w", err)
	}

	containerID := createResp.ID

	defer func() {
		_ = b.cli.ContainerRemove(
			context.Background(),
			containerID,
			container.RemoveOptions{Force: true},
		)
	}()

	for _, c := range st.copies {
		err := b.cli.CopyToContainer(ctx, containerID, c.dest, c.content,
			container.CopyToContainerOptions{})
		if err != nil {
			return fmt.Errorf("copy to container: %w", err)
		}
	}

	if st.cmd != nil {
		if err := b.execStage(ctx, containerID, st); err != nil {
			return err
		}
	}

	_, err = b.cli.ContainerCommit(ctx, containerID, container.CommitOptions{
		Reference: st.commitRef,
		Changes:   st.changes,
		Pause:     true,
	})
	if err != nil {
		return fmt.Errorf("commit %s: %w", st.commitRef, err)
	}

	return nil
}

// execStage runs the stage command to completion and fails on a non-zero
// exit, surfacing the tail of the command's output.
func (b *DockerBuilder) execStage(ctx context.Context, containerID string, st stage) error {
	attachResp, err := b.cli.ContainerAttach(
		ctx,
		containerID,
		container.AttachOptions{
			Stream: true,
			Stdout: true,
			Stderr: true,
		},
	)
	if err != nil {
		return fmt.Errorf("container attach: %w", err)
	}
	defer attachResp.Close()

	var output strings.Builder

	outputDone := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&output, &output, attachResp.Reader)
		outputDone <- err
	}()

	if err := b.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return fmt.Errorf("container start: %w", err)
	}

	waitCh, errCh := b.cli.ContainerWait(
		ctx,
		containerID,
		container.WaitConditionNotRunning,
	)

	var exitCode int

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("container wait: %w", err)
		}

	case status := <-waitCh:
		exitCode = int(status.StatusCode)

	case <-ctx.Done():
		_ = b.cli.ContainerKill(context.Background(), containerID, "KILL")
		awaitStop(waitCh, errCh)
		return ctx.Err()
	}

	<-outputDone

	if exitCode != 0 {
		return fmt.Errorf("command %q exited with status %d: %s",
			strings.Join(st.cmd, " "), exitCode, tail(output.String(), 2048))
	}
	return nil
}

// awaitStop settles a killed container's wait. The wait was issued on the
// now-cancelled ctx, so the client may deliver the cancellation on the error
// channel and never write the response channel; a bare receive on the
// response channel would block forever.
func awaitStop(waitCh <-chan container.WaitResponse, errCh <-chan error) {
	select {
	case <-waitCh:
	case <-errCh:
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
