package builder

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"

	"bootstrap-engine/internal/runtime"
)

// Run invokes the entrypoint as the image's foreground process, exactly
// once. The container's exit code is returned verbatim, success or not; an
// error means the invocation itself could not happen. Cancelling ctx kills
// the container and returns ctx's error.
func (b *DockerBuilder) Run(
	ctx context.Context,
	spec runtime.Spec,
	imageRef string,
	stdout, stderr io.Writer,
) (int, error) {

	createResp, err := b.cli.ContainerCreate(
		ctx,
		&container.Config{
			Image:        imageRef,
			Cmd:          spec.Entrypoint,
			WorkingDir:   spec.WorkDir,
			Tty:          false,
			AttachStdout: true,
			AttachStderr: true,
		},
		&container.HostConfig{
			AutoRemove: false,
			Resources: container.Resources{
				Memory:   b.opts.RunMemoryBytes,
				NanoCPUs: b.opts.RunNanoCPUs,
			},
		},
		nil, nil, "",
	)
	if err != nil {
		return 0, fmt.Errorf("container create: %w", err)
	}

	containerID := createResp.ID

	defer func() {
		_ = b.cli.ContainerRemove(
			context.Background(),
			containerID,
			container.RemoveOptions{Force: true},
		)
	}()

	// attach before start so no output is lost
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
		return 0, fmt.Errorf("container attach: %w", err)
	}
	defer attachResp.Close()

	outputDone := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(stdout, stderr, attachResp.Reader)
		outputDone <- err
	}()

	if err := b.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return 0, fmt.Errorf("container start: %w", err)
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
			return 0, fmt.Errorf("container wait: %w", err)
		}

	case status := <-waitCh:
		exitCode = int(status.StatusCode)

	case <-ctx.Done():
		_ = b.cli.ContainerKill(context.Background(), containerID, "KILL")
		awaitStop(waitCh, errCh)
		<-outputDone
		return 0, ctx.Err()
	}

	// drain remaining output
	<-outputDone

	return exitCode, nil
}
