package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/image"
)

// ensureImage makes the image available locally, pulling it if needed.
func (b *DockerBuilder) ensureImage(ctx context.Context, imageName string) error {
	if b.imageExists(ctx, imageName) {
		return nil
	}

	reader, err := b.cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageName, err)
	}
	defer reader.Close()

	// drain pull progress (required for the pull to complete)
	dec := json.NewDecoder(reader)
	for {
		var msg map[string]interface{}
		if err := dec.Decode(&msg); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("image pull decode error: %w", err)
		}
	}

	return nil
}

func (b *DockerBuilder) imageExists(ctx context.Context, imageName string) bool {
	_, _, err := b.cli.ImageInspectWithRaw(ctx, imageName)
	return err == nil
}
