package builder

import (
	"context"

	"github.com/charmbracelet/log"

	"bootstrap-engine/internal/runtime"
)

// PreloadBaseImages pulls every registered runtime's base image before the
// server starts accepting jobs.
func (b *DockerBuilder) PreloadBaseImages(ctx context.Context) error {
	for _, spec := range runtime.AllSpecs() {
		log.Info("checking base image", "runtime", spec.Name, "image", spec.BaseImage)

		if err := b.ensureImage(ctx, spec.BaseImage); err != nil {
			return err
		}

		log.Info("base image ready", "image", spec.BaseImage)
	}
	return nil
}
