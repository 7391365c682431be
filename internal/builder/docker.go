package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/client"

	"bootstrap-engine/internal/bootstrap"
	"bootstrap-engine/internal/runtime"
)

type Options struct {
	// Repository prefixes the tags of committed stage images,
	// e.g. "bootstrap-engine" -> bootstrap-engine/python:deps-<digest>.
	Repository string

	// Resource limits for the entrypoint container. Zero means unlimited.
	RunMemoryBytes int64
	RunNanoCPUs    int64
}

// DockerBuilder implements the bootstrap sequence against a Docker daemon.
// Each build step runs its command in a container from the previous step's
// image and commits the result, so a failed step leaves nothing runnable.
type DockerBuilder struct {
	cli  *client.Client
	opts Options
}

func NewDockerBuilder(opts Options) (*DockerBuilder, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, err
	}
	if opts.Repository == "" {
		opts.Repository = "bootstrap-engine"
	}
	return &DockerBuilder{cli: cli, opts: opts}, nil
}

// Build walks steps 1-5 of the sequence and returns the final image ref.
// Stages are tagged by a digest of their inputs: an unchanged manifest and
// source tree re-uses the existing stages, so rebuilds are idempotent.
func (b *DockerBuilder) Build(
	ctx context.Context,
	spec runtime.Spec,
	req bootstrap.Request,
	progress func(bootstrap.Step),
) (string, error) {

	// ---------- 1. acquire base runtime ----------
	progress(bootstrap.StepAcquireBase)
	if err := b.ensureImage(ctx, spec.BaseImage); err != nil {
		return "", fmt.Errorf("%w: %s: %v", bootstrap.ErrBaseImageUnavailable, spec.BaseImage, err)
	}

	// ---------- 2. install system prerequisites ----------
	progress(bootstrap.StepSystemPackages)
	sysRef := spec.BaseImage
	if len(spec.SystemInstallCmd) > 0 {
		ref := b.stageRef(spec.Name, "sys", digestOf(spec.BaseImage, strings.Join(spec.SystemInstallCmd, " ")))
		if !b.imageExists(ctx, ref) {
			err := b.runStage(ctx, stage{
				from:      spec.BaseImage,
				cmd:       spec.SystemInstallCmd,
				commitRef: ref,
			})
			if err != nil {
				return "", fmt.Errorf("%w: %v", bootstrap.ErrSystemPackageInstall, err)
			}
		}
		sysRef = ref
	}

	// ---------- 3. install dependencies ----------
	progress(bootstrap.StepDependencies)
	manifest, err := os.ReadFile(filepath.Join(req.SourceDir, spec.ManifestFile))
	if err != nil {
		return "", fmt.Errorf("%w: read manifest %s: %v", bootstrap.ErrDependencyInstall, spec.ManifestFile, err)
	}
	depRef := b.stageRef(spec.Name, "deps",
		digestOf(sysRef, string(manifest), strings.Join(spec.DependencyInstallCmd, " ")))
	if !b.imageExists(ctx, depRef) {
		manifestTar, err := tarFile(spec.WorkDir, spec.ManifestFile, manifest)
		if err != nil {
			return "", fmt.Errorf("%w: %v", bootstrap.ErrDependencyInstall, err)
		}
		err = b.runStage(ctx, stage{
			from:      sysRef,
			workDir:   spec.WorkDir,
			cmd:       spec.DependencyInstallCmd,
			copies:    []copySpec{{dest: "/", content: manifestTar}},
			commitRef: depRef,
		})
		if err != nil {
			return "", fmt.Errorf("%w: %v", bootstrap.ErrDependencyInstall, err)
		}
	}

	// ---------- 4. materialize source ----------
	progress(bootstrap.StepSource)
	srcDigest, err := sourceDigest(req.SourceDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", bootstrap.ErrSourceCopy, err)
	}
	srcRef := b.stageRef(spec.Name, "src", digestOf(depRef, srcDigest))
	if !b.imageExists(ctx, srcRef) {
		srcTar, err := tarDir(spec.WorkDir, req.SourceDir)
		if err != nil {
			return "", fmt.Errorf("%w: %v", bootstrap.ErrSourceCopy, err)
		}
		err = b.runStage(ctx, stage{
			from:      depRef,
			copies:    []copySpec{{dest: "/", content: srcTar}},
			commitRef: srcRef,
			changes:   []string{"WORKDIR " + spec.WorkDir},
		})
		if err != nil {
			return "", fmt.Errorf("%w: %v", bootstrap.ErrSourceCopy, err)
		}
	}

	// ---------- 5. configure environment ----------
	progress(bootstrap.StepEnvironment)
	env := runtime.MergeEnv(spec.Env, req.Env)
	finalRef := b.stageRef(spec.Name, "app",
		digestOf(srcRef, strings.Join(env, "\x00"), strings.Join(spec.Entrypoint, " ")))
	if !b.imageExists(ctx, finalRef) {
		changes := make([]string, 0, len(env)+1)
		for _, kv := range env {
			changes = append(changes, envChange(kv))
		}
		cmd, err := json.Marshal(spec.Entrypoint)
		if err != nil {
			return "", fmt.Errorf("configure environment: %v", err)
		}
		changes = append(changes, "CMD "+string(cmd))

		err = b.runStage(ctx, stage{
			from:      srcRef,
			commitRef: finalRef,
			changes:   changes,
		})
		if err != nil {
			return "", fmt.Errorf("configure environment: %v", err)
		}
	}

	return finalRef, nil
}

func (b *DockerBuilder) stageRef(runtimeName, kind, digest string) string {
	return fmt.Sprintf("%s/%s:%s-%s", b.opts.Repository, runtimeName, kind, digest)
}

// envChange renders one KEY=VALUE pair as a Dockerfile ENV instruction for
// commit changes. Values are opaque strings: quotes, backslashes and dollar
// signs are escaped so the instruction parser never expands or mangles them.
func envChange(kv string) string {
	k, v, _ := strings.Cut(kv, "=")
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	v = strings.ReplaceAll(v, `$`, `\$`)
	return fmt.Sprintf(`ENV %s="%s"`, k, v)
}
