package logscan

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// DockerSource reads container logs from the Docker Engine API.
type DockerSource struct {
	cli *client.Client
}

// NewDockerSource connects to the Docker daemon named by DOCKER_HOST (or the
// default socket). opts are applied after the environment, so WithHost can
// point at a specific daemon.
func NewDockerSource(opts ...client.Opt) (*DockerSource, error) {
	all := append([]client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}, opts...)

	cli, err := client.NewClientWithOpts(all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &DockerSource{cli: cli}, nil
}

// NewDockerSourceForHost is NewDockerSource with an optional daemon address
// such as unix:///var/run/docker.sock or tcp://10.0.0.4:2375.
func NewDockerSourceForHost(host string) (*DockerSource, error) {
	if host == "" {
		return NewDockerSource()
	}
	return NewDockerSource(client.WithHost(host))
}

// Tail returns the last lines of the container's combined stdout and
// stderr, oldest first. lines <= 0 returns the whole log.
func (d *DockerSource) Tail(ctx context.Context, containerName string, lines int) ([]string, error) {
	info, err := d.cli.ContainerInspect(ctx, containerName)
	if err != nil {
		if client.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoContainer, containerName)
		}
		return nil, fmt.Errorf("failed to inspect container %s: %w", containerName, err)
	}

	tail := "all"
	if lines > 0 {
		tail = strconv.Itoa(lines)
	}

	rc, err := d.cli.ContainerLogs(ctx, containerName, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       tail,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read logs of %s: %w", containerName, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if info.Config != nil && info.Config.Tty {
		// TTY containers have a single raw stream.
		_, err = io.Copy(&buf, rc)
	} else {
		// Both streams go to one buffer so their frames stay interleaved in
		// the order the daemon sent them.
		_, err = stdcopy.StdCopy(&buf, &buf, rc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read logs of %s: %w", containerName, err)
	}

	return SplitLines(buf.String()), nil
}

// Close releases the Docker client's connections.
func (d *DockerSource) Close() error {
	return d.cli.Close()
}
