package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/strslice"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

const (
	containerName     = "amman-validator"
	containerFixtures = "/amman/fixtures"
	containerConfig   = "/amman/config.yaml"
)

type dockerLauncher struct {
	image      string
	client     *client.Client
	clientOnce sync.Once
	clientErr  error
}

// NewDocker constructs a launcher that runs the validator inside a container.
// The image must carry the validator executable as its entrypoint.
func NewDocker(image string) Launcher {
	return &dockerLauncher{image: image}
}

func (l *dockerLauncher) getClient() (*client.Client, error) {
	l.clientOnce.Do(func() {
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			l.clientErr = err
			return
		}
		l.client = cli
	})
	return l.client, l.clientErr
}

func (l *dockerLauncher) Start(ctx context.Context, spec StartSpec) (Handle, error) {
	if l.image == "" {
		return nil, errors.New("docker launcher requires an image")
	}

	cli, err := l.getClient()
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	if err := ensureImage(ctx, cli, l.image); err != nil {
		return nil, err
	}

	containerCfg, hostCfg, err := buildConfigs(l.image, spec)
	if err != nil {
		return nil, err
	}

	createResp, err := cli.ContainerCreate(ctx, containerCfg, hostCfg, &network.NetworkingConfig{}, nil, containerName)
	if err != nil {
		return nil, fmt.Errorf("container create: %w", err)
	}
	containerID := createResp.ID

	if err := cli.ContainerStart(ctx, containerID, types.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("container start: %w", err)
	}

	inspect, err := cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("container inspect: %w", err)
	}
	pid := 0
	if inspect.State != nil {
		pid = inspect.State.Pid
	}

	return &dockerHandle{cli: cli, containerID: containerID, pid: pid}, nil
}

func (l *dockerLauncher) StopExternal(ctx context.Context) error {
	cli, err := l.getClient()
	if err != nil {
		return fmt.Errorf("create docker client: %w", err)
	}
	if err := stopContainer(ctx, cli, containerName); err != nil {
		return fmt.Errorf("stop container %s: %w", containerName, err)
	}
	return nil
}

type dockerHandle struct {
	cli         *client.Client
	containerID string
	pid         int

	stopOnce sync.Once
	stopErr  error
}

func (h *dockerHandle) Pid() int {
	return h.pid
}

func (h *dockerHandle) Kill(ctx context.Context) error {
	h.stopOnce.Do(func() {
		h.stopErr = stopContainer(ctx, h.cli, h.containerID)
	})
	return h.stopErr
}

func stopContainer(ctx context.Context, cli *client.Client, id string) error {
	sec := int((10 * time.Second).Seconds())
	opts := container.StopOptions{Timeout: &sec}
	if err := cli.ContainerStop(ctx, id, opts); err != nil {
		if client.IsErrNotFound(err) {
			return nil
		}
		killErr := cli.ContainerKill(ctx, id, "SIGKILL")
		if killErr != nil && !client.IsErrNotFound(killErr) {
			return fmt.Errorf("container stop: %v; kill: %w", err, killErr)
		}
	}
	return nil
}

func ensureImage(ctx context.Context, cli *client.Client, imageName string) error {
	_, _, err := cli.ImageInspectWithRaw(ctx, imageName)
	if err == nil {
		return nil
	}
	if !client.IsErrNotFound(err) {
		return fmt.Errorf("inspect image: %w", err)
	}
	reader, err := cli.ImagePull(ctx, imageName, types.ImagePullOptions{})
	if err != nil {
		return fmt.Errorf("pull image: %w", err)
	}
	defer reader.Close()
	_, _ = io.Copy(io.Discard, reader)
	return nil
}

func buildConfigs(image string, spec StartSpec) (*container.Config, *container.HostConfig, error) {
	cmd := []string{"start"}
	var binds []string
	if spec.Dir != "" {
		binds = append(binds, fmt.Sprintf("%s:%s", spec.Dir, containerFixtures))
	}
	if spec.ConfigPath != "" {
		binds = append(binds, fmt.Sprintf("%s:%s:ro", spec.ConfigPath, containerConfig))
		cmd = append(cmd, containerConfig)
	}

	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for _, port := range spec.Ports {
		mappings, err := nat.ParsePortSpec(fmt.Sprintf("%d:%d", port, port))
		if err != nil {
			return nil, nil, fmt.Errorf("parse port %d: %w", port, err)
		}
		for _, mapping := range mappings {
			exposed[mapping.Port] = struct{}{}
			bindings[mapping.Port] = append(bindings[mapping.Port], mapping.Binding)
		}
	}

	config := &container.Config{
		Image:        image,
		Cmd:          strslice.StrSlice(cmd),
		WorkingDir:   containerFixtures,
		ExposedPorts: exposed,
	}
	host := &container.HostConfig{
		Binds:        binds,
		PortBindings: bindings,
	}
	return config, host, nil
}
