package launcher

import (
	"reflect"
	"strings"
	"testing"

	"github.com/docker/go-connections/nat"
)

func TestBuildConfigsCommand(t *testing.T) {
	spec := StartSpec{
		Dir:        "/work/fixtures",
		ConfigPath: "/tmp/amman-config-1.yaml",
	}

	cfg, hostCfg, err := buildConfigs("ammankit/amman:latest", spec)
	if err != nil {
		t.Fatalf("buildConfigs returned error: %v", err)
	}

	wantCmd := []string{"start", containerConfig}
	if got := []string(cfg.Cmd); !reflect.DeepEqual(got, wantCmd) {
		t.Fatalf("unexpected cmd: got %v want %v", got, wantCmd)
	}
	if cfg.WorkingDir != containerFixtures {
		t.Fatalf("unexpected workdir %q", cfg.WorkingDir)
	}

	wantBinds := []string{
		"/work/fixtures:" + containerFixtures,
		"/tmp/amman-config-1.yaml:" + containerConfig + ":ro",
	}
	if !reflect.DeepEqual(hostCfg.Binds, wantBinds) {
		t.Fatalf("unexpected binds: got %v want %v", hostCfg.Binds, wantBinds)
	}
}

func TestBuildConfigsWithoutConfigPath(t *testing.T) {
	cfg, _, err := buildConfigs("ammankit/amman:latest", StartSpec{})
	if err != nil {
		t.Fatalf("buildConfigs returned error: %v", err)
	}
	if got := []string(cfg.Cmd); !reflect.DeepEqual(got, []string{"start"}) {
		t.Fatalf("unexpected cmd: %v", got)
	}
}

func TestBuildConfigsPorts(t *testing.T) {
	spec := StartSpec{Ports: []int{8899, 8900}}

	cfg, hostCfg, err := buildConfigs("ammankit/amman:latest", spec)
	if err != nil {
		t.Fatalf("buildConfigs returned error: %v", err)
	}

	for _, port := range []string{"8899/tcp", "8900/tcp"} {
		if _, ok := cfg.ExposedPorts[nat.Port(port)]; !ok {
			t.Fatalf("port %s not exposed: %v", port, cfg.ExposedPorts)
		}
		bindings, ok := hostCfg.PortBindings[nat.Port(port)]
		if !ok || len(bindings) != 1 {
			t.Fatalf("port %s not bound: %v", port, hostCfg.PortBindings)
		}
		if got := bindings[0].HostPort; !strings.HasPrefix(port, got) {
			t.Fatalf("expected identical host port for %s, got %q", port, got)
		}
	}
}
