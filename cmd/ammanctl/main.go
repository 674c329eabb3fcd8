package main

import (
	"github.com/ammankit/amman-go/internal/cli"
	"github.com/ammankit/amman-go/internal/metrics"
)

func main() {
	metrics.EmitBuildInfo()
	cli.Execute()
}
