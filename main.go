package main

import (
	"github.com/giantswarm/mcp-monitoring/cmd"
)

var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
