package main

import "github.com/MAVRICK-1/kubestellar-mcp/cmd"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
