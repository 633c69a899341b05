package main

import (
	"github.com/klartext/klartext/internal/adapters/driving/cli"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
