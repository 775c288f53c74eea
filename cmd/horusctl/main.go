package main

import (
	"github.com/robotalks/horus.go/pkg/cli/sh"
	"github.com/robotalks/horus.go/pkg/env"

	_ "github.com/robotalks/horus.go/pkg/cli/cmds/scanner"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
