package main

import (
	"github.com/wkalt/lod/cli/cmd"
)

func main() {
	cmd.Execute()
}
