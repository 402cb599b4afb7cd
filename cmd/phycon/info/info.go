// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package info is a metapackage for commands
// that dealt with the information files
// of the sampler.
package info

import (
	"github.com/js-arias/command"
	"github.com/js-arias/phycon/cmd/phycon/info/plotcmd"
	"github.com/js-arias/phycon/cmd/phycon/info/summary"
)

var Command = &command.Command{
	Usage: "info <command> [<argument>...]",
	Short: "commands for sampler information files",
}

func init() {
	Command.Add(plotcmd.Command)
	Command.Add(summary.Command)
}
