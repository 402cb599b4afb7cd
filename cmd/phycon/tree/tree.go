// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree is a metapackage for commands
// that dealt with consensus trees.
package tree

import (
	"github.com/js-arias/command"
	"github.com/js-arias/phycon/cmd/phycon/tree/collapse"
	"github.com/js-arias/phycon/cmd/phycon/tree/export"
)

var Command = &command.Command{
	Usage: "tree <command> [<argument>...]",
	Short: "commands for consensus trees",
}

func init() {
	Command.Add(collapse.Command)
	Command.Add(export.Command)
}
