// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// PhyCon is a tool to build and process
// consensus trees from Bayesian phylogenetic analyses.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/phycon/cmd/phycon/build"
	"github.com/js-arias/phycon/cmd/phycon/info"
	"github.com/js-arias/phycon/cmd/phycon/tree"
)

var app = &command.Command{
	Usage: "phycon <command> [<argument>...]",
	Short: "a tool for Bayesian consensus trees",
}

func init() {
	app.Add(build.Command)
	app.Add(info.Command)
	app.Add(tree.Command)
}

func main() {
	app.Main()
}
