// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(runFilesGuide)
	app.Add(treeFilesGuide)
}

var runFilesGuide = &command.Command{
	Usage: "run-files",
	Short: "about run files",
	Long: `
A Bayesian phylogenetic analysis samples trees with several independent runs,
and each run writes its samples to its own file. PhyCon expects the run files
of an analysis to be siblings in the same directory, with names that differ
only in the run number, written as "run-" and a number; for example:

	primates.run-0.trees
	primates.run-1.trees
	primates.run-2.trees

A run file contains a NEXUS trees block, with one tree per sampled
generation:

	#NEXUS
	begin trees;
		translate
			1 Loris_tardigradus,
			2 Galago_senegalensis,
			3 Homo_sapiens;
		tree gen.0.{0} = [&U] ((1:0.1,2:0.2):0.05,3:0.3);
		tree gen.500 = [&U] ((1:0.11,3:0.29):0.04,2:0.21);
	end;

The generation number grows within the file, and the first generation carries
a multiplicity mark ("{0}") that is removed before the consensus build, as
the consense program does not accept it.
	`,
}

var treeFilesGuide = &command.Command{
	Usage: "tree-files",
	Short: "about consensus tree files",
	Long: `
The consensus tree built from a posterior sample is stored in a NEXUS or
newick file. Internal nodes are annotated with their support: the fraction of
the sampled trees that contain the node. The support can be stored as a plain
node label:

	((Loris_tardigradus:0.3,Galago_senegalensis:0.2)98:0.1,Homo_sapiens:0.4);

or as a bracketed node comment, as written by the consense program:

	((1:0.3,2:0.2)[&prob=0.98,prob(percent)="98"]:0.1,3:0.4);

The command "phycon tree collapse" uses these values to remove nodes with a
weak support. Nodes without a support value, the terminals, and the root are
always kept.
	`,
}
