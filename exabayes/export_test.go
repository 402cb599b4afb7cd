// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package exabayes

// SetTool replaces the program invoked by Launch
// and returns a function that restores it.
func SetTool(name string) func() {
	old := tool
	tool = name
	return func() { tool = old }
}
