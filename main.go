// main package for overdub command-line tool
// Package main is the entry point for the Overdub CLI.
package main

import "overdub.dev/pkg/overdub/cmd"

func main() {
	cmd.Execute()
}
