// Package main is the entry point for the surveillance-core CLI.
package main

import "github.com/sentinel-surveillance/core/cmd/surveillance-core/commands"

func main() {
	commands.Execute()
}
