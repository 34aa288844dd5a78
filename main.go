// Package main is the entry point for the adapter executable. Everything
// else, argument parsing included, lives in the cmd package so that importing
// it never dispatches a command.
package main

import "github.com/testing-tools/adapter/cmd"

func main() {
	cmd.Execute()
}
