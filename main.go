// Package main is the entry point for the pcmark CLI.
package main

import "pcmark.dev/pkg/pcmark/cmd"

func main() {
	cmd.Execute()
}
