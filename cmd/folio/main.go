// Package main is the entry point for the folio blog server and its
// companion commands.
package main

import "folio/cmd/folio/commands"

func main() {
	commands.Execute()
}
