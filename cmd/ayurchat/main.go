// Command ayurchat is a terminal client for the AyurVeda Assistant.
package main

import "github.com/diogo/ayurchat/internal/commands"

func main() {
	commands.Execute()
}
