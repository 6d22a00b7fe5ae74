// Command stax drives the commit-stack editing engine from the command
// line.
package main

import "github.com/gitstax/stax/commands"

func main() {
	commands.Execute()
}
