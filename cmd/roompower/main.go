package main

import (
	"github.com/tomokisaito/roompower/cmd/roompower/commands"
)

// Minimal entrypoint that delegates to the Cobra CLI defined in
// cmd/roompower/commands.
func main() {
	commands.Execute()
}
