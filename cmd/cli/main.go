// Command hashlife is the command-line front end of the hashlife engine:
// it runs patterns, inspects macrocell files and manages the pattern
// archive.
package main

import "github.com/hashlife/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
