// Command campus is the Campus Coders command-line client.
package main

import "github.com/campuscoders/campus-cli/internal/cmd"

func main() {
	cmd.Execute()
}
