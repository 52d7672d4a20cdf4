// Command moby9098 runs a command under a uniquely identifiable process.
//
//	moby9098 <unique> <command> [args...]
//
// See "moby9098 --help" for details.
package main

import (
	"os"

	"github.com/loykin/moby9098/internal/cli"
	"github.com/loykin/moby9098/internal/launcher"
)

func main() {
	os.Exit(cli.Main(os.Args, launcher.StdStreams()))
}
