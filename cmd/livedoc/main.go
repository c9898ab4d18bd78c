// Livedoc is an interactive console for JavaScript, built around
// documentation pages with runnable code samples. Code is split into
// independent statements that can be edited and rerun one at a time.
package main

import (
	"os"

	"src.livedoc.dev/pkg/buildinfo"
	"src.livedoc.dev/pkg/lsp"
	"src.livedoc.dev/pkg/prog"
	"src.livedoc.dev/pkg/server"
	"src.livedoc.dev/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(
			buildinfo.Program{}, lsp.Program{}, server.Program{},
			shell.Program{})))
}
