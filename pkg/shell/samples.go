package shell

import (
	"fmt"
	"os"

	"src.livedoc.dev/pkg/env"
	"src.livedoc.dev/pkg/eval"
	"src.livedoc.dev/pkg/inspect"
	"src.livedoc.dev/pkg/result"
	"src.livedoc.dev/pkg/sample"
)

// Evaluates every sample in a YAML file and reports the outcome of each.
func runSamples(fds [3]*os.File, ev *eval.Evaler, globals []env.Binding, path string) int {
	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(fds[2], "cannot open samples:", err)
		return 2
	}
	defer file.Close()
	samples, err := sample.Load(file)
	if err != nil {
		fmt.Fprintf(fds[2], "cannot load samples from %s: %v\n", path, err)
		return 2
	}

	base := ev.Builtins().Layer(globals...)
	exit := 0
	for _, s := range samples {
		switch r := s.Eval(ev, base).(type) {
		case result.Success:
			fmt.Fprintf(fds[1], "%s: success %s\n", s.Name, inspect.Repr(r.Value, inspect.NoPretty))
		case result.Failure:
			fmt.Fprintf(fds[1], "%s: failure %v\n", s.Name, r.Err)
			exit = 2
		case result.Inert:
			fmt.Fprintf(fds[1], "%s: inert\n", s.Name)
		}
	}
	return exit
}
