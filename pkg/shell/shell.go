// Package shell is the entry point for the terminal interface of livedoc.
package shell

import (
	"fmt"
	"os"

	"src.livedoc.dev/pkg/config"
	"src.livedoc.dev/pkg/env"
	"src.livedoc.dev/pkg/eval"
	"src.livedoc.dev/pkg/logutil"
	"src.livedoc.dev/pkg/prog"
	"src.livedoc.dev/pkg/store"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the shell subprogram. It runs scripts and samples, or an
// interactive console when given neither.
type Program struct{}

// Run runs the subprogram.
func (Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	cfg := config.Default()
	if !f.NoRc {
		var err error
		cfg, err = config.Load(f.RC)
		if err != nil {
			return fmt.Errorf("cannot read configuration: %w", err)
		}
	}
	ev := eval.NewEvaler()
	ev.SetOutput(fds[1])
	globals := env.FromMap(cfg.Globals).Bindings()

	switch {
	case f.Samples != "":
		if len(args) > 0 {
			return prog.BadUsage("arguments are not allowed with -samples")
		}
		return prog.Exit(runSamples(fds, ev, globals, f.Samples))
	case len(args) > 0:
		return prog.Exit(script(fds, ev, globals, args, &scriptCfg{
			Cmd: f.CodeInArg, CompileOnly: f.CompileOnly, JSON: f.JSON}))
	case f.CodeInArg:
		return prog.BadUsage("-c requires an argument")
	case f.CompileOnly:
		return prog.BadUsage("-compileonly requires a script or -c")
	}

	icfg := &InteractConfig{Evaler: ev, Config: cfg, Globals: globals}
	if path, err := historyPath(f, cfg); err != nil {
		fmt.Fprintln(fds[2], "Warning: cannot determine history path:", err)
	} else if st, err := store.NewStore(path); err != nil {
		fmt.Fprintln(fds[2], "Warning: cannot open history:", err)
	} else {
		defer st.Close()
		icfg.Store = st
	}
	Interact(fds, icfg)
	return nil
}
