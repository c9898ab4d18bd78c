// Package server serves console sessions over JSON-RPC, for documentation
// pages and editors that drive the console remotely.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/sourcegraph/jsonrpc2"

	"src.livedoc.dev/pkg/config"
	"src.livedoc.dev/pkg/env"
	"src.livedoc.dev/pkg/logutil"
	"src.livedoc.dev/pkg/prog"
)

var logger = logutil.GetLogger("[server] ")

// Program is the server subprogram.
type Program struct{}

func (Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if !f.Serve && f.Listen == "" {
		return prog.ErrNotSuitable
	}
	if f.Serve && f.Listen != "" {
		return prog.BadUsage("-serve and -listen are mutually exclusive")
	}
	if len(args) > 0 {
		return prog.BadUsage("arguments are not allowed with -serve or -listen")
	}
	cfg := config.Default()
	if !f.NoRc {
		var err error
		cfg, err = config.Load(f.RC)
		if err != nil {
			return fmt.Errorf("cannot read configuration: %w", err)
		}
	}
	globals := env.FromMap(cfg.Globals).Bindings()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if f.Serve {
		conn := NewConn(ctx, transport{fds[0], fds[1]}, globals)
		<-conn.DisconnectNotify()
		return nil
	}

	l, err := net.Listen("tcp", f.Listen)
	if err != nil {
		return err
	}
	defer l.Close()
	fmt.Fprintln(fds[2], "listening on", l.Addr())
	return Serve(ctx, l, globals)
}

// NewConn serves the JSON-RPC protocol on rwc. Sessions opened on the
// connection are closed when it disconnects.
func NewConn(ctx context.Context, rwc io.ReadWriteCloser, globals []env.Binding) *jsonrpc2.Conn {
	s := newServer(globals)
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}), handler(s))
	go func() {
		<-conn.DisconnectNotify()
		s.closeAll()
	}()
	return conn
}

// Serve accepts connections from l and serves each of them, until accepting
// fails.
func Serve(ctx context.Context, l net.Listener, globals []env.Binding) error {
	for {
		c, err := l.Accept()
		if err != nil {
			return err
		}
		logger.Infof("accepted connection from %v", c.RemoteAddr())
		NewConn(ctx, c, globals)
	}
}

type transport struct{ in, out *os.File }

func (c transport) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c transport) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c transport) Close() error {
	if err := c.in.Close(); err != nil {
		c.out.Close()
		return err
	}
	return c.out.Close()
}
