package server

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sourcegraph/jsonrpc2"

	"src.livedoc.dev/pkg/env"
	"src.livedoc.dev/pkg/prog"
)

type client struct {
	conn *jsonrpc2.Conn

	mu            sync.Mutex
	notifications []*jsonrpc2.Request
}

func setup(t *testing.T, globals ...env.Binding) *client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serverSide, clientSide := net.Pipe()
	serverConn := NewConn(ctx, serverSide, globals)
	c := &client{}
	c.conn = jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.notifications = append(c.notifications, req)
			return nil, nil
		}))
	t.Cleanup(func() {
		c.conn.Close()
		serverConn.Close()
		cancel()
	})
	return c
}

func (c *client) call(t *testing.T, method string, params, result any) {
	t.Helper()
	if err := c.conn.Call(context.Background(), method, params, result); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

func (c *client) open(t *testing.T) string {
	t.Helper()
	var r OpenResult
	c.call(t, "session/open", OpenParams{}, &r)
	if r.ID == "" {
		t.Fatal("session/open returned no id")
	}
	return r.ID
}

// Returns the notifications received so far with the given method. Since
// notifications are sent before the reply to the request that caused them,
// all notifications caused by a completed call have been received.
func (c *client) received(method string) []*jsonrpc2.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	var reqs []*jsonrpc2.Request
	for _, req := range c.notifications {
		if req.Method == method {
			reqs = append(reqs, req)
		}
	}
	return reqs
}

var ignoreRuns = cmpopts.IgnoreFields(StatementView{}, "Runs")

func TestSubmit(t *testing.T) {
	c := setup(t)
	id := c.open(t)

	var r SubmitResult
	c.call(t, "session/submit", SubmitParams{ID: id, Code: "x = 20; x + 22"}, &r)
	want := SubmitResult{
		Committed: true,
		Statements: []*StatementView{
			{Index: 0, Name: "x", Code: "20", Status: "success", Value: "20"},
			{Index: 1, Code: "x + 22", Status: "success", Value: "42"},
			{Index: 2, Code: ""},
		},
	}
	if diff := cmp.Diff(want, r, ignoreRuns); diff != "" {
		t.Errorf("submit (-want +got):\n%s", diff)
	}

	// Editing a statement in the middle.
	zero := 0
	c.call(t, "session/submit", SubmitParams{ID: id, Index: &zero, Code: "x = 1"}, &r)
	if got := r.Statements[1]; !got.Stale || got.Value != "42" {
		t.Errorf("got statement 1 %+v, want stale with old value", got)
	}
	var v StatementView
	c.call(t, "session/run", IndexParams{ID: id, Index: 1}, &v)
	if v.Value != "23" || v.Stale || v.Runs != 2 {
		t.Errorf("got rerun statement %+v", v)
	}
}

func TestSubmit_ParseError(t *testing.T) {
	c := setup(t)
	id := c.open(t)

	var r SubmitResult
	c.call(t, "session/submit", SubmitParams{ID: id, Code: "1 +"}, &r)
	if r.Committed || r.Error == "" {
		t.Errorf("got %+v, want uncommitted with error", r)
	}
	if len(r.Statements) != 1 || r.Statements[0].Code != "1 +" {
		t.Errorf("got statements %+v", r.Statements)
	}
}

func TestTransferAndOutput(t *testing.T) {
	c := setup(t)
	id := c.open(t)

	var r SubmitResult
	c.call(t, "session/transfer", TransferParams{ID: id, Code: "print('hi')\nreturn 3"}, &r)
	if !r.Committed || len(r.Statements) != 3 || r.Statements[1].Value != "3" {
		t.Errorf("got %+v", r)
	}
	outputs := c.received("session/output")
	if len(outputs) == 0 {
		t.Fatal("no output notification")
	}
	var out OutputParams
	json.Unmarshal(*outputs[0].Params, &out)
	if out.ID != id || out.Text != "hi\n" {
		t.Errorf("got output %+v", out)
	}
}

func TestReferenceAndPins(t *testing.T) {
	c := setup(t)
	id := c.open(t)

	var ref StatementView
	c.call(t, "session/reference",
		ReferenceParams{ID: id, Name: "data", Value: map[string]any{"n": 5}}, &ref)
	if !ref.Reference || ref.Name != "data" || ref.Index != 0 {
		t.Errorf("got reference %+v", ref)
	}
	var r SubmitResult
	c.call(t, "session/submit", SubmitParams{ID: id, Code: "data.n * 2"}, &r)
	if r.Statements[1].Value != "10" {
		t.Errorf("got statements %+v", r.Statements)
	}

	var pins []*StatementView
	c.call(t, "session/pin", PinParams{ID: id, Index: 1, Pinned: true}, &pins)
	if len(pins) != 1 || pins[0].Value != "10" || !pins[0].Pinned {
		t.Errorf("got pins %+v", pins)
	}
	c.call(t, "session/pin", PinParams{ID: id, Index: 1, Pinned: false}, &pins)
	if len(pins) != 0 {
		t.Errorf("got pins %+v, want none", pins)
	}

	var anon StatementView
	c.call(t, "session/reference", ReferenceParams{ID: id, Value: "x"}, &anon)
	if !anon.Reference || anon.Name != "" || anon.Value != `"x"` {
		t.Errorf("got unnamed reference %+v", anon)
	}

	err := c.conn.Call(context.Background(), "session/reference",
		ReferenceParams{ID: id, Name: "not a name", Value: 1}, nil)
	if rerr, ok := err.(*jsonrpc2.Error); !ok || rerr.Code != jsonrpc2.CodeInvalidParams {
		t.Errorf("got error %v, want invalid params", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	c := setup(t)
	id := c.open(t)

	var r SubmitResult
	c.call(t, "session/submit", SubmitParams{ID: id, Code: "a = 1; b = 2"}, &r)
	var views []*StatementView
	c.call(t, "session/remove", IndexParams{ID: id, Index: 0}, &views)
	if len(views) != 2 || views[0].Name != "b" || views[0].Index != 0 {
		t.Errorf("got statements %+v", views)
	}
	c.call(t, "session/clear", SessionParams{ID: id}, &views)
	if len(views) != 1 || views[0].Code != "" {
		t.Errorf("got statements %+v, want one blank", views)
	}
	if len(c.received("session/changed")) == 0 {
		t.Errorf("no session/changed notifications")
	}
}

func TestGlobals(t *testing.T) {
	c := setup(t, env.Binding{Name: "base", Value: 10})
	var o OpenResult
	c.call(t, "session/open", OpenParams{Globals: map[string]any{"extra": 5}}, &o)

	var r SubmitResult
	c.call(t, "session/submit", SubmitParams{ID: o.ID, Code: "base + extra"}, &r)
	if r.Statements[0].Value != "15" {
		t.Errorf("got statements %+v", r.Statements)
	}
}

func TestErrors(t *testing.T) {
	c := setup(t)
	id := c.open(t)

	codeOf := func(method string, params any) int64 {
		err := c.conn.Call(context.Background(), method, params, nil)
		rerr, ok := err.(*jsonrpc2.Error)
		if !ok {
			t.Errorf("%s: got error %v, want *jsonrpc2.Error", method, err)
			return 0
		}
		return rerr.Code
	}
	tests := []struct {
		method string
		params any
		want   int64
	}{
		{"session/bogus", SessionParams{ID: id}, jsonrpc2.CodeMethodNotFound},
		{"session/statements", SessionParams{ID: "nope"}, CodeNoSession},
		{"session/run", IndexParams{ID: id, Index: 5}, CodeNoStatement},
		{"session/remove", IndexParams{ID: id, Index: -1}, CodeNoStatement},
		{"session/statements", []int{1}, jsonrpc2.CodeInvalidParams},
	}
	for _, test := range tests {
		if got := codeOf(test.method, test.params); got != test.want {
			t.Errorf("%s: got code %d, want %d", test.method, got, test.want)
		}
	}

	c.call(t, "session/close", SessionParams{ID: id}, nil)
	if got := codeOf("session/close", SessionParams{ID: id}); got != CodeNoSession {
		t.Errorf("closing twice: got code %d", got)
	}
}

func TestServe(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	defer l.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Serve(ctx, l, nil)

	nc, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(nc, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) (any, error) {
			return nil, nil
		}))
	defer conn.Close()
	var o OpenResult
	if err := conn.Call(ctx, "session/open", OpenParams{}, &o); err != nil || o.ID == "" {
		t.Errorf("session/open: %v, %+v", err, o)
	}
}

func TestProgram(t *testing.T) {
	if err := (Program{}).Run([3]*os.File{}, &prog.Flags{}, nil); err != prog.ErrNotSuitable {
		t.Errorf("got %v, want ErrNotSuitable", err)
	}
	err := (Program{}).Run([3]*os.File{}, &prog.Flags{Serve: true, Listen: ":0"}, nil)
	if err == nil || err == prog.ErrNotSuitable {
		t.Errorf("got %v, want bad usage", err)
	}
}
