package lsp

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"src.livedoc.dev/pkg/prog"
	"src.livedoc.dev/pkg/tt"
)

const testURI lsp.DocumentURI = "file:///test.js"

type client struct {
	conn          *jsonrpc2.Conn
	notifications chan *jsonrpc2.Request
}

func setup(t *testing.T) *client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serverSide, clientSide := net.Pipe()
	codec := jsonrpc2.VSCodeObjectCodec{}
	serverConn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(serverSide, codec), handler(newServer()))
	c := &client{notifications: make(chan *jsonrpc2.Request, 10)}
	c.conn = jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(clientSide, codec),
		jsonrpc2.HandlerWithError(func(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
			c.notifications <- req
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

func (c *client) open(t *testing.T, content string) {
	t.Helper()
	c.call(t, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: testURI, Text: content}}, nil)
}

func (c *client) diagnostics(t *testing.T) []lsp.Diagnostic {
	t.Helper()
	select {
	case req := <-c.notifications:
		if req.Method != "textDocument/publishDiagnostics" {
			t.Fatalf("got notification %s", req.Method)
		}
		var params lsp.PublishDiagnosticsParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			t.Fatal(err)
		}
		return params.Diagnostics
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for diagnostics")
	}
	return nil
}

func position(line, char int) lsp.TextDocumentPositionParams {
	return lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: testURI},
		Position:     lsp.Position{Line: line, Character: char},
	}
}

func TestInitialize(t *testing.T) {
	c := setup(t)
	var result lsp.InitializeResult
	c.call(t, "initialize", lsp.InitializeParams{}, &result)
	if !result.Capabilities.HoverProvider || result.Capabilities.CompletionProvider == nil {
		t.Errorf("got capabilities %+v", result.Capabilities)
	}
	c.call(t, "initialized", struct{}{}, nil)
}

func TestUnknownMethod(t *testing.T) {
	c := setup(t)
	err := c.conn.Call(context.Background(), "foo/bar", struct{}{}, nil)
	if rerr, ok := err.(*jsonrpc2.Error); !ok || rerr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("got error %v, want method not found", err)
	}
}

func TestDiagnostics(t *testing.T) {
	c := setup(t)
	c.open(t, "x = 1")
	if diags := c.diagnostics(t); len(diags) != 0 {
		t.Errorf("got diagnostics %v, want none", diags)
	}

	c.call(t, "textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument: lsp.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: testURI}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "x = 1\ny = ("}},
	}, nil)
	diags := c.diagnostics(t)
	if len(diags) != 1 {
		t.Fatalf("got diagnostics %v, want one", diags)
	}
	if diags[0].Source != "parse" || diags[0].Severity != lsp.Error || diags[0].Range.Start.Line != 1 {
		t.Errorf("got diagnostic %+v", diags[0])
	}
}

func TestHover(t *testing.T) {
	c := setup(t)
	c.open(t, "x = 1 + 2\nf()\n")
	c.diagnostics(t)

	var hover lsp.Hover
	c.call(t, "textDocument/hover", position(0, 1), &hover)
	want := []lsp.MarkedString{{Language: "javascript", Value: "x = 1 + 2"}}
	if diff := cmp.Diff(want, hover.Contents, cmp.AllowUnexported(lsp.MarkedString{})); diff != "" {
		t.Errorf("hover (-want +got):\n%s", diff)
	}
	if hover.Range == nil || *hover.Range != (lsp.Range{End: lsp.Position{Character: 9}}) {
		t.Errorf("got range %v", hover.Range)
	}
}

func TestCompletion(t *testing.T) {
	c := setup(t)
	c.open(t, "pi = 3\nprefix = 'a'\np")
	c.diagnostics(t)

	var items []lsp.CompletionItem
	c.call(t, "textDocument/completion",
		lsp.CompletionParams{TextDocumentPositionParams: position(2, 1)}, &items)
	var labels []string
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	if diff := cmp.Diff([]string{"pi", "prefix", "print"}, labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	if items[0].TextEdit == nil || items[0].TextEdit.Range.Start != (lsp.Position{Line: 2}) {
		t.Errorf("got text edit %+v", items[0].TextEdit)
	}
}

func TestCompletion_IncompleteCode(t *testing.T) {
	c := setup(t)
	c.open(t, "answer = 42\nf(an")
	c.diagnostics(t)

	var items []lsp.CompletionItem
	c.call(t, "textDocument/completion",
		lsp.CompletionParams{TextDocumentPositionParams: position(1, 4)}, &items)
	if len(items) != 1 || items[0].Label != "answer" {
		t.Errorf("got items %+v", items)
	}
}

func TestIdentifierStart(t *testing.T) {
	tt.Test(t, tt.Fn("identifierStart", identifierStart), tt.Table{
		tt.Args("foo", 3).Rets(0),
		tt.Args("a + foo", 7).Rets(4),
		tt.Args("a.b", 3).Rets(2),
		tt.Args("$x_1", 4).Rets(0),
		tt.Args("", 0).Rets(0),
	})
}

func TestProgram_NotSuitable(t *testing.T) {
	if err := (Program{}).Run([3]*os.File{}, &prog.Flags{}, nil); err != prog.ErrNotSuitable {
		t.Errorf("got %v, want ErrNotSuitable", err)
	}
}
