package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/jsonrpc2"

	"src.livedoc.dev/pkg/atom"
	"src.livedoc.dev/pkg/env"
	"src.livedoc.dev/pkg/eval"
	"src.livedoc.dev/pkg/repl"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

// CodeNoSession is the error code for requests naming a session that is not
// open on the connection.
const CodeNoSession = -32001

// CodeNoStatement is the error code for requests naming a statement index
// that is out of range.
const CodeNoStatement = -32002

type session struct {
	*repl.Session
	unsubscribe func()
}

type server struct {
	globals []env.Binding

	mu       sync.Mutex
	sessions map[string]*session
}

func newServer(globals []env.Binding) *server {
	return &server{globals: globals, sessions: make(map[string]*session)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"session/open":       s.open,
		"session/close":      s.close,
		"session/statements": s.statements,
		"session/submit":     s.submit,
		"session/transfer":   s.transfer,
		"session/reference":  s.reference,
		"session/run":        s.run,
		"session/remove":     s.remove,
		"session/pin":        s.pin,
		"session/clear":      s.clear,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Parameter and result types.

type (
	// OpenParams are the parameters of session/open.
	OpenParams struct {
		// Bindings added to the base environment of the session, in addition
		// to the globals of the server.
		Globals map[string]any `json:"globals,omitempty"`
	}
	// OpenResult is the result of session/open.
	OpenResult struct {
		ID string `json:"id"`
	}
	// SessionParams identify a session.
	SessionParams struct {
		ID string `json:"id"`
	}
	// SubmitParams are the parameters of session/submit. Without an index,
	// the code goes into the trailing statement.
	SubmitParams struct {
		ID    string `json:"id"`
		Index *int   `json:"index,omitempty"`
		Code  string `json:"code"`
	}
	// TransferParams are the parameters of session/transfer.
	TransferParams struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	}
	// SubmitResult is the result of session/submit and session/transfer.
	SubmitResult struct {
		Committed bool `json:"committed"`
		// Parse error when the code was not committed.
		Error      string           `json:"error,omitempty"`
		Statements []*StatementView `json:"statements"`
	}
	// ReferenceParams are the parameters of session/reference.
	ReferenceParams struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Value any    `json:"value"`
	}
	// IndexParams identify a statement of a session.
	IndexParams struct {
		ID    string `json:"id"`
		Index int    `json:"index"`
	}
	// PinParams are the parameters of session/pin.
	PinParams struct {
		ID     string `json:"id"`
		Index  int    `json:"index"`
		Pinned bool   `json:"pinned"`
	}
	// ChangedParams are the parameters of the session/changed notification.
	ChangedParams struct {
		ID        string         `json:"id"`
		Type      string         `json:"type"`
		Statement *StatementView `json:"statement,omitempty"`
	}
	// OutputParams are the parameters of the session/output notification.
	OutputParams struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
)

func (s *server) open(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params OpenParams
	if len(rawParams) > 0 && json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	id := uuid.NewString()
	ev := eval.NewEvaler()
	ev.SetOutput(outputWriter{ctx, conn, id})
	inject := append(s.globals[:len(s.globals):len(s.globals)], env.FromMap(params.Globals).Bindings()...)
	rs := repl.NewSession(ev, inject...)
	unsubscribe := rs.Subscribe(func(e repl.Event) {
		conn.Notify(ctx, "session/changed",
			ChangedParams{ID: id, Type: e.Type.String(), Statement: viewOf(e.Statement)})
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &session{rs, unsubscribe}
	logger.Infof("opened session %s", id)
	return OpenResult{ID: id}, nil
}

func (s *server) close(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params SessionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[params.ID]
	if !ok {
		return nil, noSession(params.ID)
	}
	ss.unsubscribe()
	delete(s.sessions, params.ID)
	logger.Infof("closed session %s", params.ID)
	return nil, nil
}

func (s *server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ss := range s.sessions {
		ss.unsubscribe()
		delete(s.sessions, id)
	}
}

func (s *server) statements(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params SessionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	ss, err := s.session(params.ID)
	if err != nil {
		return nil, err
	}
	return viewsOf(ss.Statements()), nil
}

func (s *server) submit(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params SubmitParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	ss, err := s.session(params.ID)
	if err != nil {
		return nil, err
	}
	st := ss.Last()
	if params.Index != nil {
		if st, err = statementAt(ss, *params.Index); err != nil {
			return nil, err
		}
	}
	st.SetCode(params.Code)
	return submitResult(ss, params.Code, ss.Submit(st)), nil
}

func (s *server) transfer(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params TransferParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	ss, err := s.session(params.ID)
	if err != nil {
		return nil, err
	}
	_, ok := ss.Transfer(params.Code)
	return submitResult(ss, params.Code, ok), nil
}

func submitResult(ss *session, code string, committed bool) *SubmitResult {
	r := &SubmitResult{Committed: committed, Statements: viewsOf(ss.Statements())}
	if !committed {
		if _, err := atom.Parse(code); err != nil {
			r.Error = err.Error()
		}
	}
	return r
}

func (s *server) reference(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params ReferenceParams
	// The name is optional.
	if json.Unmarshal(rawParams, &params) != nil ||
		(params.Name != "" && !eval.IsIdentifier(params.Name)) {
		return nil, errInvalidParams
	}
	ss, err := s.session(params.ID)
	if err != nil {
		return nil, err
	}
	return viewOf(ss.Reference(params.Value, params.Name)), nil
}

func (s *server) run(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params IndexParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	_, st, err := s.statement(params.ID, params.Index)
	if err != nil {
		return nil, err
	}
	// Uncommitted code may not even parse.
	if st.Committed() {
		st.Run()
	}
	return viewOf(st), nil
}

func (s *server) remove(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params IndexParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	ss, st, err := s.statement(params.ID, params.Index)
	if err != nil {
		return nil, err
	}
	ss.Remove(st)
	return viewsOf(ss.Statements()), nil
}

func (s *server) pin(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params PinParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	ss, st, err := s.statement(params.ID, params.Index)
	if err != nil {
		return nil, err
	}
	if params.Pinned {
		ss.Pin(st)
	} else {
		ss.Unpin(st)
	}
	return viewsOf(ss.Pins()), nil
}

func (s *server) clear(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params SessionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	ss, err := s.session(params.ID)
	if err != nil {
		return nil, err
	}
	ss.Clear()
	return viewsOf(ss.Statements()), nil
}

func (s *server) session(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[id]
	if !ok {
		return nil, noSession(id)
	}
	return ss, nil
}

func (s *server) statement(id string, i int) (*session, *repl.Statement, error) {
	ss, err := s.session(id)
	if err != nil {
		return nil, nil, err
	}
	st, err := statementAt(ss, i)
	return ss, st, err
}

func statementAt(ss *session, i int) (*repl.Statement, error) {
	if i < 0 || i >= ss.Len() {
		return nil, &jsonrpc2.Error{
			Code: CodeNoStatement, Message: fmt.Sprintf("no statement %d", i)}
	}
	return ss.At(i), nil
}

func noSession(id string) error {
	return &jsonrpc2.Error{Code: CodeNoSession, Message: "no session " + id}
}

// Forwards output of a session as session/output notifications.
type outputWriter struct {
	ctx  context.Context
	conn jsonrpc2.JSONRPC2
	id   string
}

func (w outputWriter) Write(p []byte) (int, error) {
	if err := w.conn.Notify(w.ctx, "session/output", OutputParams{w.id, string(p)}); err != nil {
		return 0, err
	}
	return len(p), nil
}
