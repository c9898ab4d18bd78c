package server

import (
	"src.livedoc.dev/pkg/inspect"
	"src.livedoc.dev/pkg/repl"
	"src.livedoc.dev/pkg/result"
)

// StatementView is the JSON form of a statement.
type StatementView struct {
	Index     int    `json:"index"`
	Name      string `json:"name,omitempty"`
	Code      string `json:"code"`
	Status    string `json:"status,omitempty"`
	Value     string `json:"value,omitempty"`
	Error     string `json:"error,omitempty"`
	Stale     bool   `json:"stale,omitempty"`
	Runs      int    `json:"runs"`
	Pinned    bool   `json:"pinned,omitempty"`
	Reference bool   `json:"reference,omitempty"`
}

func viewOf(st *repl.Statement) *StatementView {
	if st == nil {
		return nil
	}
	v := &StatementView{
		Index:     st.Position(),
		Name:      st.Name(),
		Code:      st.Code(),
		Status:    result.KindOf(st.Result()).String(),
		Stale:     st.Stale(),
		Runs:      st.RunCount(),
		Pinned:    st.Pinned(),
		Reference: st.IsReference(),
	}
	switch r := st.Result().(type) {
	case result.Success:
		v.Value = inspect.Repr(r.Value, inspect.NoPretty)
	case result.Failure:
		v.Error = r.Err.Error()
	}
	return v
}

func viewsOf(sts []*repl.Statement) []*StatementView {
	views := make([]*StatementView, len(sts))
	for i, st := range sts {
		views[i] = viewOf(st)
	}
	return views
}
