// Package sample evaluates the runnable code samples of documentation pages.
package sample

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"src.livedoc.dev/pkg/env"
	"src.livedoc.dev/pkg/eval"
	"src.livedoc.dev/pkg/result"
)

// Sample is a code sample.
type Sample struct {
	Name string `yaml:"name"`
	// Code of the sample, compiled as a function body.
	Main string `yaml:"main"`
	// Optional code applied to the value of Main, available to it as arg.
	Postprocess string `yaml:"postprocess,omitempty"`
	// Samples marked noexec are shown, but never run.
	NoExec bool `yaml:"noexec,omitempty"`
	// Values available to Main and Postprocess in addition to the base
	// environment.
	Globals map[string]any `yaml:"globals,omitempty"`
}

// Eval runs the sample against base layered with the sample's globals.
//
// The result is Inert for noexec samples. Otherwise it is the result of Main,
// passed through Postprocess if there is one. A Postprocess that does not
// compile is ignored.
func (s *Sample) Eval(ev *eval.Evaler, base env.Env) result.Result {
	if s.NoExec {
		return result.Inert{}
	}
	e := base.Merge(env.FromMap(s.Globals))

	post := func(v any) result.Result { return result.Success{Value: v} }
	if s.Postprocess != "" {
		if c, ok := result.Value(ev.Compile(e, s.Postprocess)); ok {
			post = func(v any) result.Result { return eval.Call(c.(eval.Callable), v) }
		}
	}

	return ev.Compile(e, s.Main).
		FlatMap(func(c any) result.Result { return eval.Run(c.(eval.Callable)) }).
		FlatMap(post)
}

// Load reads a YAML list of samples.
func Load(r io.Reader) ([]*Sample, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var samples []*Sample
	if err := dec.Decode(&samples); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read samples: %w", err)
	}
	for i, s := range samples {
		if s == nil {
			return nil, fmt.Errorf("sample %d is empty", i+1)
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("sample-%d", i+1)
		}
	}
	return samples, nil
}
