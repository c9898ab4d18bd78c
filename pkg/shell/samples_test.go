package shell

import (
	"path/filepath"
	"testing"

	"src.livedoc.dev/pkg/must"
	. "src.livedoc.dev/pkg/prog/progtest"
	"src.livedoc.dev/pkg/testutil"
)

const samplesYAML = `
- name: add
  main: return 1 + 2
- name: post
  main: return [1, 2, 3]
  postprocess: arg.length
- main: return x * 2
  globals:
    x: 21
- name: skipped
  main: throw new Error('never')
  noexec: true
`

func TestSamples(t *testing.T) {
	home := testutil.TempHome(t)
	good := filepath.Join(home, "good.yaml")
	must.WriteFile(good, samplesYAML)
	bad := filepath.Join(home, "bad.yaml")
	must.WriteFile(bad, "- name: boom\n  main: throw new Error('boom')\n")
	unknown := filepath.Join(home, "unknown.yaml")
	must.WriteFile(unknown, "- nmae: typo\n")

	Test(t, &Program{},
		ThatLivedoc("-samples", good).WritesStdout(
			"add: success 3\n"+
				"post: success 3\n"+
				"sample-3: success 42\n"+
				"skipped: inert\n"),
		ThatLivedoc("-samples", bad).
			ExitsWith(2).
			WritesStdoutContaining("boom: failure"),
		ThatLivedoc("-samples", unknown).
			ExitsWith(2).
			WritesStderrContaining("cannot load samples"),
		ThatLivedoc("-samples", filepath.Join(home, "missing.yaml")).
			ExitsWith(2).
			WritesStderrContaining("cannot open samples"),
		ThatLivedoc("-samples", good, "extra").
			ExitsWith(2).
			WritesStderrContaining("arguments are not allowed with -samples"),
	)
}
