package eval

import (
	"testing"

	"github.com/skyethefoxyfox/sfmlog/lang/diag"
	"github.com/skyethefoxyfox/sfmlog/lang/lexer"
	"github.com/skyethefoxyfox/sfmlog/lang/token"
	"github.com/skyethefoxyfox/sfmlog/lang/value"
	"github.com/stretchr/testify/require"
)

// recordingDiagnostics captures "log"/"warn" output for assertions instead
// of writing to real stdio, the way the compile pipeline's
// stdioDiagnostics does for a live process.
type recordingDiagnostics struct {
	logs     []string
	warnings []string
}

func (d *recordingDiagnostics) Log(line string) { d.logs = append(d.logs, line) }
func (d *recordingDiagnostics) Warning(w *diag.Warning) {
	d.warnings = append(d.warnings, w.Message)
}

func run(t *testing.T, src string) (*Evaluator, *recordingDiagnostics) {
	t.Helper()
	tokens, err := lexer.Tokenize(src, "test.sfm")
	require.NoError(t, err)
	diags := &recordingDiagnostics{}
	root := NewRoot(tokens, ".", nil, nil, diags)
	err = root.Execute()
	require.NoError(t, err)
	return root, diags
}

func TestWhileLoopAccumulates(t *testing.T) {
	src := `
pset x 0
while lessThan x 5
pop add x x 1
end
`
	root, _ := run(t, src)
	v, ok := root.Vars[root.varKey(ident("x"))]
	require.True(t, ok)
	require.Equal(t, 5.0, v.Num)
}

func TestIfElifElse(t *testing.T) {
	src := `
pset x 2
if equal x 1
pset result "one"
elif equal x 2
pset result "two"
else
pset result "other"
end
`
	root, _ := run(t, src)
	v, ok := root.Vars[root.varKey(ident("result"))]
	require.True(t, ok)
	require.Equal(t, "two", v.Unquote())
}

func TestForRangeBindsLoopVar(t *testing.T) {
	src := `
pset total 0
for range i 3
pop add total total i
end
`
	root, _ := run(t, src)
	v, ok := root.Vars[root.varKey(ident("total"))]
	require.True(t, ok)
	require.Equal(t, 3.0, v.Num) // 0 + 1 + 2
}

func TestDiscardHidesBodyVarsExceptExports(t *testing.T) {
	src := `
pset keep 0
discard keep
pset keep 42
pset hidden 99
end
`
	root, _ := run(t, src)
	keep, ok := root.Vars[root.varKey(ident("keep"))]
	require.True(t, ok)
	require.Equal(t, 42.0, keep.Num)

	_, ok = root.Vars[root.varKey(ident("hidden"))]
	require.False(t, ok, "discard must not leak un-exported vars to the parent")
}

func TestLogInstructionRecordsMessage(t *testing.T) {
	_, diags := run(t, `log "hello"`)
	require.Equal(t, []string{"hello"}, diags.logs)
}

func TestWarnInstructionRecordsWarning(t *testing.T) {
	_, diags := run(t, `warn "careful"`)
	require.Len(t, diags.warnings, 1)
	require.Equal(t, "careful", diags.warnings[0])
}

func TestErrorInstructionFails(t *testing.T) {
	tokens, err := lexer.Tokenize(`error "boom"`, "test.sfm")
	require.NoError(t, err)
	root := NewRoot(tokens, ".", nil, nil, &recordingDiagnostics{})
	err = root.Execute()
	require.Error(t, err)
}

func ident(name string) *value.Value {
	return value.NewIdentifier(name, token.Position{})
}
