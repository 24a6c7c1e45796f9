package eval

import (
	"testing"

	"github.com/skyethefoxyfox/sfmlog/lang/lexer"
	"github.com/skyethefoxyfox/sfmlog/lang/value"
	"github.com/stretchr/testify/require"
)

// newProcessorEvaluator builds a standalone evaluator configured the way
// instProc configures its child: IsProcessor true, so Execute appends the
// function trampoline bodies after the main line stream (spec.md §4.3).
func newProcessorEvaluator(t *testing.T, src string) *Evaluator {
	t.Helper()
	tokens, err := lexer.Tokenize(src, "test.sfm")
	require.NoError(t, err)

	ev := &Evaluator{
		Lines:           groupLines(tokens),
		ScopeStr:        "_",
		Vars:            map[string]*value.Value{},
		GlobalVars:      map[string]*value.Value{},
		Macros:          map[string]*value.Macro{},
		Functions:       map[string]*value.Function{},
		Consts:          map[string][]*value.Value{},
		MacroRunCounts:  map[string]int{},
		CalledFunctions: new([]string),
		AllowMlog:       true,
		IsProcessor:     true,
	}
	ev.registerBuiltins()
	require.NoError(t, ev.Execute())
	return ev
}

func TestFunctionCallEmitsCounterTrampoline(t *testing.T) {
	src := `
deffun addOne >a <result
set result a
op add result result 1
end
fun addOne 5 out
`
	ev := newProcessorEvaluator(t, src)

	var sawOpAdd, sawJump, sawReturnSet bool
	for i, tok := range ev.Output {
		switch tok.Kind {
		case value.Instruction:
			switch tok.Str {
			case "op":
				if i+1 < len(ev.Output) && ev.Output[i+1].Str == "add" {
					sawOpAdd = true
				}
			case "jump":
				sawJump = true
			case "set":
				if i+1 < len(ev.Output) && ev.Output[i+1].Str == "@counter" {
					sawReturnSet = true
				}
			}
		}
	}
	require.True(t, sawOpAdd, "call site must bump the return slot via op add ... @counter 1")
	require.True(t, sawJump, "call site must jump to the function label")
	require.True(t, sawReturnSet, "function body must close by restoring @counter from the return slot")
}

func TestFunctionBodyAppendedOncePerCalledFunction(t *testing.T) {
	src := `
deffun addOne >a <result
set result a
op add result result 1
end
fun addOne 5 out1
fun addOne 6 out2
`
	ev := newProcessorEvaluator(t, src)

	labelCount := 0
	for _, tok := range ev.Output {
		if tok.Kind == value.Label {
			labelCount++
		}
	}
	require.Equal(t, 1, labelCount, "a function body is appended once regardless of call count")
}

func TestDeffunRedefinitionErrors(t *testing.T) {
	src := `
deffun addOne >a <result
set result a
end
deffun addOne >a <result
set result a
end
`
	tokens, err := lexer.Tokenize(src, "test.sfm")
	require.NoError(t, err)
	ev := &Evaluator{
		Lines:           groupLines(tokens),
		ScopeStr:        "_",
		Vars:            map[string]*value.Value{},
		GlobalVars:      map[string]*value.Value{},
		Macros:          map[string]*value.Macro{},
		Functions:       map[string]*value.Function{},
		Consts:          map[string][]*value.Value{},
		MacroRunCounts:  map[string]int{},
		CalledFunctions: new([]string),
		AllowMlog:       true,
		IsProcessor:     true,
	}
	ev.registerBuiltins()
	require.Error(t, ev.Execute())
}
