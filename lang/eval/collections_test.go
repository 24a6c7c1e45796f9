package eval

import (
	"testing"

	"github.com/skyethefoxyfox/sfmlog/lang/lexer"
	"github.com/stretchr/testify/require"
)

func TestListFromGetSetAppendDelLen(t *testing.T) {
	src := `
list from l 10 20 30
list get a l 1
list set l 1 99
list get b l 1
list append l 40
list len n l
list del l 0
list len m l
`
	root, _ := run(t, src)

	a, ok := root.Vars[root.varKey(ident("a"))]
	require.True(t, ok)
	require.Equal(t, 20.0, a.Num)

	b, ok := root.Vars[root.varKey(ident("b"))]
	require.True(t, ok)
	require.Equal(t, 99.0, b.Num)

	n, ok := root.Vars[root.varKey(ident("n"))]
	require.True(t, ok)
	require.Equal(t, 4.0, n.Num)

	m, ok := root.Vars[root.varKey(ident("m"))]
	require.True(t, ok)
	require.Equal(t, 3.0, m.Num)
}

func TestListInsertShiftsElements(t *testing.T) {
	src := `
list from l 1 2 4
list insert l 2 3
list get a l 2
list get b l 3
`
	root, _ := run(t, src)

	a, ok := root.Vars[root.varKey(ident("a"))]
	require.True(t, ok)
	require.Equal(t, 3.0, a.Num)

	b, ok := root.Vars[root.varKey(ident("b"))]
	require.True(t, ok)
	require.Equal(t, 4.0, b.Num)
}

func TestListIndexAndIn(t *testing.T) {
	src := `
list from l "a" "b" "c"
list index i l "b"
list in found l "c"
list in missing l "z"
`
	root, _ := run(t, src)

	i, ok := root.Vars[root.varKey(ident("i"))]
	require.True(t, ok)
	require.Equal(t, 1.0, i.Num)

	found, ok := root.Vars[root.varKey(ident("found"))]
	require.True(t, ok)
	require.Equal(t, 1.0, found.Num)

	missing, ok := root.Vars[root.varKey(ident("missing"))]
	require.True(t, ok)
	require.Equal(t, 0.0, missing.Num)
}

func TestListCopyIsIndependent(t *testing.T) {
	src := `
list from l 1 2 3
list copy c l
list set c 0 99
list get orig l 0
list get copied c 0
`
	root, _ := run(t, src)

	orig, ok := root.Vars[root.varKey(ident("orig"))]
	require.True(t, ok)
	require.Equal(t, 1.0, orig.Num)

	copied, ok := root.Vars[root.varKey(ident("copied"))]
	require.True(t, ok)
	require.Equal(t, 99.0, copied.Num)
}

func TestTableFromSetGetDelIn(t *testing.T) {
	src := `
table from t "x" 1 "y" 2
table get a t "x"
table set t "x" 42
table get b t "x"
table in before t "y"
table del t "y"
table in after t "y"
`
	root, _ := run(t, src)

	a, ok := root.Vars[root.varKey(ident("a"))]
	require.True(t, ok)
	require.Equal(t, 1.0, a.Num)

	b, ok := root.Vars[root.varKey(ident("b"))]
	require.True(t, ok)
	require.Equal(t, 42.0, b.Num)

	before, ok := root.Vars[root.varKey(ident("before"))]
	require.True(t, ok)
	require.Equal(t, 1.0, before.Num)

	after, ok := root.Vars[root.varKey(ident("after"))]
	require.True(t, ok)
	require.Equal(t, 0.0, after.Num)
}

func TestTableGetMissingKeyErrors(t *testing.T) {
	src := `
table from t "x" 1
table get a t "z"
`
	tokens, err := lexer.Tokenize(src, "test.sfm")
	require.NoError(t, err)
	root := NewRoot(tokens, ".", nil, nil, &recordingDiagnostics{})
	err = root.Execute()
	require.Error(t, err)
}
