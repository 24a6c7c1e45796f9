package eval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstSplicesValueInline(t *testing.T) {
	src := `
const FOO 42
pset x FOO
`
	root, _ := run(t, src)
	v, ok := root.Vars[root.varKey(ident("x"))]
	require.True(t, ok)
	require.Equal(t, 42.0, v.Num)
}

func TestEnumAssignsSequentialIndices(t *testing.T) {
	src := `
enum Color
RED
GREEN
BLUE
endenum
pset c GREEN
`
	root, _ := run(t, src)
	v, ok := root.Vars[root.varKey(ident("c"))]
	require.True(t, ok)
	require.Equal(t, 1.0, v.Num)
}
