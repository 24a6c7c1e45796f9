package eval

import (
	"testing"

	"github.com/skyethefoxyfox/sfmlog/lang/lexer"
	"github.com/stretchr/testify/require"
)

func TestMacroWritesBackNonVariadicParams(t *testing.T) {
	src := `
defmac double x
pop mul x x 2
end
pset y 5
mac double y
`
	root, _ := run(t, src)
	v, ok := root.Vars[root.varKey(ident("y"))]
	require.True(t, ok)
	require.Equal(t, 10.0, v.Num)
}

func TestMacroVariadicCollectsRemainingArgsIntoList(t *testing.T) {
	src := `
defmac sumAll total vals...
pset total 0
for list v vals
pop add total total v
end
end
pset result 0
mac sumAll result 1 2 3
`
	root, _ := run(t, src)
	v, ok := root.Vars[root.varKey(ident("result"))]
	require.True(t, ok)
	require.Equal(t, 6.0, v.Num)
}

func TestMacroSelfRecursionGuard(t *testing.T) {
	src := `
defmac loopy
mac loopy
end
mac loopy
`
	tokens, err := lexer.Tokenize(src, "test.sfm")
	require.NoError(t, err)
	root := NewRoot(tokens, ".", nil, nil, &recordingDiagnostics{})
	err = root.Execute()
	require.Error(t, err, "a macro calling itself must be rejected, not infinitely expand")
}
