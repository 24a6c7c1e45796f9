package value

import (
	"testing"

	"github.com/skyethefoxyfox/sfmlog/lang/token"
	"github.com/stretchr/testify/require"
)

func TestKeyOfDistinguishesKindsWithSameText(t *testing.T) {
	var pos token.Position
	numKey, err := KeyOf(NewNumber(1, pos))
	require.NoError(t, err)
	strKey, err := KeyOf(NewString("1", pos))
	require.NoError(t, err)
	require.NotEqual(t, numKey, strKey, "a number 1 and the string \"1\" must be distinct keys")
}

func TestKeyOfRejectsCompositeTypes(t *testing.T) {
	var pos token.Position
	_, err := KeyOf(NewList(nil, pos))
	require.Error(t, err)

	_, err = KeyOf(NewTable(NewTbl(), pos))
	require.Error(t, err)
}

func TestKeyAsValueRoundTrip(t *testing.T) {
	var pos token.Position

	cases := []*Value{
		NewNumber(42, pos),
		NewString("hello", pos),
		NewNull(pos),
	}
	for _, v := range cases {
		k, err := KeyOf(v)
		require.NoError(t, err)
		back := k.AsValue(pos)
		require.Equal(t, v.Kind, back.Kind)
		k2, err := KeyOf(back)
		require.NoError(t, err)
		require.Equal(t, k, k2)
	}
}

func TestTblPreservesInsertionOrder(t *testing.T) {
	var pos token.Position
	tbl := NewTbl()

	a, _ := KeyOf(NewString("a", pos))
	b, _ := KeyOf(NewString("b", pos))
	c, _ := KeyOf(NewString("c", pos))

	tbl.Set(b, NewNumber(2, pos))
	tbl.Set(a, NewNumber(1, pos))
	tbl.Set(c, NewNumber(3, pos))
	// overwrite shouldn't move it in insertion order
	tbl.Set(a, NewNumber(100, pos))

	require.Equal(t, []Key{b, a, c}, tbl.Keys())
	require.Equal(t, 3, tbl.Len())

	v, ok := tbl.Get(a)
	require.True(t, ok)
	require.Equal(t, 100.0, v.Num)
}

func TestTblDelete(t *testing.T) {
	var pos token.Position
	tbl := NewTbl()
	a, _ := KeyOf(NewString("a", pos))
	b, _ := KeyOf(NewString("b", pos))
	tbl.Set(a, NewNumber(1, pos))
	tbl.Set(b, NewNumber(2, pos))

	require.True(t, tbl.Delete(a))
	require.False(t, tbl.Delete(a))
	require.Equal(t, []Key{b}, tbl.Keys())
}

func TestTblCopyIsDeep(t *testing.T) {
	var pos token.Position
	tbl := NewTbl()
	k, _ := KeyOf(NewString("x", pos))
	inner := NewList([]*Value{NewNumber(1, pos)}, pos)
	tbl.Set(k, inner)

	cp := tbl.Copy()
	cpVal, _ := cp.Get(k)
	cpVal.Items[0] = NewNumber(99, pos)

	orig, _ := tbl.Get(k)
	require.Equal(t, 1.0, orig.Items[0].Num, "copy must not alias the original's list backing array")
}
