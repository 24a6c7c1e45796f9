package value

import (
	"fmt"

	"github.com/skyethefoxyfox/sfmlog/lang/token"
)

// Key is the canonical, comparable form of a primitive Value used as a
// Tbl key. Two values produce equal keys iff they have the same Kind and
// the same underlying payload, matching convert_var_to_py's behavior of
// keying by the converted Go/Python primitive (so a number 1 and the
// string "1" are distinct keys, exactly as in two different Python dict
// keys of different types).
type Key struct {
	kind Kind
	num  float64
	str  string
}

// KeyOf converts v to a table key, erroring if v is not a primitive type
// (spec.md §4.3: "Keys in tables must be primitive (not list/table)").
func KeyOf(v *Value) (Key, error) {
	switch v.Kind {
	case Number:
		return Key{kind: Number, num: v.Num}, nil
	case String:
		return Key{kind: String, str: v.Unquote()}, nil
	case Null:
		return Key{kind: Null}, nil
	case Content, Identifier, GlobalIdentifier, UnscopedIdentifier, Block, Label, GlobalLabel:
		return Key{kind: v.Kind, str: v.Str}, nil
	case ColorKind:
		return Key{kind: ColorKind, str: v.Clr.String()}, nil
	default:
		return Key{}, fmt.Errorf("unable to use type %q as a table key", v.Kind)
	}
}

// AsValue reconstructs a Value from a table key, for `for table k v t` and
// similar places that need to hand a stored key back as a real value.
func (k Key) AsValue(pos token.Position) *Value {
	switch k.kind {
	case Number:
		return NewNumber(k.num, pos)
	case String:
		return NewString(k.str, pos)
	case Null:
		return NewNull(pos)
	case ColorKind:
		c, _ := ParseColor(k.str)
		return NewColor(c, pos)
	default:
		v := newTok(k.kind, pos)
		v.Str = k.str
		return v
	}
}

// Tbl is an insertion-order-preserving mapping from Key to *Value, per
// spec.md §3's "insertion-order preserved for iteration" invariant. Go's
// builtin map has no iteration order, so this keeps an explicit key slice
// alongside the lookup map; grounded on the teacher's lang/machine/map.go
// Map type, generalized to preserve order since swiss.Map cannot.
type Tbl struct {
	order []Key
	vals  map[Key]*Value
}

// NewTbl returns an empty ordered table.
func NewTbl() *Tbl {
	return &Tbl{vals: make(map[Key]*Value)}
}

// Set inserts or overwrites the value at key, appending to the insertion
// order only the first time the key is seen.
func (t *Tbl) Set(k Key, v *Value) {
	if _, ok := t.vals[k]; !ok {
		t.order = append(t.order, k)
	}
	t.vals[k] = v
}

// Get returns the value at key, or (nil, false) if absent.
func (t *Tbl) Get(k Key) (*Value, bool) {
	v, ok := t.vals[k]
	return v, ok
}

// Delete removes key, reporting whether it was present.
func (t *Tbl) Delete(k Key) bool {
	if _, ok := t.vals[k]; !ok {
		return false
	}
	delete(t.vals, k)
	for i, ok := range t.order {
		if ok == k {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of entries.
func (t *Tbl) Len() int { return len(t.order) }

// Keys returns the keys in insertion order. The caller must not modify it.
func (t *Tbl) Keys() []Key { return t.order }

// Copy performs the deep clone that the `table copy` instruction requires:
// a new Tbl with the same keys in the same order, each value itself
// deep-copied via CopyValue.
func (t *Tbl) Copy() *Tbl {
	cp := NewTbl()
	for _, k := range t.order {
		cp.Set(k, CopyValue(t.vals[k]))
	}
	return cp
}

// CopyValue performs a deep copy of v for the `list copy` / `table copy`
// instructions. Per spec.md §9, values never form cycles, so a
// straightforward recursive copy terminates.
func CopyValue(v *Value) *Value {
	switch v.Kind {
	case List:
		items := make([]*Value, len(v.Items))
		for i, it := range v.Items {
			items[i] = CopyValue(it)
		}
		cp := *v
		cp.Items = items
		return &cp
	case Table:
		cp := *v
		cp.Tbl = v.Tbl.Copy()
		return &cp
	default:
		cp := *v
		return &cp
	}
}
