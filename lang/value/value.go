// Package value implements the transpiler's single tagged value
// representation. Every token produced by the lexer is also a Value; the
// distinction between "a lexical token" and "a runtime value" is purely by
// Kind, matching spec.md §3's data model.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/skyethefoxyfox/sfmlog/lang/token"
)

// Kind tags the payload carried by a Value.
type Kind uint8

const (
	Number Kind = iota
	String
	Content
	ColorKind
	Identifier
	GlobalIdentifier
	UnscopedIdentifier
	Label
	GlobalLabel
	Instruction
	SubInstruction
	LinkLiteral
	Block
	Null
	LineBreak
	List
	Table
	MacroKind
	TextFile
	BinFile
)

var kindNames = [...]string{
	Number:             "number",
	String:             "string",
	Content:            "content",
	ColorKind:          "color",
	Identifier:         "identifier",
	GlobalIdentifier:   "global_identifier",
	UnscopedIdentifier: "unscoped_identifier",
	Label:              "label",
	GlobalLabel:        "global_label",
	Instruction:        "instruction",
	SubInstruction:     "sub_instruction",
	LinkLiteral:        "link_literal",
	Block:              "block",
	Null:               "null",
	LineBreak:          "line_break",
	List:               "list",
	Table:              "table",
	MacroKind:          "macro",
	TextFile:           "text_file",
	BinFile:            "bin_file",
}

func (k Kind) String() string { return kindNames[k] }

// Macro is a captured macro definition: a name, its raw parameter names
// (the last may be variadic, see spec.md §3 and SPEC_FULL.md §4), its body
// token run, and the cwd it was defined in (imports resolve relative to
// this, not the call site's cwd).
type Macro struct {
	Name         string
	Params       []string
	VariadicTail bool // true if the last Params entry collects trailing args
	Body         []*Value
	Cwd          string
}

func (m *Macro) String() string { return fmt.Sprintf("macro(%s)", m.Name) }

// Direction is the passing mode of a function parameter.
type Direction uint8

const (
	In Direction = iota
	Out
	InOut
)

// FuncParam is one formal parameter of a Function definition.
type FuncParam struct {
	// Name is the bare parameter name (without the f_<fn>_ scope prefix).
	Name      string
	Direction Direction
}

// Function is a captured function definition (spec.md §4.3 deffun/fun).
type Function struct {
	Name   string
	Params []FuncParam
	Body   []*Value
	Cwd    string
}

// Value is the tagged union described by spec.md §3. Only the fields
// relevant to Kind are meaningful; the rest are zero.
type Value struct {
	Kind  Kind
	Pos   token.Position
	scope *string // nil = unset; with_scope is a no-op once set (macro hygiene)

	Num float64 // Number
	Str string  // String (with quotes), Content/Instruction/SubInstruction/LinkLiteral/Block name, Identifier/Label bare name (no $ / scope)
	Clr Color   // ColorKind

	Items []*Value // List
	Tbl   *Tbl     // Table
	Mac   *Macro   // Macro
	Fn    *Function

	File *FileHandle // TextFile / BinFile
}

// FileHandle wraps an open file plus the mode it was opened in, matching
// the text_file/bin_file distinction of spec.md §3.
type FileHandle struct {
	Name   string
	Text   *strings.Reader // populated for text_file after a full read
	Binary []byte          // remaining unread bytes for bin_file
	Closed bool
	read   bool // text: true once Read has been slurped from disk
	raw    func() (string, error)
	rawBin func() ([]byte, error)
}

// Scope returns the stamped scope prefix, or "" if unset.
func (v *Value) Scope() string {
	if v.scope == nil {
		return ""
	}
	return *v.scope
}

// ScopeSet reports whether a scope has already been stamped.
func (v *Value) ScopeSet() bool { return v.scope != nil }

// WithScope stamps scope onto v if (and only if) v has no scope yet. This
// is the sole hygiene mechanism described in spec.md §3: repeated calls
// with different scopes are no-ops after the first.
func (v *Value) WithScope(scope string) *Value {
	if v.scope != nil {
		return v
	}
	cp := *v
	cp.scope = &scope
	return &cp
}

// ForceScope returns a copy of v with scope replaced unconditionally. Used
// by the function-call machinery when a fresh token is synthesized and
// must carry a specific scope regardless of prior state (function
// parameter tokens, which always carry f_<fn>_, and the unscoped
// function labels and return slots).
func (v *Value) ForceScope(scope string) *Value {
	cp := *v
	cp.scope = &scope
	return &cp
}

// AtPos returns a copy of v relocated to pos, preserving kind/scope/payload.
// This is used when a token is read from one site (e.g. a macro body or a
// variable's stored value) but reported as if it appeared at the call site,
// so diagnostics point at the use, not the definition.
func (v *Value) AtPos(pos token.Position) *Value {
	cp := *v
	cp.Pos = pos
	return &cp
}

// Exportable reports whether this value may legally be emitted as mlog
// output. Lists, tables, macros, functions and file handles are not.
func (v *Value) Exportable() bool {
	switch v.Kind {
	case List, Table, MacroKind, TextFile, BinFile:
		return false
	default:
		return true
	}
}

// IsIdent reports whether v names a writable variable slot (identifier or
// global_identifier) - the only two kinds write_var accepts.
func (v *Value) IsIdent() bool {
	return v.Kind == Identifier || v.Kind == GlobalIdentifier
}

// String renders v the way it would appear in emitted mlog text, per the
// rendering invariant of spec.md §3: "scope ++ value" for identifiers and
// labels, the raw text for strings (quotes preserved), "null" for null.
func (v *Value) String() string {
	switch v.Kind {
	case Identifier, Label:
		return v.Scope() + v.Str
	case GlobalIdentifier, GlobalLabel:
		return "global_" + v.Str
	case Number:
		s := strconv.FormatFloat(v.Num, 'f', -1, 64)
		return strings.TrimSuffix(s, ".0")
	case ColorKind:
		return v.Clr.String()
	case Null:
		return "null"
	default:
		return v.Str
	}
}

// Truth reports whether v's numeric payload is nonzero. Non-number kinds
// carry a zero Num and so report false; this is not the coercion that
// Evaluator.coerceNum applies to non-numeric values.
func (v *Value) Truth() bool { return v.Num != 0 }

func newTok(k Kind, pos token.Position) *Value { return &Value{Kind: k, Pos: pos} }

// NewNumber builds a Number value.
func NewNumber(n float64, pos token.Position) *Value {
	v := newTok(Number, pos)
	v.Num = n
	return v
}

// NewString builds a String value from an unquoted Go string, adding the
// surrounding quotes spec.md §3 says strings are stored with.
func NewString(s string, pos token.Position) *Value {
	v := newTok(String, pos)
	v.Str = `"` + s + `"`
	return v
}

// NewQuotedString builds a String value from a lexeme that already carries
// its surrounding quotes (as produced by the lexer).
func NewQuotedString(quoted string, pos token.Position) *Value {
	v := newTok(String, pos)
	v.Str = quoted
	return v
}

// Unquote returns the string's content without surrounding quotes, with the
// \n escape sequence expanded as the original transpiler's resolve_string
// does.
func (v *Value) Unquote() string {
	s := v.Str
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, `\n`, "\n")
}

// NewNull builds a Null value.
func NewNull(pos token.Position) *Value { return newTok(Null, pos) }

// NewContent builds a Content value from a bare name (no leading @).
func NewContent(name string, pos token.Position) *Value {
	v := newTok(Content, pos)
	v.Str = "@" + name
	return v
}

// NewIdentifier builds an Identifier value from a bare name (no scope).
func NewIdentifier(name string, pos token.Position) *Value {
	v := newTok(Identifier, pos)
	v.Str = name
	return v
}

// NewGlobalIdentifier builds a GlobalIdentifier value.
func NewGlobalIdentifier(name string, pos token.Position) *Value {
	v := newTok(GlobalIdentifier, pos)
	v.Str = name
	return v
}

// NewBlock builds a Block value carrying a link name.
func NewBlock(linkName string, pos token.Position) *Value {
	v := newTok(Block, pos)
	v.Str = linkName
	return v
}

// NewList builds a List value from already-resolved items.
func NewList(items []*Value, pos token.Position) *Value {
	v := newTok(List, pos)
	v.Items = items
	return v
}

// NewTable builds a Table value wrapping an existing ordered table.
func NewTable(t *Tbl, pos token.Position) *Value {
	v := newTok(Table, pos)
	v.Tbl = t
	return v
}

// NewMacroValue wraps a macro definition as a first-class value (getmac).
func NewMacroValue(m *Macro, pos token.Position) *Value {
	v := newTok(MacroKind, pos)
	v.Mac = m
	return v
}

// NewColor builds a ColorKind value.
func NewColor(c Color, pos token.Position) *Value {
	v := newTok(ColorKind, pos)
	v.Clr = c
	return v
}
