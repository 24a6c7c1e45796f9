package eval

import (
	"github.com/skyethefoxyfox/sfmlog/lang/token"
	"github.com/skyethefoxyfox/sfmlog/lang/value"
)

// InstructionLine is one line of the grouped token stream: a head
// instruction/label token plus its argument tokens, with the trailing
// line_break stripped from Len/Tok access.
type InstructionLine struct {
	tokens []*value.Value
	ev     *Evaluator
}

// Len returns the number of argument tokens (excluding the head and the
// trailing line_break).
func (l *InstructionLine) Len() int { return len(l.tokens) - 2 }

// Head returns the line's first token (the instruction/label keyword).
func (l *InstructionLine) Head() *value.Value { return l.tokens[0] }

// Pos returns the head token's position, used as the anchor for errors
// raised against this line as a whole.
func (l *InstructionLine) Pos() token.Position { return l.tokens[0].Pos }

// Raw returns argument token i (0-based, after the head), unresolved.
func (l *InstructionLine) Raw(i int) *value.Value { return l.tokens[i+1] }

// Require resolves and returns argument token i, erroring if the line is
// too short.
func (l *InstructionLine) Require(i int) (*value.Value, error) {
	if i >= l.Len() {
		return nil, l.ev.errorf(l.Pos(), "%s: expected at least %d argument(s)", l.Head().Str, i+1)
	}
	return l.ev.resolveVar(l.Raw(i)), nil
}

// RequireRaw returns argument token i unresolved, erroring if too short.
// Used by instructions that need the token itself (e.g. a write target)
// rather than its resolved value.
func (l *InstructionLine) RequireRaw(i int) (*value.Value, error) {
	if i >= l.Len() {
		return nil, l.ev.errorf(l.Pos(), "%s: expected at least %d argument(s)", l.Head().Str, i+1)
	}
	return l.Raw(i), nil
}

// Option resolves argument token i, or returns def if the line is too
// short to contain it.
func (l *InstructionLine) Option(i int, def *value.Value) *value.Value {
	if i >= l.Len() {
		return def
	}
	return l.ev.resolveVar(l.Raw(i))
}

// Has reports whether argument slot i is present.
func (l *InstructionLine) Has(i int) bool { return i < l.Len() }

// Str resolves argument i and renders it as a bare Go string (mirroring
// resolve_string for sub_instruction/keyword-style arguments).
func (l *InstructionLine) Str(i int) (string, error) {
	v, err := l.Require(i)
	if err != nil {
		return "", err
	}
	return l.ev.renderString(v), nil
}

// Num resolves argument i and coerces it to a float64.
func (l *InstructionLine) Num(i int) (float64, error) {
	v, err := l.Require(i)
	if err != nil {
		return 0, err
	}
	return l.ev.coerceNum(v), nil
}
