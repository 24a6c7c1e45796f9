package eval

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/skyethefoxyfox/sfmlog/lang/token"
	"github.com/skyethefoxyfox/sfmlog/lang/value"
)

// instPset implements "pset VAR VALUE": compile-time assignment, distinct
// from a passthrough mlog "set" (which isn't a builtin and falls through
// to outputInstruction).
func (ev *Evaluator) instPset(inst *InstructionLine) error {
	target, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	v, err := inst.Require(1)
	if err != nil {
		return err
	}
	ev.writeVar(target, v.AtPos(inst.Pos()))
	return nil
}

// instPop implements "pop OP TARGET A [B]" (spec.md §4.3).
func (ev *Evaluator) instPop(inst *InstructionLine) error {
	opTok, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	target, err := inst.RequireRaw(1)
	if err != nil {
		return err
	}
	a, err := inst.Require(2)
	if err != nil {
		return err
	}
	var b *value.Value
	if !unaryMathOps[opTok.Str] {
		b, err = inst.Require(3)
		if err != nil {
			return err
		}
	}
	result, err := ev.evalMath(inst.Pos(), opTok.Str, a, b)
	if err != nil {
		return err
	}
	ev.writeVar(target, value.NewNumber(result, inst.Pos()))
	return nil
}

// instStrop implements "strop OP TARGET args..." (spec.md §4.3): string
// manipulation with PCRE-like regex semantics (Go's regexp, RE2 syntax).
func (ev *Evaluator) instStrop(inst *InstructionLine) error {
	opTok, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	target, err := inst.RequireRaw(1)
	if err != nil {
		return err
	}
	pos := inst.Pos()

	switch opTok.Str {
	case "cat":
		var b strings.Builder
		for i := 2; i < inst.Len(); i++ {
			s, err := inst.Str(i)
			if err != nil {
				return err
			}
			b.WriteString(s)
		}
		ev.writeVar(target, value.NewString(b.String(), pos))

	case "num":
		s, err := inst.Str(2)
		if err != nil {
			return err
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			n = 0
		}
		ev.writeVar(target, value.NewNumber(n, pos))

	case "charat":
		s, err := inst.Str(2)
		if err != nil {
			return err
		}
		i, err := inst.Num(3)
		if err != nil {
			return err
		}
		idx := int(i)
		r := []rune(s)
		if idx < 0 || idx >= len(r) {
			return ev.errorf(pos, "strop charat: index %d out of range", idx)
		}
		ev.writeVar(target, value.NewString(string(r[idx]), pos))

	case "substr":
		s, err := inst.Str(2)
		if err != nil {
			return err
		}
		start, err := inst.Num(3)
		if err != nil {
			return err
		}
		end, err := inst.Num(4)
		if err != nil {
			return err
		}
		r := []rune(s)
		i, j := clampIdx(int(start), len(r)), clampIdx(int(end), len(r))
		if j < i {
			j = i
		}
		ev.writeVar(target, value.NewString(string(r[i:j]), pos))

	case "split":
		s, err := inst.Str(2)
		if err != nil {
			return err
		}
		sep, err := inst.Str(3)
		if err != nil {
			return err
		}
		parts := strings.Split(s, sep)
		items := make([]*value.Value, len(parts))
		for i, p := range parts {
			items[i] = value.NewString(p, pos)
		}
		ev.writeVar(target, value.NewList(items, pos))

	case "rematch":
		s, re, err := ev.compileStrop(inst, pos)
		if err != nil {
			return err
		}
		ev.writeVar(target, value.NewNumber(boolToFloat(re.MatchString(s)), pos))

	case "refind":
		s, re, err := ev.compileStrop(inst, pos)
		if err != nil {
			return err
		}
		loc := re.FindStringIndex(s)
		if loc == nil {
			ev.writeVar(target, value.NewNumber(-1, pos))
		} else {
			ev.writeVar(target, value.NewNumber(float64(loc[0]), pos))
		}

	case "regroups":
		s, re, err := ev.compileStrop(inst, pos)
		if err != nil {
			return err
		}
		m := re.FindStringSubmatch(s)
		items := make([]*value.Value, 0, len(m))
		for _, g := range m {
			items = append(items, value.NewString(g, pos))
		}
		ev.writeVar(target, value.NewList(items, pos))

	case "rematchall":
		s, re, err := ev.compileStrop(inst, pos)
		if err != nil {
			return err
		}
		all := re.FindAllString(s, -1)
		items := make([]*value.Value, len(all))
		for i, m := range all {
			items[i] = value.NewString(m, pos)
		}
		ev.writeVar(target, value.NewList(items, pos))

	default:
		return ev.errorf(pos, "strop: unknown operation %q", opTok.Str)
	}
	return nil
}

// compileStrop reads the "strop OP TARGET SUBJECT PATTERN" shape shared
// by the regex-based operations and compiles PATTERN.
func (ev *Evaluator) compileStrop(inst *InstructionLine, pos token.Position) (string, *regexp.Regexp, error) {
	subject, err := inst.Str(2)
	if err != nil {
		return "", nil, err
	}
	pattern, err := inst.Str(3)
	if err != nil {
		return "", nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", nil, ev.errorf(pos, "strop: invalid regex %q: %v", pattern, err)
	}
	return subject, re, nil
}

func clampIdx(i, n int) int {
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	return i
}

// instStrlabel implements "strlabel VAR STR": spaces become underscores.
func (ev *Evaluator) instStrlabel(inst *InstructionLine) error {
	target, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	s, err := inst.Str(1)
	if err != nil {
		return err
	}
	name := strings.ReplaceAll(s, " ", "_")
	lbl := value.NewIdentifier(name, inst.Pos())
	lbl.Kind = value.Label
	ev.writeVar(target, lbl)
	return nil
}

// instStrvar implements "strvar VAR STR [local|global|unscoped]": builds
// a variable-name token from a string with explicit scope context (the
// spec.md §9 open question: "unscoped" produces an unscoped_identifier).
func (ev *Evaluator) instStrvar(inst *InstructionLine) error {
	target, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	s, err := inst.Str(1)
	if err != nil {
		return err
	}
	mode := "local"
	if inst.Has(2) {
		if mode, err = inst.Str(2); err != nil {
			return err
		}
	}
	var v *value.Value
	switch mode {
	case "global":
		v = value.NewGlobalIdentifier(s, inst.Pos())
	case "unscoped":
		v = value.NewIdentifier(s, inst.Pos())
		v.Kind = value.UnscopedIdentifier
	default:
		v = value.NewIdentifier(s, inst.Pos())
	}
	ev.writeVar(target, v)
	return nil
}
