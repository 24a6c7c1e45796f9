package eval

import "github.com/skyethefoxyfox/sfmlog/lang/value"

// const/enum are not part of spec.md; they're carried over from
// original_source/const.py per SPEC_FULL.md §4. `const NAME run...`
// captures a run of tokens (up to the line_break) under NAME; any later
// occurrence of an instruction/sub_instruction/identifier/global_identifier
// token named NAME is spliced inline with that run before the line is
// dispatched, so a const can stand in for an opcode, a sub_instruction
// keyword, or a plain value.
func (ev *Evaluator) instConst(inst *InstructionLine) error {
	nameTok, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	if inst.Len() < 2 {
		return ev.errorf(inst.Pos(), "const: expected a value")
	}
	run := make([]*value.Value, inst.Len()-1)
	for i := range run {
		run[i] = inst.Raw(i + 1)
	}
	ev.Consts[nameTok.Str] = run
	return nil
}

// "enum NAME", followed by names on the lines after it up to "endenum",
// assigns sequential integer literals 0,1,2... to each bare name, each
// registered as its own const. Tokens on the enum line itself (NAME
// included) are not registered.
func (ev *Evaluator) instEnum(inst *InstructionLine) error {
	names, ok := ev.readTill("endenum")
	if !ok {
		return ev.errorf(inst.Pos(), "'endenum' expected, but not found")
	}
	n := 0.0
	for _, t := range names {
		if t.Kind == value.LineBreak {
			continue
		}
		ev.Consts[t.Str] = []*value.Value{value.NewNumber(n, t.Pos)}
		n++
	}
	return nil
}

const maxConstExpansionDepth = 32

// expandConstsInLine splices any const reference in line with its stored
// run, re-scanning the result to allow a const body to reference another
// const, up to a fixed recursion guard.
func (ev *Evaluator) expandConstsInLine(line []*value.Value) ([]*value.Value, error) {
	if len(ev.Consts) == 0 {
		return line, nil
	}
	cur := line
	for depth := 0; depth < maxConstExpansionDepth; depth++ {
		var out []*value.Value
		changed := false
		for _, t := range cur {
			if isConstCandidate(t.Kind) {
				if run, ok := ev.Consts[t.Str]; ok {
					out = append(out, run...)
					changed = true
					continue
				}
			}
			out = append(out, t)
		}
		cur = out
		if !changed {
			break
		}
	}
	return cur, nil
}

func isConstCandidate(k value.Kind) bool {
	switch k {
	case value.Instruction, value.SubInstruction, value.Identifier, value.GlobalIdentifier:
		return true
	default:
		return false
	}
}
