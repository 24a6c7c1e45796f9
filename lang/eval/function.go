package eval

import (
	"strings"

	"github.com/skyethefoxyfox/sfmlog/lang/token"
	"github.com/skyethefoxyfox/sfmlog/lang/value"
)

// instDeffun implements "deffun NAME params... \n body \n end"
// (spec.md §4.3). A parameter may be prefixed ">" (in, default), "<>"
// (inout) or "<" (out).
func (ev *Evaluator) instDeffun(inst *InstructionLine) error {
	nameTok, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	if _, ok := ev.Functions[nameTok.Str]; ok {
		return ev.errorf(inst.Pos(), "function %q redefined", nameTok.Str)
	}
	var params []value.FuncParam
	for i := 1; i < inst.Len(); i++ {
		raw := inst.Raw(i).Str
		dir := value.In
		name := raw
		switch {
		case strings.HasPrefix(raw, "<>"):
			dir, name = value.InOut, raw[2:]
		case strings.HasPrefix(raw, "<"):
			dir, name = value.Out, raw[1:]
		case strings.HasPrefix(raw, ">"):
			dir, name = value.In, raw[1:]
		}
		params = append(params, value.FuncParam{Name: name, Direction: dir})
	}
	body, ok := ev.readTill("end")
	if !ok {
		return ev.errorf(inst.Pos(), "'end' expected, but not found")
	}
	ev.Functions[nameTok.Str] = &value.Function{Name: nameTok.Str, Params: params, Body: body, Cwd: ev.Cwd}
	return nil
}

// instFun implements "fun NAME args..." (spec.md §4.3): it never inlines
// the body, only the call-site trampoline.
func (ev *Evaluator) instFun(inst *InstructionLine) error {
	nameTok, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	fn, ok := ev.Functions[nameTok.Str]
	if !ok {
		return ev.errorf(inst.Pos(), "unknown function %q", nameTok.Str)
	}

	var argToks []*value.Value
	for i := 0; i < inst.Len()-1; i++ {
		argToks = append(argToks, inst.Raw(i+1))
	}
	pos := inst.Pos()
	paramScope := "f_" + fn.Name + "_"

	for i, p := range fn.Params {
		if p.Direction == value.Out {
			continue
		}
		if i >= len(argToks) {
			return ev.errorf(pos, "fun %s: missing argument %q", fn.Name, p.Name)
		}
		target := value.NewIdentifier(p.Name, pos).ForceScope(paramScope)
		src := ev.resolveVar(argToks[i])
		ev.emitSet(pos, target, src)
	}

	ev.emitOpAddReturn(pos, fn.Name)
	ev.emitJump(pos, fn.Name)

	for i, p := range fn.Params {
		if p.Direction == value.In {
			continue
		}
		if i >= len(argToks) {
			continue
		}
		arg := argToks[i]
		if !arg.IsIdent() || (arg.Kind == value.Identifier && arg.Str == "_") {
			continue
		}
		src := value.NewIdentifier(p.Name, pos).ForceScope(paramScope)
		ev.emitSet(pos, arg.WithScope(ev.ScopeStr), src)
	}

	ev.markCalled(fn.Name)
	return nil
}

func (ev *Evaluator) markCalled(name string) {
	for _, c := range *ev.CalledFunctions {
		if c == name {
			return
		}
	}
	*ev.CalledFunctions = append(*ev.CalledFunctions, name)
}

func (ev *Evaluator) emitSet(pos token.Position, target, src *value.Value) {
	ev.Output = append(ev.Output, blankInstr("set", pos), target, src, blankLineBreak(pos))
}

func (ev *Evaluator) emitOpAddReturn(pos token.Position, fn string) {
	ret := value.NewIdentifier("function_"+fn+"_return", pos).ForceScope("")
	ev.Output = append(ev.Output,
		blankInstr("op", pos), subInstr("add", pos), ret,
		value.NewContent("counter", pos), value.NewNumber(1, pos),
		blankLineBreak(pos))
}

func (ev *Evaluator) emitJump(pos token.Position, fn string) {
	label := value.NewIdentifier("function_"+fn, pos).ForceScope("")
	ev.Output = append(ev.Output,
		blankInstr("jump", pos), label, subInstr("always", pos), blankLineBreak(pos))
}

func blankInstr(name string, pos token.Position) *value.Value {
	v := value.NewIdentifier(name, pos)
	v.Kind = value.Instruction
	return v
}

func subInstr(name string, pos token.Position) *value.Value {
	v := value.NewIdentifier(name, pos)
	v.Kind = value.SubInstruction
	return v
}

func blankLineBreak(pos token.Position) *value.Value {
	return &value.Value{Kind: value.LineBreak, Pos: pos}
}

// expandFunctions appends the function-body trampoline once per called
// function, after this processor's own "end" (spec.md §4.3). It runs each
// body in a child scoped f_<name>_ and closes with a jump back through
// the function's return slot.
func (ev *Evaluator) expandFunctions() error {
	if len(*ev.CalledFunctions) == 0 {
		return nil
	}
	pos := token.Position{}
	ev.Output = append(ev.Output, blankInstr("end", pos), blankLineBreak(pos))
	for _, name := range *ev.CalledFunctions {
		fn, ok := ev.Functions[name]
		if !ok {
			continue
		}
		label := value.NewIdentifier("function_"+name+":", pos)
		label.Kind = value.Label
		label = label.ForceScope("")
		ev.Output = append(ev.Output, label, blankLineBreak(pos))

		child := ev.child(pos, fn.Body)
		child.ScopeStr = "f_" + name + "_"
		child.IsProcessor = false
		if err := child.Execute(); err != nil {
			return err
		}
		ev.Output = append(ev.Output, child.Output...)

		ret := value.NewIdentifier("function_"+name+"_return", pos).ForceScope("")
		ev.Output = append(ev.Output,
			blankInstr("set", pos), value.NewContent("counter", pos), ret, blankLineBreak(pos))
	}
	return nil
}
