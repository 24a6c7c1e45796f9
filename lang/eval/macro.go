package eval

import (
	"fmt"
	"strings"

	"github.com/skyethefoxyfox/sfmlog/lang/value"
)

// instDefmac implements "defmac NAME params... \n body \n end"
// (spec.md §4.3). A trailing "..." on the last parameter name marks it
// variadic (SPEC_FULL.md §4): it collects every remaining call argument
// into a list instead of binding a single value.
func (ev *Evaluator) instDefmac(inst *InstructionLine) error {
	nameTok, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	var params []string
	variadic := false
	for i := 1; i < inst.Len(); i++ {
		p := inst.Raw(i)
		name := p.Str
		if strings.HasSuffix(name, "...") {
			name = strings.TrimSuffix(name, "...")
			variadic = true
		}
		params = append(params, name)
	}
	body, ok := ev.readTill("end")
	if !ok {
		return ev.errorf(inst.Pos(), "'end' expected, but not found")
	}
	ev.Macros[nameTok.Str] = &value.Macro{
		Name: nameTok.Str, Params: params, VariadicTail: variadic, Body: body, Cwd: ev.Cwd,
	}
	return nil
}

// instMac implements "mac NAME args..." (spec.md §4.3).
func (ev *Evaluator) instMac(inst *InstructionLine) error {
	nameTok, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	mac, ok := ev.Macros[nameTok.Str]
	if !ok {
		return ev.errorf(inst.Pos(), "unknown macro %q", nameTok.Str)
	}
	for _, called := range ev.macroCallChain {
		if called == mac.Name {
			return ev.errorf(inst.Pos(), "macro %q calls itself", mac.Name)
		}
	}

	var argToks []*value.Value
	for i := 0; i < inst.Len()-1; i++ {
		argToks = append(argToks, inst.Raw(i+1))
	}

	run := ev.MacroRunCounts[mac.Name]
	ev.MacroRunCounts[mac.Name] = run + 1
	scope := fmt.Sprintf("m_%s_%d_", mac.Name, run)

	child := ev.child(inst.Pos(), mac.Body)
	child.Cwd = mac.Cwd
	child.ScopeStr = scope
	child.macroCallChain = append(append([]string{}, ev.macroCallChain...), mac.Name)

	n := len(mac.Params)
	for i, pname := range mac.Params {
		paramTok := value.NewIdentifier(pname, inst.Pos())
		if mac.VariadicTail && i == n-1 {
			var items []*value.Value
			for j := i; j < len(argToks); j++ {
				items = append(items, ev.resolveVar(argToks[j]))
			}
			child.writeVar(paramTok, value.NewList(items, inst.Pos()))
			continue
		}
		var v *value.Value
		if i < len(argToks) {
			v = ev.resolveVar(argToks[i])
		} else {
			v = value.NewNull(inst.Pos())
		}
		child.writeVar(paramTok, v)
	}

	if err := child.Execute(); err != nil {
		return err
	}
	ev.Output = append(ev.Output, child.Output...)

	for i, pname := range mac.Params {
		if mac.VariadicTail && i == n-1 {
			break
		}
		if i >= len(argToks) {
			continue
		}
		if argToks[i].IsIdent() {
			v := child.resolveVar(value.NewIdentifier(pname, inst.Pos()))
			ev.writeVar(argToks[i], v)
		}
	}
	return nil
}

// instGetmac implements "getmac VAR NAME": wraps an existing macro
// definition as a first-class macro value.
func (ev *Evaluator) instGetmac(inst *InstructionLine) error {
	target, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	nameTok, err := inst.RequireRaw(1)
	if err != nil {
		return err
	}
	mac, ok := ev.Macros[nameTok.Str]
	if !ok {
		return ev.errorf(inst.Pos(), "unknown macro %q", nameTok.Str)
	}
	ev.writeVar(target, value.NewMacroValue(mac, inst.Pos()))
	return nil
}
