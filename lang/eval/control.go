package eval

import (
	"github.com/skyethefoxyfox/sfmlog/lang/token"
	"github.com/skyethefoxyfox/sfmlog/lang/value"
)

// instIf implements "if/elif/else/end" (spec.md §4.3).
func (ev *Evaluator) instIf(inst *InstructionLine) error {
	sections, ok := ev.readSections("end", map[string]bool{"elif": true, "else": true})
	if !ok {
		return ev.errorf(inst.Pos(), "'end' expected, but not found")
	}
	for _, sec := range sections {
		matched, err := ev.matchesSection(sec.head)
		if err != nil {
			return err
		}
		if !matched {
			continue
		}
		child := ev.child(sec.head.Pos(), sec.body)
		if err := child.Execute(); err != nil {
			return err
		}
		ev.Output = append(ev.Output, child.Output...)
		return nil
	}
	return nil
}

func (ev *Evaluator) matchesSection(head *InstructionLine) (bool, error) {
	switch head.Head().Str {
	case "else":
		return true, nil
	case "if", "elif":
		return ev.evalSectionCondition(head)
	default:
		return false, ev.errorf(head.Pos(), "unexpected %q in if chain", head.Head().Str)
	}
}

func (ev *Evaluator) evalSectionCondition(head *InstructionLine) (bool, error) {
	opTok, err := head.RequireRaw(0)
	if err != nil {
		return false, err
	}
	if opTok.Str == "in" {
		elem, err := head.Require(1)
		if err != nil {
			return false, err
		}
		coll, err := head.Require(2)
		if err != nil {
			return false, err
		}
		return ev.inMembership(head.Pos(), elem, coll)
	}
	a, err := head.Require(1)
	if err != nil {
		return false, err
	}
	b, err := head.Require(2)
	if err != nil {
		return false, err
	}
	return ev.evalCondition(opTok.Str, a, b), nil
}

func (ev *Evaluator) inMembership(pos token.Position, elem, coll *value.Value) (bool, error) {
	switch coll.Kind {
	case value.List:
		for _, it := range coll.Items {
			if it.Kind == elem.Kind && equalRaw(it, elem) {
				return true, nil
			}
		}
		return false, nil
	case value.Table:
		key, err := value.KeyOf(elem)
		if err != nil {
			return false, ev.errorf(pos, "in: %v", err)
		}
		_, ok := coll.Tbl.Get(key)
		return ok, nil
	default:
		return false, ev.errorf(pos, "in: not a list or table")
	}
}

// instWhile implements "while OP A B \n body \n end" (spec.md §4.3): the
// condition is the while line itself; each pass runs in a fresh child so
// ephemeral scope stamps (from macros called in the body) don't collide
// across iterations.
func (ev *Evaluator) instWhile(inst *InstructionLine) error {
	body, ok := ev.readTill("end")
	if !ok {
		return ev.errorf(inst.Pos(), "'end' expected, but not found")
	}
	for {
		matched, err := ev.evalSectionCondition(inst)
		if err != nil {
			return err
		}
		if !matched {
			return nil
		}
		child := ev.child(inst.Pos(), body)
		if err := child.Execute(); err != nil {
			return err
		}
		ev.Output = append(ev.Output, child.Output...)
	}
}

// instFor implements "for ITER ... \n body \n end" (spec.md §4.3).
func (ev *Evaluator) instFor(inst *InstructionLine) error {
	iterTok, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	body, ok := ev.readTill("end")
	if !ok {
		return ev.errorf(inst.Pos(), "'end' expected, but not found")
	}
	pos := inst.Pos()

	runBody := func(binds map[string]*value.Value) error {
		child := ev.child(pos, body)
		for name, v := range binds {
			child.writeVar(value.NewIdentifier(name, pos), v)
		}
		if err := child.Execute(); err != nil {
			return err
		}
		ev.Output = append(ev.Output, child.Output...)
		return nil
	}

	switch iterTok.Str {
	case "range":
		varTok, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		var start, stop, step float64 = 0, 0, 1
		switch {
		case inst.Has(2) && !inst.Has(3):
			n, err := inst.Num(2)
			if err != nil {
				return err
			}
			stop = n
		case inst.Has(3) && !inst.Has(4):
			a, err := inst.Num(2)
			if err != nil {
				return err
			}
			b, err := inst.Num(3)
			if err != nil {
				return err
			}
			start, stop = a, b
		case inst.Has(4):
			a, err := inst.Num(2)
			if err != nil {
				return err
			}
			b, err := inst.Num(3)
			if err != nil {
				return err
			}
			s, err := inst.Num(4)
			if err != nil {
				return err
			}
			if s == 0 {
				return ev.errorf(pos, "for range: step must not be zero")
			}
			start, stop, step = a, b, s
		default:
			return ev.errorf(pos, "for range: expected 1 to 3 numeric arguments")
		}
		for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
			if err := runBody(map[string]*value.Value{varTok.Str: value.NewNumber(i, pos)}); err != nil {
				return err
			}
		}

	case "list":
		varTok, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		lst, err := inst.Require(2)
		if err != nil {
			return err
		}
		if lst.Kind != value.List {
			return ev.errorf(pos, "for list: not a list")
		}
		for _, item := range lst.Items {
			if err := runBody(map[string]*value.Value{varTok.Str: item}); err != nil {
				return err
			}
		}

	case "enumerate":
		idxTok, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		elemTok, err := inst.RequireRaw(2)
		if err != nil {
			return err
		}
		lst, err := inst.Require(3)
		if err != nil {
			return err
		}
		if lst.Kind != value.List {
			return ev.errorf(pos, "for enumerate: not a list")
		}
		for i, item := range lst.Items {
			binds := map[string]*value.Value{
				idxTok.Str:  value.NewNumber(float64(i), pos),
				elemTok.Str: item,
			}
			if err := runBody(binds); err != nil {
				return err
			}
		}

	case "table":
		keyTok, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		valTok, err := inst.RequireRaw(2)
		if err != nil {
			return err
		}
		tbl, err := inst.Require(3)
		if err != nil {
			return err
		}
		if tbl.Kind != value.Table {
			return ev.errorf(pos, "for table: not a table")
		}
		for _, k := range tbl.Tbl.Keys() {
			v, _ := tbl.Tbl.Get(k)
			binds := map[string]*value.Value{
				keyTok.Str: keyAsValue(k, pos),
				valTok.Str: v,
			}
			if err := runBody(binds); err != nil {
				return err
			}
		}

	default:
		return ev.errorf(pos, "for: unknown iterator %q", iterTok.Str)
	}
	return nil
}

// instDiscard implements "discard args... \n body \n end" (spec.md
// §4.3): the body runs against copies of Vars/GlobalVars/Macros/Functions
// so nothing it does is visible to the parent except the explicitly
// named args, written back after the body completes.
func (ev *Evaluator) instDiscard(inst *InstructionLine) error {
	var exportToks []*value.Value
	for i := 0; i < inst.Len(); i++ {
		t, err := inst.RequireRaw(i)
		if err != nil {
			return err
		}
		exportToks = append(exportToks, t)
	}
	body, ok := ev.readTill("end")
	if !ok {
		return ev.errorf(inst.Pos(), "'end' expected, but not found")
	}

	child := ev.child(inst.Pos(), body)
	child.Vars = copyValueMap(ev.Vars)
	child.GlobalVars = copyValueMap(ev.GlobalVars)
	child.Macros = copyMacroMap(ev.Macros)
	child.Functions = copyFuncMap(ev.Functions)
	child.MacroRunCounts = map[string]int{}
	// CalledFunctions stays shared with the parent (ev.child already wired
	// it by reference): a function called from inside a discard block
	// still needs its trampoline emitted once the enclosing proc finishes,
	// exactly as original_source/sfmlog.py's I_discard leaves
	// called_functions untouched while copying vars/global_vars/macros/
	// functions and resetting macro_run_counts.
	child.SchemBuilder = nil

	if err := child.Execute(); err != nil {
		return err
	}
	ev.Output = append(ev.Output, child.Output...)

	for _, t := range exportToks {
		if !t.IsIdent() {
			continue
		}
		v := child.resolveVar(t)
		ev.writeVar(t, v)
	}
	return nil
}

func copyValueMap(m map[string]*value.Value) map[string]*value.Value {
	cp := make(map[string]*value.Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func copyMacroMap(m map[string]*value.Macro) map[string]*value.Macro {
	cp := make(map[string]*value.Macro, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func copyFuncMap(m map[string]*value.Function) map[string]*value.Function {
	cp := make(map[string]*value.Function, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func copyIntMap(m map[string]int) map[string]int {
	cp := make(map[string]int, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func keyAsValue(k value.Key, pos token.Position) *value.Value {
	return k.AsValue(pos)
}
