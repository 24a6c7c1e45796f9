package eval

import "github.com/skyethefoxyfox/sfmlog/lang/value"

// instList implements the "list OP ..." family (spec.md §4.3).
func (ev *Evaluator) instList(inst *InstructionLine) error {
	opTok, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	pos := inst.Pos()

	switch opTok.Str {
	case "from":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		var items []*value.Value
		for i := 2; i < inst.Len(); i++ {
			v, err := inst.Require(i)
			if err != nil {
				return err
			}
			items = append(items, v)
		}
		ev.writeVar(target, value.NewList(items, pos))

	case "copy":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		src, err := inst.Require(2)
		if err != nil {
			return err
		}
		if src.Kind != value.List {
			return ev.errorf(pos, "list copy: not a list")
		}
		ev.writeVar(target, value.CopyValue(src))

	case "set":
		srcTok, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		lst, ok := ev.lookupDirect(srcTok)
		if !ok || lst.Kind != value.List {
			return ev.errorf(pos, "list set: not a list")
		}
		idx, err := inst.Num(2)
		if err != nil {
			return err
		}
		v, err := inst.Require(3)
		if err != nil {
			return err
		}
		i := int(idx)
		if i < 0 || i >= len(lst.Items) {
			return ev.errorf(pos, "list set: index %d out of range", i)
		}
		lst.Items[i] = v

	case "get":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		src, err := inst.Require(2)
		if err != nil {
			return err
		}
		if src.Kind != value.List {
			return ev.errorf(pos, "list get: not a list")
		}
		idx, err := inst.Num(3)
		if err != nil {
			return err
		}
		i := int(idx)
		if i < 0 || i >= len(src.Items) {
			return ev.errorf(pos, "list get: index %d out of range", i)
		}
		ev.writeVar(target, src.Items[i].AtPos(pos))

	case "append":
		srcTok, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		lst, ok := ev.lookupDirect(srcTok)
		if !ok || lst.Kind != value.List {
			return ev.errorf(pos, "list append: not a list")
		}
		v, err := inst.Require(2)
		if err != nil {
			return err
		}
		lst.Items = append(lst.Items, v)

	case "insert":
		srcTok, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		lst, ok := ev.lookupDirect(srcTok)
		if !ok || lst.Kind != value.List {
			return ev.errorf(pos, "list insert: not a list")
		}
		idx, err := inst.Num(2)
		if err != nil {
			return err
		}
		v, err := inst.Require(3)
		if err != nil {
			return err
		}
		i := clampIdx(int(idx), len(lst.Items))
		lst.Items = append(lst.Items[:i], append([]*value.Value{v}, lst.Items[i:]...)...)

	case "del":
		srcTok, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		lst, ok := ev.lookupDirect(srcTok)
		if !ok || lst.Kind != value.List {
			return ev.errorf(pos, "list del: not a list")
		}
		idx, err := inst.Num(2)
		if err != nil {
			return err
		}
		i := int(idx)
		if i < 0 || i >= len(lst.Items) {
			return ev.errorf(pos, "list del: index %d out of range", i)
		}
		lst.Items = append(lst.Items[:i], lst.Items[i+1:]...)

	case "len":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		src, err := inst.Require(2)
		if err != nil {
			return err
		}
		if src.Kind != value.List {
			return ev.errorf(pos, "list len: not a list")
		}
		ev.writeVar(target, value.NewNumber(float64(len(src.Items)), pos))

	case "index":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		src, err := inst.Require(2)
		if err != nil {
			return err
		}
		if src.Kind != value.List {
			return ev.errorf(pos, "list index: not a list")
		}
		needle, err := inst.Require(3)
		if err != nil {
			return err
		}
		found := -1
		for i, it := range src.Items {
			if it.Kind == needle.Kind && equalRaw(it, needle) {
				found = i
				break
			}
		}
		ev.writeVar(target, value.NewNumber(float64(found), pos))

	case "in":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		src, err := inst.Require(2)
		if err != nil {
			return err
		}
		if src.Kind != value.List {
			return ev.errorf(pos, "list in: not a list")
		}
		needle, err := inst.Require(3)
		if err != nil {
			return err
		}
		found := false
		for _, it := range src.Items {
			if it.Kind == needle.Kind && equalRaw(it, needle) {
				found = true
				break
			}
		}
		ev.writeVar(target, value.NewNumber(boolToFloat(found), pos))

	default:
		return ev.errorf(pos, "list: unknown operation %q", opTok.Str)
	}
	return nil
}

// instTable implements the "table OP ..." family (spec.md §4.3).
func (ev *Evaluator) instTable(inst *InstructionLine) error {
	opTok, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	pos := inst.Pos()

	switch opTok.Str {
	case "from":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		if (inst.Len()-2)%2 != 0 {
			return ev.errorf(pos, "table from: expected key/value pairs")
		}
		tbl := value.NewTbl()
		for i := 2; i < inst.Len(); i += 2 {
			k, err := inst.Require(i)
			if err != nil {
				return err
			}
			v, err := inst.Require(i + 1)
			if err != nil {
				return err
			}
			key, err := value.KeyOf(k)
			if err != nil {
				return ev.errorf(pos, "table from: %v", err)
			}
			tbl.Set(key, v)
		}
		ev.writeVar(target, value.NewTable(tbl, pos))

	case "copy":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		src, err := inst.Require(2)
		if err != nil {
			return err
		}
		if src.Kind != value.Table {
			return ev.errorf(pos, "table copy: not a table")
		}
		ev.writeVar(target, value.CopyValue(src))

	case "set":
		srcTok, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		tbl, ok := ev.lookupDirect(srcTok)
		if !ok || tbl.Kind != value.Table {
			return ev.errorf(pos, "table set: not a table")
		}
		k, err := inst.Require(2)
		if err != nil {
			return err
		}
		v, err := inst.Require(3)
		if err != nil {
			return err
		}
		key, err := value.KeyOf(k)
		if err != nil {
			return ev.errorf(pos, "table set: %v", err)
		}
		tbl.Tbl.Set(key, v)

	case "get":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		src, err := inst.Require(2)
		if err != nil {
			return err
		}
		if src.Kind != value.Table {
			return ev.errorf(pos, "table get: not a table")
		}
		k, err := inst.Require(3)
		if err != nil {
			return err
		}
		key, err := value.KeyOf(k)
		if err != nil {
			return ev.errorf(pos, "table get: %v", err)
		}
		v, ok := src.Tbl.Get(key)
		if !ok {
			return ev.errorf(pos, "table get: key not found")
		}
		ev.writeVar(target, v.AtPos(pos))

	case "del":
		srcTok, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		tbl, ok := ev.lookupDirect(srcTok)
		if !ok || tbl.Kind != value.Table {
			return ev.errorf(pos, "table del: not a table")
		}
		k, err := inst.Require(2)
		if err != nil {
			return err
		}
		key, err := value.KeyOf(k)
		if err != nil {
			return ev.errorf(pos, "table del: %v", err)
		}
		tbl.Tbl.Delete(key)

	case "in":
		target, err := inst.RequireRaw(1)
		if err != nil {
			return err
		}
		src, err := inst.Require(2)
		if err != nil {
			return err
		}
		if src.Kind != value.Table {
			return ev.errorf(pos, "table in: not a table")
		}
		k, err := inst.Require(3)
		if err != nil {
			return err
		}
		key, err := value.KeyOf(k)
		if err != nil {
			return ev.errorf(pos, "table in: %v", err)
		}
		_, ok := src.Tbl.Get(key)
		ev.writeVar(target, value.NewNumber(boolToFloat(ok), pos))

	default:
		return ev.errorf(pos, "table: unknown operation %q", opTok.Str)
	}
	return nil
}
