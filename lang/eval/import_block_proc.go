package eval

import (
	"strings"

	"github.com/skyethefoxyfox/sfmlog/lang/lexer"
	"github.com/skyethefoxyfox/sfmlog/lang/schem"
	"github.com/skyethefoxyfox/sfmlog/lang/value"
)

// instImport implements "import PATH" (spec.md §4.3): tokenizes and
// evaluates the target file in a child evaluator that shares this
// evaluator's maps, then appends its output to ours.
func (ev *Evaluator) instImport(inst *InstructionLine) error {
	pathTok, err := inst.Require(0)
	if err != nil {
		return err
	}
	path := ev.renderString(pathTok)

	cwd := ev.Cwd
	if strings.HasPrefix(path, "std/") {
		cwd = ev.Importer.InstallStdDir()
	}
	resolved, err := ev.Importer.Resolve(cwd, path)
	if err != nil {
		return ev.errorf(inst.Pos(), "import: %v", err)
	}
	src, err := ev.Importer.ReadFile(resolved)
	if err != nil {
		return ev.errorf(inst.Pos(), "import: %v", err)
	}
	tokens, err := lexer.Tokenize(src, resolved)
	if err != nil {
		return ev.errorf(inst.Pos(), "import: %v", err)
	}

	child := ev.child(inst.Pos(), tokens)
	child.Cwd = dirOf(resolved)
	if err := child.Execute(); err != nil {
		return err
	}
	ev.Output = append(ev.Output, child.Output...)
	return nil
}

func dirOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "."
	}
	return path[:i]
}

// instBlock implements "block VAR @TYPE [x y [rot]]" (spec.md §4.3).
func (ev *Evaluator) instBlock(inst *InstructionLine) error {
	target, err := inst.RequireRaw(0)
	if err != nil {
		return err
	}
	typeTok, err := inst.Require(1)
	if err != nil {
		return err
	}
	if typeTok.Kind != value.Content {
		return ev.errorf(inst.Pos(), "block: expected a content reference for the block type")
	}
	typeName := strings.TrimPrefix(typeTok.Str, "@")

	b := &schem.Block{Type: typeName}
	if inst.Has(2) {
		x, err := inst.Num(2)
		if err != nil {
			return err
		}
		y, err := inst.Num(3)
		if err != nil {
			return err
		}
		rot := 0.0
		if inst.Has(4) {
			if rot, err = inst.Num(4); err != nil {
				return err
			}
		}
		b.Positioned = true
		b.X, b.Y, b.Rotation = int(x), int(y), int(rot)
	}

	linkName, err := ev.SchemBuilder.AddBlock(b)
	if err != nil {
		return ev.errorf(inst.Pos(), "block: %v", err)
	}
	ev.writeVar(target, value.NewBlock(linkName, inst.Pos()))
	return nil
}

// instProc implements "proc [VAR [@TYPE x y]]" (spec.md §4.3).
func (ev *Evaluator) instProc(inst *InstructionLine) error {
	var target *value.Value
	var typeName string
	positioned := false
	var x, y int

	if inst.Has(0) {
		var err error
		if target, err = inst.RequireRaw(0); err != nil {
			return err
		}
	}
	if inst.Has(1) {
		typeTok, err := inst.Require(1)
		if err != nil {
			return err
		}
		if typeTok.Kind != value.Content {
			return ev.errorf(inst.Pos(), "proc: expected a content reference for the processor type")
		}
		typeName = strings.TrimPrefix(typeTok.Str, "@")
		xf, err := inst.Num(2)
		if err != nil {
			return err
		}
		yf, err := inst.Num(3)
		if err != nil {
			return err
		}
		x, y, positioned = int(xf), int(yf), true
	}

	body, ok := ev.readTill("end")
	if !ok {
		return ev.errorf(inst.Pos(), "'end' expected, but not found")
	}

	child := ev.child(inst.Pos(), body)
	child.ScopeStr = "_"
	child.IsProcessor = true
	child.AllowMlog = true
	// Locals, run counts and called-function tracking reset per processor
	// (spec.md §5: "locals do not cross proc boundaries"); macros,
	// functions, global vars and the schematic builder stay shared.
	child.Vars = map[string]*value.Value{}
	child.MacroRunCounts = map[string]int{}
	child.CalledFunctions = new([]string)
	if err := child.Execute(); err != nil {
		return err
	}

	text := renderMlog(child.Output)
	p := &schem.Proc{Code: text}
	if positioned {
		p.Positioned = true
		p.X, p.Y, p.Type = x, y, typeName
	}
	linkName, err := ev.SchemBuilder.AddProc(p)
	if err != nil {
		return ev.errorf(inst.Pos(), "proc: %v", err)
	}
	if target != nil {
		ev.writeVar(target, value.NewBlock(linkName, inst.Pos()))
	}
	return nil
}

// renderMlog renders a resolved token stream back to mlog source text,
// one line per line_break, tokens separated by single spaces.
func renderMlog(tokens []*value.Value) string {
	var b strings.Builder
	first := true
	for _, t := range tokens {
		if t.Kind == value.LineBreak {
			b.WriteByte('\n')
			first = true
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		b.WriteString(t.String())
		first = false
	}
	return b.String()
}
