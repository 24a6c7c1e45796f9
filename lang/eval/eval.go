// Package eval implements the transpiler's compile-time evaluator
// (spec.md §4.2-§4.3): a single-pass, recursive, scoped interpreter that
// simultaneously expands macros/functions, runs the compile-time
// meta-language, and emits mlog passthrough lines or schematic directives.
// Grounded on original_source/sfmlog.py's _executer.
package eval

import (
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/skyethefoxyfox/sfmlog/lang/diag"
	"github.com/skyethefoxyfox/sfmlog/lang/schem"
	"github.com/skyethefoxyfox/sfmlog/lang/token"
	"github.com/skyethefoxyfox/sfmlog/lang/value"
)

// blockInstructions is the closed set of keywords that open a nested body
// terminated by "end"; readTill/readSections must track nesting depth
// against exactly this set (spec.md §4.3).
var blockInstructions = map[string]bool{
	"defmac": true, "deffun": true, "proc": true,
	"if": true, "while": true, "for": true, "discard": true,
}

// conditions is the set of pop/if/while operation names whose operands, if
// of the same type, compare directly instead of being coerced to numbers
// (spec.md §4.3 "Math semantics").
var conditions = map[string]bool{
	"equal": true, "notEqual": true, "lessThan": true, "greaterThan": true,
	"lessThanEq": true, "greaterThanEq": true, "strictEqual": true,
}

// Importer resolves and reads an imported file's source given the
// importing evaluator's cwd. It exists so tests can inject an in-memory
// filesystem without touching disk.
type Importer interface {
	// Resolve returns the absolute path PATH resolves to from cwd, and
	// ReadFile returns its contents.
	Resolve(cwd, path string) (string, error)
	ReadFile(path string) (string, error)
	// ReadFileBytes reads path as raw bytes, for "file openbin".
	ReadFileBytes(path string) ([]byte, error)
	// InstallStdDir returns the directory "std/..." imports resolve
	// against instead of cwd.
	InstallStdDir() string
}

// Diagnostics collects warnings and "log" console output produced during
// evaluation, so the caller controls where they're written. Fatal "error"
// diagnostics are returned as errors, not sent here.
type Diagnostics interface {
	Warning(w *diag.Warning)
	Log(line string)
}

// Evaluator is the recursive, scoped evaluation unit described by
// spec.md §3's Evaluator entity. Child evaluators (import, macro/function
// call, proc, if/while/for/discard body) share Vars/GlobalVars/Macros/
// Functions/MacroRunCounts/CalledFunctions/SchemBuilder by reference with
// their parent; only ScopeStr and Owners are copied by value. `discard`
// gives its child copies of Vars/GlobalVars/Macros/Functions and fresh run
// counts; a `proc` gives its child fresh Vars, run counts and
// called-function tracking.
type Evaluator struct {
	// SpawnPos is this evaluator's own spawn position (the instruction
	// that created it: an import, a macro/function call, or a block head).
	// It becomes the last Owners frame for any evaluator it, in turn,
	// spawns.
	SpawnPos token.Position
	Owners   []diag.Frame

	Lines       [][]*value.Value
	ExecPointer int

	Output []*value.Value

	Cwd       string
	GlobalCwd string
	ScopeStr  string

	// Vars/GlobalVars are plain maps rather than the teacher's swiss.Map:
	// `discard` needs a full shallow copy of both, a capability the
	// teacher's own swiss wrapper never implements (its Iterate() panics
	// unimplemented), so scope storage here uses the builtin map instead.
	Vars       map[string]*value.Value
	GlobalVars map[string]*value.Value
	Macros     map[string]*value.Macro
	Functions  map[string]*value.Function
	Consts     map[string][]*value.Value

	MacroRunCounts  map[string]int
	CalledFunctions *[]string
	macroCallChain  []string // guards against a macro calling itself, see SPEC_FULL.md §4

	SchemBuilder *schem.Builder
	AllowMlog    bool
	IsRoot       bool
	IsProcessor  bool

	Importer    Importer
	Diagnostics Diagnostics

	instructions map[string]builtinFunc
}

type builtinFunc func(*Evaluator, *InstructionLine) error

// defaultGlobals seeds the root evaluator's global variables, matching
// original_source/sfmlog.py's _executer.DEFAULT_GLOBALS.
func defaultGlobals(pos token.Position) map[string]*value.Value {
	return map[string]*value.Value{
		"PROCESSOR_TYPE":         value.NewContent("micro-processor", pos),
		"SCHEMATIC_NAME":         value.NewQuotedString(`"SFMlog Schematic"`, pos),
		"SCHEMATIC_DESCRIPTION":  value.NewQuotedString(`"This schematic was generated using SFMlog."`, pos),
	}
}

// NewRoot builds the root evaluator for a freshly tokenized source file.
// Mlog emission is disallowed at this level (spec.md §4.2).
func NewRoot(tokens []*value.Value, cwd string, schemBuilder *schem.Builder, importer Importer, diagnostics Diagnostics) *Evaluator {
	ev := &Evaluator{
		Lines:           groupLines(tokens),
		Cwd:             cwd,
		GlobalCwd:       cwd,
		ScopeStr:        "_",
		Vars:            map[string]*value.Value{},
		GlobalVars:      map[string]*value.Value{},
		Macros:          map[string]*value.Macro{},
		Functions:       map[string]*value.Function{},
		Consts:          map[string][]*value.Value{},
		MacroRunCounts:  map[string]int{},
		CalledFunctions: new([]string),
		SchemBuilder:    schemBuilder,
		AllowMlog:       false,
		IsRoot:          true,
		Importer:        importer,
		Diagnostics:     diagnostics,
	}
	var zeroPos token.Position
	for name, v := range defaultGlobals(zeroPos) {
		ev.GlobalVars[name] = v
	}
	ev.registerBuiltins()
	return ev
}

// groupLines splits a flat token stream into per-line slices, each still
// ending with its trailing LineBreak token.
func groupLines(tokens []*value.Value) [][]*value.Value {
	var lines [][]*value.Value
	var cur []*value.Value
	for _, t := range tokens {
		cur = append(cur, t)
		if t.Kind == value.LineBreak {
			lines = append(lines, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// child spawns a new evaluator at spawnPos sharing this evaluator's
// variable/macro/function/schematic state by reference, per spec.md §5.
func (ev *Evaluator) child(spawnPos token.Position, code []*value.Value) *Evaluator {
	c := &Evaluator{
		SpawnPos:        spawnPos,
		Owners:          append(append([]diag.Frame{}, ev.Owners...), diag.Frame{Pos: ev.SpawnPos}),
		Lines:           groupLines(code),
		Cwd:             ev.Cwd,
		GlobalCwd:       ev.GlobalCwd,
		ScopeStr:        ev.ScopeStr,
		Vars:            ev.Vars,
		GlobalVars:      ev.GlobalVars,
		Macros:          ev.Macros,
		Functions:       ev.Functions,
		Consts:          ev.Consts,
		MacroRunCounts:  ev.MacroRunCounts,
		CalledFunctions: ev.CalledFunctions,
		macroCallChain:  ev.macroCallChain,
		SchemBuilder:    ev.SchemBuilder,
		AllowMlog:       ev.AllowMlog,
		Importer:        ev.Importer,
		Diagnostics:     ev.Diagnostics,
		instructions:    ev.instructions,
	}
	return c
}

func (ev *Evaluator) frame(at token.Position) diag.Frame { return diag.Frame{Pos: at} }

// errorf builds a fatal *diag.Error anchored at `at`, with this
// evaluator's owner chain prepended exactly as spec.md §4.5 describes.
func (ev *Evaluator) errorf(at token.Position, format string, args ...any) error {
	owners := append(append([]diag.Frame{}, ev.Owners...), ev.frame(ev.SpawnPos))
	return diag.Newf(owners, at, format, args...)
}

func (ev *Evaluator) warnf(at token.Position, format string, args ...any) {
	if ev.Diagnostics == nil {
		return
	}
	owners := append(append([]diag.Frame{}, ev.Owners...), ev.frame(ev.SpawnPos))
	ev.Diagnostics.Warning(diag.NewWarning(fmt.Sprintf(format, args...), owners, at))
}

// Execute runs this evaluator's lines to completion, returning the first
// fatal error encountered (if any). It is the direct analog of
// original_source/sfmlog.py's _executer.execute.
func (ev *Evaluator) Execute() error {
	for ev.ExecPointer < len(ev.Lines) {
		line, err := ev.expandConstsInLine(ev.Lines[ev.ExecPointer])
		if err != nil {
			return err
		}
		inst := &InstructionLine{tokens: line, ev: ev}
		if err := ev.execInstruction(inst); err != nil {
			return err
		}
		ev.ExecPointer++
	}
	if ev.IsProcessor {
		if err := ev.expandFunctions(); err != nil {
			return err
		}
	}
	if ev.IsRoot && ev.SchemBuilder != nil {
		procType := ev.GlobalVars["PROCESSOR_TYPE"]
		name := ev.GlobalVars["SCHEMATIC_NAME"]
		desc := ev.GlobalVars["SCHEMATIC_DESCRIPTION"]
		ev.SchemBuilder.ProcessorTypeDefault = strings.TrimPrefix(procType.Str, "@")
		ev.SchemBuilder.Name = name.Unquote()
		ev.SchemBuilder.Description = desc.Unquote()
	}
	return nil
}

func (ev *Evaluator) execInstruction(inst *InstructionLine) error {
	head := inst.tokens[0]
	if head.Kind == value.LineBreak {
		return nil
	}
	if head.Kind == value.Instruction || head.Kind == value.Label || head.Kind == value.GlobalLabel {
		if head.Kind == value.Label || head.Kind == value.GlobalLabel {
			return ev.outputInstruction(inst)
		}
		if fn, ok := ev.instructions[head.Str]; ok {
			return fn(ev, inst)
		}
	}
	return ev.outputInstruction(inst)
}

// outputInstruction resolves and appends a passthrough mlog line.
func (ev *Evaluator) outputInstruction(inst *InstructionLine) error {
	if !ev.AllowMlog {
		return ev.errorf(inst.Pos(), "mlog instructions not allowed outside a 'proc' block")
	}
	for _, t := range inst.tokens {
		rv := ev.resolveVar(t)
		if !rv.Exportable() {
			return ev.errorf(t.Pos, "unable to output type %q to mlog", rv.Kind)
		}
		ev.Output = append(ev.Output, rv)
	}
	return nil
}

// varKey renders an identifier token's storage key: scope ++ bare name,
// exactly the string it would print as mlog output. Storing Vars under
// this rendered key (rather than the bare name) is what lets every
// evaluator in a macro/function/control-flow chain share the *same*
// underlying map without collisions: two concurrent expansions of the
// same macro carry different ScopeStr stamps and therefore land at
// different keys, even though the map object itself is one shared
// reference (spec.md §3, §5).
func (ev *Evaluator) varKey(t *value.Value) string {
	scoped := t.WithScope(ev.ScopeStr)
	return scoped.Scope() + scoped.Str
}

// resolveVar implements spec.md §4.2's resolution rules.
func (ev *Evaluator) resolveVar(t *value.Value) *value.Value {
	switch t.Kind {
	case value.Identifier:
		if v, ok := ev.Vars[ev.varKey(t)]; ok {
			return v.WithScope(ev.ScopeStr).AtPos(t.Pos)
		}
	case value.GlobalIdentifier:
		if v, ok := ev.GlobalVars[t.Str]; ok {
			return v.WithScope("").AtPos(t.Pos)
		}
	case value.Content:
		if rv, ok := ev.resolveSpecial(t.Str, t.Pos); ok {
			return rv
		}
	}
	return t.WithScope(ev.ScopeStr)
}

// lookupDirect returns the actual stored *value.Value for an identifier
// or global_identifier token, without the copy-on-resolve WithScope
// wrapping resolveVar performs. list/table mutating operations need this
// so in-place edits stay visible through every alias of the variable
// (spec.md §5: "list and table mutations aliased across children are
// observed").
func (ev *Evaluator) lookupDirect(t *value.Value) (*value.Value, bool) {
	switch t.Kind {
	case value.Identifier:
		v, ok := ev.Vars[ev.varKey(t)]
		return v, ok
	case value.GlobalIdentifier:
		v, ok := ev.GlobalVars[t.Str]
		return v, ok
	default:
		return nil, false
	}
}

// resolveSpecial resolves the special content names described by
// spec.md §6.
func (ev *Evaluator) resolveSpecial(name string, pos token.Position) (*value.Value, bool) {
	switch name {
	case "@cwd":
		return value.NewString(ev.Cwd, pos), true
	case "@ctime":
		return value.NewNumber(float64(time.Now().UnixMilli()), pos), true
	case "@ptime":
		return value.NewNumber(processCPUMillis(), pos), true
	}
	return nil, false
}

// processCPUMillis reads this process's own CPU time (user+system) via
// getrusage, the only way to answer "process CPU milliseconds" without an
// external profiling dependency - no example repo in the pack ships one.
func processCPUMillis() float64 {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	user := float64(ru.Utime.Sec)*1000 + float64(ru.Utime.Usec)/1000
	sys := float64(ru.Stime.Sec)*1000 + float64(ru.Stime.Usec)/1000
	return user + sys
}

// resolveString resolves t and renders it the way `strop`/`log`/`error`
// need: a plain unquoted Go string, with lists/tables rendered
// recursively, matching resolve_string/resolve_output.
func (ev *Evaluator) resolveString(t *value.Value) string {
	rv := ev.resolveVar(t)
	return ev.renderString(rv)
}

func (ev *Evaluator) renderString(rv *value.Value) string {
	switch rv.Kind {
	case value.String:
		return rv.Unquote()
	case value.List:
		parts := make([]string, len(rv.Items))
		for i, it := range rv.Items {
			parts[i] = ev.renderString(it)
		}
		return "[" + join(parts, ", ") + "]"
	case value.Table:
		var parts []string
		for _, k := range rv.Tbl.Keys() {
			v, _ := rv.Tbl.Get(k)
			parts = append(parts, fmt.Sprintf("%v: %s", k, ev.renderString(v)))
		}
		return "{" + join(parts, ", ") + "}"
	default:
		return rv.String()
	}
}

func join(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

// writeVar implements spec.md §4.2's write semantics: plain identifiers
// write to Vars (except "_", silently discarded), global identifiers write
// to GlobalVars. Any other token kind is not a writable slot, and the call
// is a silent no-op (matching write_var's bool-and-ignore usage).
func (ev *Evaluator) writeVar(name *value.Value, v *value.Value) {
	switch name.Kind {
	case value.Identifier:
		if name.Str != "_" {
			ev.Vars[ev.varKey(name)] = v
		}
	case value.GlobalIdentifier:
		ev.GlobalVars[name.Str] = v
	}
}

// coerceNum implements spec.md §4.3's coerce_num.
func (ev *Evaluator) coerceNum(t *value.Value) float64 {
	switch t.Kind {
	case value.Number:
		return t.Num
	case value.Null:
		return 0
	case value.String:
		if t.Unquote() == "" {
			return 0
		}
		return 1
	case value.Identifier, value.GlobalIdentifier:
		return 0
	default:
		return 1
	}
}

// readTill reads (and consumes) lines up to a matching `end`, respecting
// nesting against blockInstructions, and returns the flattened token run
// excluding the terminating `end` line. ok is false if EOF was reached
// first (caller must report "'end' expected, but not found").
func (ev *Evaluator) readTill(endWord string) ([]*value.Value, bool) {
	lines, ok := ev.readLinesTill(endWord)
	if !ok {
		return nil, false
	}
	var out []*value.Value
	for _, l := range lines {
		out = append(out, l...)
	}
	return out, true
}

func (ev *Evaluator) readLinesTill(endWord string) ([][]*value.Value, bool) {
	var lines [][]*value.Value
	level := 0
	for {
		ev.ExecPointer++
		if ev.ExecPointer >= len(ev.Lines) {
			return nil, false
		}
		line := ev.Lines[ev.ExecPointer]
		head := line[0]
		switch {
		case head.Kind == value.Instruction && blockInstructions[head.Str]:
			level++
		case head.Kind == value.Instruction && head.Str == endWord && level > 0:
			level--
		case head.Kind == value.Instruction && head.Str == endWord && level == 0:
			return lines, true
		}
		lines = append(lines, line)
	}
}

// section is one if/elif/else branch: the head line (if/elif/else) plus
// its body tokens.
type section struct {
	head *InstructionLine
	body []*value.Value
}

// readSections reads up to a matching `end`, splitting into sections at
// any of splitWords seen at nesting level 0 (spec.md §4.3 if/elif/else).
func (ev *Evaluator) readSections(endWord string, splitWords map[string]bool) ([]section, bool) {
	var sections []section
	var body []*value.Value
	prevHead := ev.Lines[ev.ExecPointer]
	level := 0
	for {
		ev.ExecPointer++
		if ev.ExecPointer >= len(ev.Lines) {
			return nil, false
		}
		line := ev.Lines[ev.ExecPointer]
		head := line[0]
		switch {
		case head.Kind == value.Instruction && blockInstructions[head.Str]:
			body = append(body, line...)
			level++
		case head.Kind == value.Instruction && head.Str == endWord && level > 0:
			body = append(body, line...)
			level--
		case head.Kind == value.Instruction && splitWords[head.Str] && level == 0:
			sections = append(sections, section{head: &InstructionLine{tokens: prevHead, ev: ev}, body: body})
			prevHead = line
			body = nil
		case head.Kind == value.Instruction && head.Str == endWord && level == 0:
			sections = append(sections, section{head: &InstructionLine{tokens: prevHead, ev: ev}, body: body})
			return sections, true
		default:
			body = append(body, line...)
		}
	}
}
