package eval

// registerBuiltins wires the instruction-name -> handler table shared by
// every evaluator spawned from this one (children reuse the same map via
// Evaluator.child).
func (ev *Evaluator) registerBuiltins() {
	ev.instructions = map[string]builtinFunc{
		"import": (*Evaluator).instImport,

		"const":   (*Evaluator).instConst,
		"enum":    (*Evaluator).instEnum,
		"endenum": noopEnd,

		"block": (*Evaluator).instBlock,
		"proc":  (*Evaluator).instProc,

		"defmac": (*Evaluator).instDefmac,
		"mac":    (*Evaluator).instMac,

		"deffun": (*Evaluator).instDeffun,
		"fun":    (*Evaluator).instFun,

		"pset":   (*Evaluator).instPset,
		"pop":    (*Evaluator).instPop,
		"strop":  (*Evaluator).instStrop,

		"strlabel": (*Evaluator).instStrlabel,
		"strvar":   (*Evaluator).instStrvar,
		"getmac":   (*Evaluator).instGetmac,

		"list":  (*Evaluator).instList,
		"table": (*Evaluator).instTable,

		"file": (*Evaluator).instFile,

		"if":    (*Evaluator).instIf,
		"while": (*Evaluator).instWhile,
		"for":   (*Evaluator).instFor,

		"discard": (*Evaluator).instDiscard,

		"log":   (*Evaluator).instLog,
		"error": (*Evaluator).instError,
		"warn":  (*Evaluator).instWarn,

		"end": noopEnd,
	}
}

// noopEnd handles a stray "end" reached by direct execution rather than
// by a block reader's readTill/readSections (this only happens for a
// malformed body; readTill always consumes its own "end").
func noopEnd(ev *Evaluator, inst *InstructionLine) error {
	return ev.errorf(inst.Pos(), "'end' without a matching block opener")
}
