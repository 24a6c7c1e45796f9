package token

import "fmt"

// Position is a fully resolved source location: a file path plus the line
// and column encoded by Pos. Unlike Pos it is not meant to be packed tightly
// since it is only materialized when a diagnostic needs to be printed.
type Position struct {
	File string
	Pos  Pos
}

// MakePosition builds a Position from a file path and a line/column pair.
func MakePosition(file string, line, col int) Position {
	return Position{File: file, Pos: MakePos(line, col)}
}

// LineCol returns the line and column encoded by the position.
func (p Position) LineCol() (int, int) { return p.Pos.LineCol() }

// String renders "(line,col)" or "(line,col) in 'file'" when a file is set,
// matching the traceback format the original transpiler prints.
func (p Position) String() string {
	line, col := p.LineCol()
	if p.File == "" {
		return fmt.Sprintf("(%d,%d)", line, col)
	}
	return fmt.Sprintf("(%d,%d) in '%s'", line, col, p.File)
}
