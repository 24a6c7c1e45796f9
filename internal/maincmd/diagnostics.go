package maincmd

import (
	"fmt"
	"io"

	"github.com/skyethefoxyfox/sfmlog/lang/diag"
)

// stdioDiagnostics writes warnings and "log" instruction output to the
// process's stdio streams as they're produced during evaluation.
type stdioDiagnostics struct {
	out io.Writer
	err io.Writer
}

func (d *stdioDiagnostics) Warning(w *diag.Warning) {
	fmt.Fprintln(d.err, w.String())
}

func (d *stdioDiagnostics) Log(line string) {
	fmt.Fprintln(d.out, line)
}
