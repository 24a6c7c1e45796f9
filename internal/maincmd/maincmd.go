package maincmd

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mna/mainer"

	"github.com/skyethefoxyfox/sfmlog/lang/clipboard"
	"github.com/skyethefoxyfox/sfmlog/lang/diag"
	"github.com/skyethefoxyfox/sfmlog/lang/eval"
	"github.com/skyethefoxyfox/sfmlog/lang/lexer"
	"github.com/skyethefoxyfox/sfmlog/lang/schem"
)

const binName = "sfmlog"

var (
	shortUsage = fmt.Sprintf(`
usage: %s -s <source_file> [-o <output_file>] [-c]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s -s <source_file> [-o <output_file>] [-c]
       %[1]s -h|--help
       %[1]s -v|--version

A transpiler for a high-level assembly-like language targeting Mindustry
"mlog" processor bytecode.

Valid flag options are:
       -s --src PATH             The file to transpile (required).
       -o --out PATH             The file to write the packed schematic to.
       -c --copy                 Copy the packed schematic to the clipboard.
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Src  string `flag:"s,src"`
	Out  string `flag:"o,out"`
	Copy bool   `flag:"c,copy"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if c.Src == "" {
		return errors.New("missing required flag: --src")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	if err := c.compile(stdio); err != nil {
		if e, ok := diag.AsError(err); ok {
			fmt.Fprintln(stdio.Stderr, e.Error())
			return mainer.ExitCode(2)
		}
		fmt.Fprintln(stdio.Stderr, err)
		return mainer.Failure
	}
	return mainer.Success
}

func (c *Cmd) compile(stdio mainer.Stdio) error {
	src, err := os.ReadFile(c.Src)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}
	abs, err := filepath.Abs(c.Src)
	if err != nil {
		abs = c.Src
	}

	tokens, err := lexer.Tokenize(string(src), abs)
	if err != nil {
		return fmt.Errorf("tokenize: %w", err)
	}

	builder := schem.NewBuilder()
	diagnostics := &stdioDiagnostics{out: stdio.Stdout, err: stdio.Stderr}
	root := eval.NewRoot(tokens, filepath.Dir(abs), builder, newFSImporter(), diagnostics)

	start := time.Now()
	if err := root.Execute(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	schematic, err := builder.Build()
	if err != nil {
		return fmt.Errorf("packing schematic: %w", err)
	}
	payload, err := schematic.Write()
	if err != nil {
		return fmt.Errorf("writing schematic: %w", err)
	}

	fmt.Fprintf(stdio.Stdout, "Created schematic %q in %.2f seconds\n", builder.Name, elapsed.Seconds())

	if c.Copy {
		if err := clipboard.Write(base64.StdEncoding.EncodeToString(payload)); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
	}
	if c.Out != "" {
		if err := os.WriteFile(c.Out, payload, 0o644); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}
