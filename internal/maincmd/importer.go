package maincmd

import (
	"os"
	"path/filepath"
)

// fsImporter resolves imports against the real filesystem, grounded on
// spec.md §4.3's import resolution rules (relative to cwd, or to the
// transpiler's own install directory for "std/..." paths).
type fsImporter struct {
	stdDir string
}

func newFSImporter() *fsImporter {
	// "std/..." import paths already carry the "std" segment, so they
	// resolve against the install directory itself, not its std subfolder.
	dir := "."
	if exe, err := os.Executable(); err == nil {
		dir = filepath.Dir(exe)
	}
	return &fsImporter{stdDir: dir}
}

func (f *fsImporter) Resolve(cwd, path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Join(cwd, path), nil
}

func (f *fsImporter) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (f *fsImporter) ReadFileBytes(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (f *fsImporter) InstallStdDir() string { return f.stdDir }
