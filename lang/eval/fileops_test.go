package eval

import (
	"fmt"
	"testing"

	"github.com/skyethefoxyfox/sfmlog/lang/lexer"
	"github.com/stretchr/testify/require"
)

// memImporter is an in-memory Importer test double keyed by resolved path.
type memImporter struct {
	texts map[string]string
	bins  map[string][]byte
}

func (m *memImporter) Resolve(cwd, path string) (string, error) {
	if _, ok := m.texts[path]; ok {
		return path, nil
	}
	if _, ok := m.bins[path]; ok {
		return path, nil
	}
	return "", fmt.Errorf("no such file %q", path)
}

func (m *memImporter) ReadFile(path string) (string, error) {
	s, ok := m.texts[path]
	if !ok {
		return "", fmt.Errorf("no such file %q", path)
	}
	return s, nil
}

func (m *memImporter) ReadFileBytes(path string) ([]byte, error) {
	b, ok := m.bins[path]
	if !ok {
		return nil, fmt.Errorf("no such file %q", path)
	}
	return b, nil
}

func (m *memImporter) InstallStdDir() string { return "std" }

func runWithImporter(t *testing.T, src string, imp *memImporter) *Evaluator {
	t.Helper()
	tokens, err := lexer.Tokenize(src, "test.sfm")
	require.NoError(t, err)
	root := NewRoot(tokens, ".", nil, imp, &recordingDiagnostics{})
	require.NoError(t, root.Execute())
	return root
}

func TestFileOpenAndReadText(t *testing.T) {
	imp := &memImporter{texts: map[string]string{"notes.txt": "hello file"}}
	src := `
file open h "notes.txt"
file read contents h
`
	root := runWithImporter(t, src, imp)
	v, ok := root.Vars[root.varKey(ident("contents"))]
	require.True(t, ok)
	require.Equal(t, "hello file", v.Unquote())
}

func TestFileReadAfterCloseErrors(t *testing.T) {
	imp := &memImporter{texts: map[string]string{"notes.txt": "hello"}}
	tokens, err := lexer.Tokenize(`
file open h "notes.txt"
file close h
file read contents h
`, "test.sfm")
	require.NoError(t, err)
	root := NewRoot(tokens, ".", nil, imp, &recordingDiagnostics{})
	require.Error(t, root.Execute())
}

func TestFileOpenbinReadbytesBigAndLittleEndian(t *testing.T) {
	imp := &memImporter{bins: map[string][]byte{"data.bin": {0x00, 0x01, 0x02, 0x03}}}
	src := `
file openbin h "data.bin"
file readbytes big h 2 "big"
file readbytes little h 2 "little"
`
	root := runWithImporter(t, src, imp)

	big, ok := root.Vars[root.varKey(ident("big"))]
	require.True(t, ok)
	require.Equal(t, 1.0, big.Num) // bytes 0x00 0x01 big-endian

	little, ok := root.Vars[root.varKey(ident("little"))]
	require.True(t, ok)
	require.Equal(t, 770.0, little.Num) // bytes 0x02 0x03, little-endian: 0x0302
}

func TestFileReadbytesCountOutOfRangeErrors(t *testing.T) {
	imp := &memImporter{bins: map[string][]byte{"data.bin": {0x00, 0x01}}}
	tokens, err := lexer.Tokenize(`
file openbin h "data.bin"
file readbytes v h 40
`, "test.sfm")
	require.NoError(t, err)
	root := NewRoot(tokens, ".", nil, imp, &recordingDiagnostics{})
	require.Error(t, root.Execute())
}
