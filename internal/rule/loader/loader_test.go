package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashlife/pkg/host"
)

const echoTreeSection = `@TREE
num_states=2
num_neighbors=4
num_nodes=6
1 0 0
1 0 1
2 1 1
3 2 2
4 3 3
5 4 4
`

const flipTableSection = `@TABLE
n_states:2
neighborhood:vonNeumann
symmetries:none
010001
110000
`

func writeRuleFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".rule"), []byte(content), 0644))
}

func TestDefaultIsTree(t *testing.T) {
	l := New(nil)
	assert.Equal(t, "B3/S23", l.DefaultRule())
	assert.Equal(t, "B3/S23", l.GetRule())
	assert.Equal(t, 2, l.NumCellStates())

	// a lone live cell dies under Life
	assert.Equal(t, byte(0), l.NextState(0, 0, 0, 0, 1, 0, 0, 0, 0))
	// three neighbors give birth
	assert.Equal(t, byte(1), l.NextState(1, 1, 1, 0, 0, 0, 0, 0, 0))
}

func TestDefaultTableRule(t *testing.T) {
	l := New(nil)
	require.NoError(t, l.SetRule("Langtons-Loops"))
	assert.Equal(t, "Langtons-Loops", l.GetRule())
	assert.Equal(t, 8, l.NumCellStates())
}

func TestRuleFileWithTableSection(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "Flip", "@RULE Flip\n\n"+flipTableSection)

	l := New(&host.Default{UserDir: dir})
	require.NoError(t, l.SetRule("Flip"))
	assert.Equal(t, "Flip", l.GetRule())
	assert.Equal(t, byte(1), l.NextState(0, 1, 0, 0, 0, 0, 0, 0, 0))
}

func TestRuleFileWithTreeSection(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "Echo", "@RULE Echo\n\n"+echoTreeSection)

	l := New(&host.Default{UserDir: dir})
	require.NoError(t, l.SetRule("Echo"))
	assert.Equal(t, "Echo", l.GetRule())
	assert.Equal(t, byte(1), l.NextState(0, 0, 0, 0, 1, 0, 0, 0, 0))
	assert.Equal(t, byte(0), l.NextState(1, 1, 1, 1, 0, 1, 1, 1, 1))
}

func TestSystemDirFallbackForPaletteOnlyOverride(t *testing.T) {
	userDir := t.TempDir()
	sysDir := t.TempDir()
	// the user copy only overrides colors; the table lives in the system copy
	writeRuleFile(t, userDir, "Flip", "@RULE Flip\n@COLORS\n1 255 0 0\n")
	writeRuleFile(t, sysDir, "Flip", "@RULE Flip\n\n"+flipTableSection)

	l := New(&host.Default{UserDir: userDir, RulesDir: sysDir})
	require.NoError(t, l.SetRule("Flip"))
	assert.Equal(t, "Flip", l.GetRule())
}

func TestFallbackToBareTableFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Flip.table"), []byte(
		"n_states:2\nneighborhood:vonNeumann\nsymmetries:none\n010001\n"), 0644))

	l := New(&host.Default{UserDir: dir})
	require.NoError(t, l.SetRule("Flip"))
	assert.Equal(t, "Flip", l.GetRule())
}

func TestFallbackToBareTreeFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Echo.tree"), []byte(
		"num_states=2\nnum_neighbors=4\nnum_nodes=6\n1 0 0\n1 0 1\n2 1 1\n3 2 2\n4 3 3\n5 4 4\n"), 0644))

	l := New(&host.Default{UserDir: dir})
	require.NoError(t, l.SetRule("Echo"))
	assert.Equal(t, "Echo", l.GetRule())
}

func TestUnknownRule(t *testing.T) {
	l := New(&host.Default{UserDir: t.TempDir()})
	err := l.SetRule("NoSuchRule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoSuchRule")
}

func TestRuleFileWithoutSections(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "Colors", "@RULE Colors\n@COLORS\n1 255 0 0\n")

	l := New(&host.Default{UserDir: dir})
	err := l.SetRule("Colors")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no @TABLE or @TREE section")
}
