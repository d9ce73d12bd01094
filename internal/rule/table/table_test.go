package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashlife/pkg/host"
)

func TestDefaultRule(t *testing.T) {
	tb := New(nil)
	require.NoError(t, tb.SetRule("Langtons-Loops"))
	assert.Equal(t, "Langtons-Loops", tb.GetRule())
	assert.Equal(t, 8, tb.NumCellStates())
	assert.Equal(t, VonNeumann, tb.Neighborhood())
}

func TestLangtonsLoopsTransitions(t *testing.T) {
	tb := New(nil)
	require.NoError(t, tb.SetRule("Langtons-Loops"))

	// entries straight from the table (c,n,e,s,w -> c'); NextState takes
	// the Moore order and ignores the diagonals for vonNeumann rules
	next := func(c, n, e, s, w byte) byte {
		return tb.NextState(0, n, 0, w, c, e, 0, s, 0)
	}
	// 000000: empty space stays empty
	assert.Equal(t, byte(0), next(0, 0, 0, 0, 0))
	// 000012: rotate4 applies, so inputs 1,2 may arrive rotated
	assert.Equal(t, byte(2), next(0, 0, 0, 1, 2))
	// rotated variant of the same entry
	assert.Equal(t, byte(2), next(0, 1, 2, 0, 0))
	// unmatched neighborhoods leave the center unchanged
	assert.Equal(t, byte(5), next(5, 5, 5, 5, 5))
}

// writeTableFile drops table data into dir/<name>.table.
func writeTableFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".table"), []byte(content), 0644))
}

func TestShortFormTable(t *testing.T) {
	dir := t.TempDir()
	writeTableFile(t, dir, "Flip", `# flips 0<->1 when the north neighbor is 1
n_states:2
neighborhood:vonNeumann
symmetries:none
010001
110000
`)
	cb := &host.Default{UserDir: dir}
	tb := New(cb)
	require.NoError(t, tb.SetRule("Flip"))

	next := func(c, n, e, s, w byte) byte {
		return tb.NextState(0, n, 0, w, c, e, 0, s, 0)
	}
	assert.Equal(t, byte(1), next(0, 1, 0, 0, 0))
	assert.Equal(t, byte(0), next(1, 1, 0, 0, 0))
	// no rule matches: unchanged
	assert.Equal(t, byte(1), next(1, 0, 0, 0, 0))
}

func TestVariablesAndBinding(t *testing.T) {
	dir := t.TempDir()
	writeTableFile(t, dir, "Bound", `n_states:3
neighborhood:vonNeumann
symmetries:none
var a={1,2}
# a is bound: both occurrences take the same value
a,a,0,0,0,0
`)
	cb := &host.Default{UserDir: dir}
	tb := New(cb)
	require.NoError(t, tb.SetRule("Bound"))

	next := func(c, n, e, s, w byte) byte {
		return tb.NextState(0, n, 0, w, c, e, 0, s, 0)
	}
	// matching bound values fire the rule
	assert.Equal(t, byte(0), next(1, 1, 0, 0, 0))
	assert.Equal(t, byte(0), next(2, 2, 0, 0, 0))
	// mismatched values do not
	assert.Equal(t, byte(1), next(1, 2, 0, 0, 0))
}

func TestPermuteSymmetry(t *testing.T) {
	dir := t.TempDir()
	writeTableFile(t, dir, "Perm", `n_states:2
neighborhood:vonNeumann
symmetries:permute
# birth when exactly one neighbor is live, regardless of position
0,1,0,0,0,1
`)
	cb := &host.Default{UserDir: dir}
	tb := New(cb)
	require.NoError(t, tb.SetRule("Perm"))

	next := func(c, n, e, s, w byte) byte {
		return tb.NextState(0, n, 0, w, c, e, 0, s, 0)
	}
	assert.Equal(t, byte(1), next(0, 1, 0, 0, 0))
	assert.Equal(t, byte(1), next(0, 0, 1, 0, 0))
	assert.Equal(t, byte(1), next(0, 0, 0, 1, 0))
	assert.Equal(t, byte(1), next(0, 0, 0, 0, 1))
	// two live neighbors do not match
	assert.Equal(t, byte(0), next(0, 1, 1, 0, 0))
}

func TestMooreRotate4(t *testing.T) {
	dir := t.TempDir()
	writeTableFile(t, dir, "Rot", `n_states:2
neighborhood:Moore
symmetries:rotate4
# fire when n and ne are live
0,1,1,0,0,0,0,0,0,1
`)
	cb := &host.Default{UserDir: dir}
	tb := New(cb)
	require.NoError(t, tb.SetRule("Rot"))

	// Moore input order is c,n,ne,e,se,s,sw,w,nw
	next := func(c, n, ne, e, se, s, sw, w, nw byte) byte {
		return tb.NextState(nw, n, ne, w, c, e, sw, s, se)
	}
	assert.Equal(t, byte(1), next(0, 1, 1, 0, 0, 0, 0, 0, 0))
	// rotated 90 degrees: e and se live
	assert.Equal(t, byte(1), next(0, 0, 0, 1, 1, 0, 0, 0, 0))
	// a reflection is not included in rotate4
	assert.Equal(t, byte(0), next(0, 1, 0, 0, 0, 0, 0, 0, 1))
}

func TestTableErrors(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"missing headers": "0,0,0,0,0,0\n",
		"bad n_states":    "n_states:300\nneighborhood:vonNeumann\nsymmetries:none\n",
		"bad neighborhood": "n_states:2\nneighborhood:diagonal\nsymmetries:none\n",
		"bad symmetries":  "n_states:2\nneighborhood:vonNeumann\nsymmetries:rotate8\n",
		"state too high":  "n_states:2\nneighborhood:vonNeumann\nsymmetries:none\n0,5,0,0,0,0\n",
		"too few entries": "n_states:2\nneighborhood:vonNeumann\nsymmetries:none\n0,1,0,0\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			writeTableFile(t, dir, "Bad", content)
			cb := &host.Default{UserDir: dir}
			tb := New(cb)
			assert.Error(t, tb.SetRule("Bad"))
		})
	}
}

func TestMissingTableFile(t *testing.T) {
	cb := &host.Default{UserDir: t.TempDir()}
	tb := New(cb)
	err := tb.SetRule("NoSuchRule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
}
