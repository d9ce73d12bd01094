package generations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRule(t *testing.T) {
	g := New()
	assert.Equal(t, "12/34/3", g.GetRule())
	assert.Equal(t, 3, g.NumCellStates())
}

func TestCanonicalization(t *testing.T) {
	cases := map[string]string{
		"12/34/3":      "12/34/3",
		"B34/S12/3":    "12/34/3",
		"S12/B34/3":    "12/34/3",
		"b34_s12_3":    "12/34/3",
		" 1 2 / 3 4/3": "12/34/3",
		"23/3/2":       "23/3/2",
		"B3/S23/2":     "23/3/2",
		"345/2/4":      "345/2/4",
		"12/34/3H":     "12/34/3H",
		"12/34/3V":     "12/34/3V",
		"2e3/3/5":      "2e3/3/5",
	}
	for input, want := range cases {
		g := New()
		require.NoError(t, g.SetRule(input), input)
		assert.Equal(t, want, g.GetRule(), "canonical form of %q", input)
	}
}

func TestRuleErrors(t *testing.T) {
	cases := map[string]string{
		"empty states":       "12/34",
		"too few states":     "12/34/1",
		"too many states":    "12/34/999",
		"three slashes":      "1/2/3/4",
		"double B":           "BB3/S23/3",
		"bad char":           "12x/34/3",
		"digit too high":     "9/3/3",
		"hex digit too high": "7/8/3H",
		"B0 unsupported":     "12/04/3",
		"minus placement":    "-2/3/3",
		"mid neighborhood":   "1H2/34/3",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			g := New()
			assert.Error(t, g.SetRule(input), "rule %q", input)
			// a failed SetRule leaves the previous rule installed
			assert.Equal(t, "12/34/3", g.GetRule())
		})
	}
}

func TestTotalisticTransition(t *testing.T) {
	g := New()
	require.NoError(t, g.SetRule("23/3/2")) // plain Life

	// birth on three neighbors
	assert.Equal(t, byte(1), g.NextState(1, 1, 1, 0, 0, 0, 0, 0, 0))
	// survival on two
	assert.Equal(t, byte(1), g.NextState(1, 1, 0, 0, 1, 0, 0, 0, 0))
	// death on one
	assert.Equal(t, byte(0), g.NextState(1, 0, 0, 0, 1, 0, 0, 0, 0))
	// overcrowding
	assert.Equal(t, byte(0), g.NextState(1, 1, 1, 1, 1, 1, 0, 0, 0))
}

func TestGenerationsDecayChain(t *testing.T) {
	g := New()
	require.NoError(t, g.SetRule("12/34/5"))

	// an unsupported live cell decays one state per generation
	assert.Equal(t, byte(2), g.NextState(0, 0, 0, 0, 1, 0, 0, 0, 0))
	assert.Equal(t, byte(3), g.NextState(0, 0, 0, 0, 2, 0, 0, 0, 0))
	assert.Equal(t, byte(4), g.NextState(0, 0, 0, 0, 3, 0, 0, 0, 0))
	assert.Equal(t, byte(0), g.NextState(0, 0, 0, 0, 4, 0, 0, 0, 0))

	// decaying states block birth but do not count as live neighbors
	assert.Equal(t, byte(0), g.NextState(2, 2, 2, 0, 0, 0, 0, 0, 0))
	// survival counts only state-1 neighbors
	assert.Equal(t, byte(1), g.NextState(1, 2, 0, 0, 1, 0, 0, 0, 0))
}

func TestHexNeighborhood(t *testing.T) {
	g := New()
	require.NoError(t, g.SetRule("2/2/3H"))
	// the NE and SW corners are outside the hex neighborhood
	assert.Equal(t, byte(1), g.NextState(1, 1, 0, 0, 0, 0, 0, 0, 0))
	assert.Equal(t, byte(0), g.NextState(0, 1, 1, 0, 0, 0, 1, 0, 0))
}

func TestVonNeumannNeighborhood(t *testing.T) {
	g := New()
	require.NoError(t, g.SetRule("1/1/3V"))
	// only the orthogonal neighbors count
	assert.Equal(t, byte(1), g.NextState(0, 1, 0, 0, 0, 0, 0, 0, 0))
	assert.Equal(t, byte(0), g.NextState(1, 0, 0, 0, 0, 0, 0, 0, 0))
}

func TestNonTotalistic(t *testing.T) {
	g := New()
	// B2e: birth only when the two neighbors are edge-adjacent in the
	// "e" class arrangement
	require.NoError(t, g.SetRule("/2e/3"))
	canon := g.GetRule()
	assert.Contains(t, canon, "2e")

	// negated letters invert the class set
	g2 := New()
	require.NoError(t, g2.SetRule("/2-e/3"))
	assert.NotEqual(t, canon, g2.GetRule())
}

func TestMAPRule(t *testing.T) {
	// a von Neumann MAP with all-zero transitions: everything decays
	g := New()
	require.NoError(t, g.SetRule("MAPAAAAAA/3"))
	assert.Equal(t, 3, g.NumCellStates())
	assert.Equal(t, byte(0), g.NextState(0, 1, 0, 1, 0, 1, 0, 1, 0))
	assert.Equal(t, byte(2), g.NextState(0, 1, 0, 1, 1, 1, 0, 1, 0))

	canon := g.GetRule()
	assert.Contains(t, canon, "MAP")

	// wrong payload length is rejected
	bad := New()
	assert.Error(t, bad.SetRule("MAPAAAA/3"))
}

func TestBoundedGridSuffix(t *testing.T) {
	g := New()
	require.NoError(t, g.SetRule("12/34/3:T200,100"))
	assert.Equal(t, "12/34/3:T200,100", g.GetRule())
	grid := g.Grid()
	assert.True(t, grid.Bounded())
	assert.Equal(t, 200, grid.Width)
	assert.Equal(t, 100, grid.Height)

	assert.Error(t, g.SetRule("12/34/3:X5,5"))
}
