package jvn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// External state reference (all three variants):
//
//	0      ground
//	1-8    sensitized construction states
//	9-12   ordinary transmission E,N,W,S
//	13-16  excited ordinary transmission E,N,W,S
//	17-20  special transmission E,N,W,S
//	21-24  excited special transmission E,N,W,S
//	25-28  confluent states (29-31: Nobili/Hutton crossings)

// next is a convenience wrapper: NextState ignores the diagonals.
func next(j *JvN, c, n, s, e, w byte) byte {
	return j.NextState(0, n, 0, w, c, e, 0, s, 0)
}

func TestRuleSelection(t *testing.T) {
	j := New()
	assert.Equal(t, "JvN29", j.DefaultRule())

	cases := map[string]int{
		"JvN29":     29,
		"jvn29":     29,
		"JvN-29":    29,
		"Nobili32":  32,
		"JvN-32":    32,
		"Hutton32":  32,
		"modJvN-32": 32,
	}
	for name, states := range cases {
		require.NoError(t, j.SetRule(name), name)
		assert.Equal(t, states, j.NumCellStates(), name)
	}

	require.NoError(t, j.SetRule("Hutton32"))
	assert.Error(t, j.SetRule("Life"))
	// failed selection leaves the previous rule installed
	assert.Equal(t, "Hutton32", j.GetRule())
}

func TestJvN29ExcitationPropagates(t *testing.T) {
	j := New()
	require.NoError(t, j.SetRule("JvN29"))

	// an excited east OTS relaxes to its quiescent state...
	assert.Equal(t, byte(9), next(j, 13, 0, 0, 0, 0))
	// ...while the ground cell to its east becomes sensitized
	assert.Equal(t, byte(1), next(j, 0, 0, 0, 0, 13))
	// a quiescent OTS fed excitation from behind becomes excited
	assert.Equal(t, byte(13), next(j, 9, 0, 0, 0, 13))
	// excitation does not travel against the arrow
	assert.Equal(t, byte(9), next(j, 9, 0, 0, 13, 0))
}

func TestJvN29SensitizedChain(t *testing.T) {
	j := New()
	require.NoError(t, j.SetRule("JvN29"))

	// feeding 1,0,0,0,0 builds an east OTS: 1 -> 2 -> 4 -> 8 -> ...
	s := next(j, 0, 0, 0, 0, 13) // ground + excitation = state 1
	require.Equal(t, byte(1), s)
	s = next(j, s, 0, 0, 0, 0) // 10
	require.Equal(t, byte(2), s)
	s = next(j, s, 0, 0, 0, 0) // 100
	require.Equal(t, byte(4), s)
	s = next(j, s, 0, 0, 0, 0) // 1000
	require.Equal(t, byte(8), s)
	s = next(j, s, 0, 0, 0, 0) // 10000 resolves to an east OTS
	assert.Equal(t, byte(9), s)
}

func TestJvN29SpecialKillsOrdinary(t *testing.T) {
	j := New()
	require.NoError(t, j.SetRule("JvN29"))

	// an excited STS pointing at an OTS destroys it
	assert.Equal(t, byte(0), next(j, 9, 0, 0, 0, 21))
	// and an excited OTS destroys an STS
	assert.Equal(t, byte(0), next(j, 17, 0, 0, 0, 13))
}

func TestJvN29Confluent(t *testing.T) {
	j := New()
	require.NoError(t, j.SetRule("JvN29"))

	// a confluent cell with an excited input charges with one generation
	// of delay: 25 -> 26 -> 27 (emitting) -> 25
	assert.Equal(t, byte(26), next(j, 25, 0, 0, 0, 13))
	assert.Equal(t, byte(27), next(j, 26, 0, 0, 0, 9))
	assert.Equal(t, byte(25), next(j, 27, 0, 0, 0, 9))
	// an unexcited input keeps it quiescent
	assert.Equal(t, byte(25), next(j, 25, 0, 0, 0, 9))
	// an excited special input destroys a confluent cell
	assert.Equal(t, byte(0), next(j, 25, 0, 0, 0, 21))
}

func TestNobili32Crossing(t *testing.T) {
	j := New()
	require.NoError(t, j.SetRule("Nobili32"))

	// two excited streams crossing a confluent cell: horizontal in from
	// the west, vertical in from the south, outputs north and east
	c := next(j, 25, 10, 14, 9, 13)
	assert.Equal(t, byte(31), c, "both directions excited")
}

func TestHutton32Quiescence(t *testing.T) {
	j := New()
	require.NoError(t, j.SetRule("Hutton32"))

	// an isolated quiescent OTS stays quiescent
	for _, s := range []byte{9, 10, 11, 12} {
		assert.Equal(t, s, next(j, s, 0, 0, 0, 0))
	}
	// an excited OTS facing ground becomes the end-of-wire marker: the
	// excited STS with the same direction
	assert.Equal(t, byte(21), next(j, 13, 0, 0, 0, 0))
	// ground stays ground
	assert.Equal(t, byte(0), next(j, 0, 0, 0, 0, 0))
}

func TestHutton32Sensitization(t *testing.T) {
	j := New()
	require.NoError(t, j.SetRule("Hutton32"))

	// an excited OTS arrow sensitizes the ground cell ahead of it
	assert.Equal(t, byte(1), next(j, 0, 0, 0, 0, 13))
	// an excited STS arrow writes a forward OTS directly
	assert.Equal(t, byte(9), next(j, 0, 0, 0, 0, 21))
}

func TestHutton32SpecialKillsOrdinary(t *testing.T) {
	j := New()
	require.NoError(t, j.SetRule("Hutton32"))

	// an excited STS arrow destroys the OTS it points at
	assert.Equal(t, byte(0), next(j, 11, 0, 0, 0, 21))
	// but an excited OTS cannot destroy an STS head-on: the STS gets
	// destroyed only when the arrow is not opposing
	assert.Equal(t, byte(0), next(j, 18, 0, 0, 0, 13))
}

func TestHutton32HeadOnOTS(t *testing.T) {
	j := New()
	require.NoError(t, j.SetRule("Hutton32"))

	// head-on excitation is excluded: a west-pointing OTS ignores an
	// excited east arrow coming from the west
	assert.Equal(t, byte(11), next(j, 11, 0, 0, 0, 13))
}

func TestHutton32Confluent(t *testing.T) {
	j := New()
	require.NoError(t, j.SetRule("Hutton32"))

	// all inputs on: quiescent confluent charges up
	assert.Equal(t, byte(26), next(j, 25, 0, 0, 0, 13))
	// charged confluent with inputs gone emits and discharges
	assert.Equal(t, byte(27), next(j, 26, 0, 0, 0, 9))
	// an excited STS destroys any confluent state
	assert.Equal(t, byte(0), next(j, 27, 0, 0, 0, 21))
}

func TestPalette(t *testing.T) {
	j := New()
	p := j.Palette()
	assert.False(t, p.Gradient)
	assert.Equal(t, uint8(48), p.R[0])
	assert.Equal(t, uint8(255), p.R[1])
	assert.Equal(t, uint8(21), p.R[31])
}

func TestBoundedGridSuffix(t *testing.T) {
	j := New()
	require.NoError(t, j.SetRule("JvN29:T64,64"))
	assert.Equal(t, "JvN29:T64,64", j.GetRule())
	assert.True(t, j.Grid().Bounded())
}
