package engine

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeToString(t *testing.T, e *Engine, comments string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, e.WriteMacrocell(&buf, comments))
	return buf.String()
}

func TestMacrocellRoundTrip(t *testing.T) {
	e := newGenerationsEngine(t, "12/34/3")
	cells := [][2]int64{{0, 0}, {1, 0}, {-3, 2}, {5, -7}, {12, 12}}
	for i, c := range cells {
		e.SetCell(c[0], c[1], 1+i%2)
	}
	serialized := writeToString(t, e, "")

	e2 := newGenerationsEngine(t, "12/34/3")
	require.NoError(t, e2.ReadMacrocell(strings.NewReader(serialized)))

	for i, c := range cells {
		assert.Equal(t, 1+i%2, e2.GetCell(c[0], c[1]), "cell (%d,%d)", c[0], c[1])
	}
	assert.Equal(t, e.GetPopulation().String(), e2.GetPopulation().String())
}

func TestMacrocellHeadersRoundTrip(t *testing.T) {
	e := newLifeEngine(t)
	placeCells(e, glider)
	e.SetIncrementInt64(8)
	require.NoError(t, e.Step())

	serialized := writeToString(t, e, "")
	assert.True(t, strings.HasPrefix(serialized, "[M2]"))
	assert.Contains(t, serialized, "#R B3/S23\n")
	assert.Contains(t, serialized, "#G 8\n")

	e2 := newLifeEngine(t)
	require.NoError(t, e2.ReadMacrocell(strings.NewReader(serialized)))
	assert.Equal(t, "B3/S23", e2.GetRule())
	assert.Equal(t, "8", e2.Generation().String())

	// headers survive a second trip verbatim
	serialized2 := writeToString(t, e2, "")
	assert.Contains(t, serialized2, "#R B3/S23\n")
	assert.Contains(t, serialized2, "#G 8\n")
}

func TestMacrocellStableSecondTrip(t *testing.T) {
	e := newLifeEngine(t)
	placeCells(e, glider)
	e.SetCell(40, 40, 1)
	e.SetCell(-33, 12, 1)

	first := writeToString(t, e, "")

	e2 := newLifeEngine(t)
	require.NoError(t, e2.ReadMacrocell(strings.NewReader(first)))
	second := writeToString(t, e2, "")

	e3 := newLifeEngine(t)
	require.NoError(t, e3.ReadMacrocell(strings.NewReader(second)))
	third := writeToString(t, e3, "")

	// once the tree is canonical the writer assigns identical indices
	assert.Equal(t, second, third)
}

func TestMacrocellComments(t *testing.T) {
	e := newLifeEngine(t)
	e.SetCell(0, 0, 1)

	serialized := writeToString(t, e, "a glider test\n#C already prefixed")
	assert.Contains(t, serialized, "#C a glider test\n")
	assert.Contains(t, serialized, "#C already prefixed\n")

	e2 := newLifeEngine(t)
	require.NoError(t, e2.ReadMacrocell(strings.NewReader(serialized)))
	assert.Equal(t, 1, e2.GetCell(0, 0))
}

func TestMacrocellEmptyUniverse(t *testing.T) {
	e := newLifeEngine(t)
	serialized := writeToString(t, e, "")

	e2 := newLifeEngine(t)
	require.NoError(t, e2.ReadMacrocell(strings.NewReader(serialized)))
	assert.True(t, e2.IsEmpty())
}

func TestMacrocellRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"bad depth":        "[M2] (hashlife 1.0)\n0 1 2 3 4\n",
		"forward child":    "[M2] (hashlife 1.0)\n1 1 0 0 0\n2 5 0 0 0\n",
		"state too high":   "[M2] (hashlife 1.0)\n1 9 0 0 0\n",
		"garbage line":     "[M2] (hashlife 1.0)\nhello world\n",
		"short line":       "[M2] (hashlife 1.0)\n2 1 1\n",
		"frame without def": "[M2] (hashlife 1.0)\n#FRAME 0 1\n1 1 0 0 0\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			e := newGenerationsEngine(t, "12/34/3")
			assert.Error(t, e.ReadMacrocell(strings.NewReader(input)))
		})
	}
}

func TestMacrocellTimelineRoundTrip(t *testing.T) {
	e := newLifeEngine(t)
	placeCells(e, glider)
	require.NoError(t, e.StartTimeline(2, 2))
	e.SetIncrementInt64(4)
	for i := 0; i < 2; i++ {
		require.NoError(t, e.Step())
		e.CaptureFrameIfDue()
	}
	require.Equal(t, 3, e.Timeline().FrameCount())

	serialized := writeToString(t, e, "")
	assert.Contains(t, serialized, "#FRAMES 3 0 2^2\n")
	assert.Contains(t, serialized, "#FRAME 0 ")
	assert.Contains(t, serialized, "#FRAME 2 ")

	e2 := newLifeEngine(t)
	require.NoError(t, e2.ReadMacrocell(strings.NewReader(serialized)))
	tl := e2.Timeline()
	assert.Equal(t, 3, tl.FrameCount())
	assert.Equal(t, 2, tl.Base)
	assert.Equal(t, 2, tl.Expo)
	assert.Equal(t, "0", tl.Start.String())

	// current pattern matches the original end state
	assert.Equal(t,
		collectCells(e, -16, -16, 16, 16),
		collectCells(e2, -16, -16, 16, 16))
}

func TestMacrocellOutOfOrderFrameIsError(t *testing.T) {
	e := newLifeEngine(t)
	placeCells(e, glider)
	require.NoError(t, e.StartTimeline(2, 1))
	serialized := writeToString(t, e, "")

	// renumber the first frame out of order
	broken := strings.Replace(serialized, "#FRAME 0 ", "#FRAME 1 ", 1)
	e2 := newLifeEngine(t)
	assert.Error(t, e2.ReadMacrocell(strings.NewReader(broken)))
}
