package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// glider is the standard B3/S23 glider used across the step tests.
var glider = [][2]int64{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {1, 2}}

func placeCells(e *Engine, cells [][2]int64) {
	for _, c := range cells {
		e.SetCell(c[0], c[1], 1)
	}
}

// collectCells scans a window and returns the live cells found.
func collectCells(e *Engine, x0, y0, x1, y1 int64) map[[2]int64]int {
	cells := map[[2]int64]int{}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if s := e.GetCell(x, y); s != 0 {
				cells[[2]int64{x, y}] = s
			}
		}
	}
	return cells
}

func TestGliderStep4(t *testing.T) {
	e := newLifeEngine(t)
	placeCells(e, glider)

	e.SetIncrementInt64(4)
	require.NoError(t, e.Step())

	// after four generations the glider has moved one cell diagonally
	want := map[[2]int64]int{
		{1, -1}: 1, {2, -1}: 1, {3, -1}: 1, {3, 0}: 1, {2, 1}: 1,
	}
	got := collectCells(e, -8, -8, 8, 8)
	assert.Equal(t, want, got)
	assert.Equal(t, "5", e.GetPopulation().String())
	assert.Equal(t, "4", e.Generation().String())
}

func TestGliderPeriod(t *testing.T) {
	e := newLifeEngine(t)
	placeCells(e, glider)

	// 28 generations = 7 glider periods: pure translation by (7, -7)
	e.SetIncrementInt64(28)
	require.NoError(t, e.Step())

	want := map[[2]int64]int{}
	for _, c := range glider {
		want[[2]int64{c[0] + 7, c[1] - 7}] = 1
	}
	assert.Equal(t, want, collectCells(e, -16, -16, 24, 24))
}

func TestStepDeterminism(t *testing.T) {
	// any factorization of 24 generations produces the same pattern
	factorizations := [][]int64{
		{24},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		{8, 8, 8},
		{16, 4, 4},
		{3, 21},
		{2, 2, 2, 2, 16},
	}
	var reference map[[2]int64]int
	for i, steps := range factorizations {
		e := newLifeEngine(t)
		placeCells(e, glider)
		for _, n := range steps {
			e.SetIncrementInt64(n)
			require.NoError(t, e.Step())
		}
		assert.Equal(t, "24", e.Generation().String(), "factorization %d", i)
		got := collectCells(e, -16, -16, 24, 24)
		if reference == nil {
			reference = got
		} else {
			assert.Equal(t, reference, got, "factorization %d", i)
		}
	}
}

func TestGenerationsDecay(t *testing.T) {
	e := newGenerationsEngine(t, "12/34/3")
	e.SetCell(0, 0, 1)

	// a lone state-1 cell has no neighbors: it decays through state 2
	// and then dies
	e.SetIncrementInt64(1)
	require.NoError(t, e.Step())
	assert.Equal(t, 2, e.GetCell(0, 0))
	assert.False(t, e.IsEmpty())

	require.NoError(t, e.Step())
	assert.True(t, e.IsEmpty())
}

func TestSetRuleInvalidatesCache(t *testing.T) {
	// evolve under one rule, change the rule, and check the next step
	// matches a fresh engine with the same pattern
	e := newGenerationsEngine(t, "23/3/2")
	placeCells(e, glider)
	e.SetIncrementInt64(4)
	require.NoError(t, e.Step())

	require.NoError(t, e.SetRule("12/34/3"))
	require.NoError(t, e.Step())
	got := collectCells(e, -32, -32, 32, 32)

	fresh := newGenerationsEngine(t, "23/3/2")
	placeCells(fresh, glider)
	fresh.SetIncrementInt64(4)
	require.NoError(t, fresh.Step())
	require.NoError(t, fresh.SetRule("12/34/3"))
	require.NoError(t, fresh.Step())

	assert.Equal(t, collectCells(fresh, -32, -32, 32, 32), got)
}

func TestLoweringIncrementScrubsCache(t *testing.T) {
	e := newLifeEngine(t)
	placeCells(e, glider)

	e.SetIncrementInt64(16)
	require.NoError(t, e.Step())

	// lowering the increment must scrub stale results; the next steps
	// still match a straight run
	e.SetIncrementInt64(2)
	for i := 0; i < 4; i++ {
		require.NoError(t, e.Step())
	}
	assert.Equal(t, "24", e.Generation().String())

	straight := newLifeEngine(t)
	placeCells(straight, glider)
	straight.SetIncrementInt64(24)
	require.NoError(t, straight.Step())

	assert.Equal(t,
		collectCells(straight, -16, -16, 24, 24),
		collectCells(e, -16, -16, 24, 24))
}

func TestInterruptLeavesConsistentState(t *testing.T) {
	e := newLifeEngine(t)
	placeCells(e, glider)
	before := collectCells(e, -8, -8, 8, 8)

	p := e.poller.(*DefaultPoller)
	p.Interrupt()
	e.SetIncrementInt64(4)
	require.NoError(t, e.Step())

	// the interrupted step left the pattern untouched
	assert.Equal(t, "0", e.Generation().String())
	assert.Equal(t, before, collectCells(e, -8, -8, 8, 8))

	// and the engine recovers once the interrupt is cleared
	p.Reset()
	require.NoError(t, e.Step())
	assert.Equal(t, "4", e.Generation().String())
}

func TestTimelineCapture(t *testing.T) {
	e := newLifeEngine(t)
	placeCells(e, glider)
	require.NoError(t, e.StartTimeline(2, 2)) // every 4 generations

	e.SetIncrementInt64(4)
	for i := 0; i < 3; i++ {
		require.NoError(t, e.Step())
		e.CaptureFrameIfDue()
	}
	tl := e.Timeline()
	assert.Equal(t, 4, tl.FrameCount()) // initial frame plus three captures
	assert.Equal(t, "0", tl.Start.String())
	assert.Equal(t, "12", tl.End.String())
}

func TestStressManyGenerations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long stress test")
	}
	e := newLifeEngine(t)
	placeCells(e, glider)

	// a large power-of-two step exercises the deep recursion path
	e.SetIncrementInt64(1 << 10)
	require.NoError(t, e.Step())
	assert.Equal(t, fmt.Sprintf("%d", 1<<10), e.Generation().String())

	// the glider translated by 1024/4 = 256 cells diagonally
	want := map[[2]int64]int{}
	for _, c := range glider {
		want[[2]int64{c[0] + 256, c[1] - 256}] = 1
	}
	assert.Equal(t, want, collectCells(e, 240, -272, 272, -240))
}
