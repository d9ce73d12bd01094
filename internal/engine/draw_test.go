package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRenderer collects blitted tiles into a plain framebuffer.
type testRenderer struct {
	width, height int
	pix           []byte // RGBA
	states        []byte
	justState     bool
	blits         int
}

func newTestRenderer(w, h int, justState bool) *testRenderer {
	return &testRenderer{
		width:     w,
		height:    h,
		pix:       make([]byte, w*h*4),
		states:    make([]byte, w*h),
		justState: justState,
	}
}

func (r *testRenderer) JustState() bool { return r.justState }

func (r *testRenderer) Colors() (cr, cg, cb []uint8, deadAlpha, liveAlpha uint8) {
	var reds, greens, blues [256]uint8
	for i := 1; i < 256; i++ {
		reds[i] = 0xff
		greens[i] = uint8(i)
	}
	return reds[:], greens[:], blues[:], 0, 0xff
}

func (r *testRenderer) PixBlit(x, y, w, h int, buf []byte, pmag int) {
	r.blits++
	if pmag != 1 {
		return // scaled state tiles are exercised by the viewer
	}
	for row := 0; row < h; row++ {
		dy := y + row
		if dy < 0 || dy >= r.height {
			continue
		}
		for col := 0; col < w; col++ {
			dx := x + col
			if dx < 0 || dx >= r.width {
				continue
			}
			src := (row*w + col) * 4
			dst := (dy*r.width + dx) * 4
			copy(r.pix[dst:dst+4], buf[src:src+4])
		}
	}
}

func (r *testRenderer) StateBlit(x, y, w, h int, buf []byte) {
	r.blits++
	for row := 0; row < h; row++ {
		dy := y + row
		if dy < 0 || dy >= r.height {
			continue
		}
		for col := 0; col < w; col++ {
			dx := x + col
			if dx < 0 || dx >= r.width {
				continue
			}
			r.states[dy*r.width+dx] = buf[row*w+col]
		}
	}
}

// livePixels counts pixels with a non-zero alpha.
func (r *testRenderer) livePixels() int {
	n := 0
	for i := 3; i < len(r.pix); i += 4 {
		if r.pix[i] != 0 {
			n++
		}
	}
	return n
}

func TestDrawSingleCell(t *testing.T) {
	e := newLifeEngine(t)
	e.SetCell(0, 0, 1)

	view := NewViewport(256, 256)
	view.SetMag(0) // one pixel per cell
	renderer := newTestRenderer(256, 256, false)
	e.Draw(view, renderer)

	assert.Equal(t, 1, renderer.livePixels())
	assert.Greater(t, renderer.blits, 0)
}

func TestDrawGliderPopulationMatches(t *testing.T) {
	e := newLifeEngine(t)
	placeCells(e, glider)

	view := NewViewport(256, 256)
	view.SetMag(0)
	renderer := newTestRenderer(256, 256, false)
	e.Draw(view, renderer)

	assert.Equal(t, 5, renderer.livePixels())
}

func TestDrawEmptyUniverse(t *testing.T) {
	e := newLifeEngine(t)
	view := NewViewport(128, 128)
	view.SetMag(-2)
	renderer := newTestRenderer(128, 128, false)
	e.Draw(view, renderer)
	assert.Equal(t, 0, renderer.livePixels())
}

func TestDrawZoomedOut(t *testing.T) {
	e := newLifeEngine(t)
	// a 2x2 block survives forever and projects to a single pixel when
	// zoomed far out
	e.SetCell(0, 0, 1)
	e.SetCell(1, 0, 1)
	e.SetCell(0, 1, 1)
	e.SetCell(1, 1, 1)
	require.False(t, e.IsEmpty())

	view := NewViewport(64, 64)
	view.SetMag(-8)
	renderer := newTestRenderer(64, 64, false)
	e.Draw(view, renderer)
	assert.GreaterOrEqual(t, renderer.livePixels(), 1)
}
