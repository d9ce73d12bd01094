package engine

import "math/big"

// The draw traversal renders the universe into a fixed 256x256 tile that
// is flushed to the renderer once per tile boundary. The viewport position
// is projected down the tree with per-level bit arrays so the recursion
// itself runs in plain int arithmetic.

const (
	logpmsize = 8 // 256x256 tile
	pmsize    = 1 << logpmsize
	bpp       = 4 // RGBA
	rowoff    = pmsize * bpp
)

// Renderer receives the pixels produced by Draw.
type Renderer interface {
	// JustState asks for raw cell states instead of RGBA pixels.
	JustState() bool

	// PixBlit receives a w x h RGBA tile at viewport position (x, y);
	// pmag is the pixel magnification the tile was drawn at.
	PixBlit(x, y, w, h int, buf []byte, pmag int)

	// StateBlit receives a w x h tile of raw cell states.
	StateBlit(x, y, w, h int, buf []byte)

	// Colors returns the per-state colors and the dead/live alphas.
	Colors() (r, g, b []uint8, deadAlpha, liveAlpha uint8)
}

// drawPixel plots one live pixel using the state-1 color.
func (e *Engine) drawPixel(x, y int) {
	i := ((pmsize-1-y)*pmsize + x) * bpp
	copy(e.pixbuf[i:i+bpp], e.state1RGBA[:])
}

// draw4x4States draws a leaf's 2x2 cells at one pixel per cell.
func (e *Engine) draw4x4States(sw, se, nw, ne byte, llx, lly int) {
	i := (pmsize-1+lly)*pmsize - llx
	if e.renderer.JustState() || e.pmag > 1 {
		e.pixbuf[i] = sw
		e.pixbuf[i+1] = se
		i -= pmsize
		e.pixbuf[i] = nw
		e.pixbuf[i+1] = ne
		return
	}
	if sw != 0 {
		copy(e.pixbuf[i*bpp:i*bpp+bpp], e.cellRGBA[sw][:])
	}
	if se != 0 {
		copy(e.pixbuf[(i+1)*bpp:(i+1)*bpp+bpp], e.cellRGBA[se][:])
	}
	i -= pmsize
	if nw != 0 {
		copy(e.pixbuf[i*bpp:i*bpp+bpp], e.cellRGBA[nw][:])
	}
	if ne != 0 {
		copy(e.pixbuf[(i+1)*bpp:(i+1)*bpp+bpp], e.cellRGBA[ne][:])
	}
}

// draw4x4Nodes draws a depth-1 node as four pixels, one per non-zero
// child, all in the state-1 color.
func (e *Engine) draw4x4Nodes(n, z *node, llx, lly int) {
	i := (pmsize-1+lly)*pmsize - llx
	if n.sw != z {
		copy(e.pixbuf[i*bpp:i*bpp+bpp], e.state1RGBA[:])
	}
	if n.se != z {
		copy(e.pixbuf[(i+1)*bpp:(i+1)*bpp+bpp], e.state1RGBA[:])
	}
	i -= pmsize
	if n.nw != z {
		copy(e.pixbuf[i*bpp:i*bpp+bpp], e.state1RGBA[:])
	}
	if n.ne != z {
		copy(e.pixbuf[(i+1)*bpp:(i+1)*bpp+bpp], e.state1RGBA[:])
	}
}

// killPixels resets the tile to the dead-cell background.
func (e *Engine) killPixels() {
	if e.renderer.JustState() || e.pmag > 1 {
		for i := 0; i < pmsize*pmsize; i++ {
			e.pixbuf[i] = 0
		}
		return
	}
	if e.deadAlpha == 0 {
		// fully transparent dead cells; RGB values are irrelevant
		for i := range e.pixbuf {
			e.pixbuf[i] = 0
		}
		return
	}
	for i := 0; i < pmsize; i++ {
		copy(e.pixbuf[i*bpp:i*bpp+bpp], e.cellRGBA[0][:])
	}
	for i := rowoff; i < len(e.pixbuf); i += rowoff {
		copy(e.pixbuf[i:i+rowoff], e.pixbuf[:rowoff])
	}
}

// renderBM flushes the tile whose lower-left corner is at (x, y).
func (e *Engine) renderBM(x, y int) {
	rx, ry := x, y
	rw, rh := pmsize, pmsize
	if e.pmag > 1 {
		rx *= e.pmag
		ry *= e.pmag
		rw *= e.pmag
		rh *= e.pmag
	}
	ry = e.uviewh - ry - rh
	if e.renderer.JustState() {
		e.renderer.StateBlit(rx, ry, rw, rh, e.pixbuf[:pmsize*pmsize])
	} else {
		e.renderer.PixBlit(rx, ry, rw, rh, e.pixbuf[:], e.pmag)
	}
	e.killPixels()
}

// drawNode recursively draws one node. llx/lly are the screen-pixel
// coordinates of the lower-left pixel, z the zero-node at this depth.
func (e *Engine) drawNode(n *node, llx, lly, depth int, z *node) {
	sw := 1 << uint(depth-e.mag+1)
	if sw >= pmsize &&
		(llx+e.vieww <= 0 || lly+e.viewh <= 0 || llx >= sw || lly >= sw) {
		return
	}
	switch {
	case n == z:
		// empty space
	case depth > 0 && sw > 2:
		z = z.nw
		sw >>= 1
		depth--
		if sw == pmsize>>1 {
			e.drawNode(n.sw, 0, 0, depth, z)
			e.drawNode(n.se, -(pmsize / 2), 0, depth, z)
			e.drawNode(n.nw, 0, -(pmsize / 2), depth, z)
			e.drawNode(n.ne, -(pmsize / 2), -(pmsize / 2), depth, z)
			e.renderBM(-llx, -lly)
		} else {
			e.drawNode(n.sw, llx, lly, depth, z)
			e.drawNode(n.se, llx-sw, lly, depth, z)
			e.drawNode(n.nw, llx, lly-sw, depth, z)
			e.drawNode(n.ne, llx-sw, lly-sw, depth, z)
		}
	case depth > 0 && sw == 2:
		e.draw4x4Nodes(n, z.nw, llx, lly)
	case sw == 1:
		e.drawPixel(-llx, -lly)
	default:
		// a leaf at one pixel per cell
		e.draw4x4States(n.csw, n.cse, n.cnw, n.cne, llx, lly)
	}
}

// fillLL converts the viewport position into per-level direction bits so
// the recursion needs no big arithmetic.
func (e *Engine) fillLL(d int) {
	coorX, coorY := e.view.At(0, e.view.Height()-1)
	coorY.Neg(coorY)
	s := new(big.Int).Lsh(big1, uint(d))
	coorX.Add(coorX, s)
	coorY.Add(coorY, s)
	bitsreq := coorX.BitLen() + 1
	if b := coorY.BitLen() + 1; b > bitsreq {
		bitsreq = b
	}
	if bitsreq <= d {
		bitsreq = d + 1 // the descent reads bit d
	}
	if bitsreq > len(e.llxb) {
		e.llxb = make([]int8, bitsreq)
		e.llyb = make([]int8, bitsreq)
	}
	e.llbits = bitsreq
	// two's complement bits handle positions left of or above the origin
	mod := new(big.Int).Lsh(big1, uint(bitsreq))
	cx := new(big.Int).Mod(coorX, mod)
	cy := new(big.Int).Mod(coorY, mod)
	for i := 0; i < bitsreq; i++ {
		e.llxb[i] = int8(cx.Bit(i))
		e.llyb[i] = int8(cy.Bit(i))
	}
}

// Draw renders every pixel of the viewport exactly once through the
// renderer. The four nodes covering the screen are pushed as far down the
// tree as possible first, so the recursion runs entirely in ints.
func (e *Engine) Draw(view *Viewport, renderer Renderer) {
	e.ensureHashed()
	e.renderer = renderer
	e.view = view
	defer func() {
		e.renderer = nil
		e.view = nil
	}()

	if !renderer.JustState() {
		r, g, b, deadA, liveA := renderer.Colors()
		e.deadAlpha = deadA
		e.liveAlpha = liveA
		e.cellRGBA[0] = [4]byte{r[0], g[0], b[0], deadA}
		liveStates := e.NumCellStates() - 1
		for ui := 1; ui <= liveStates; ui++ {
			e.cellRGBA[ui] = [4]byte{r[ui], g[ui], b[ui], liveA}
		}
		e.state1RGBA = e.cellRGBA[1]
	}

	e.uvieww = view.Width()
	e.uviewh = view.Height()
	if view.Mag() > 0 {
		e.pmag = 1 << uint(view.Mag())
		e.mag = 0
		e.viewh = ((e.uviewh - 1) >> uint(view.Mag())) + 1
		e.vieww = ((e.uvieww - 1) >> uint(view.Mag())) + 1
		e.uviewh += (-e.uviewh) & (e.pmag - 1)
	} else {
		e.mag = -view.Mag()
		e.pmag = 1
		e.viewh = e.uviewh
		e.vieww = e.uvieww
	}
	e.killPixels()

	d := e.depth
	e.fillLL(d)
	maxd := e.vieww
	if e.viewh > maxd {
		maxd = e.viewh
	}
	z := e.zeroNode(d)
	sw, nw, ne, se := e.root, z, z, z
	llx := -int(e.llxb[e.llbits-1])
	lly := -int(e.llyb[e.llbits-1])

	// skip down to the top of the tree
	for i := e.llbits - 1; i > d && i >= e.mag; i-- {
		llx = llx<<1 + int(e.llxb[i])
		lly = lly<<1 + int(e.llyb[i])
		if llx > 2*maxd || lly > 2*maxd || llx < -2*maxd || lly < -2*maxd {
			return
		}
	}
	// find the lowest four nodes covering the screen
	for d > 0 && d-e.mag >= 0 && (d-e.mag > 28 || (1<<uint(d-e.mag)) > 2*maxd) {
		llx = llx<<1 + int(e.llxb[d])
		lly = lly<<1 + int(e.llyb[d])
		if llx >= 1 {
			if lly >= 1 {
				ne = ne.sw
				nw = nw.se
				se = se.nw
				sw = sw.ne
				lly--
			} else {
				ne = se.nw
				nw = sw.ne
				se = se.sw
				sw = sw.se
			}
			llx--
		} else {
			if lly >= 1 {
				ne = nw.se
				nw = nw.sw
				se = sw.ne
				sw = sw.nw
				lly--
			} else {
				ne = sw.ne
				nw = sw.nw
				se = sw.se
				sw = sw.sw
			}
		}
		if llx > 2*maxd || lly > 2*maxd || llx < -2*maxd || lly < -2*maxd {
			return
		}
		d--
	}
	// now 32-bit arithmetic suffices
	for i := d; i >= e.mag; i-- {
		llx = llx<<1 + int(e.llxb[i])
		lly = lly<<1 + int(e.llyb[i])
	}

	if d+1 <= e.mag {
		// the whole universe projects to at most one pixel
		z := e.zeroNode(d)
		if llx > 0 || lly > 0 || llx+e.vieww <= 0 || lly+e.viewh <= 0 ||
			(sw == z && se == z && nw == z && ne == z) {
			// no live cells in view
		} else {
			e.drawPixel(0, 0)
			e.renderBM(-llx, -lly)
		}
		return
	}
	z = e.zeroNode(d)
	maxd = 1 << uint(d-e.mag+2)
	if maxd <= pmsize {
		maxd >>= 1
		e.drawNode(sw, 0, 0, d, z)
		e.drawNode(se, -maxd, 0, d, z)
		e.drawNode(nw, 0, -maxd, d, z)
		e.drawNode(ne, -maxd, -maxd, d, z)
		e.renderBM(-llx, -lly)
	} else {
		maxd >>= 1
		e.drawNode(sw, llx, lly, d, z)
		e.drawNode(se, llx-maxd, lly, d, z)
		e.drawNode(nw, llx, lly-maxd, d, z)
		e.drawNode(ne, llx-maxd, lly-maxd, d, z)
	}
}
