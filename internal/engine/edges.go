package engine

import (
	"math/big"
	"sort"
)

// Boundary queries. FindEdges and Fit descend the tree maintaining four
// edge frontiers (deduplicated vectors of nodes on each side of the
// bounding box). At each step a frontier either moves outward, when any of
// its outer sub-children are live, or moves inward and the tracked extent
// shrinks by two. At leaf level the frontiers collapse to bitmasks over
// the 4-cell boundary strips.

// getBitsFromLeaves ORs the leaf cells of a frontier into edge bits: the
// low 8 bits are the vertical (n/s) information, the high bits horizontal.
func getBitsFromLeaves(v []*node) int {
	var nw, ne, sw, se byte
	for _, p := range v {
		nw |= p.cnw
		ne |= p.cne
		sw |= p.csw
		se |= p.cse
	}
	r := 0
	if nw|sw != 0 {
		r |= 512 // west
	}
	if ne|se != 0 {
		r |= 256 // east
	}
	if nw|ne != 0 {
		r |= 2 // north
	}
	if sw|se != 0 {
		r |= 1 // south
	}
	return r
}

// sortUnique moves src into dest, sorted and deduplicated.
func sortUnique(dest, src *[]*node) {
	*dest, *src = *src, (*dest)[:0]
	d := *dest
	sort.Slice(d, func(i, j int) bool { return d[i].id < d[j].id })
	out := d[:0]
	for i, n := range d {
		if i == 0 || d[i-1] != n {
			out = append(out, n)
		}
	}
	*dest = out
}

// frontierStep advances one frontier a level down. outerA/outerB select
// the children nearer the edge, innerA/innerB the children away from it.
// It reports whether the frontier moved outward.
func frontierStep(front *[]*node, scratch *[]*node, z *node,
	outer func(*node) (*node, *node), inner func(*node) (*node, *node)) bool {
	newv := (*scratch)[:0]
	out := false
	for _, t := range *front {
		a, b := outer(t)
		if !out && (a != z || b != z) {
			newv = newv[:0]
			out = true
		}
		if out {
			if a != z {
				newv = append(newv, a)
			}
			if b != z {
				newv = append(newv, b)
			}
		} else {
			ia, ib := inner(t)
			if ia != z {
				newv = append(newv, ia)
			}
			if ib != z {
				newv = append(newv, ib)
			}
		}
	}
	*scratch = newv
	sortUnique(front, scratch)
	return out
}

var big1 = big.NewInt(1)
var big2 = big.NewInt(2)

// FindEdges returns the bounding edges (top, left, bottom, right) of the
// pattern. An empty universe yields the inverted rectangle top=1, left=1,
// bottom=0, right=0.
func (e *Engine) FindEdges() (top, left, bottom, right *big.Int) {
	e.ensureHashed()
	xmin := big.NewInt(-1)
	xmax := big.NewInt(1)
	ymin := big.NewInt(-1)
	ymax := big.NewInt(1)
	currdepth := e.depth
	if e.root == e.zeroNode(currdepth) {
		return big.NewInt(1), big.NewInt(1), big.NewInt(0), big.NewInt(0)
	}
	topv := []*node{e.root}
	leftv := []*node{e.root}
	bottomv := []*node{e.root}
	rightv := []*node{e.root}
	var scratch []*node

	for currdepth >= 0 {
		currdepth--
		if currdepth == -1 {
			// leaves: collapse the frontiers to bitmasks
			topbm := getBitsFromLeaves(topv) & 0xff
			bottombm := getBitsFromLeaves(bottomv) & 0xff
			leftbm := getBitsFromLeaves(leftv) >> 8
			rightbm := getBitsFromLeaves(rightv) >> 8
			sz := 1 << uint(currdepth+2)
			maskhi := (1 << uint(sz)) - (1 << uint(sz>>1))
			masklo := (1 << uint(sz>>1)) - 1
			ymax.Add(ymax, ymax)
			if topbm&maskhi == 0 {
				ymax.Sub(ymax, big2)
			}
			ymin.Add(ymin, ymin)
			if bottombm&masklo == 0 {
				ymin.Add(ymin, big2)
			}
			xmax.Add(xmax, xmax)
			if rightbm&masklo == 0 {
				xmax.Sub(xmax, big2)
			}
			xmin.Add(xmin, xmin)
			if leftbm&maskhi == 0 {
				xmin.Add(xmin, big2)
			}
			break
		}
		z := e.zeroNode(currdepth)

		ymax.Add(ymax, ymax)
		if !frontierStep(&topv, &scratch, z,
			func(t *node) (*node, *node) { return t.nw, t.ne },
			func(t *node) (*node, *node) { return t.sw, t.se }) {
			ymax.Sub(ymax, big2)
		}
		ymin.Add(ymin, ymin)
		if !frontierStep(&bottomv, &scratch, z,
			func(t *node) (*node, *node) { return t.sw, t.se },
			func(t *node) (*node, *node) { return t.nw, t.ne }) {
			ymin.Add(ymin, big2)
		}
		xmax.Add(xmax, xmax)
		if !frontierStep(&rightv, &scratch, z,
			func(t *node) (*node, *node) { return t.ne, t.se },
			func(t *node) (*node, *node) { return t.nw, t.sw }) {
			xmax.Sub(xmax, big2)
		}
		xmin.Add(xmin, xmin)
		if !frontierStep(&leftv, &scratch, z,
			func(t *node) (*node, *node) { return t.nw, t.sw },
			func(t *node) (*node, *node) { return t.ne, t.se }) {
			xmin.Add(xmin, big2)
		}
	}

	// the descent always reaches the leaves, so the tracked extents are
	// in half-cell units: halve them and the edges are cell coordinates
	xmin.Rsh(xmin, 1)
	xmax.Rsh(xmax, 1)
	ymin.Rsh(ymin, 1)
	ymax.Rsh(ymax, 1)
	xmax.Sub(xmax, big1)
	ymax.Sub(ymax, big1)
	ymin.Neg(ymin)
	ymax.Neg(ymax)
	// ymin/ymax swap because the universe's y axis is flipped internally
	return ymax, xmin, ymin, xmax
}

// Fit recenters the viewport on the pattern and picks the coarsest
// magnification at which it fits. With force false the viewport is left
// alone when the pattern is already fully visible.
func (e *Engine) Fit(view *Viewport, force bool) {
	e.ensureHashed()
	xmin := big.NewInt(-1)
	xmax := big.NewInt(1)
	ymin := big.NewInt(-1)
	ymax := big.NewInt(1)
	xgoal, ygoal := view.Width(), view.Height()
	if xgoal < 8 {
		xgoal = 8
	}
	if ygoal < 8 {
		ygoal = 8
	}
	xsize, ysize := 2, 2
	currdepth := e.depth
	if e.root == e.zeroNode(currdepth) {
		view.Center()
		view.SetMag(MaxMag)
		return
	}
	topv := []*node{e.root}
	leftv := []*node{e.root}
	bottomv := []*node{e.root}
	rightv := []*node{e.root}
	var scratch []*node

	for currdepth >= 0 {
		currdepth--
		if currdepth == -1 {
			topbm := getBitsFromLeaves(topv) & 0xff
			bottombm := getBitsFromLeaves(bottomv) & 0xff
			leftbm := getBitsFromLeaves(leftv) >> 8
			rightbm := getBitsFromLeaves(rightv) >> 8
			sz := 1 << uint(currdepth+2)
			maskhi := (1 << uint(sz)) - (1 << uint(sz>>1))
			masklo := (1 << uint(sz>>1)) - 1
			ymax.Add(ymax, ymax)
			if topbm&maskhi == 0 {
				ymax.Sub(ymax, big2)
				ysize--
			}
			ymin.Add(ymin, ymin)
			if bottombm&masklo == 0 {
				ymin.Add(ymin, big2)
				ysize--
			}
			xmax.Add(xmax, xmax)
			if rightbm&masklo == 0 {
				xmax.Sub(xmax, big2)
				xsize--
			}
			xmin.Add(xmin, xmin)
			if leftbm&maskhi == 0 {
				xmin.Add(xmin, big2)
				xsize--
			}
			xsize <<= 1
			ysize <<= 1
			break
		}
		z := e.zeroNode(currdepth)

		ymax.Add(ymax, ymax)
		if !frontierStep(&topv, &scratch, z,
			func(t *node) (*node, *node) { return t.nw, t.ne },
			func(t *node) (*node, *node) { return t.sw, t.se }) {
			ymax.Sub(ymax, big2)
			ysize--
		}
		ymin.Add(ymin, ymin)
		if !frontierStep(&bottomv, &scratch, z,
			func(t *node) (*node, *node) { return t.sw, t.se },
			func(t *node) (*node, *node) { return t.nw, t.ne }) {
			ymin.Add(ymin, big2)
			ysize--
		}
		ysize *= 2
		xmax.Add(xmax, xmax)
		if !frontierStep(&rightv, &scratch, z,
			func(t *node) (*node, *node) { return t.ne, t.se },
			func(t *node) (*node, *node) { return t.nw, t.sw }) {
			xmax.Sub(xmax, big2)
			xsize--
		}
		xmin.Add(xmin, xmin)
		if !frontierStep(&leftv, &scratch, z,
			func(t *node) (*node, *node) { return t.nw, t.sw },
			func(t *node) (*node, *node) { return t.ne, t.se }) {
			xmin.Add(xmin, big2)
			xsize--
		}
		xsize *= 2
		if xsize > xgoal || ysize > ygoal {
			break
		}
	}

	if currdepth < 0 {
		shift := uint(-currdepth)
		xmin.Rsh(xmin, shift)
		ymin.Rsh(ymin, shift)
		xmax.Rsh(xmax, shift)
		ymax.Rsh(ymax, shift)
	} else {
		shift := uint(currdepth)
		xmin.Lsh(xmin, shift)
		ymin.Lsh(ymin, shift)
		xmax.Lsh(xmax, shift)
		ymax.Lsh(ymax, shift)
	}
	xmax.Sub(xmax, big1)
	ymax.Sub(ymax, big1)
	ymin.Neg(ymin)
	ymax.Neg(ymax)
	if !force {
		// if the pattern corners are already visible, leave the view alone
		if view.Contains(xmin, ymin) && view.Contains(xmax, ymax) {
			return
		}
	}
	mag := -currdepth - 1
	for xsize <= xgoal && ysize <= ygoal && mag < MaxMag {
		mag++
		xsize *= 2
		ysize *= 2
	}
	view.SetPositionMag(xmin, xmax, ymin, ymax, mag)
}
