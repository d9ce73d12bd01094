package engine

import "fmt"

// The garbage collector. A stop-the-world mark-and-sweep runs when an
// allocation would push past the soft memory budget, proactively before a
// resize, and before a full cache invalidation. Roots are the current
// root, the save stack, every timeline frame and the deepest zero-node.

// save pins a node against collection for the duration of the current
// allocating operation and returns it.
func (e *Engine) save(n *node) *node {
	e.stack = append(e.stack, n)
	return n
}

// pop drops the save stack back to a previous watermark.
func (e *Engine) pop(sp int) {
	e.stack = e.stack[:sp]
}

// clearStack empties the save stack.
func (e *Engine) clearStack() {
	e.stack = e.stack[:0]
}

// gcMark marks everything reachable from root. With invalidate set, cached
// results are cleared instead of followed.
func (e *Engine) gcMark(root *node, invalidate bool) {
	if root.flags&flagMark != 0 {
		return
	}
	root.flags |= flagMark
	if root.isNode() {
		e.gcMark(root.nw, invalidate)
		e.gcMark(root.ne, invalidate)
		e.gcMark(root.sw, invalidate)
		e.gcMark(root.se, invalidate)
		if root.res != nil {
			if invalidate {
				root.res = nil
			} else {
				e.gcMark(root.res, invalidate)
			}
		}
	}
}

// doGC marks from the roots, rebuilds the hash index from the allocation
// chunks and threads every unmarked node onto the free list. With
// invalidate set every cached result dies too, forcing the next step to
// recompute from the leaves.
func (e *Engine) doGC(invalidate bool) {
	e.inGC = true
	e.gcCount++
	e.gcStep++
	var status string
	if e.verbose {
		if e.gcStep > 1 {
			status = fmt.Sprintf("GC #%d(%d)", e.gcCount, e.gcStep)
		} else {
			status = fmt.Sprintf("GC #%d", e.gcCount)
		}
		e.hostcb.Status(status)
	}
	if z := e.deepestZero(); z != nil {
		e.gcMark(z, false) // never invalidate the zero-nodes
	}
	if e.root != nil {
		e.gcMark(e.root, invalidate)
	}
	for _, n := range e.stack {
		e.poller.Poll()
		e.gcMark(n, invalidate)
	}
	for _, frame := range e.timeline.Frames {
		e.gcMark(frame, invalidate)
	}

	e.hashPop = 0
	for i := range e.hashTab {
		e.hashTab[i] = nil
	}
	e.freeNodes = nil
	var freed uint64
	for _, chunk := range e.chunks {
		e.poller.Poll()
		for i := range chunk {
			pp := &chunk[i]
			if pp.flags&flagMark != 0 {
				pp.flags &^= flagMark
				var h uint64
				if pp.isNode() {
					h = nodeHash(pp.nw, pp.ne, pp.sw, pp.se)
				} else {
					h = leafHash(pp.cnw, pp.cne, pp.csw, pp.cse)
				}
				h &= e.hashMask
				pp.next = e.hashTab[h]
				e.hashTab[h] = pp
				e.hashPop++
			} else {
				pp.next = e.freeNodes
				e.freeNodes = pp
				freed++
			}
		}
	}
	e.inGC = false
	if e.verbose {
		perc := float64(freed) / float64(e.totalThings) * 100.0
		e.hostcb.Status(fmt.Sprintf("%s freed %g percent (%d).", status, perc, freed))
	}
	if e.needPop {
		e.calcPopulation()
		e.popValid = true
		e.needPop = false
		e.poller.UpdatePop()
	}
}

// InvalidateCache schedules a full result-cache invalidation; it takes
// effect at the start of the next step.
func (e *Engine) InvalidateCache() {
	e.cacheInvalid = true
}

// clearCacheDepth clears cached results at depths >= clearto below n,
// marking handled nodes so shared subtrees are visited once.
func (e *Engine) clearCacheDepth(n *node, depth, clearto int) {
	if n.flags&flagMark != 0 {
		return
	}
	n.flags |= flagMark
	if depth > 1 {
		depth--
		e.poller.Poll()
		e.clearCacheDepth(n.nw, depth, clearto)
		e.clearCacheDepth(n.ne, depth, clearto)
		e.clearCacheDepth(n.sw, depth, clearto)
		e.clearCacheDepth(n.se, depth, clearto)
		if n.res != nil {
			e.clearCacheDepth(n.res, depth, clearto)
		}
	}
	if depth >= clearto {
		n.res = nil
	}
}

// newNgens installs a new log-step value. Cached results computed for a
// deeper step are invalid, so the whole hash is walked clearing results at
// depths above min(old, new), except when the step grows and no half
// steps were done.
func (e *Engine) newNgens(newval int) {
	clearto := e.ngens
	if newval > e.ngens && e.halvesDone == 0 {
		e.ngens = newval
		return
	}
	e.doGC(false)
	if e.verbose {
		e.hostcb.Status("Changing increment...")
	}
	if newval < clearto {
		clearto = newval
	}
	clearto++ // clear this depth and above
	if clearto < 1 {
		clearto = 1
	}
	e.ngens = newval
	e.inGC = true
	for _, p := range e.hashTab {
		for ; p != nil; p = p.next {
			if p.isNode() && p.flags&flagMark == 0 {
				e.clearCacheDepth(p, nodeDepth(p), clearto)
			}
		}
	}
	for _, chunk := range e.chunks {
		e.poller.Poll()
		for i := range chunk {
			chunk[i].flags &^= flagMark
		}
	}
	e.halvesDone = 0
	e.inGC = false
	if e.needPop {
		e.calcPopulation()
		e.popValid = true
		e.needPop = false
		e.poller.UpdatePop()
	}
	if e.verbose {
		e.hostcb.Status("Changing increment... done.")
	}
}
