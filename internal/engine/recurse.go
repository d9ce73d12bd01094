package engine

// The result cache. For a node at depth k the cached result is the central
// square of half the side, advanced 2^ngens generations where ngens <= k-1.
// getRes is the only place the cache field is assigned; interrupt unwinds
// return a zero-node placeholder without caching it, so an aborted step
// leaves no wrong entries behind.

// getRes returns the cached result of n, computing and caching it on miss.
func (e *Engine) getRes(n *node, depth int) *node {
	if n.res != nil {
		return n.res
	}
	if e.poller.Poll() || e.softInterrupt {
		return e.zeroNode(depth - 1)
	}
	sp := len(e.stack)
	depth--
	var res *node
	if e.ngens >= depth {
		if n.nw.isNode() {
			res = e.doRecurs(n.nw, n.ne, n.sw, n.se, depth)
		} else {
			res = e.doRecursLeaf(n.nw, n.ne, n.sw, n.se)
		}
	} else {
		if n.nw.isNode() {
			res = e.doRecursHalf(n.nw, n.ne, n.sw, n.se, depth)
		} else {
			e.hostcb.Fatal("can't happen: half step at leaf level")
		}
	}
	e.pop(sp)
	if e.softInterrupt || e.poller.IsInterrupted() {
		// don't assign this to the cache field
		res = e.zeroNode(depth)
	} else {
		if e.ngens < depth && e.halvesDone < 1000 {
			e.halvesDone++
		}
		n.res = res
	}
	return res
}

// doRecurs is the classical nine-to-four step: build nine auxiliary squares
// covering the 3x3 tiling one level down, advance each by the full step,
// then advance four overlapping 2x2 groups of the results. Each level of
// recursion advances the pattern 2^(depth-1) generations.
func (e *Engine) doRecurs(n, ne, t, east *node, depth int) *node {
	sp := len(e.stack)
	t11 := e.getRes(e.find(n.se, ne.sw, t.ne, east.nw), depth)
	t00 := e.getRes(n, depth)
	t01 := e.getRes(e.find(n.ne, ne.nw, n.se, ne.sw), depth)
	t02 := e.getRes(ne, depth)
	t12 := e.getRes(e.find(ne.sw, ne.se, east.nw, east.ne), depth)
	t10 := e.getRes(e.find(n.sw, n.se, t.nw, t.ne), depth)
	t20 := e.getRes(t, depth)
	t21 := e.getRes(e.find(t.ne, east.nw, t.se, east.sw), depth)
	t22 := e.getRes(east, depth)
	t44 := e.getRes(e.find(t11, t12, t21, t22), depth)
	t43 := e.getRes(e.find(t10, t11, t20, t21), depth)
	t33 := e.getRes(e.find(t00, t01, t10, t11), depth)
	t34 := e.getRes(e.find(t01, t02, t11, t12), depth)
	r := e.find(t33, t34, t43, t44)
	e.pop(sp)
	return e.save(r)
}

// doRecursHalf advances by only one recursion step at this level: the nine
// auxiliary squares are built one level smaller and their results compose
// directly, without the second recursion.
func (e *Engine) doRecursHalf(n, ne, t, east *node, depth int) *node {
	sp := len(e.stack)
	var r *node
	if depth > 1 {
		t00 := e.find(n.nw.se, n.ne.sw, n.sw.ne, n.se.nw)
		t01 := e.find(n.ne.se, ne.nw.sw, n.se.ne, ne.sw.nw)
		t02 := e.find(ne.nw.se, ne.ne.sw, ne.sw.ne, ne.se.nw)
		t10 := e.find(n.sw.se, n.se.sw, t.nw.ne, t.ne.nw)
		t11 := e.find(n.se.se, ne.sw.sw, t.ne.ne, east.nw.nw)
		t12 := e.find(ne.sw.se, ne.se.sw, east.nw.ne, east.ne.nw)
		t20 := e.find(t.nw.se, t.ne.sw, t.sw.ne, t.se.nw)
		t21 := e.find(t.ne.se, east.nw.sw, t.se.ne, east.sw.nw)
		t22 := e.find(east.nw.se, east.ne.sw, east.sw.ne, east.se.nw)
		r = e.find(
			e.getRes(e.find(t00, t01, t10, t11), depth),
			e.getRes(e.find(t01, t02, t11, t12), depth),
			e.getRes(e.find(t10, t11, t20, t21), depth),
			e.getRes(e.find(t11, t12, t21, t22), depth))
	} else {
		t00 := e.getRes(n, depth)
		t01 := e.getRes(e.find(n.ne, ne.nw, n.se, ne.sw), depth)
		t10 := e.getRes(e.find(n.sw, n.se, t.nw, t.ne), depth)
		t11 := e.getRes(e.find(n.se, ne.sw, t.ne, east.nw), depth)
		t02 := e.getRes(ne, depth)
		t12 := e.getRes(e.find(ne.sw, ne.se, east.nw, east.ne), depth)
		t20 := e.getRes(t, depth)
		t21 := e.getRes(e.find(t.ne, east.nw, t.se, east.sw), depth)
		t22 := e.getRes(east, depth)
		r = e.find(
			e.findLeaf(t00.cse, t01.csw, t10.cne, t11.cnw),
			e.findLeaf(t01.cse, t02.csw, t11.cne, t12.cnw),
			e.findLeaf(t10.cse, t11.csw, t20.cne, t21.cnw),
			e.findLeaf(t11.cse, t12.csw, t21.cne, t22.cnw))
	}
	e.pop(sp)
	return e.save(r)
}

// doRecursLeaf bottoms out the recursion at a 2x2 block of leaves by
// assembling nine 3x3 windows and asking the rule plug-in for each center.
func (e *Engine) doRecursLeaf(nw, ne, sw, se *node) *node {
	next := e.rule.NextState
	return e.findLeaf(
		next(nw.cnw, nw.cne, ne.cnw,
			nw.csw, nw.cse, ne.csw,
			sw.cnw, sw.cne, se.cnw),
		next(nw.cne, ne.cnw, ne.cne,
			nw.cse, ne.csw, ne.cse,
			sw.cne, se.cnw, se.cne),
		next(nw.csw, nw.cse, ne.csw,
			sw.cnw, sw.cne, se.cnw,
			sw.csw, sw.cse, se.csw),
		next(nw.cse, ne.csw, ne.cse,
			sw.cne, se.cnw, se.cne,
			sw.cse, se.csw, se.cse))
}
