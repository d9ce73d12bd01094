package engine

import "math/big"

// The step driver. A requested increment decomposes as nonpow2 * 2^pow2;
// the engine sets ngens = pow2 (scrubbing stale caches) and then advances
// nonpow2 single hashlife steps, each producing a new canonical root.

// SetIncrement sets the number of generations one Step advances. Lowering
// the increment while a step is running requests a soft interrupt so the
// driver can unwind, rescrub and retry.
func (e *Engine) SetIncrement(inc *big.Int) {
	if inc.Cmp(&e.increment) < 0 {
		e.softInterrupt = true
	}
	e.increment.Set(inc)
}

// SetIncrementInt64 is SetIncrement for small increments.
func (e *Engine) SetIncrementInt64(inc int64) {
	e.SetIncrement(big.NewInt(inc))
}

// GetIncrement returns the current increment.
func (e *Engine) GetIncrement() *big.Int { return new(big.Int).Set(&e.increment) }

// Step advances the universe by the current increment. An interrupt from
// the poller abandons partial progress; the universe stays at the last
// completed sub-step.
func (e *Engine) Step() error {
	if err := e.poller.BailIfCalculating(); err != nil {
		return err
	}
	e.poller.SetCalculating(true)
	defer e.poller.SetCalculating(false)

	// loop because the increment may change mid-step, requiring another
	// cache sweep and another attempt
	for {
		clearedDownTo := int(^uint(0) >> 1)
		e.softInterrupt = false
		for e.increment.Cmp(&e.setIncrement) != 0 {
			pending := new(big.Int).Set(&e.increment)
			newpow2 := 0
			t := new(big.Int).Set(pending)
			for t.Sign() > 0 && t.Bit(0) == 0 {
				newpow2++
				t.Rsh(t, 1)
			}
			if !t.IsInt64() || t.Int64() > int64(^uint32(0)>>1) {
				e.hostcb.Fatal("bad increment")
			}
			e.nonpow2 = int(t.Int64())
			downto := newpow2
			if e.ngens < newpow2 {
				downto = e.ngens
			}
			if newpow2 != e.ngens && clearedDownTo > downto {
				e.newNgens(newpow2)
				clearedDownTo = downto
			} else {
				e.ngens = newpow2
			}
			e.setIncrement.Set(pending)
			e.pow2step.SetInt64(1)
			e.pow2step.Lsh(&e.pow2step, uint(newpow2))
		}
		e.gcStep = 0
		for i := 0; i < e.nonpow2; i++ {
			newroot := e.runPattern()
			if newroot == nil || e.softInterrupt || e.poller.IsInterrupted() {
				break
			}
			e.popValid = false
			e.root = newroot
			e.depth = nodeDepth(e.root)
		}
		if e.poller.IsInterrupted() || !e.softInterrupt {
			break
		}
	}
	return nil
}

// runPattern advances the universe by 2^ngens generations. The root is
// padded until the advance window lies strictly inside it, then the
// recursive result is computed and trimmed.
func (e *Engine) runPattern() *node {
	e.ensureHashed()
	n := e.root
	e.save(e.root) // keep the old root alive if we are interrupted
	e.okayToGC = true
	if e.cacheInvalid {
		e.doGC(true) // invalidate the entire cache and recalc leaves
		e.cacheInvalid = false
	}
	depth := nodeDepth(n)
	n = e.pushRoot(n)
	depth++
	n = e.pushRoot(n)
	depth++
	for e.ngens+2 > depth {
		n = e.pushRoot(n)
		depth++
	}
	if z := e.deepestZero(); z != nil {
		e.save(z)
	}
	e.save(n)
	n2 := e.getRes(n, depth)
	e.okayToGC = false
	e.clearStack()
	if e.halvesDone == 1 && n.res != nil {
		n.res = nil
		e.halvesDone = 0
	}
	if e.poller.IsInterrupted() {
		return nil
	}
	n = e.popZeros(n2)
	e.generation.Add(&e.generation, &e.pow2step)
	return n
}
