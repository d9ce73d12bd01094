package engine

import (
	"fmt"
	"math/big"

	"github.com/hashlife/internal/rule"
	"github.com/hashlife/pkg/host"
	"github.com/hashlife/pkg/utils"
)

// maxLoadFactor is the hash occupancy above which the table doubles. The
// move-to-front heuristic keeps chains usable well past this point, which
// is what lets the engine keep running with a frozen limit when the memory
// budget is exhausted.
const maxLoadFactor = 0.7

// defaultMaxMem is the default soft memory budget (256 MB).
const defaultMaxMem = 256 * 1024 * 1024

// Engine is a multi-state hashlife universe. The zero value is not usable;
// create engines with New.
type Engine struct {
	rule   rule.Rule
	hostcb host.Callbacks
	poller Poller
	logger utils.Logger

	root  *node
	depth int

	zeroNodes []*node

	// the save stack pins nodes across allocating operations so the GC
	// treats them as roots
	stack []*node

	hashTab   []*node
	hashPop   uint64
	hashLimit uint64
	hashMask  uint64

	halvesDone int
	alloced    uint64
	maxMem     uint64

	freeNodes   *node
	chunks      [][]node
	totalThings uint64
	idCounter   uint64
	okayToGC    bool

	population   big.Int
	generation   big.Int
	increment    big.Int
	setIncrement big.Int
	pow2step     big.Int
	nonpow2      int
	ngens        int

	popValid bool
	needPop  bool
	inGC     bool

	hashed        bool
	cacheInvalid  bool
	softInterrupt bool

	gcCount int
	gcStep  int
	verbose bool

	timeline Timeline

	// rendering scratch state, set up for the duration of one Draw call
	renderer                           Renderer
	view                               *Viewport
	uviewh, uvieww, viewh, vieww       int
	mag, pmag                          int
	llbits                             int
	llxb, llyb                         []int8
	pixbuf                             [pmsize * pmsize * bpp]byte
	cellRGBA                           [256][4]byte
	state1RGBA                         [4]byte
	deadAlpha, liveAlpha               uint8
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithHost installs the host callbacks.
func WithHost(cb host.Callbacks) Option {
	return func(e *Engine) { e.hostcb = cb }
}

// WithPoller installs the cooperative cancellation poller.
func WithPoller(p Poller) Option {
	return func(e *Engine) { e.poller = p }
}

// WithLogger installs the logger used for status reporting.
func WithLogger(l utils.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMaxMemory sets the soft memory budget in megabytes.
func WithMaxMemory(mb int) Option {
	return func(e *Engine) { e.maxMem = uint64(mb) << 20 }
}

// WithVerbose enables status reporting for GCs and resizes.
func WithVerbose(v bool) Option {
	return func(e *Engine) { e.verbose = v }
}

// New creates an empty universe evolving under r. The universe starts in
// drawing mode: cells can be set cheaply before the first Step or query
// canonicalizes the tree.
func New(r rule.Rule, opts ...Option) *Engine {
	e := &Engine{
		rule:   r,
		maxMem: defaultMaxMem,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.hostcb == nil {
		e.hostcb = host.NewDefault()
	}
	if e.poller == nil {
		e.poller = NewDefaultPoller()
	}
	if e.logger == nil {
		e.logger = utils.GetGlobalLogger()
	}

	size := nextHashSize(nodesPerChunk)
	e.hashTab = make([]*node, size)
	e.hashMask = size - 1
	e.hashLimit = uint64(maxLoadFactor * float64(size))
	e.alloced = size * ptrSize

	e.root = e.newNode()
	e.depth = 1
	e.increment.SetInt64(1)
	e.setIncrement.SetInt64(1)
	e.pow2step.SetInt64(1)
	e.nonpow2 = 1
	return e
}

// Rule returns the installed rule plug-in.
func (e *Engine) Rule() rule.Rule { return e.rule }

// NumCellStates returns the alphabet size of the installed rule.
func (e *Engine) NumCellStates() int { return e.rule.NumCellStates() }

// DefaultRule returns the default rule of the installed family.
func (e *Engine) DefaultRule() string { return e.rule.DefaultRule() }

// GetRule returns the canonical rule string.
func (e *Engine) GetRule() string { return e.rule.GetRule() }

// SetRule installs a new rule. Changing the transition invalidates every
// cached result; the caches are rebuilt lazily by the next Step.
func (e *Engine) SetRule(s string) error {
	if err := e.poller.BailIfCalculating(); err != nil {
		return err
	}
	if err := e.rule.SetRule(s); err != nil {
		return err
	}
	e.cacheInvalid = true
	return nil
}

// SetMaxMemory sets the soft memory budget in megabytes (minimum 10).
func (e *Engine) SetMaxMemory(mb int) {
	if mb < 10 {
		mb = 10
	}
	newLimit := uint64(mb) << 20
	if e.alloced > newLimit {
		e.hostcb.Warning("Sorry, more memory currently used than allowed.")
		return
	}
	e.maxMem = newLimit
	e.hashLimit = uint64(maxLoadFactor * float64(len(e.hashTab)))
}

// GetMaxMemory returns the soft memory budget in megabytes.
func (e *Engine) GetMaxMemory() int { return int(e.maxMem >> 20) }

// Generation returns the current generation count.
func (e *Engine) Generation() *big.Int { return new(big.Int).Set(&e.generation) }

// SetGeneration sets the generation counter.
func (e *Engine) SetGeneration(g *big.Int) { e.generation.Set(g) }

// resize doubles the hash table, garbage collecting first when permitted.
// When the doubling would break the memory budget the limit is frozen and
// the engine keeps running with longer chains.
func (e *Engine) resize() {
	if e.okayToGC {
		e.doGC(false)
	}
	newSize := nextHashSize(2 * uint64(len(e.hashTab)))
	if uint64(len(e.hashTab)) > e.totalThings>>2 {
		if e.alloced > e.maxMem || newSize*ptrSize > e.maxMem-e.alloced {
			e.hashLimit = ^uint64(0)
			return
		}
	}
	if e.verbose {
		e.hostcb.Status(fmt.Sprintf("Resizing hash to %d...", newSize))
	}
	newTab := make([]*node, newSize)
	e.alloced += ptrSize * (newSize - uint64(len(e.hashTab)))
	newMask := newSize - 1
	for _, p := range e.hashTab {
		for p != nil {
			np := p.next
			var h uint64
			if p.isNode() {
				h = nodeHash(p.nw, p.ne, p.sw, p.se)
			} else {
				h = leafHash(p.cnw, p.cne, p.csw, p.cse)
			}
			h &= newMask
			p.next = newTab[h]
			newTab[h] = p
			p = np
		}
	}
	e.hashTab = newTab
	e.hashMask = newMask
	e.hashLimit = uint64(maxLoadFactor * float64(newSize))
	if e.verbose {
		e.hostcb.Status("Resizing hash done.")
	}
}

// find returns the canonical node with the given children, creating and
// hashing it if needed. Found entries move to the front of their chain.
// The returned node is pushed on the save stack.
func (e *Engine) find(nw, ne, sw, se *node) *node {
	h := nodeHash(nw, ne, sw, se) & e.hashMask
	var pred *node
	for p := e.hashTab[h]; p != nil; p = p.next {
		// compare nw first: it distinguishes nodes from leaves as well
		if nw == p.nw && ne == p.ne && sw == p.sw && se == p.se {
			if pred != nil {
				// move to front
				pred.next = p.next
				p.next = e.hashTab[h]
				e.hashTab[h] = p
			}
			return e.save(p)
		}
		pred = p
	}
	p := e.newNode()
	p.nw, p.ne, p.sw, p.se = nw, ne, sw, se
	p.next = e.hashTab[h]
	e.hashTab[h] = p
	e.hashPop++
	e.save(p)
	if e.hashPop > e.hashLimit {
		e.resize()
	}
	return p
}

// findLeaf is find for leaves, keyed by the four cell states.
func (e *Engine) findLeaf(nw, ne, sw, se byte) *node {
	h := leafHash(nw, ne, sw, se) & e.hashMask
	var pred *node
	for p := e.hashTab[h]; p != nil; p = p.next {
		if !p.isNode() && nw == p.cnw && ne == p.cne && sw == p.csw && se == p.cse {
			if pred != nil {
				pred.next = p.next
				p.next = e.hashTab[h]
				e.hashTab[h] = p
			}
			return e.save(p)
		}
		pred = p
	}
	p := e.newLeaf()
	p.cnw, p.cne, p.csw, p.cse = nw, ne, sw, se
	p.leafpop = b2u(nw != 0) + b2u(ne != 0) + b2u(sw != 0) + b2u(se != 0)
	p.next = e.hashTab[h]
	e.hashTab[h] = p
	e.hashPop++
	e.save(p)
	if e.hashPop > e.hashLimit {
		e.resize()
	}
	return p
}

func b2u(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// rehash reinserts a node whose chain membership was dropped.
func (e *Engine) rehash(n *node) {
	var h uint64
	if n.isNode() {
		h = nodeHash(n.nw, n.ne, n.sw, n.se)
	} else {
		h = leafHash(n.cnw, n.cne, n.csw, n.cse)
	}
	h &= e.hashMask
	n.next = e.hashTab[h]
	e.hashTab[h] = n
}

// zeroNode returns the canonical all-zero node at the given depth,
// memoizing one per depth. Zero-nodes are never collected.
func (e *Engine) zeroNode(depth int) *node {
	for depth >= len(e.zeroNodes) {
		e.zeroNodes = append(e.zeroNodes, nil)
	}
	if e.zeroNodes[depth] == nil {
		if depth == 0 {
			e.zeroNodes[depth] = e.findLeaf(0, 0, 0, 0)
		} else {
			z := e.zeroNode(depth - 1)
			e.zeroNodes[depth] = e.find(z, z, z, z)
		}
	}
	return e.zeroNodes[depth]
}

// deepestZero returns the deepest materialized zero-node, or nil.
func (e *Engine) deepestZero() *node {
	for i := len(e.zeroNodes) - 1; i >= 0; i-- {
		if e.zeroNodes[i] != nil {
			return e.zeroNodes[i]
		}
	}
	return nil
}

// nodeDepth walks nw children to the leaf to measure a node's depth.
func nodeDepth(n *node) int {
	depth := 0
	for n.isNode() {
		depth++
		n = n.nw
	}
	return depth
}

// pushRoot1 expands an uncanonicalized universe by a factor of two,
// reusing the root in place. Only valid before hashing starts.
func (e *Engine) pushRoot1() {
	t := e.newNode()
	t.se = e.root.nw
	e.root.nw = t
	t = e.newNode()
	t.sw = e.root.ne
	e.root.ne = t
	t = e.newNode()
	t.ne = e.root.sw
	e.root.sw = t
	t = e.newNode()
	t.nw = e.root.se
	e.root.se = t
	e.depth++
}

// pushRoot wraps a hashed node in a zero-padded node one depth deeper so
// the old node becomes the central quadrant.
func (e *Engine) pushRoot(n *node) *node {
	depth := nodeDepth(n)
	e.zeroNode(depth + 1) // ensure zeros are deep enough
	z := e.zeroNode(depth - 1)
	return e.find(
		e.find(z, z, z, n.nw),
		e.find(z, z, n.ne, z),
		e.find(z, n.sw, z, z),
		e.find(n.se, z, z, z))
}

// popZeros peels exclusively-zero outer layers off a node to keep the
// depth minimal.
func (e *Engine) popZeros(n *node) *node {
	depth := nodeDepth(n)
	for depth > 1 {
		z := e.zeroNode(depth - 2)
		if n.nw.nw == z && n.nw.ne == z && n.nw.sw == z &&
			n.ne.nw == z && n.ne.ne == z && n.ne.se == z &&
			n.sw.nw == z && n.sw.sw == z && n.sw.se == z &&
			n.se.ne == z && n.se.sw == z && n.se.se == z {
			depth--
			n = e.find(n.nw.se, n.ne.sw, n.sw.ne, n.se.nw)
		} else {
			break
		}
	}
	return n
}

// hashPattern canonicalizes a drawing-mode universe by filling nil
// children with zero-nodes and interning every node. The original nodes
// return to the free list.
func (e *Engine) hashPattern(root *node, depth int) *node {
	if root == nil {
		return e.zeroNode(depth)
	}
	if depth == 0 {
		r := e.findLeaf(root.cnw, root.cne, root.csw, root.cse)
		root.next = e.freeNodes
		e.freeNodes = root
		return r
	}
	depth--
	r := e.find(
		e.hashPattern(root.nw, depth),
		e.hashPattern(root.ne, depth),
		e.hashPattern(root.sw, depth),
		e.hashPattern(root.se, depth))
	root.next = e.freeNodes
	e.freeNodes = root
	return r
}

// EndOfPattern canonicalizes the universe after drawing-mode edits.
func (e *Engine) EndOfPattern() error {
	if err := e.poller.BailIfCalculating(); err != nil {
		return err
	}
	e.ensureHashed()
	e.popValid = false
	e.needPop = false
	e.inGC = false
	return nil
}

// ensureHashed canonicalizes the universe; safe to call mid-step.
func (e *Engine) ensureHashed() {
	if !e.hashed {
		e.root = e.hashPattern(e.root, e.depth)
		e.zeroNode(e.depth)
		e.hashed = true
		e.popValid = false
		e.inGC = false
	}
}

// ClearAll resets the pattern to empty. The node pool and result caches
// are retained.
func (e *Engine) ClearAll() error {
	if err := e.poller.BailIfCalculating(); err != nil {
		return err
	}
	if !e.hashed {
		e.root = e.hashPattern(e.root, e.depth)
		e.hashed = true
	}
	e.clearStack()
	e.root = e.zeroNode(1)
	e.depth = 1
	e.popValid = false
	e.needPop = false
	return nil
}

// IsEmpty reports whether the universe has no live cells.
func (e *Engine) IsEmpty() bool {
	e.ensureHashed()
	return e.root == e.zeroNode(e.depth)
}

// calcPop computes the subtree population, hanging partial totals on the
// nodes so shared subtrees are counted once.
func (e *Engine) calcPop(n *node, depth int) *big.Int {
	if n == e.zeroNode(depth) {
		return bigZero
	}
	if depth == 0 {
		return big.NewInt(int64(n.leafpop))
	}
	if n.flags&flagPop != 0 {
		return n.pop
	}
	depth--
	n.flags |= flagPop
	sum := new(big.Int)
	sum.Add(sum, e.calcPop(n.nw, depth))
	sum.Add(sum, e.calcPop(n.ne, depth))
	sum.Add(sum, e.calcPop(n.sw, depth))
	sum.Add(sum, e.calcPop(n.se, depth))
	n.pop = sum
	return sum
}

// afterCalcPop clears the scratch totals left behind by calcPop.
func (e *Engine) afterCalcPop(n *node, depth int) {
	if depth == 0 || n == e.zeroNode(depth) {
		return
	}
	if n.flags&flagPop == 0 {
		return
	}
	n.flags &^= flagPop
	n.pop = nil
	if depth > 1 {
		e.afterCalcPop(n.nw, depth-1)
		e.afterCalcPop(n.ne, depth-1)
		e.afterCalcPop(n.sw, depth-1)
		e.afterCalcPop(n.se, depth-1)
	}
}

var bigZero = new(big.Int)
var bigNegOne = big.NewInt(-1)

// calcPopulation recomputes the memoized population of the universe.
func (e *Engine) calcPopulation() {
	e.ensureHashed()
	depth := nodeDepth(e.root)
	e.population.Set(e.calcPop(e.root, depth))
	e.afterCalcPop(e.root, depth)
}

// GetPopulation returns the number of live cells, or -1 when a valid value
// is not currently available (during GC or an ongoing calculation).
func (e *Engine) GetPopulation() *big.Int {
	if !e.popValid {
		if e.inGC {
			e.needPop = true
			return new(big.Int).Set(bigNegOne)
		}
		if e.poller.IsCalculating() {
			return new(big.Int).Set(bigNegOne)
		}
		e.calcPopulation()
		e.popValid = true
		e.needPop = false
	}
	return new(big.Int).Set(&e.population)
}
