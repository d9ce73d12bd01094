package engine

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// Macrocell I/O: the native textual serialization of the canonical
// quadtree. Each distinct node is written once as a line "d nw ne sw se";
// child fields are 1-based indices of earlier lines, 0 meaning the
// all-zero node one level down. The root is the last line.

// formatSignature is the first line of every macrocell file.
const formatSignature = "[M2] (hashlife 1.0)"

// progressMask throttles progress callouts to every 4096 cells.
const progressMask = 4095

// WriteMacrocell serializes the universe (and any timeline) to w. The
// comments, if non-empty, are emitted as #C lines after the headers.
func (e *Engine) WriteMacrocell(w io.Writer, comments string) error {
	e.ensureHashed()
	depth := nodeDepth(e.root)
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", formatSignature)
	fmt.Fprintf(bw, "#R %s\n", e.GetRule())
	if e.generation.Sign() > 0 {
		fmt.Fprintf(bw, "#G %s\n", e.generation.String())
	}
	if comments != "" {
		for _, line := range strings.Split(strings.TrimRight(comments, "\n"), "\n") {
			if !strings.HasPrefix(line, "#C") {
				fmt.Fprintf(bw, "#C %s\n", line)
			} else {
				fmt.Fprintf(bw, "%s\n", line)
			}
		}
	}

	e.inGC = true // suspend population counting while tags are in use
	defer func() { e.inGC = false }()

	framesToSave := e.timeline.FrameCount()
	if !e.timeline.Save {
		framesToSave = 0
	}
	frameDepths := make([]int, framesToSave)
	counter := uint64(0)

	// pass 1: number every distinct node across the frames and the root
	for i := 0; i < framesToSave; i++ {
		frameDepths[i] = nodeDepth(e.timeline.Frames[i])
	}
	for i := 0; i < framesToSave; i++ {
		e.prescan(e.timeline.Frames[i], frameDepths[i], &counter)
	}
	e.prescan(e.root, depth, &counter)
	writeCells := counter
	counter = 0

	// pass 2: emit in the same order
	if framesToSave > 0 {
		fmt.Fprintf(bw, "#FRAMES %d %s %d^%d\n",
			framesToSave, e.timeline.Start.String(), e.timeline.Base, e.timeline.Expo)
		for i := 0; i < framesToSave; i++ {
			frame := e.timeline.Frames[i]
			e.emit(bw, frame, frameDepths[i], &counter, writeCells)
			fmt.Fprintf(bw, "#FRAME %d %d\n", i, frame.tag)
		}
	}
	e.emit(bw, e.root, depth, &counter, writeCells)

	for i := 0; i < framesToSave; i++ {
		e.afterWrite(e.timeline.Frames[i], frameDepths[i])
	}
	e.afterWrite(e.root, depth)

	return bw.Flush()
}

// prescan assigns each distinct node a monotonically increasing index in
// its tag field. The prescan must run to completion even when the host has
// requested an abort, so the numbering stays consistent.
func (e *Engine) prescan(root *node, depth int, counter *uint64) uint64 {
	if root == e.zeroNode(depth) {
		return 0
	}
	if root.flags&flagWrite != 0 {
		return root.tag
	}
	if depth > 0 {
		e.prescan(root.nw, depth-1, counter)
		e.prescan(root.ne, depth-1, counter)
		e.prescan(root.sw, depth-1, counter)
		e.prescan(root.se, depth-1, counter)
	}
	*counter++
	if *counter&progressMask == 0 {
		e.hostcb.AbortProgress(0, "Scanning tree")
	}
	root.flags |= flagWrite
	root.tag = *counter
	return root.tag
}

// emit writes the cells in prescan order, reporting progress.
func (e *Engine) emit(w *bufio.Writer, root *node, depth int, counter *uint64, writeCells uint64) uint64 {
	if root == e.zeroNode(depth) {
		return 0
	}
	if depth == 0 {
		if *counter+1 != root.tag {
			return root.tag
		}
		*counter++
		if *counter&progressMask == 0 {
			e.hostcb.AbortProgress(float64(*counter)/float64(writeCells), "Writing macrocell file")
		}
		fmt.Fprintf(w, "1 %d %d %d %d\n", root.cnw, root.cne, root.csw, root.cse)
		return root.tag
	}
	if *counter+1 > root.tag || e.hostcb.Aborted() {
		return root.tag
	}
	nw := e.emit(w, root.nw, depth-1, counter, writeCells)
	ne := e.emit(w, root.ne, depth-1, counter, writeCells)
	sw := e.emit(w, root.sw, depth-1, counter, writeCells)
	se := e.emit(w, root.se, depth-1, counter, writeCells)
	if !e.hostcb.Aborted() && *counter+1 != root.tag {
		e.hostcb.Fatal("internal error in macrocell writer")
		return root.tag
	}
	*counter++
	if *counter&progressMask == 0 {
		e.hostcb.AbortProgress(float64(*counter)/float64(writeCells), "Writing macrocell file")
	}
	fmt.Fprintf(w, "%d %d %d %d %d\n", depth+1, nw, ne, sw, se)
	return root.tag
}

// afterWrite clears the writer's numbering from the tree.
func (e *Engine) afterWrite(root *node, depth int) {
	if root == e.zeroNode(depth) {
		return
	}
	if root.flags&flagWrite == 0 {
		return
	}
	root.flags &^= flagWrite
	root.tag = 0
	if depth > 0 {
		e.afterWrite(root.nw, depth-1)
		e.afterWrite(root.ne, depth-1)
		e.afterWrite(root.sw, depth-1)
		e.afterWrite(root.se, depth-1)
	}
}

// ReadMacrocell parses a macrocell stream into the engine, replacing the
// current pattern. Parse problems are reported as errors with a short
// diagnostic; the universe may be partially populated on failure.
func (e *Engine) ReadMacrocell(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	ind := []*node{nil} // 1-based
	e.root = nil
	i := uint64(1)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		switch {
		case line == "":
			continue
		case line[0] == '[':
			// signature line
			continue
		case line[0] == '#':
			if err := e.readHeaderLine(line, ind, i); err != nil {
				return err
			}
		default:
			fields := strings.Fields(line)
			if len(fields) < 5 {
				return fmt.Errorf("parse error in macrocell format")
			}
			d, err := strconv.Atoi(fields[0])
			if err != nil {
				return fmt.Errorf("parse error in macrocell format")
			}
			if d < 1 {
				return fmt.Errorf("bad depth in macrocell format")
			}
			var vals [4]uint64
			for k := 0; k < 4; k++ {
				v, err := strconv.ParseUint(fields[k+1], 10, 64)
				if err != nil {
					return fmt.Errorf("parse error in macrocell format")
				}
				vals[k] = v
			}
			if d == 1 {
				states := uint64(e.rule.NumCellStates())
				if vals[0] >= states || vals[1] >= states || vals[2] >= states || vals[3] >= states {
					return fmt.Errorf("cell state values too high for this rule")
				}
				e.root = e.findLeaf(byte(vals[0]), byte(vals[1]), byte(vals[2]), byte(vals[3]))
				ind = append(ind, e.root)
				i++
				e.depth = d - 1
			} else {
				ind[0] = e.zeroNode(d - 2) // a zero child means the zero-node one level down
				var children [4]*node
				for k := 0; k < 4; k++ {
					if vals[k] >= i || ind[vals[k]] == nil {
						return fmt.Errorf("node out of range in macrocell file")
					}
					children[k] = ind[vals[k]]
				}
				e.clearStack()
				e.root = e.find(children[0], children[1], children[2], children[3])
				ind = append(ind, e.root)
				i++
				e.depth = d - 1
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if e.root == nil {
		// an empty macrocell file is an empty universe
		e.root = e.zeroNode(1)
		e.depth = 1
	}
	e.hashed = true
	e.popValid = false
	return nil
}

// readHeaderLine handles the #R, #G, #C, #FRAMES and #FRAME lines.
func (e *Engine) readHeaderLine(line string, ind []*node, nread uint64) error {
	switch {
	case strings.HasPrefix(line, "#R"):
		ruleStr := strings.TrimSpace(line[2:])
		if ruleStr != "" {
			if err := e.SetRule(ruleStr); err != nil {
				return err
			}
		}
	case strings.HasPrefix(line, "#G"):
		genStr := strings.TrimSpace(line[2:])
		g, ok := new(big.Int).SetString(genStr, 10)
		if !ok {
			return fmt.Errorf("bad generation count in macrocell file")
		}
		e.generation.Set(g)
	case strings.HasPrefix(line, "#FRAMES "):
		return e.readFramesLine(line)
	case strings.HasPrefix(line, "#FRAME "):
		return e.readFrameLine(line, ind, nread)
	}
	return nil
}

// readFramesLine parses "#FRAMES count start base^expo".
func (e *Engine) readFramesLine(line string) error {
	fields := strings.Fields(line[len("#FRAMES"):])
	if len(fields) < 3 {
		return fmt.Errorf("bad FRAMES line")
	}
	cnt, err := strconv.Atoi(fields[0])
	if err != nil || cnt < 0 || cnt > maxFrameCount {
		return fmt.Errorf("bad FRAMES line")
	}
	e.DestroyTimeline()
	t := &e.timeline
	start, ok := new(big.Int).SetString(strings.TrimRight(fields[1], ","), 10)
	if !ok {
		return fmt.Errorf("bad FRAMES line")
	}
	t.Start.Set(start)
	t.End.Set(start)
	t.next.Set(start)
	incStr := fields[2]
	if caret := strings.IndexByte(incStr, '^'); caret >= 0 {
		base, err1 := strconv.Atoi(incStr[:caret])
		expo, err2 := strconv.Atoi(incStr[caret+1:])
		if err1 != nil || err2 != nil || base < 2 || expo < 0 {
			return fmt.Errorf("bad FRAMES line")
		}
		t.Base = base
		t.Expo = expo
		t.Inc.SetInt64(1)
		for j := 0; j < expo; j++ {
			t.Inc.Mul(&t.Inc, big.NewInt(int64(base)))
		}
	} else {
		inc, ok := new(big.Int).SetString(incStr, 10)
		if !ok {
			return fmt.Errorf("bad FRAMES line")
		}
		t.Inc.Set(inc)
		// only powers of two can omit the caret
		expo := 0
		test := new(big.Int).Set(inc)
		for test.Sign() > 0 && test.Bit(0) == 0 {
			expo++
			test.Rsh(test, 1)
		}
		if test.Cmp(big.NewInt(1)) != 0 {
			return fmt.Errorf("bad increment (missing ^) in FRAMES")
		}
		t.Base = 2
		t.Expo = expo
	}
	t.Save = true
	return nil
}

// readFrameLine parses "#FRAME index nodeindex". Frames must appear in
// order; anything else is a parse error.
func (e *Engine) readFrameLine(line string, ind []*node, nread uint64) error {
	fields := strings.Fields(line[len("#FRAME"):])
	if len(fields) != 2 {
		return fmt.Errorf("bad FRAME line")
	}
	frameInd, err1 := strconv.Atoi(fields[0])
	nodeInd, err2 := strconv.ParseUint(fields[1], 10, 64)
	if err1 != nil || err2 != nil || frameInd < 0 || frameInd > maxFrameCount ||
		nodeInd > nread || e.timeline.FrameCount() != frameInd {
		return fmt.Errorf("bad FRAME line")
	}
	if nodeInd == 0 || nodeInd >= uint64(len(ind)) || ind[nodeInd] == nil {
		return fmt.Errorf("bad FRAME line")
	}
	t := &e.timeline
	t.Frames = append(t.Frames, ind[nodeInd])
	t.End.Set(&t.next)
	t.next.Add(&t.next, &t.Inc)
	return nil
}
