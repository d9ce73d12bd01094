package engine

import (
	"fmt"
	"math/big"
)

// maxFrameCount bounds the number of timeline frames a file may declare.
const maxFrameCount = 1 << 20

// Timeline is a sequence of roots captured at regular generation
// intervals. Frames are GC roots and are serialized with the pattern.
type Timeline struct {
	Frames []*node

	// Start is the generation of the first frame; End that of the last.
	Start big.Int
	End   big.Int
	// next is the generation the next captured frame will carry.
	next big.Int

	// Inc is the generation gap between frames, always Base^Expo.
	Inc  big.Int
	Base int
	Expo int

	// Save controls whether the writer emits the timeline.
	Save bool
}

// FrameCount returns the number of captured frames.
func (t *Timeline) FrameCount() int { return len(t.Frames) }

// StartTimeline begins capturing frames every base^expo generations,
// starting from the current root.
func (e *Engine) StartTimeline(base, expo int) error {
	if base < 2 || expo < 0 {
		return fmt.Errorf("bad timeline increment")
	}
	e.ensureHashed()
	t := &e.timeline
	t.Frames = nil
	t.Base = base
	t.Expo = expo
	t.Inc.SetInt64(1)
	for i := 0; i < expo; i++ {
		t.Inc.Mul(&t.Inc, big.NewInt(int64(base)))
	}
	t.Start.Set(&e.generation)
	t.End.Set(&e.generation)
	t.next.Set(&e.generation)
	t.Save = true
	e.captureFrame()
	return nil
}

// DestroyTimeline drops all captured frames.
func (e *Engine) DestroyTimeline() {
	t := &e.timeline
	t.Frames = nil
	t.Save = false
	t.Start.SetInt64(0)
	t.End.SetInt64(0)
	t.next.SetInt64(0)
	t.Inc.SetInt64(0)
}

// Timeline exposes the current timeline.
func (e *Engine) Timeline() *Timeline { return &e.timeline }

// CaptureFrameIfDue records the current root as a frame when the
// generation counter has reached the next capture point.
func (e *Engine) CaptureFrameIfDue() {
	t := &e.timeline
	if !t.Save || len(t.Frames) >= maxFrameCount {
		return
	}
	if e.generation.Cmp(&t.next) >= 0 {
		e.captureFrame()
	}
}

func (e *Engine) captureFrame() {
	t := &e.timeline
	t.Frames = append(t.Frames, e.root)
	t.End.Set(&e.generation)
	t.next.Set(&e.generation)
	t.next.Add(&t.next, &t.Inc)
}
