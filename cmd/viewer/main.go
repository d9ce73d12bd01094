// Command viewer is an interactive macrocell pattern viewer: it drives the
// engine's draw traversal into an ebiten window. Arrow keys pan, +/- zoom,
// space advances one increment, f refits the pattern.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/hashlife/internal/engine"
	"github.com/hashlife/internal/rule/factory"
	"github.com/hashlife/pkg/host"
)

const (
	windowTitle = "hashlife viewer"
	screenW     = 1024
	screenH     = 768
)

// frameRenderer implements engine.Renderer over an RGBA framebuffer.
type frameRenderer struct {
	pix    []byte // screenW*screenH RGBA
	colors struct {
		r, g, b [256]uint8
	}
}

func newFrameRenderer(e *engine.Engine) *frameRenderer {
	fr := &frameRenderer{pix: make([]byte, screenW*screenH*4)}
	pal := e.Rule().Palette()
	states := e.NumCellStates()
	if pal.Gradient {
		fr.colors.r[0], fr.colors.g[0], fr.colors.b[0] = 32, 32, 32
		for i := 1; i < states; i++ {
			frac := 0.0
			if states > 2 {
				frac = float64(i-1) / float64(states-2)
			}
			fr.colors.r[i] = lerp(pal.From[0], pal.To[0], frac)
			fr.colors.g[i] = lerp(pal.From[1], pal.To[1], frac)
			fr.colors.b[i] = lerp(pal.From[2], pal.To[2], frac)
		}
	} else {
		for i := 0; i < states; i++ {
			fr.colors.r[i] = pal.R[i]
			fr.colors.g[i] = pal.G[i]
			fr.colors.b[i] = pal.B[i]
		}
	}
	return fr
}

func lerp(a, b uint8, frac float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*frac)
}

// Clear fills the framebuffer with the dead-cell color.
func (fr *frameRenderer) Clear() {
	for i := 0; i < len(fr.pix); i += 4 {
		fr.pix[i] = fr.colors.r[0]
		fr.pix[i+1] = fr.colors.g[0]
		fr.pix[i+2] = fr.colors.b[0]
		fr.pix[i+3] = 0xff
	}
}

// JustState asks for RGBA output.
func (fr *frameRenderer) JustState() bool { return false }

// Colors hands the palette to the engine.
func (fr *frameRenderer) Colors() (r, g, b []uint8, deadAlpha, liveAlpha uint8) {
	return fr.colors.r[:], fr.colors.g[:], fr.colors.b[:], 0, 0xff
}

// StateBlit is unused because JustState is false.
func (fr *frameRenderer) StateBlit(x, y, w, h int, buf []byte) {}

// PixBlit copies one 256x256 tile into the framebuffer. At pmag == 1 the
// buffer is RGBA; at larger pmag it holds cell states that expand to
// pmag x pmag blocks.
func (fr *frameRenderer) PixBlit(x, y, w, h int, buf []byte, pmag int) {
	if pmag == 1 {
		for row := 0; row < h; row++ {
			dy := y + row
			if dy < 0 || dy >= screenH {
				continue
			}
			for col := 0; col < w; col++ {
				dx := x + col
				if dx < 0 || dx >= screenW {
					continue
				}
				src := (row*w + col) * 4
				if buf[src+3] == 0 {
					continue
				}
				dst := (dy*screenW + dx) * 4
				copy(fr.pix[dst:dst+4], buf[src:src+4])
			}
		}
		return
	}
	// state data scaled up by pmag
	side := w / pmag
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			state := buf[row*side+col]
			if state == 0 {
				continue
			}
			for py := 0; py < pmag; py++ {
				dy := y + row*pmag + py
				if dy < 0 || dy >= screenH {
					continue
				}
				for px := 0; px < pmag; px++ {
					dx := x + col*pmag + px
					if dx < 0 || dx >= screenW {
						continue
					}
					dst := (dy*screenW + dx) * 4
					fr.pix[dst] = fr.colors.r[state]
					fr.pix[dst+1] = fr.colors.g[state]
					fr.pix[dst+2] = fr.colors.b[state]
					fr.pix[dst+3] = 0xff
				}
			}
		}
	}
}

// game is the ebiten application driving the engine.
type game struct {
	eng      *engine.Engine
	view     *engine.Viewport
	renderer *frameRenderer
	screen   *ebiten.Image
	dirty    bool
}

func (g *game) Update() error {
	pan := 16
	x, y := g.view.Position()
	moved := false
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		x.Sub(x, panCells(pan, g.view.Mag()))
		moved = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		x.Add(x, panCells(pan, g.view.Mag()))
		moved = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		y.Sub(y, panCells(pan, g.view.Mag()))
		moved = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		y.Add(y, panCells(pan, g.view.Mag()))
		moved = true
	}
	if moved {
		g.view.SetPosition(x, y)
		g.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		if g.view.Mag() < engine.MaxMag {
			g.view.SetMag(g.view.Mag() + 1)
			g.dirty = true
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.view.SetMag(g.view.Mag() - 1)
		g.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.eng.Fit(g.view, true)
		g.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if err := g.eng.Step(); err != nil {
			return err
		}
		g.dirty = true
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.dirty {
		g.renderer.Clear()
		g.eng.Draw(g.view, g.renderer)
		g.screen.WritePixels(g.renderer.pix)
		g.dirty = false
	}
	screen.DrawImage(g.screen, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}

func panCells(pixels, mag int) *big.Int {
	d := big.NewInt(int64(pixels))
	if mag >= 0 {
		return d.Rsh(d, uint(mag))
	}
	return d.Lsh(d, uint(-mag))
}

func main() {
	ruleStr := flag.String("rule", "", "override the rule")
	increment := flag.Int64("n", 1, "generations per step")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: viewer [-rule R] [-n N] pattern.mc")
		os.Exit(2)
	}

	cb := host.NewDefault()
	plugin := factory.Default(cb)
	if *ruleStr != "" {
		var err error
		plugin, err = factory.ForRuleString(*ruleStr, cb)
		if err != nil {
			log.Fatal(err)
		}
	}
	eng := engine.New(plugin, engine.WithHost(cb))

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	if err := eng.ReadMacrocell(f); err != nil {
		log.Fatal(err)
	}
	f.Close()
	eng.SetIncrementInt64(*increment)

	view := engine.NewViewport(screenW, screenH)
	eng.Fit(view, true)

	g := &game{
		eng:      eng,
		view:     view,
		renderer: newFrameRenderer(eng),
		screen:   ebiten.NewImage(screenW, screenH),
		dirty:    true,
	}
	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle(windowTitle)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
