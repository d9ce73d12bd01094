package engine

import "math/big"

// MaxMag is the largest magnification exponent Fit will choose.
const MaxMag = 4

// Viewport describes the window the renderer asks the engine to fill.
// Coordinates are universe cells with y increasing downward; mag is the
// magnification exponent: at mag >= 0 a cell covers 2^mag pixels, at
// mag < 0 a pixel covers 2^-mag cells.
type Viewport struct {
	width  int
	height int
	mag    int
	x, y   big.Int // cell coordinate at the center of the viewport
}

// NewViewport creates a viewport centered on the origin.
func NewViewport(width, height int) *Viewport {
	return &Viewport{width: width, height: height}
}

// Width returns the viewport width in pixels.
func (v *Viewport) Width() int { return v.width }

// Height returns the viewport height in pixels.
func (v *Viewport) Height() int { return v.height }

// Mag returns the magnification exponent.
func (v *Viewport) Mag() int { return v.mag }

// SetMag sets the magnification exponent.
func (v *Viewport) SetMag(mag int) { v.mag = mag }

// Resize sets the pixel dimensions.
func (v *Viewport) Resize(width, height int) {
	v.width = width
	v.height = height
}

// Center moves the viewport back over the origin.
func (v *Viewport) Center() {
	v.x.SetInt64(0)
	v.y.SetInt64(0)
}

// SetPosition moves the viewport center to (x, y).
func (v *Viewport) SetPosition(x, y *big.Int) {
	v.x.Set(x)
	v.y.Set(y)
}

// Position returns the viewport center.
func (v *Viewport) Position() (x, y *big.Int) {
	return new(big.Int).Set(&v.x), new(big.Int).Set(&v.y)
}

// pixelToCells converts a pixel distance to cells at the given mag,
// rounding toward negative infinity.
func pixelToCells(d, mag int) *big.Int {
	if mag >= 0 {
		return big.NewInt(int64(d >> uint(mag)))
	}
	r := big.NewInt(int64(d))
	return r.Lsh(r, uint(-mag))
}

// At returns the cell coordinate of the given pixel.
func (v *Viewport) At(px, py int) (x, y *big.Int) {
	x = new(big.Int).Set(&v.x)
	x.Add(x, pixelToCells(px-v.width/2, v.mag))
	y = new(big.Int).Set(&v.y)
	y.Add(y, pixelToCells(py-v.height/2, v.mag))
	return x, y
}

// Contains reports whether the cell (x, y) is visible.
func (v *Viewport) Contains(x, y *big.Int) bool {
	x0, y0 := v.At(0, 0)
	x1, y1 := v.At(v.width-1, v.height-1)
	return x.Cmp(x0) >= 0 && x.Cmp(x1) <= 0 && y.Cmp(y0) >= 0 && y.Cmp(y1) <= 0
}

// SetPositionMag centers the viewport on the given cell rectangle at the
// given magnification.
func (v *Viewport) SetPositionMag(xlo, xhi, ylo, yhi *big.Int, mag int) {
	v.mag = mag
	v.x.Add(xlo, xhi)
	v.x.Rsh(&v.x, 1)
	v.y.Add(ylo, yhi)
	v.y.Rsh(&v.y, 1)
}
