package charts

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// rdbu is the diverging red-to-blue scale, low values red.
var rdbu = []drawing.Color{
	{R: 103, G: 0, B: 31, A: 255},
	{R: 178, G: 24, B: 43, A: 255},
	{R: 214, G: 96, B: 77, A: 255},
	{R: 244, G: 165, B: 130, A: 255},
	{R: 253, G: 219, B: 199, A: 255},
	{R: 247, G: 247, B: 247, A: 255},
	{R: 209, G: 229, B: 240, A: 255},
	{R: 146, G: 197, B: 222, A: 255},
	{R: 67, G: 147, B: 195, A: 255},
	{R: 33, G: 102, B: 172, A: 255},
	{R: 5, G: 48, B: 97, A: 255},
}

// RdBu maps t in [0,1] onto the scale; out-of-range t is clamped.
func RdBu(t float64) drawing.Color {
	if math.IsNaN(t) || t <= 0 {
		return rdbu[0]
	}
	if t >= 1 {
		return rdbu[len(rdbu)-1]
	}

	pos := t * float64(len(rdbu)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := rdbu[i], rdbu[i+1]
	return drawing.Color{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: 255,
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
