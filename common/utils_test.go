package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstNonBlank(t *testing.T) {
	assert.Equal(t, "ghost.glb", FirstNonBlank("", "  ", " ghost.glb ", "other"))
	assert.Equal(t, "Uploaded Model", FirstNonBlank("\t", "Uploaded Model"))
	assert.Empty(t, FirstNonBlank())
	assert.Empty(t, FirstNonBlank(" ", ""))
}

func TestQuadrantRects(t *testing.T) {
	assert.Nil(t, QuadrantRects(0))
	assert.Equal(t, []Rect{{X: 0, Y: 0, W: 1, H: 1}}, QuadrantRects(1))

	rects := QuadrantRects(4)
	assert.Equal(t, Rect{X: 0.5, Y: 0.5, W: 0.5, H: 0.5}, rects[3])
	x, y, w, h := rects[3].Pixels(800, 600)
	assert.Equal(t, [4]float32{400, 300, 400, 300}, [4]float32{x, y, w, h})

	three := QuadrantRects(3)
	assert.InDelta(t, 0.5, three[2].H, 1e-6)
	assert.Equal(t, float32(0), three[2].X)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 1.2, RoundTo(1.0+0.2, 1))
	assert.Equal(t, 0.8, RoundTo(1.0-0.1-0.1, 1))
}
