package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/stretchr/testify/assert"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial(WithName("body"), WithBaseColor([4]float32{0.5, 0.6, 0.7, 1}))
	assert.Equal(t, "body", m.Name())
	assert.False(t, m.Transparent())
	assert.Equal(t, OpaqueOpacity, m.Opacity())
	assert.False(t, m.Disposed())
	assert.Equal(t, [4]float32{0.5, 0.6, 0.7, 1}, m.DisplayColor())
}

func TestSetBlend(t *testing.T) {
	m := NewMaterial()
	m.SetBlend(true, GhostOpacity)
	assert.True(t, m.Transparent())
	assert.InDelta(t, 0.7, m.DisplayColor()[3], 1e-6)

	m.SetBlend(true, 3)
	assert.Equal(t, float32(1), m.Opacity())
}

func TestDisposeReleasesOnce(t *testing.T) {
	calls := 0
	m := NewMaterial(WithResource(common.ReleaseFunc(func() { calls++ })))

	assert.True(t, m.Dispose())
	assert.False(t, m.Dispose())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, m.Releases())

	m.SetBlend(true, GhostOpacity)
	assert.False(t, m.Transparent())
}
