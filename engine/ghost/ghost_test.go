package ghost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-ghost/engine/asset"
	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
	"github.com/Carmen-Shannon/oxy-ghost/engine/renderer/material"
)

type blend struct {
	transparent bool
	opacity     float32
}

func blends(a asset.SceneAsset) []blend {
	var out []blend
	for _, m := range a.Materials() {
		out = append(out, blend{m.Transparent(), m.Opacity()})
	}
	return out
}

func newAsset() asset.SceneAsset {
	return asset.NewSceneAsset(asset.WithSurfaces(
		asset.NewSurface(asset.WithMaterials(material.NewMaterial(), material.NewMaterial())),
		asset.NewSurface(),
	))
}

func TestApplyIsIdempotent(t *testing.T) {
	a := newAsset()
	assert.Equal(t, 3, Apply(a, true))
	once := blends(a)
	Apply(a, true)
	assert.Equal(t, once, blends(a))
	for _, b := range once {
		assert.Equal(t, blend{true, 0.7}, b)
	}

	Apply(a, false)
	Apply(a, false)
	for _, b := range blends(a) {
		assert.Equal(t, blend{false, 1}, b)
	}
}

func TestApplyWithoutAsset(t *testing.T) {
	assert.Zero(t, Apply(nil, true))

	a := newAsset()
	a.MarkDisposed()
	assert.Zero(t, Apply(a, true))
}

func TestEffectFollowsState(t *testing.T) {
	s := control.NewState(control.WithGhostMode(true))
	e := Attach(s, 0)
	defer e.Detach()

	a := newAsset()
	s.SetAsset(a, "")
	assert.True(t, a.Materials()[0].Transparent())

	s.SetGhostMode(false)
	assert.False(t, a.Materials()[0].Transparent())

	s.ToggleGhostMode()
	assert.InDelta(t, 0.7, a.Materials()[2].Opacity(), 1e-6)

	e.Detach()
	s.SetGhostMode(false)
	assert.True(t, a.Materials()[0].Transparent())
}
