package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine/animator"
	"github.com/Carmen-Shannon/oxy-ghost/engine/asset"
	"github.com/Carmen-Shannon/oxy-ghost/engine/clock"
	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
	"github.com/Carmen-Shannon/oxy-ghost/engine/ghost"
	"github.com/Carmen-Shannon/oxy-ghost/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-ghost/engine/viewport"
)

type fakeHandle struct {
	label    string
	releases int
}

func (h *fakeHandle) Release() { h.releases++ }

type fakeBackend struct {
	width, height int
	meshes        []*fakeHandle
	materials     []*fakeHandle
	passes        []viewportPass
	sprites       []spriteInstance
	frames        int
	presented     int
	beginErr      error
	configureErr  error
	released      bool
}

func (f *fakeBackend) ConfigureSurface(w, h int) error {
	if f.configureErr != nil {
		return f.configureErr
	}
	f.width, f.height = w, h
	return nil
}
func (f *fakeBackend) SetPresentMode(PresentMode) {}
func (f *fakeBackend) CreateMesh(label string, v, i []byte, n int) (common.Releaser, error) {
	h := &fakeHandle{label: label}
	f.meshes = append(f.meshes, h)
	return h, nil
}
func (f *fakeBackend) CreateMaterial(label string) (common.Releaser, error) {
	h := &fakeHandle{label: label}
	f.materials = append(f.materials, h)
	return h, nil
}
func (f *fakeBackend) BeginFrame() error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.frames++
	f.passes, f.sprites = nil, nil
	return nil
}
func (f *fakeBackend) DrawViewport(p viewportPass)               { f.passes = append(f.passes, p) }
func (f *fakeBackend) DrawSprites(in []spriteInstance, w, h int) { f.sprites = in }
func (f *fakeBackend) EndFrame()                                 {}
func (f *fakeBackend) Present()                                  { f.presented++ }
func (f *fakeBackend) Release()                                  { f.released = true }

func triangle(name string) asset.Surface {
	return asset.NewSurface(
		asset.WithSurfaceName(name),
		asset.WithGeometry([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2}),
		asset.WithMaterials(material.NewMaterial(material.WithName(name+"-mat"), material.WithBaseColor([4]float32{1, 1, 1, 1}))),
	)
}

func uploaded(t *testing.T, r *renderer) asset.SceneAsset {
	t.Helper()
	a := asset.NewSceneAsset(asset.WithName("ghost.glb"), asset.WithSurfaces(triangle("body"), triangle("sheet")))
	for _, s := range a.Surfaces() {
		rel, err := r.UploadGeometry(s)
		require.NoError(t, err)
		s.SetGeometryResource(rel)
	}
	for _, m := range a.Materials() {
		rel, err := r.UploadMaterial(m)
		require.NoError(t, err)
		m.SetResource(rel)
	}
	return a
}

func mountedViews(a asset.SceneAsset, n int) []viewport.Viewport {
	sched := animator.NewScheduler(clock.NewClock(), control.NewState(), a)
	rects := common.QuadrantRects(n)
	views := make([]viewport.Viewport, n)
	for i := range views {
		views[i] = viewport.NewViewport(i, viewport.WithRect(rects[i]))
		views[i].Attach(sched)
	}
	return views
}

func TestUploadAndReleaseOnce(t *testing.T) {
	fb := &fakeBackend{}
	r := newRenderer(BackendTypeWGPU, withBackend(fb))
	a := uploaded(t, r)

	meshes, mats := r.Resident()
	assert.Equal(t, 2, meshes)
	assert.Equal(t, 2, mats)

	for _, s := range a.Surfaces() {
		assert.True(t, s.ReleaseGeometry())
		assert.False(t, s.ReleaseGeometry())
	}
	for _, m := range a.Materials() {
		m.Dispose()
		m.Dispose()
	}
	meshes, mats = r.Resident()
	assert.Zero(t, meshes)
	assert.Zero(t, mats)
	for _, h := range append(fb.meshes, fb.materials...) {
		assert.Equal(t, 1, h.releases, h.label)
	}
}

func TestUploadRejectsEmptySurface(t *testing.T) {
	r := newRenderer(BackendTypeWGPU, withBackend(&fakeBackend{}))
	_, err := r.UploadGeometry(asset.NewSurface(asset.WithSurfaceName("empty")))
	assert.ErrorIs(t, err, errEmptySurface)
}

func TestRenderFrameDrawsEveryViewport(t *testing.T) {
	fb := &fakeBackend{}
	r := newRenderer(BackendTypeWGPU, withBackend(fb))
	require.NoError(t, r.Resize(800, 600))
	a := uploaded(t, r)
	views := mountedViews(a, 4)

	stats, err := r.RenderFrame(Frame{Viewports: views, Sprites: []Sprite{{X: 1, Y: 2, Size: 5, Opacity: 0.3}}})
	require.NoError(t, err)
	assert.Equal(t, FrameStats{Viewports: 4, Draws: 8, Sprites: 1}, stats)
	require.Len(t, fb.passes, 4)
	assert.Equal(t, pixelRect{X: 400, Y: 300, W: 400, H: 300}, fb.passes[3].rect)
	assert.Equal(t, []spriteInstance{{X: 1, Y: 2, Size: 5, Opacity: 0.3}}, fb.sprites)
	assert.Equal(t, 1, fb.presented)
}

func TestGhostSurfacesDrawAfterOpaque(t *testing.T) {
	fb := &fakeBackend{}
	r := newRenderer(BackendTypeWGPU, withBackend(fb))
	require.NoError(t, r.Resize(800, 600))
	a := uploaded(t, r)
	a.Surfaces()[0].Materials()[0].SetBlend(true, material.GhostOpacity)

	stats, err := r.RenderFrame(Frame{Viewports: mountedViews(a, 1)})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Ghost)

	cmds := fb.passes[0].commands
	require.Len(t, cmds, 2)
	assert.False(t, cmds[0].ghost)
	assert.True(t, cmds[1].ghost)
	assert.InDelta(t, 0.7, cmds[1].color[3], 1e-6)

	ghost.Apply(a, true)
	_, err = r.RenderFrame(Frame{Viewports: mountedViews(a, 1)})
	require.NoError(t, err)
	for _, c := range fb.passes[0].commands {
		assert.True(t, c.ghost)
	}
}

func TestDisposedAssetIsNotDrawn(t *testing.T) {
	fb := &fakeBackend{}
	r := newRenderer(BackendTypeWGPU, withBackend(fb))
	require.NoError(t, r.Resize(800, 600))
	a := uploaded(t, r)
	views := mountedViews(a, 2)
	a.MarkDisposed()

	stats, err := r.RenderFrame(Frame{Viewports: views})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Viewports)
	assert.Zero(t, stats.Draws)
	for _, p := range fb.passes {
		assert.Empty(t, p.commands)
	}
}

func TestRenderFrameErrorsAndRelease(t *testing.T) {
	fb := &fakeBackend{beginErr: errors.New("surface lost")}
	r := newRenderer(BackendTypeWGPU, withBackend(fb))
	_, err := r.RenderFrame(Frame{})
	assert.Error(t, err)
	assert.Zero(t, fb.presented)

	fb.beginErr = nil
	uploaded(t, r)
	r.Release()
	r.Release()
	assert.True(t, fb.released)
	meshes, mats := r.Resident()
	assert.Zero(t, meshes+mats)

	_, err = r.RenderFrame(Frame{})
	assert.ErrorIs(t, err, errRendererClosed)
	_, err = r.UploadMaterial(material.NewMaterial())
	assert.ErrorIs(t, err, errRendererClosed)
}

func TestResizeFailureKeepsPreviousSize(t *testing.T) {
	fb := &fakeBackend{}
	r := newRenderer(BackendTypeWGPU, withBackend(fb))
	require.NoError(t, r.Resize(800, 600))

	fb.configureErr = errors.New("out of device memory")
	err := r.Resize(1920, 1080)
	require.ErrorIs(t, err, fb.configureErr)

	w, h := r.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestResizeIgnoresEmptySize(t *testing.T) {
	fb := &fakeBackend{configureErr: errors.New("unreachable")}
	r := newRenderer(BackendTypeWGPU, withBackend(fb))
	assert.NoError(t, r.Resize(0, 600))
	assert.NoError(t, r.Resize(800, -1))
}
