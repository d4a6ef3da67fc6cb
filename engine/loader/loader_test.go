package loader

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine/asset"
	"github.com/Carmen-Shannon/oxy-ghost/engine/profiler"
	"github.com/Carmen-Shannon/oxy-ghost/engine/renderer/material"
)

// countingBackend records whether the decoder ran.
type countingBackend struct {
	calls int
	inner loaderBackend
}

func (b *countingBackend) LoadReader(r io.Reader) (*importedScene, error) {
	b.calls++
	return b.inner.LoadReader(r)
}

// spySource records whether Open was called.
type spySource struct {
	Source
	opened bool
}

func (s *spySource) Open() (io.ReadCloser, error) {
	s.opened = true
	return s.Source.Open()
}

// fakeUploader hands out releasers that count their calls.
type fakeUploader struct {
	geometry map[string]*int
	material map[string]*int
	failOn   string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{geometry: map[string]*int{}, material: map[string]*int{}}
}

func (u *fakeUploader) UploadGeometry(s asset.Surface) (common.Releaser, error) {
	if s.Name() == u.failOn {
		return nil, errors.New("out of memory")
	}
	n := new(int)
	u.geometry[s.Name()] = n
	return common.ReleaseFunc(func() { *n++ }), nil
}

func (u *fakeUploader) UploadMaterial(m material.Material) (common.Releaser, error) {
	n := new(int)
	u.material[m.Name()] = n
	return common.ReleaseFunc(func() { *n++ }), nil
}

func TestLoadRejectsWrongExtensionWithoutIO(t *testing.T) {
	backend := &countingBackend{inner: newGLTFLoaderBackend()}
	prof := profiler.NewProfiler()
	l := NewLoader(BackendTypeGLTF, withBackend(backend), WithProfiler(prof))

	src := &spySource{Source: BytesSource("model.txt", buildGLB(t, triangleFixture()))}
	a, err := l.Load(src)
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.False(t, src.opened)
	assert.Zero(t, backend.calls)
	assert.Equal(t, 1, prof.Count(profiler.EventInvalidFormat))

	err = l.LoadAsync(src, func(asset.SceneAsset, error) { t.Fatal("done must not run") })
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.False(t, src.opened)
}

func TestAcceptsIsCaseInsensitive(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	assert.True(t, l.Accepts("Ghost.GLB"))
	assert.True(t, l.Accepts("dir/ghost.glb"))
	assert.False(t, l.Accepts("ghost.gltf"))
	assert.False(t, l.Accepts("glb"))
}

func TestLoadProducesLiveOpaqueAsset(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	a, err := l.Load(BytesSource("ghost.glb", buildGLB(t, triangleFixture())))
	require.NoError(t, err)
	assert.True(t, a.Live())
	assert.Equal(t, "ghost.glb", a.Name())
	require.Len(t, a.Surfaces(), 1)
	for _, m := range a.Materials() {
		assert.False(t, m.Transparent())
		assert.Equal(t, float32(1), m.Opacity())
	}
}

func TestLoadFailureOnCorruptData(t *testing.T) {
	prof := profiler.NewProfiler()
	l := NewLoader(BackendTypeGLTF, WithProfiler(prof))
	_, err := l.Load(BytesSource("broken.glb", []byte("definitely not a scene")))
	assert.ErrorIs(t, err, ErrLoadFailure)
	assert.Equal(t, 1, prof.Count(profiler.EventLoadFailure))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Ghost.GLB")
	require.NoError(t, os.WriteFile(path, buildGLB(t, triangleFixture()), 0o644))

	a, err := NewLoader(BackendTypeGLTF).Load(FileSource(path))
	require.NoError(t, err)
	assert.Equal(t, "Ghost.GLB", a.Name())

	_, err = NewLoader(BackendTypeGLTF).Load(FileSource(filepath.Join(t.TempDir(), "missing.glb")))
	assert.ErrorIs(t, err, ErrLoadFailure)
}

func TestDisposeReleasesExactlyOnce(t *testing.T) {
	up := newFakeUploader()
	prof := profiler.NewProfiler()
	l := NewLoader(BackendTypeGLTF, WithUploader(up), WithProfiler(prof))

	a, err := l.Load(BytesSource("ghost.glb", buildGLB(t, triangleFixture())))
	require.NoError(t, err)

	require.NoError(t, l.Dispose(a))
	assert.NotPanics(t, func() {
		assert.ErrorIs(t, l.Dispose(a), ErrDoubleDisposal)
	})

	assert.False(t, a.Live())
	assert.Equal(t, 1, *up.geometry["ghost"])
	assert.Equal(t, 1, *up.material["ectoplasm"])
	assert.Equal(t, 1, prof.Count(profiler.EventDoubleDisposal))
	assert.NoError(t, l.Dispose(nil))
}

func TestDisposeReleasesEveryMaterialInArray(t *testing.T) {
	calls := make([]int, 3)
	mats := make([]material.Material, 3)
	for i := range mats {
		mats[i] = material.NewMaterial(material.WithResource(common.ReleaseFunc(func() { calls[i]++ })))
	}
	s := asset.NewSurface(asset.WithMaterials(mats...))
	a := asset.NewSceneAsset(asset.WithSurfaces(s, asset.NewSurface(asset.WithMaterials(mats[0]))))

	l := NewLoader(BackendTypeGLTF)
	require.NoError(t, l.Dispose(a))
	_ = l.Dispose(a)
	assert.Equal(t, []int{1, 1, 1}, calls)
	assert.True(t, s.GeometryReleased())
}

func TestUploadFailureReleasesPartialAsset(t *testing.T) {
	up := newFakeUploader()
	up.failOn = "ghost"
	l := NewLoader(BackendTypeGLTF, WithUploader(up))
	_, err := l.Load(BytesSource("ghost.glb", buildGLB(t, triangleFixture())))
	assert.ErrorIs(t, err, ErrLoadFailure)
}

func TestLoadAsyncDeliversResult(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	type result struct {
		a   asset.SceneAsset
		err error
	}
	ch := make(chan result, 1)
	require.NoError(t, l.LoadAsync(BytesSource("ghost.glb", buildGLB(t, triangleFixture())), func(a asset.SceneAsset, err error) {
		ch <- result{a, err}
	}))

	select {
	case r := <-ch:
		require.NoError(t, r.err)
		assert.True(t, r.a.Live())
	case <-time.After(5 * time.Second):
		t.Fatal("LoadAsync never completed")
	}
}
