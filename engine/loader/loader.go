// Package loader is the scene resource manager: it gates files by extension, decodes GLB
// scenes into assets, uploads their geometry and releases everything exactly once on Dispose.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-ghost/common"
	"github.com/Carmen-Shannon/oxy-ghost/engine/asset"
	"github.com/Carmen-Shannon/oxy-ghost/engine/logger"
	"github.com/Carmen-Shannon/oxy-ghost/engine/profiler"
	"github.com/Carmen-Shannon/oxy-ghost/engine/renderer/material"
)

// SceneExtension is the only accepted scene file extension, compared case-insensitively.
const SceneExtension = ".glb"

// Failure taxonomy. Callers classify with errors.Is.
var (
	ErrInvalidFormat  = errors.New("loader: please provide a supported .glb file")
	ErrLoadFailure    = errors.New("loader: failed to load scene")
	ErrDoubleDisposal = errors.New("loader: asset already disposed")
)

// LoaderBackendType identifies the scene file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// Uploader moves decoded geometry and material parameters to the GPU.
// The returned releasers are owned by the asset and released by Dispose.
type Uploader interface {
	// UploadGeometry creates the vertex and index buffers of a surface.
	//
	// Parameters:
	//   - s: the surface to upload
	//
	// Returns:
	//   - common.Releaser: frees the buffers
	//   - error: error if buffer creation fails
	UploadGeometry(s asset.Surface) (common.Releaser, error)

	// UploadMaterial creates the uniform buffer of a material.
	//
	// Parameters:
	//   - m: the material to upload
	//
	// Returns:
	//   - common.Releaser: frees the uniform buffer
	//   - error: error if buffer creation fails
	UploadMaterial(m material.Material) (common.Releaser, error)
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	uploader Uploader
	pool     worker.DynamicWorkerPool
	profiler *profiler.Profiler
	backend  loaderBackend

	taskID atomic.Int64
}

// Loader owns how scene assets are created and destroyed. It never decides when an asset is
// disposed; that belongs to whoever currently owns teardown.
type Loader interface {
	// Accepts reports whether name carries the scene extension.
	//
	// Parameters:
	//   - name: the file name
	//
	// Returns:
	//   - bool: true if the name ends in .glb, ignoring case
	Accepts(name string) bool

	// Load decodes the source into a live asset. A name without the scene extension fails with
	// ErrInvalidFormat before the source is opened. Any decode or upload failure is ErrLoadFailure.
	// Every material of the returned asset starts opaque with opacity 1.0.
	//
	// Parameters:
	//   - src: the scene source
	//
	// Returns:
	//   - asset.SceneAsset: the live asset
	//   - error: error if the source is rejected or cannot be loaded
	Load(src Source) (asset.SceneAsset, error)

	// LoadAsync runs Load on the worker pool and calls done with its result from a worker goroutine.
	// The extension check runs synchronously, so ErrInvalidFormat is returned directly and done is
	// never called for a rejected name.
	//
	// Parameters:
	//   - src: the scene source
	//   - done: receives the loaded asset or the load error
	//
	// Returns:
	//   - error: ErrInvalidFormat if the name is rejected
	LoadAsync(src Source, done func(asset.SceneAsset, error)) error

	// Dispose releases the geometry of every surface and every material the asset holds, each
	// exactly once, and marks the asset disposed. Disposing an already disposed asset changes
	// nothing, is counted and logged, and returns ErrDoubleDisposal for the caller to ignore.
	//
	// Parameters:
	//   - a: the asset to dispose; nil is ignored
	//
	// Returns:
	//   - error: ErrDoubleDisposal on a repeated call
	Dispose(a asset.SceneAsset) error
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
// Without WithWorkerPool a small pool is created for LoadAsync.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}

	if l.pool == nil {
		l.pool = worker.NewDynamicWorkerPool(defaultWorkers, defaultQueueSize, defaultIdleTimeout)
	}
	return l
}

func (l *loader) Accepts(name string) bool {
	return Accepts(name)
}

// Accepts reports whether name carries SceneExtension, ignoring case.
//
// Parameters:
//   - name: the file name
//
// Returns:
//   - bool: true for a scene file name
func Accepts(name string) bool {
	return strings.EqualFold(filepath.Ext(name), SceneExtension)
}

func (l *loader) Load(src Source) (asset.SceneAsset, error) {
	name := src.Name()
	if !l.Accepts(name) {
		l.profiler.Record(profiler.EventInvalidFormat, logrus.Fields{"asset": name})
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, name)
	}

	a, err := l.load(src)
	if err != nil {
		l.profiler.Record(profiler.EventLoadFailure, logrus.Fields{"asset": name, "error": err.Error()})
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailure, name, err)
	}

	logger.Log.WithFields(logrus.Fields{
		"asset":    name,
		"surfaces": len(a.Surfaces()),
	}).Info("scene loaded")
	return a, nil
}

func (l *loader) load(src Source) (asset.SceneAsset, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open: %w", err)
	}
	defer rc.Close()

	l.mu.RLock()
	backend := l.backend
	l.mu.RUnlock()
	if backend == nil {
		return nil, errors.New("no loader backend configured")
	}

	imported, err := backend.LoadReader(rc)
	if err != nil {
		return nil, err
	}

	a := l.importedToAsset(src.Name(), imported)
	if err := l.upload(a); err != nil {
		// Nothing outside the loader has seen the asset yet.
		l.release(a)
		a.MarkDisposed()
		return nil, err
	}
	return a, nil
}

// importedToAsset builds the asset. Surfaces sharing a material index share one Material.
func (l *loader) importedToAsset(name string, imported *importedScene) asset.SceneAsset {
	materials := make([]material.Material, len(imported.materials))
	for i, im := range imported.materials {
		materials[i] = newMaterial(im)
	}
	var fallback material.Material

	surfaces := make([]asset.Surface, 0, len(imported.surfaces))
	for _, is := range imported.surfaces {
		var mat material.Material
		if is.materialIndex >= 0 {
			mat = materials[is.materialIndex]
		} else {
			if fallback == nil {
				fallback = newMaterial(defaultImportedMaterial())
			}
			mat = fallback
		}
		surfaces = append(surfaces, asset.NewSurface(
			asset.WithSurfaceName(is.name),
			asset.WithGeometry(is.positions, is.indices),
			asset.WithMaterials(mat),
		))
	}

	return asset.NewSceneAsset(
		asset.WithName(name),
		asset.WithSurfaces(surfaces...),
	)
}

func newMaterial(im importedMaterial) material.Material {
	return material.NewMaterial(
		material.WithName(im.name),
		material.WithBaseColor(im.baseColor),
		material.WithMetallic(im.metallic),
		material.WithRoughness(im.roughness),
	)
}

func (l *loader) upload(a asset.SceneAsset) error {
	if l.uploader == nil {
		return nil
	}
	for _, s := range a.Surfaces() {
		r, err := l.uploader.UploadGeometry(s)
		if err != nil {
			return fmt.Errorf("failed to upload surface %s: %w", s.Name(), err)
		}
		s.SetGeometryResource(r)
	}
	seen := make(map[material.Material]bool)
	for _, m := range a.Materials() {
		if seen[m] {
			continue
		}
		seen[m] = true
		r, err := l.uploader.UploadMaterial(m)
		if err != nil {
			return fmt.Errorf("failed to upload material %s: %w", m.Name(), err)
		}
		m.SetResource(r)
	}
	return nil
}

func (l *loader) LoadAsync(src Source, done func(asset.SceneAsset, error)) error {
	name := src.Name()
	if !l.Accepts(name) {
		l.profiler.Record(profiler.EventInvalidFormat, logrus.Fields{"asset": name})
		return fmt.Errorf("%w: %q", ErrInvalidFormat, name)
	}

	l.pool.SubmitTask(worker.Task{
		ID: int(l.taskID.Add(1)),
		Do: func() (any, error) {
			a, err := l.Load(src)
			if done != nil {
				done(a, err)
			}
			return a, err
		},
	})
	return nil
}

func (l *loader) Dispose(a asset.SceneAsset) error {
	if a == nil {
		return nil
	}
	if !a.MarkDisposed() {
		l.profiler.Record(profiler.EventDoubleDisposal, logrus.Fields{"asset": a.Name()})
		return fmt.Errorf("%w: %s", ErrDoubleDisposal, a.Name())
	}
	l.release(a)
	logger.Log.WithField("asset", a.Name()).Info("scene disposed")
	return nil
}

// release frees every geometry buffer and material. Both are idempotent, so materials shared
// between surfaces are released once.
func (l *loader) release(a asset.SceneAsset) {
	for _, s := range a.Surfaces() {
		s.ReleaseGeometry()
		for _, m := range s.Materials() {
			m.Dispose()
		}
	}
}
