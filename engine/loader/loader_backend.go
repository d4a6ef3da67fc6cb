package loader

import "io"

// importedMaterial holds the constant material factors read from a scene file.
type importedMaterial struct {
	name      string
	baseColor [4]float32
	metallic  float32
	roughness float32
}

// importedSurface is one triangle primitive in world space.
// materialIndex is -1 when the primitive uses the default material.
type importedSurface struct {
	name          string
	positions     []float32
	indices       []uint32
	materialIndex int
}

// importedScene is the format-neutral result of decoding a scene file.
type importedScene struct {
	surfaces  []importedSurface
	materials []importedMaterial
}

// loaderBackend defines the generic interface for decoding scene files from streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// LoadReader imports a scene from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing scene data
	//
	// Returns:
	//   - *importedScene: the imported scene data
	//   - error: error if loading fails
	LoadReader(r io.Reader) (*importedScene, error)
}
