package loader

import (
	"fmt"
	"io"
	"slices"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter combines the parser and the extractors to produce an importedScene.
type gltfImporter interface {
	// ImportReader decodes a GLB stream and extracts its surfaces and materials.
	//
	// Parameters:
	//   - r: the reader providing GLB data
	//
	// Returns:
	//   - *importedScene: the imported scene
	//   - error: error if import fails
	ImportReader(r io.Reader) (*importedScene, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

// supportedRequiredExtensions lists extensions the importer can ignore safely when a file marks them required.
var supportedRequiredExtensions = []string{
	"KHR_materials_unlit",
	"KHR_materials_emissive_strength",
}

func (imp *gltfImporterImpl) ImportReader(r io.Reader) (*importedScene, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r); err != nil {
		return nil, fmt.Errorf("failed to parse GLB: %w", err)
	}

	for _, ext := range parser.Document().ExtensionsRequired {
		if !slices.Contains(supportedRequiredExtensions, ext) {
			return nil, fmt.Errorf("required extension %q is not supported", ext)
		}
	}

	surfaces, err := newGLTFMeshExtractor(parser).ExtractSurfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to extract meshes: %w", err)
	}

	materials := newGLTFMaterialExtractor(parser).ExtractAllMaterials()
	for _, s := range surfaces {
		if s.materialIndex >= len(materials) {
			return nil, fmt.Errorf("surface %s references missing material %d", s.name, s.materialIndex)
		}
	}

	return &importedScene{
		surfaces:  surfaces,
		materials: materials,
	}, nil
}
