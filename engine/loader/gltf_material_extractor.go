package loader

import "fmt"

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor reads the PBR factors of the document's materials.
// Textures are not sampled by the viewer, so only constant factors are extracted.
type gltfMaterialExtractor interface {
	// ExtractAllMaterials returns one importedMaterial per document material, in document order.
	//
	// Returns:
	//   - []importedMaterial: the materials
	ExtractAllMaterials() []importedMaterial
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() []importedMaterial {
	doc := e.parser.Document()
	if doc == nil {
		return nil
	}

	out := make([]importedMaterial, len(doc.Materials))
	for i := range doc.Materials {
		mat := &doc.Materials[i]
		im := defaultImportedMaterial()
		im.name = mat.Name
		if im.name == "" {
			im.name = fmt.Sprintf("material%d", i)
		}

		if pbr := mat.PbrMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				im.baseColor = *pbr.BaseColorFactor
			}
			if pbr.MetallicFactor != nil {
				im.metallic = *pbr.MetallicFactor
			}
			if pbr.RoughnessFactor != nil {
				im.roughness = *pbr.RoughnessFactor
			}
		}
		out[i] = im
	}
	return out
}

// defaultImportedMaterial returns the glTF default material: white, fully metallic, fully rough.
func defaultImportedMaterial() importedMaterial {
	return importedMaterial{
		name:      "default",
		baseColor: [4]float32{1, 1, 1, 1},
		metallic:  1,
		roughness: 1,
	}
}
