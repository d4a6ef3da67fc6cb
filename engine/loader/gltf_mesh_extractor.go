package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor flattens the scene hierarchy of a parsed document into world-space surfaces.
type gltfMeshExtractor interface {
	// ExtractSurfaces walks the default scene and returns one surface per triangle primitive,
	// with node transforms baked into the positions.
	//
	// Returns:
	//   - []importedSurface: the surfaces in traversal order
	//   - error: error if extraction fails
	ExtractSurfaces() ([]importedSurface, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractSurfaces() ([]importedSurface, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	// Documents without nodes still carry meshes; place them at the origin.
	if len(doc.Nodes) == 0 {
		var out []importedSurface
		for i := range doc.Meshes {
			surfaces, err := e.extractMesh(i, mgl32.Ident4())
			if err != nil {
				return nil, err
			}
			out = append(out, surfaces...)
		}
		return out, nil
	}

	var out []importedSurface
	visited := make(map[int]bool, len(doc.Nodes))
	for _, root := range e.roots(doc) {
		if err := e.walk(doc, root, mgl32.Ident4(), visited, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// roots returns the root nodes of the default scene, or every parentless node if the
// document declares no scene.
func (e *gltfMeshExtractorImpl) roots(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

func (e *gltfMeshExtractorImpl) walk(doc *gltfDocument, nodeIdx int, parent mgl32.Mat4, visited map[int]bool, out *[]importedSurface) error {
	if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", nodeIdx)
	}
	if visited[nodeIdx] {
		return fmt.Errorf("node %d visited twice: hierarchy is not a tree", nodeIdx)
	}
	visited[nodeIdx] = true

	node := &doc.Nodes[nodeIdx]
	world := parent.Mul4(gltfNodeMatrix(node))

	if node.Mesh != nil {
		surfaces, err := e.extractMesh(*node.Mesh, world)
		if err != nil {
			return fmt.Errorf("node %d: %w", nodeIdx, err)
		}
		*out = append(*out, surfaces...)
	}

	for _, child := range node.Children {
		if err := e.walk(doc, child, world, visited, out); err != nil {
			return err
		}
	}
	return nil
}

func (e *gltfMeshExtractorImpl) extractMesh(meshIndex int, world mgl32.Mat4) ([]importedSurface, error) {
	doc := e.parser.Document()
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	var result []importedSurface
	for primIdx := range mesh.Primitives {
		prim := &mesh.Primitives[primIdx]
		if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
			// Points and lines have no surface to draw a material on.
			continue
		}
		s, err := e.extractPrimitive(prim, world)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}
		s.name = mesh.Name
		if s.name == "" {
			s.name = fmt.Sprintf("mesh%d", meshIndex)
		}
		if len(mesh.Primitives) > 1 {
			s.name = fmt.Sprintf("%s.%d", s.name, primIdx)
		}
		result = append(result, s)
	}
	return result, nil
}

func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, world mgl32.Mat4) (importedSurface, error) {
	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return importedSurface{}, fmt.Errorf("primitive has no POSITION attribute")
	}

	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return importedSurface{}, fmt.Errorf("failed to read positions: %w", err)
	}

	packed := make([]float32, 0, len(positions)*3)
	for _, p := range positions {
		v := world.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
		packed = append(packed, v[0], v[1], v[2])
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return importedSurface{}, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= len(positions) {
				return importedSurface{}, fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
			}
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	materialIndex := -1
	if prim.Material != nil {
		materialIndex = *prim.Material
	}

	return importedSurface{
		positions:     packed,
		indices:       indices,
		materialIndex: materialIndex,
	}, nil
}

// gltfNodeMatrix returns the local transform of a node. glTF matrices are column-major, as are mgl32's.
func gltfNodeMatrix(n *gltfNode) mgl32.Mat4 {
	if n.Matrix != nil {
		return mgl32.Mat4(*n.Matrix)
	}
	m := mgl32.Ident4()
	if n.Translation != nil {
		t := n.Translation
		m = m.Mul4(mgl32.Translate3D(t[0], t[1], t[2]))
	}
	if n.Rotation != nil {
		r := n.Rotation
		m = m.Mul4(mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}.Normalize().Mat4())
	}
	if n.Scale != nil {
		s := n.Scale
		m = m.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	}
	return m
}
