package loader

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// glbFixture describes a single-mesh scene for buildGLB.
type glbFixture struct {
	positions   []float32
	indices     []uint16
	translation *[3]float32
	materials   []map[string]any
	material    *int
	version     string
}

func triangleFixture() glbFixture {
	mat := 0
	return glbFixture{
		positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		indices:   []uint16{0, 1, 2},
		materials: []map[string]any{{
			"name": "ectoplasm",
			"pbrMetallicRoughness": map[string]any{
				"baseColorFactor": []float32{0.2, 0.8, 1, 1},
			},
		}},
		material: &mat,
		version:  "2.0",
	}
}

func pad4(b []byte, fill byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, fill)
	}
	return b
}

// buildGLB assembles a GLB container with one JSON chunk and one BIN chunk.
func buildGLB(t *testing.T, f glbFixture) []byte {
	t.Helper()

	var bin []byte
	for _, v := range f.positions {
		bin = binary.LittleEndian.AppendUint32(bin, math.Float32bits(v))
	}
	posLen := len(bin)
	for _, v := range f.indices {
		bin = binary.LittleEndian.AppendUint16(bin, v)
	}
	idxLen := len(bin) - posLen
	bin = pad4(bin, 0)

	prim := map[string]any{"attributes": map[string]int{"POSITION": 0}}
	accessors := []map[string]any{{
		"bufferView": 0, "componentType": gltfComponentTypeFloat,
		"count": len(f.positions) / 3, "type": gltfAccessorTypeVec3,
	}}
	views := []map[string]any{{"buffer": 0, "byteOffset": 0, "byteLength": posLen}}
	if len(f.indices) > 0 {
		prim["indices"] = 1
		accessors = append(accessors, map[string]any{
			"bufferView": 1, "componentType": gltfComponentTypeUnsignedShort,
			"count": len(f.indices), "type": gltfAccessorTypeScalar,
		})
		views = append(views, map[string]any{"buffer": 0, "byteOffset": posLen, "byteLength": idxLen})
	}
	if f.material != nil {
		prim["material"] = *f.material
	}

	node := map[string]any{"mesh": 0}
	if f.translation != nil {
		node["translation"] = f.translation
	}

	doc := map[string]any{
		"asset":       map[string]any{"version": f.version},
		"scene":       0,
		"scenes":      []map[string]any{{"nodes": []int{0}}},
		"nodes":       []map[string]any{node},
		"meshes":      []map[string]any{{"name": "ghost", "primitives": []map[string]any{prim}}},
		"accessors":   accessors,
		"bufferViews": views,
		"buffers":     []map[string]any{{"byteLength": len(bin)}},
	}
	if len(f.materials) > 0 {
		doc["materials"] = f.materials
	}
	js, err := json.Marshal(doc)
	require.NoError(t, err)
	js = pad4(js, ' ')

	var out bytes.Buffer
	total := 12 + 8 + len(js) + 8 + len(bin)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(js)), ChunkType: gltfGLBChunkJSON}))
	out.Write(js)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN}))
	out.Write(bin)
	return out.Bytes()
}
