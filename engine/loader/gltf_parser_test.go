package loader

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTriangle(t *testing.T) {
	p := newGLTFParser()
	require.NoError(t, p.ParseReader(bytes.NewReader(buildGLB(t, triangleFixture()))))

	pos, err := p.ReadVec3Accessor(0)
	require.NoError(t, err)
	assert.Equal(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, pos)

	idx, err := p.ReadIndicesAccessor(1)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, idx)

	_, err = p.ReadVec3Accessor(1)
	assert.Error(t, err)
	_, err = p.ReadIndicesAccessor(7)
	assert.Error(t, err)
}

func TestParseRejectsBadContainers(t *testing.T) {
	good := buildGLB(t, triangleFixture())

	cases := map[string]struct {
		data []byte
		want error
	}{
		"too small": {data: good[:8], want: errGLBTooSmall},
		"bad magic": {data: append([]byte("gltf"), good[4:]...), want: errInvalidGLBMagic},
		"bad version": {
			data: append(append(append([]byte{}, good[:4]...), 1, 0, 0, 0), good[8:]...),
			want: errInvalidGLBVersion,
		},
		"header only": {data: good[:12], want: errMissingJSONChunk},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := newGLTFParser().ParseReader(bytes.NewReader(tc.data))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	f := triangleFixture()
	f.version = "1.0"
	err := newGLTFParser().ParseReader(bytes.NewReader(buildGLB(t, f)))
	assert.ErrorIs(t, err, errInvalidGLTFVersion)

	err = newGLTFParser().ParseReader(bytes.NewReader(good[:len(good)-4]))
	assert.Error(t, err)
}

func TestImportAppliesNodeTransform(t *testing.T) {
	f := triangleFixture()
	f.translation = &[3]float32{0, 2, 0}
	scene, err := newGLTFImporter().ImportReader(bytes.NewReader(buildGLB(t, f)))
	require.NoError(t, err)
	require.Len(t, scene.surfaces, 1)

	s := scene.surfaces[0]
	assert.Equal(t, "ghost", s.name)
	assert.Equal(t, []float32{0, 2, 0, 1, 2, 0, 0, 3, 0}, s.positions)
	assert.Equal(t, 0, s.materialIndex)
	require.Len(t, scene.materials, 1)
	assert.Equal(t, [4]float32{0.2, 0.8, 1, 1}, scene.materials[0].baseColor)
}

func TestImportGeneratesIndices(t *testing.T) {
	f := triangleFixture()
	f.indices = nil
	f.material = nil
	f.materials = nil
	scene, err := newGLTFImporter().ImportReader(bytes.NewReader(buildGLB(t, f)))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, scene.surfaces[0].indices)
	assert.Equal(t, -1, scene.surfaces[0].materialIndex)
}

func TestImportRejectsMissingMaterial(t *testing.T) {
	f := triangleFixture()
	f.materials = nil
	_, err := newGLTFImporter().ImportReader(bytes.NewReader(buildGLB(t, f)))
	assert.Error(t, err)
}
