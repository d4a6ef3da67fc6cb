package loader

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errGLBTooSmall        = errors.New("GLB file too small")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errExternalBuffer     = errors.New("external buffer URIs are not supported in a GLB stream")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errNoDocument         = errors.New("no document loaded")
)

// gltfParserImpl holds the decoded document and the BIN chunk its first buffer points into.
type gltfParserImpl struct {
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser decodes a GLB container and reads typed accessor data from it.
// This is internal to the loader package.
type gltfParser interface {
	// ParseReader parses a GLB container from a reader.
	//
	// Parameters:
	//   - r: reader containing GLB data
	//
	// Returns:
	//   - error: error if parsing fails
	ParseReader(r io.Reader) error

	// Document returns the parsed glTF document.
	// Returns nil if ParseReader has not been called successfully.
	//
	// Returns:
	//   - *gltfDocument: the parsed document or nil
	Document() *gltfDocument

	// ReadAccessorData reads the tightly packed raw bytes of an accessor.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []byte: the raw data
	//   - error: error if reading fails
	ReadAccessorData(accessorIndex int) ([]byte, error)

	// ReadVec3Accessor reads an accessor as vec3 float data.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - [][3]float32: the vec3 data
	//   - error: error if reading fails
	ReadVec3Accessor(accessorIndex int) ([][3]float32, error)

	// ReadIndicesAccessor reads an accessor as index data (uint32).
	// Handles UNSIGNED_BYTE, UNSIGNED_SHORT, and UNSIGNED_INT component types.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []uint32: the index data (converted to uint32)
	//   - error: error if reading fails
	ReadIndicesAccessor(accessorIndex int) ([]uint32, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new glTF parser instance.
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) ParseReader(r io.Reader) error {
	p.document, p.glbBinaryChunk = nil, nil

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return errGLBTooSmall
		}
		return fmt.Errorf("failed to read GLB header: %w", err)
	}
	switch {
	case header.Magic != gltfGLBMagic:
		return errInvalidGLBMagic
	case header.Version != gltfGLBVersion:
		return errInvalidGLBVersion
	}

	jsonChunk, binChunk, err := readGLBChunks(r, int64(header.Length)-glbHeaderSize)
	if err != nil {
		return err
	}

	doc := &gltfDocument{}
	if err := json.Unmarshal(jsonChunk, doc); err != nil {
		return fmt.Errorf("failed to decode scene JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}
	if err := resolveBuffers(doc, binChunk); err != nil {
		return err
	}

	p.document, p.glbBinaryChunk = doc, binChunk
	return nil
}

const (
	glbHeaderSize      = 12
	glbChunkHeaderSize = 8
)

// readGLBChunks walks the chunks that follow the container header. The first JSON chunk is
// required; the first BIN chunk is optional; unknown chunk types are skipped.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func readGLBChunks(r io.Reader, remaining int64) (jsonChunk, binChunk []byte, err error) {
	for remaining >= glbChunkHeaderSize {
		var ch gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &ch); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		remaining -= glbChunkHeaderSize

		size := int64(ch.ChunkLength)
		if size > remaining {
			return nil, nil, fmt.Errorf("chunk of %d bytes overruns the container (%d left)", size, remaining)
		}
		body := make([]byte, size)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, nil, fmt.Errorf("failed to read chunk body: %w", err)
		}
		remaining -= size

		switch {
		case ch.ChunkType == gltfGLBChunkJSON && jsonChunk == nil:
			jsonChunk = body
		case ch.ChunkType == gltfGLBChunkBIN && binChunk == nil:
			binChunk = body
		}
	}

	if jsonChunk == nil {
		return nil, nil, errMissingJSONChunk
	}
	return jsonChunk, binChunk, nil
}

// resolveBuffers attaches bytes to every buffer of doc. Buffer 0 may be the BIN chunk; any
// buffer may be an embedded base64 data URI. External files are rejected.
func resolveBuffers(doc *gltfDocument, binChunk []byte) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]
		var err error
		switch {
		case buf.URI == "" && i == 0 && binChunk != nil:
			buf.Data = binChunk
		case buf.URI == "":
			err = errors.New("no URI and no BIN chunk")
		case strings.HasPrefix(buf.URI, "data:"):
			buf.Data, err = decodeDataURI(buf.URI)
		default:
			err = errExternalBuffer
		}
		if err == nil && len(buf.Data) < buf.ByteLength {
			err = errBufferSizeMismatch
		}
		if err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}
	}
	return nil
}

// decodeDataURI decodes data:[<mediatype>];base64,<payload>.
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errInvalidBufferURI
	}
	if !strings.HasSuffix(meta, ";base64") && meta != "base64" {
		return nil, fmt.Errorf("%w: encoding %q", errInvalidBufferURI, meta)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidBufferURI, err)
	}
	return data, nil
}

// accessorLayout is where an accessor's elements live inside its buffer.
type accessorLayout struct {
	data     []byte
	offset   int
	stride   int
	elemSize int
	count    int
}

func (l accessorLayout) element(i int) []byte {
	at := l.offset + i*l.stride
	return l.data[at : at+l.elemSize]
}

// layout resolves and bounds-checks the buffer region of an accessor.
func (p *gltfParserImpl) layout(index int) (*gltfAccessor, accessorLayout, error) {
	acc, err := p.accessor(index)
	if err != nil {
		return nil, accessorLayout{}, err
	}
	switch {
	case acc.Sparse != nil:
		return nil, accessorLayout{}, fmt.Errorf("accessor %d: sparse storage is not supported", index)
	case acc.BufferView == nil:
		return nil, accessorLayout{}, fmt.Errorf("accessor %d: no bufferView", index)
	case *acc.BufferView < 0 || *acc.BufferView >= len(p.document.BufferViews):
		return nil, accessorLayout{}, fmt.Errorf("accessor %d: bufferView %d out of range", index, *acc.BufferView)
	}

	view := p.document.BufferViews[*acc.BufferView]
	if view.Buffer < 0 || view.Buffer >= len(p.document.Buffers) {
		return nil, accessorLayout{}, fmt.Errorf("accessor %d: buffer %d out of range", index, view.Buffer)
	}

	elemSize := componentSizes[acc.ComponentType] * accessorWidths[acc.Type]
	if elemSize == 0 {
		return nil, accessorLayout{}, fmt.Errorf("accessor %d: unsupported layout %s/%d", index, acc.Type, acc.ComponentType)
	}

	l := accessorLayout{
		data:     p.document.Buffers[view.Buffer].Data,
		offset:   view.ByteOffset + acc.ByteOffset,
		stride:   elemSize,
		elemSize: elemSize,
		count:    acc.Count,
	}
	if view.ByteStride != nil && *view.ByteStride > 0 {
		l.stride = *view.ByteStride
	}
	if l.count > 0 {
		if last := l.offset + (l.count-1)*l.stride + elemSize; l.offset < 0 || last > len(l.data) {
			return nil, accessorLayout{}, fmt.Errorf("accessor %d reads past the end of buffer %d", index, view.Buffer)
		}
	}
	return acc, l, nil
}

func (p *gltfParserImpl) ReadAccessorData(accessorIndex int) ([]byte, error) {
	_, l, err := p.layout(accessorIndex)
	if err != nil {
		return nil, err
	}
	packed := make([]byte, 0, l.count*l.elemSize)
	for i := 0; i < l.count; i++ {
		packed = append(packed, l.element(i)...)
	}
	return packed, nil
}

func (p *gltfParserImpl) ReadVec3Accessor(accessorIndex int) ([][3]float32, error) {
	acc, l, err := p.layout(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeVec3 || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("accessor %d is %s/%d, want VEC3 float", accessorIndex, acc.Type, acc.ComponentType)
	}

	out := make([][3]float32, l.count)
	for i := range out {
		e := l.element(i)
		for c := 0; c < 3; c++ {
			out[i][c] = math.Float32frombits(binary.LittleEndian.Uint32(e[c*4:]))
		}
	}
	return out, nil
}

func (p *gltfParserImpl) ReadIndicesAccessor(accessorIndex int) ([]uint32, error) {
	acc, l, err := p.layout(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("index accessor %d is %s, want SCALAR", accessorIndex, acc.Type)
	}

	var read func([]byte) uint32
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		read = func(b []byte) uint32 { return uint32(b[0]) }
	case gltfComponentTypeUnsignedShort:
		read = func(b []byte) uint32 { return uint32(binary.LittleEndian.Uint16(b)) }
	case gltfComponentTypeUnsignedInt:
		read = binary.LittleEndian.Uint32
	default:
		return nil, fmt.Errorf("index accessor %d: component type %d is not an unsigned integer", accessorIndex, acc.ComponentType)
	}

	out := make([]uint32, l.count)
	for i := range out {
		out[i] = read(l.element(i))
	}
	return out, nil
}

// accessor returns the accessor at index after a bounds check.
func (p *gltfParserImpl) accessor(index int) (*gltfAccessor, error) {
	if p.document == nil {
		return nil, errNoDocument
	}
	if index < 0 || index >= len(p.document.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	return &p.document.Accessors[index], nil
}

// componentSizes maps a component type to its size in bytes.
var componentSizes = map[int]int{
	gltfComponentTypeByte:          1,
	gltfComponentTypeUnsignedByte:  1,
	gltfComponentTypeShort:         2,
	gltfComponentTypeUnsignedShort: 2,
	gltfComponentTypeUnsignedInt:   4,
	gltfComponentTypeFloat:         4,
}

// accessorWidths maps an accessor type to its component count.
var accessorWidths = map[string]int{
	gltfAccessorTypeScalar: 1,
	gltfAccessorTypeVec2:   2,
	gltfAccessorTypeVec3:   3,
	gltfAccessorTypeVec4:   4,
	gltfAccessorTypeMat4:   16,
}
