package loader

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRejectsVersion(t *testing.T) {
	p := newGLTFParser()
	err := p.ParseReader(bytes.NewReader([]byte(`{"asset":{"version":"1.0"}}`)), false)
	assert.ErrorIs(t, err, errInvalidGLTFVersion)
	assert.Nil(t, p.Document())
}

func TestParseGLBHeader(t *testing.T) {
	p := newGLTFParser()
	assert.ErrorIs(t, p.ParseReader(bytes.NewReader([]byte{1, 2, 3}), true), errGLBTooSmall)

	bad := make([]byte, 12)
	binary.LittleEndian.PutUint32(bad, 0xdeadbeef)
	assert.ErrorIs(t, p.ParseReader(bytes.NewReader(bad), true), errInvalidGLBMagic)

	headerOnly := glb(nil, nil)[:12]
	assert.ErrorIs(t, p.ParseReader(bytes.NewReader(headerOnly), true), errMissingJSONChunk)
}

func TestDecodeDataURI(t *testing.T) {
	data, err := decodeDataURI("data:application/octet-stream;base64,AQID")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = decodeDataURI("data:application/octet-stream,AQID")
	assert.ErrorIs(t, err, errInvalidBufferURI)
	_, err = decodeDataURI("data:nocomma")
	assert.ErrorIs(t, err, errInvalidBufferURI)
}

func TestReadAccessors(t *testing.T) {
	b := &gltfBuilder{}
	scalars := b.accessor(gltfAccessorTypeScalar, 0.5, 1.5)
	vecs := b.accessor(gltfAccessorTypeVec3, 1, 2, 3, 4, 5, 6)
	data := b.encode(t, map[string]any{}, true)

	p := newGLTFParser()
	require.NoError(t, p.ParseReader(bytes.NewReader(data), false))

	s, err := p.ReadScalarAccessor(scalars)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 1.5}, s)

	v, err := p.ReadVec3Accessor(vecs)
	require.NoError(t, err)
	assert.Equal(t, [][3]float32{{1, 2, 3}, {4, 5, 6}}, v)

	_, err = p.ReadVec4Accessor(vecs)
	assert.ErrorIs(t, err, errAccessorType)
	_, err = p.ReadScalarAccessor(7)
	assert.Error(t, err)
}

func TestReadAccessorBounds(t *testing.T) {
	b := &gltfBuilder{}
	vecs := b.accessor(gltfAccessorTypeVec3, 1, 2, 3)
	b.accessors[vecs]["count"] = 2
	data := b.encode(t, map[string]any{}, true)

	p := newGLTFParser()
	require.NoError(t, p.ParseReader(bytes.NewReader(data), false))

	_, err := p.ReadVec3Accessor(vecs)
	assert.ErrorIs(t, err, errAccessorOutOfBounds)
}

func TestReadStridedAccessor(t *testing.T) {
	b := &gltfBuilder{}
	// Two VEC3 elements interleaved with one padding float each.
	acc := b.accessor(gltfAccessorTypeVec4, 1, 2, 3, 0, 4, 5, 6, 0)
	b.accessors[acc]["type"] = gltfAccessorTypeVec3
	b.bufferViews[0]["byteStride"] = 16
	data := b.encode(t, map[string]any{}, true)

	p := newGLTFParser()
	require.NoError(t, p.ParseReader(bytes.NewReader(data), false))

	v, err := p.ReadVec3Accessor(acc)
	require.NoError(t, err)
	assert.Equal(t, [][3]float32{{1, 2, 3}, {4, 5, 6}}, v)
}
