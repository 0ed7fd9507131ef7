package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// gltfBuilder packs float accessors into a single buffer for in-test documents.
type gltfBuilder struct {
	bin         []byte
	accessors   []map[string]any
	bufferViews []map[string]any
}

func (b *gltfBuilder) accessor(accessorType string, values ...float32) int {
	b.bufferViews = append(b.bufferViews, map[string]any{
		"buffer":     0,
		"byteOffset": len(b.bin),
		"byteLength": 4 * len(values),
	})
	for _, v := range values {
		b.bin = binary.LittleEndian.AppendUint32(b.bin, math.Float32bits(v))
	}
	b.accessors = append(b.accessors, map[string]any{
		"bufferView":    len(b.bufferViews) - 1,
		"componentType": gltfComponentTypeFloat,
		"count":         len(values) / gltfAccessorTypeComponentCount(accessorType),
		"type":          accessorType,
	})
	return len(b.accessors) - 1
}

// encode finishes doc. With embed the buffer travels as a base64 data URI, otherwise it is
// left for a GLB BIN chunk.
func (b *gltfBuilder) encode(t *testing.T, doc map[string]any, embed bool) []byte {
	t.Helper()

	doc["asset"] = map[string]any{"version": "2.0"}
	doc["accessors"] = b.accessors
	doc["bufferViews"] = b.bufferViews
	buffer := map[string]any{"byteLength": len(b.bin)}
	if embed {
		buffer["uri"] = "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(b.bin)
	}
	doc["buffers"] = []any{buffer}

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

// glb wraps a JSON chunk and a BIN chunk into a GLB container.
func glb(jsonChunk, binChunk []byte) []byte {
	pad := func(b []byte, fill byte) []byte {
		for len(b)%4 != 0 {
			b = append(b, fill)
		}
		return b
	}
	jsonChunk = pad(append([]byte(nil), jsonChunk...), ' ')
	binChunk = pad(append([]byte(nil), binChunk...), 0)

	var out bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)
	binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)})
	binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: gltfGLBChunkJSON})
	out.Write(jsonChunk)
	binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(binChunk)), ChunkType: gltfGLBChunkBIN})
	out.Write(binChunk)
	return out.Bytes()
}

// humanoid builds a document with nodes
//
//	0 Armature -> 1 Hips -> {2 Spine, 3 (unnamed)}
//	4 Body (mesh carrier, outside the default scene unless listed in sceneRoots)
//
// a skin over Hips, Spine and node 3, and three animations: "Walk" mixing LINEAR and STEP,
// an unnamed CUBICSPLINE clip, and a second "Walk" that only drives morph weights.
func humanoid(t *testing.T, sceneRoots []int, embed bool) ([]byte, *gltfBuilder) {
	t.Helper()

	b := &gltfBuilder{}
	ibm := b.accessor(gltfAccessorTypeMat4,
		1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, -1, 0, 1,
		1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, -1.5, 0, 1,
		1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, -1, 0, 1,
	)
	walkTimes := b.accessor(gltfAccessorTypeScalar, 0, 1, 2)
	hipsPositions := b.accessor(gltfAccessorTypeVec3, 0, 1, 0, 0, 1.5, 0, 0, 1, 0)
	spineTimes := b.accessor(gltfAccessorTypeScalar, 0, 2)
	spineRotations := b.accessor(gltfAccessorTypeVec4, 0, 0, 0, 1, 0, 0, 0.7071068, 0.7071068)
	stepTimes := b.accessor(gltfAccessorTypeScalar, 0, 1)
	stepScales := b.accessor(gltfAccessorTypeVec3, 1, 1, 1, 2, 2, 2)
	cubicValues := b.accessor(gltfAccessorTypeVec3,
		9, 9, 9, 0, 0.5, 0, 9, 9, 9,
		9, 9, 9, 0, 1, 0, 9, 9, 9,
	)

	doc := map[string]any{
		"scene":  0,
		"scenes": []any{map[string]any{"name": "Hero", "nodes": sceneRoots}},
		"nodes": []any{
			map[string]any{"name": "Armature", "children": []int{1}},
			map[string]any{"name": "Hips", "translation": []float32{0, 1, 0}, "children": []int{2, 3}},
			map[string]any{"name": "Spine", "translation": []float32{0, 0.5, 0}},
			map[string]any{"rotation": []float32{0, 0, 0.7071068, 0.7071068}},
			map[string]any{"name": "Body", "mesh": 0, "skin": 0},
		},
		"skins": []any{map[string]any{"inverseBindMatrices": ibm, "joints": []int{1, 2, 3}}},
		"animations": []any{
			map[string]any{
				"name": "Walk",
				"samplers": []any{
					map[string]any{"input": walkTimes, "output": hipsPositions},
					map[string]any{"input": spineTimes, "output": spineRotations, "interpolation": "LINEAR"},
					map[string]any{"input": stepTimes, "output": stepScales, "interpolation": "STEP"},
				},
				"channels": []any{
					map[string]any{"sampler": 0, "target": map[string]any{"node": 1, "path": "translation"}},
					map[string]any{"sampler": 1, "target": map[string]any{"node": 2, "path": "rotation"}},
					map[string]any{"sampler": 2, "target": map[string]any{"node": 3, "path": "scale"}},
				},
			},
			map[string]any{
				"samplers": []any{
					map[string]any{"input": stepTimes, "output": cubicValues, "interpolation": "CUBICSPLINE"},
				},
				"channels": []any{
					map[string]any{"sampler": 0, "target": map[string]any{"node": 2, "path": "translation"}},
				},
			},
			map[string]any{
				"name": "Walk",
				"samplers": []any{
					map[string]any{"input": stepTimes, "output": stepTimes},
				},
				"channels": []any{
					map[string]any{"sampler": 0, "target": map[string]any{"node": 4, "path": "weights"}},
				},
			},
		},
	}
	return b.encode(t, doc, embed), b
}
